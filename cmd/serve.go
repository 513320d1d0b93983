package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teemow/inboxtriage/internal/google"
	"github.com/teemow/inboxtriage/internal/instrumentation"
	"github.com/teemow/inboxtriage/internal/logging"
	"github.com/teemow/inboxtriage/internal/server"
	"github.com/teemow/inboxtriage/internal/triage"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// EnabledSet reports whether Enabled came from an explicit flag rather
	// than the default, so the METRICS_ENABLED env var knows when to yield.
	EnabledSet bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode          bool
		logFormat          string
		httpAddr           string
		baseURL            string
		googleClientID     string
		googleClientSecret string
		sessionTimeout     time.Duration
		metricsEnabled     bool
		metricsAddr        string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the triage web dashboard",
		Long: `Run the web dashboard. Users log in with their Google account; the
dashboard lists their recent mail, one urgency category per message, and a
daily digest.

Configuration:
  Google OAuth client (required):
    --google-client-id and --google-client-secret flags
    OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars

  OpenAI (required):
    OPENAI_API_KEY env var

  Base URL:
    --base-url https://your-domain.com OR BASE_URL env var
    Auto-detected for localhost (development only). The OAuth redirect URL
    registered with Google must be <base-url>/oauth2callback.

A .env file in the working directory is loaded at startup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(serveOptions{
				debug:              debugMode,
				logFormat:          logFormat,
				httpAddr:           httpAddr,
				baseURL:            baseURL,
				googleClientID:     googleClientID,
				googleClientSecret: googleClientSecret,
				sessionTimeout:     sessionTimeout,
				metrics: MetricsConfig{
					Enabled:    metricsEnabled,
					EnabledSet: cmd.Flags().Changed("metrics-enabled"),
					Addr:       metricsAddr,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&logFormat, "log-format", "json", "Log format: json or text")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL for OAuth redirects. Required for deployed instances. Can also use BASE_URL env var. Example: https://triage.example.com")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().DurationVar(&sessionTimeout, "session-timeout", server.DefaultSessionTimeout, "Idle browser sessions are dropped after this duration")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

type serveOptions struct {
	debug              bool
	logFormat          string
	httpAddr           string
	baseURL            string
	googleClientID     string
	googleClientSecret string
	sessionTimeout     time.Duration
	metrics            MetricsConfig
}

func runServe(opts serveOptions) error {
	// Optional; flags and real environment variables win over .env entries.
	_ = godotenv.Load()

	logger := logging.Setup(opts.logFormat, opts.debug)

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if opts.googleClientID == "" {
		opts.googleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if opts.googleClientSecret == "" {
		opts.googleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if opts.googleClientID == "" || opts.googleClientSecret == "" {
		return fmt.Errorf("google OAuth client is not configured; set --google-client-id/--google-client-secret or GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET")
	}

	completion, err := triage.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"))
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	baseURL := resolveBaseURL(opts.baseURL, opts.httpAddr)
	logger.Info("resolved base URL", "base_url", baseURL)

	// Load metrics config from environment if not set via flags
	opts.metrics.Enabled = resolveMetricsEnabled(opts.metrics.Enabled, opts.metrics.EnabledSet)
	if opts.metrics.Addr == "" || opts.metrics.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			opts.metrics.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.Printf("Error during instrumentation shutdown: %v", err)
		}
	}()

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if opts.metrics.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	flow := google.NewFlow(google.FlowConfig{
		ClientID:     opts.googleClientID,
		ClientSecret: opts.googleClientSecret,
		RedirectURL:  baseURL + "/oauth2callback",
		Scopes:       google.ModifyScopes,
	})

	metrics := provider.Metrics()
	sessions := server.NewSessionStore(opts.sessionTimeout, logger, metrics)
	serverContext := server.NewServerContext(shutdownCtx, sessions, flow,
		triage.NewClassifier(triage.Metered(completion, metrics, "classify"), logger),
		triage.NewSummarizer(triage.Metered(completion, metrics, "summarize"), logger),
		triage.Metered(completion, metrics, "rule"), nil, metrics)

	httpServer, err := server.NewHTTPServer(serverContext, baseURL)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	defer func() {
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
	}()

	logger.Info("starting dashboard server", "addr", opts.httpAddr, "base_url", baseURL)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(opts.httpAddr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// resolveBaseURL falls back to a localhost URL derived from the listen
// address when no base URL is configured. Deployed instances must set one
// explicitly so the OAuth redirect matches what Google has registered.
// resolveMetricsEnabled consults METRICS_ENABLED only when the flag was
// left at its default, so an explicit --metrics-enabled always wins.
func resolveMetricsEnabled(flagValue, flagSet bool) bool {
	if flagSet {
		return flagValue
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		return v == "true"
	}
	return flagValue
}

func resolveBaseURL(baseURL, addr string) string {
	if baseURL == "" {
		baseURL = os.Getenv("BASE_URL")
	}
	if baseURL != "" {
		return baseURL
	}
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
