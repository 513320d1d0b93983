package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPServer serves the dashboard and its auxiliary endpoints.
type HTTPServer struct {
	serverContext *ServerContext
	health        *HealthChecker
	httpServer    *http.Server
	baseURL       string
}

// NewHTTPServer wires the handlers, health endpoints, and metrics
// middleware into a server bound to the given base URL.
func NewHTTPServer(sc *ServerContext, baseURL string) (*HTTPServer, error) {
	if err := validateBaseURL(baseURL); err != nil {
		return nil, err
	}

	return &HTTPServer{
		serverContext: sc,
		health:        NewHealthChecker(sc),
		baseURL:       baseURL,
	}, nil
}

// Health returns the health checker so callers can toggle readiness.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Start starts the HTTP server in a blocking manner.
func (s *HTTPServer) Start(addr string) error {
	mux := s.serverContext.routes()
	s.health.RegisterHealthEndpoints(mux)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.requestMetricsMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	return s.serverContext.Shutdown()
}

// statusRecorder captures the response status for the metrics middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestMetricsMiddleware records method, route pattern, status, and
// duration for every request.
func (s *HTTPServer) requestMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		// Use the matched pattern, not the raw path, to keep metric
		// cardinality bounded.
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		s.serverContext.metrics.RecordHTTPRequest(r.Context(), r.Method, path, recorder.status, time.Since(start))
	})
}

// validateBaseURL ensures the externally visible base URL is HTTPS.
// Loopback hosts may use HTTP for development; the OAuth redirect URL is
// derived from this value and Google rejects plain-HTTP redirects
// elsewhere.
func validateBaseURL(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("base URL must use HTTPS outside localhost (got: %s)", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
