package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teemow/inboxtriage/internal/gmail"
	"github.com/teemow/inboxtriage/internal/google"
	"github.com/teemow/inboxtriage/internal/instrumentation"
	"github.com/teemow/inboxtriage/internal/logging"
	"github.com/teemow/inboxtriage/internal/triage"
)

// MailClient is the slice of the Gmail client the dashboard needs.
// *gmail.Client satisfies it; tests substitute a fake.
type MailClient interface {
	ListRecent(ctx context.Context, windowDays int, maxResults int64) ([]string, error)
	FetchFull(ctx context.Context, messageID string) (*gmail.Message, error)
}

// MailClientFactory builds a mail client from session credentials.
type MailClientFactory func(ctx context.Context, creds *google.CredentialSet) (MailClient, error)

// ServerContext holds the shared dependencies of the HTTP handlers.
type ServerContext struct {
	ctx           context.Context
	cancel        context.CancelFunc
	sessions      *SessionStore
	flow          *google.Flow
	classifier    *triage.Classifier
	summarizer    *triage.Summarizer
	completion    triage.CompletionClient
	newMailClient MailClientFactory
	metrics       *instrumentation.Metrics
	logger        *slog.Logger
	mu            sync.RWMutex
	shutdown      bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, sessions *SessionStore, flow *google.Flow,
	classifier *triage.Classifier, summarizer *triage.Summarizer,
	completion triage.CompletionClient, newMailClient MailClientFactory,
	metrics *instrumentation.Metrics) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if newMailClient == nil {
		newMailClient = func(ctx context.Context, creds *google.CredentialSet) (MailClient, error) {
			return gmail.NewClient(ctx, creds)
		}
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	logger := logging.WithComponent(slog.Default(), "server")

	return &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		sessions:      sessions,
		flow:          flow,
		classifier:    classifier,
		summarizer:    summarizer,
		completion:    completion,
		newMailClient: newMailClient,
		metrics:       metrics,
		logger:        logger,
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Sessions returns the session store.
func (sc *ServerContext) Sessions() *SessionStore {
	return sc.sessions
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	if sc.sessions != nil {
		sc.sessions.Stop()
	}
	return nil
}
