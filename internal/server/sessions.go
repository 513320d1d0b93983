package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/inboxtriage/internal/google"
	"github.com/teemow/inboxtriage/internal/instrumentation"
)

// CustomRule is an ad-hoc triage rule a user stores for their session.
// Rules are append-only and live only as long as the session.
type CustomRule struct {
	Name      string `json:"name"`
	Condition string `json:"condition"`
}

// SessionData is everything the server holds for one browser session.
type SessionData struct {
	// Credentials is nil until the OAuth2 callback completes.
	Credentials *google.CredentialSet

	// OAuthState is the anti-forgery token issued at login and consumed
	// by the callback. Empty outside an in-flight login.
	OAuthState string

	CustomRules []CustomRule
}

// sessionEntry tracks session data plus metadata for TTL cleanup.
type sessionEntry struct {
	data       *SessionData
	lastAccess time.Time
}

// SessionStore is an in-memory session store keyed by a secure random
// cookie ID. Expired sessions are removed by a background cleanup loop.
// The store owns the active-sessions gauge: every path that removes a
// session, explicit Delete or TTL reap, decrements it.
type SessionStore struct {
	sessions       map[string]*sessionEntry
	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan bool
	sessionTimeout time.Duration
	logger         *slog.Logger
	metrics        *instrumentation.Metrics
}

// DefaultSessionTimeout is how long an idle session survives.
const DefaultSessionTimeout = 24 * time.Hour

// NewSessionStore creates a session store and starts its cleanup goroutine.
// Call Stop when the server shuts down. A nil metrics handle disables
// session accounting.
func NewSessionStore(timeout time.Duration, logger *slog.Logger, metrics *instrumentation.Metrics) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	s := &SessionStore{
		sessions:       make(map[string]*sessionEntry),
		cleanupTicker:  time.NewTicker(10 * time.Minute),
		cleanupDone:    make(chan bool),
		sessionTimeout: timeout,
		logger:         logger,
		metrics:        metrics,
	}

	go s.cleanupExpiredSessions()

	return s
}

// Create allocates a new session with a random ID and returns both.
func (s *SessionStore) Create() (string, *SessionData, error) {
	id, err := generateSessionID()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	data := &SessionData{}

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{
		data:       data,
		lastAccess: time.Now(),
	}
	s.mu.Unlock()

	s.metrics.IncrementActiveSessions(context.Background())
	return id, data, nil
}

// Get returns the session data for an ID and refreshes its last-access
// time. The second result is false for unknown or expired IDs.
func (s *SessionStore) Get(id string) (*SessionData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastAccess = time.Now()
	return entry.data, true
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.metrics.DecrementActiveSessions(context.Background())
	}
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// generateSessionID returns a 32-byte random ID in unpadded base64url.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// cleanupExpiredSessions periodically removes sessions past the TTL.
func (s *SessionStore) cleanupExpiredSessions() {
	for {
		select {
		case <-s.cleanupTicker.C:
			if expired := s.reapExpired(time.Now()); expired > 0 {
				s.logger.Info("Cleaned up expired sessions", "count", expired)
			}
		case <-s.cleanupDone:
			return
		}
	}
}

// reapExpired removes every session idle past the TTL as of now and keeps
// the active-sessions gauge in step. Returns how many were removed.
func (s *SessionStore) reapExpired(now time.Time) int {
	s.mu.Lock()
	expired := 0
	for id, entry := range s.sessions {
		if now.Sub(entry.lastAccess) > s.sessionTimeout {
			delete(s.sessions, id)
			expired++
		}
	}
	s.mu.Unlock()

	ctx := context.Background()
	for i := 0; i < expired; i++ {
		s.metrics.DecrementActiveSessions(ctx)
	}
	return expired
}

// Stop stops the session cleanup goroutine.
func (s *SessionStore) Stop() {
	if s.cleanupTicker != nil {
		s.cleanupTicker.Stop()
	}
	if s.cleanupDone != nil {
		close(s.cleanupDone)
	}
}
