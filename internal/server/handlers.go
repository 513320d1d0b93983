package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/teemow/inboxtriage/internal/gmail"
	"github.com/teemow/inboxtriage/internal/google"
	"github.com/teemow/inboxtriage/internal/instrumentation"
	"github.com/teemow/inboxtriage/internal/logging"
)

// sessionCookieName identifies the browser session. The cookie carries only
// a random ID; all session state stays server-side.
const sessionCookieName = "inboxtriage_session"

// accountChooserURL is where logout sends the browser, so the next login
// can pick a different Google account.
const accountChooserURL = "https://accounts.google.com/AccountChooser"

// routes registers all HTTP handlers on a new mux.
func (sc *ServerContext) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", sc.handleDashboard)
	mux.HandleFunc("GET /login", sc.handleLogin)
	mux.HandleFunc("GET /oauth2callback", sc.handleOAuthCallback)
	mux.HandleFunc("GET /logout", sc.handleLogout)
	mux.HandleFunc("POST /api/custom-rule", sc.handleAddCustomRule)
	return mux
}

// sessionFromRequest resolves the session for a request, if any.
func (sc *ServerContext) sessionFromRequest(r *http.Request) (string, *SessionData, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", nil, false
	}
	data, ok := sc.sessions.Get(cookie.Value)
	if !ok {
		return "", nil, false
	}
	return cookie.Value, data, true
}

// ensureSession returns the request's session, creating one (and setting
// the cookie) if the request carries none.
func (sc *ServerContext) ensureSession(w http.ResponseWriter, r *http.Request) (string, *SessionData, error) {
	if id, data, ok := sc.sessionFromRequest(r); ok {
		return id, data, nil
	}

	id, data, err := sc.sessions.Create()
	if err != nil {
		return "", nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id, data, nil
}

// handleDashboard renders the triage dashboard. Requests without session
// credentials are redirected to login; fetch failures degrade to an empty
// mailbox rather than an error page.
func (sc *ServerContext) handleDashboard(w http.ResponseWriter, r *http.Request) {
	_, sd, ok := sc.sessionFromRequest(r)
	if !ok || sd.Credentials == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	ctx := r.Context()

	creds, err := google.FromSession(sd.Credentials)
	if err != nil {
		sc.logger.Warn("session credentials invalid, forcing re-login", logging.Err(err))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	client, err := sc.newMailClient(ctx, creds)
	if err != nil {
		sc.logger.Warn("failed to build mail client, forcing re-login", logging.Err(err))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	messages, authExpired := sc.fetchAndClassify(ctx, client)
	if authExpired {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	summary := sc.summarizer.Summarize(ctx, messages)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderDashboard(w, dashboardData{
		Summary:     summary,
		Emails:      messages,
		CustomRules: sd.CustomRules,
	}); err != nil {
		sc.logger.Error("failed to render dashboard", logging.Err(err))
	}
}

// fetchAndClassify lists recent message IDs, fetches each in listing order,
// and classifies what it fetched. Per-message fetch failures are skipped.
// The second result reports a rejected token, which the caller turns into a
// login redirect.
func (sc *ServerContext) fetchAndClassify(ctx context.Context, client MailClient) ([]*gmail.Message, bool) {
	start := time.Now()
	ids, err := client.ListRecent(ctx, gmail.DefaultWindowDays, gmail.DefaultMaxResults)
	sc.metrics.RecordGmailOperation(ctx, "list", statusOf(err), time.Since(start))
	if errors.Is(err, gmail.ErrAuthExpired) {
		sc.logger.Warn("access token rejected, forcing re-login", logging.Err(err))
		return nil, true
	}
	if err != nil {
		sc.logger.Warn("failed to list recent messages", logging.Err(err))
		return nil, false
	}

	messages := make([]*gmail.Message, 0, len(ids))
	for _, id := range ids {
		fetchStart := time.Now()
		msg, err := client.FetchFull(ctx, id)
		sc.metrics.RecordGmailOperation(ctx, "fetch", statusOf(err), time.Since(fetchStart))
		if err != nil {
			sc.logger.Warn("skipping message", logging.MessageID(id), logging.Err(err))
			continue
		}

		msg.Category = sc.classifier.Classify(ctx, msg).String()
		sc.metrics.RecordMessageClassified(ctx, msg.Category)
		messages = append(messages, msg)
	}

	return messages, false
}

// handleLogin starts the OAuth2 authorization-code flow.
func (sc *ServerContext) handleLogin(w http.ResponseWriter, r *http.Request) {
	_, sd, err := sc.ensureSession(w, r)
	if err != nil {
		sc.logger.Error("failed to create session", logging.Err(err))
		http.Error(w, "login unavailable", http.StatusInternalServerError)
		return
	}

	if sd.Credentials != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	authURL, state, err := sc.flow.BeginLogin()
	if err != nil {
		sc.logger.Error("failed to begin login", logging.Err(err))
		http.Error(w, "login unavailable", http.StatusInternalServerError)
		return
	}

	sd.OAuthState = state
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleOAuthCallback finishes the authorization-code exchange. Any
// failure, including a state mismatch, restarts the flow at /login.
func (sc *ServerContext) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, sd, ok := sc.sessionFromRequest(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	expectedState := sd.OAuthState
	sd.OAuthState = ""

	creds, err := sc.flow.CompleteLogin(ctx, r.URL.Query(), expectedState)
	if err != nil {
		sc.metrics.RecordOAuthLogin(ctx, instrumentation.StatusError)
		sc.logger.Warn("oauth callback rejected", logging.Err(err))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	sd.Credentials = creds
	sc.metrics.RecordOAuthLogin(ctx, instrumentation.StatusSuccess)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout drops the whole session unconditionally and sends the
// browser to the Google account chooser.
func (sc *ServerContext) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id, _, ok := sc.sessionFromRequest(r); ok {
		sc.sessions.Delete(id)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, accountChooserURL, http.StatusFound)
}

// handleAddCustomRule appends a rule to the session. Invalid payloads
// leave the session untouched.
func (sc *ServerContext) handleAddCustomRule(w http.ResponseWriter, r *http.Request) {
	_, sd, ok := sc.sessionFromRequest(r)
	if !ok || sd.Credentials == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	var rule CustomRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil || rule.Name == "" || rule.Condition == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid rule data"})
		return
	}

	sd.CustomRules = append(sd.CustomRules, rule)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Rule added successfully"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func statusOf(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}
