package google

import "errors"

var (
	// ErrMissingConfig indicates a required OAuth secret is absent from the
	// environment. Fatal for headless operation.
	ErrMissingConfig = errors.New("missing required Google OAuth configuration")

	// ErrSessionInvalid indicates session-held credentials are incomplete.
	// The caller should restart the login flow.
	ErrSessionInvalid = errors.New("session credentials are invalid")

	// ErrStateMismatch indicates the OAuth callback returned an anti-forgery
	// state token that does not match the one stored in the session.
	ErrStateMismatch = errors.New("oauth state token mismatch")

	// ErrTokenExchange indicates the authorization-code exchange failed.
	ErrTokenExchange = errors.New("oauth token exchange failed")
)
