package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
	oauth2google "golang.org/x/oauth2/google"
)

// FlowConfig configures the authorization-code flow.
type FlowConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// Endpoint overrides Google's endpoints, for tests. Zero value means
	// Google.
	Endpoint oauth2.Endpoint
}

// Flow drives the two-step OAuth2 authorization-code exchange:
// Anonymous -> AwaitingCallback (BeginLogin) -> Authenticated (CompleteLogin).
type Flow struct {
	config *oauth2.Config
}

// NewFlow creates a Flow for the given client configuration.
func NewFlow(cfg FlowConfig) *Flow {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = oauth2google.Endpoint
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = ModifyScopes
	}
	return &Flow{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       scopes,
		},
	}
}

// BeginLogin builds the provider authorization URL requesting offline access
// and incremental scopes, together with a fresh anti-forgery state token.
// The caller must persist the state token in the session before redirecting.
func (f *Flow) BeginLogin() (authURL, state string, err error) {
	state, err = generateStateToken()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL = f.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
	return authURL, state, nil
}

// CompleteLogin validates the callback's state token against the one stored
// in the session and exchanges the authorization code for tokens. Returns
// ErrStateMismatch when the state is absent or differs (this check is a
// security invariant), and ErrTokenExchange on any exchange failure.
func (f *Flow) CompleteLogin(ctx context.Context, callback url.Values, expectedState string) (*CredentialSet, error) {
	returned := callback.Get("state")
	if expectedState == "" || returned != expectedState {
		return nil, fmt.Errorf("%w: got %q", ErrStateMismatch, returned)
	}

	code := callback.Get("code")
	if code == "" {
		return nil, fmt.Errorf("%w: no authorization code in callback", ErrTokenExchange)
	}

	tok, err := f.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}

	return &CredentialSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     f.config.Endpoint.TokenURL,
		ClientID:     f.config.ClientID,
		ClientSecret: f.config.ClientSecret,
		Scopes:       f.config.Scopes,
	}, nil
}

// generateStateToken returns a 32-byte cryptographically random token,
// base64url encoded without padding.
func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
