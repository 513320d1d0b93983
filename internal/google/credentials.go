package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	oauth2google "golang.org/x/oauth2/google"
)

// DefaultTokenURI is Google's OAuth2 token endpoint, used when
// GOOGLE_TOKEN_URI is not set.
const DefaultTokenURI = "https://oauth2.googleapis.com/token"

// Scope sets: the browser flow needs modify access so labels can be applied;
// headless operation only reads.
var (
	ModifyScopes   = []string{"https://www.googleapis.com/auth/gmail.modify"}
	ReadOnlyScopes = []string{"https://www.googleapis.com/auth/gmail.readonly"}
)

// CredentialSet holds everything needed to mint access tokens for the Gmail
// API. RefreshToken and TokenURI must be non-empty before any fetch is
// attempted.
type CredentialSet struct {
	AccessToken  string
	RefreshToken string
	TokenURI     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// LoadFromEnv builds a CredentialSet from environment variables. The access
// token is left unset so the first use forces a refresh. Returns
// ErrMissingConfig when the refresh token or client id is absent.
func LoadFromEnv() (*CredentialSet, error) {
	refreshToken := os.Getenv("GOOGLE_REFRESH_TOKEN")
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: GOOGLE_REFRESH_TOKEN is not set", ErrMissingConfig)
	}
	if clientID == "" {
		return nil, fmt.Errorf("%w: GOOGLE_CLIENT_ID is not set", ErrMissingConfig)
	}

	tokenURI := os.Getenv("GOOGLE_TOKEN_URI")
	if tokenURI == "" {
		tokenURI = DefaultTokenURI
	}

	return &CredentialSet{
		RefreshToken: refreshToken,
		TokenURI:     tokenURI,
		ClientID:     clientID,
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Scopes:       ReadOnlyScopes,
	}, nil
}

// FromSession validates a credential set restored from a browser session.
// Returns ErrSessionInvalid when required fields are missing, signaling the
// caller to restart the login flow.
func FromSession(cs *CredentialSet) (*CredentialSet, error) {
	if cs == nil {
		return nil, fmt.Errorf("%w: no credentials in session", ErrSessionInvalid)
	}
	if cs.RefreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token missing", ErrSessionInvalid)
	}
	if cs.TokenURI == "" {
		return nil, fmt.Errorf("%w: token endpoint missing", ErrSessionInvalid)
	}
	if cs.ClientID == "" {
		return nil, fmt.Errorf("%w: client id missing", ErrSessionInvalid)
	}
	return cs, nil
}

// oauthConfig builds the x/oauth2 config that refreshes tokens against the
// set's token endpoint.
func (cs *CredentialSet) oauthConfig() *oauth2.Config {
	endpoint := oauth2google.Endpoint
	if cs.TokenURI != "" {
		endpoint.TokenURL = cs.TokenURI
	}
	return &oauth2.Config{
		ClientID:     cs.ClientID,
		ClientSecret: cs.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       cs.Scopes,
	}
}

// TokenSource returns an auto-refreshing token source for this credential
// set. When no access token is present the expiry is set in the past so the
// first call refreshes.
func (cs *CredentialSet) TokenSource(ctx context.Context) oauth2.TokenSource {
	tok := &oauth2.Token{
		AccessToken:  cs.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: cs.RefreshToken,
	}
	if cs.AccessToken == "" {
		tok.Expiry = time.Unix(1, 0)
	}
	return cs.oauthConfig().TokenSource(ctx, tok)
}

// HTTPClient returns an HTTP client that authenticates requests with this
// credential set, refreshing the access token as needed.
func (cs *CredentialSet) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, cs.TokenSource(ctx))
}
