package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name: "complete configuration",
			env: map[string]string{
				"GOOGLE_REFRESH_TOKEN": "refresh-123",
				"GOOGLE_CLIENT_ID":     "client-id",
				"GOOGLE_CLIENT_SECRET": "client-secret",
				"GOOGLE_TOKEN_URI":     "https://example.com/token",
			},
		},
		{
			name: "token uri defaults",
			env: map[string]string{
				"GOOGLE_REFRESH_TOKEN": "refresh-123",
				"GOOGLE_CLIENT_ID":     "client-id",
			},
		},
		{
			name: "missing refresh token",
			env: map[string]string{
				"GOOGLE_CLIENT_ID": "client-id",
			},
			wantErr: true,
		},
		{
			name: "missing client id",
			env: map[string]string{
				"GOOGLE_REFRESH_TOKEN": "refresh-123",
			},
			wantErr: true,
		},
		{
			name:    "nothing set",
			env:     map[string]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"GOOGLE_REFRESH_TOKEN", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_TOKEN_URI"} {
				t.Setenv(key, tt.env[key])
			}

			cs, err := LoadFromEnv()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMissingConfig)
				return
			}

			require.NoError(t, err)
			// Invariant: refresh token and token endpoint are non-empty.
			assert.NotEmpty(t, cs.RefreshToken)
			assert.NotEmpty(t, cs.TokenURI)
			// Access token stays unset so the first use forces a refresh.
			assert.Empty(t, cs.AccessToken)
			assert.Equal(t, ReadOnlyScopes, cs.Scopes)
		})
	}
}

func TestLoadFromEnvDefaultTokenURI(t *testing.T) {
	t.Setenv("GOOGLE_REFRESH_TOKEN", "refresh-123")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_TOKEN_URI", "")

	cs, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenURI, cs.TokenURI)
}

func TestFromSession(t *testing.T) {
	valid := &CredentialSet{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenURI:     DefaultTokenURI,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       ModifyScopes,
	}

	tests := []struct {
		name    string
		creds   *CredentialSet
		wantErr bool
	}{
		{name: "valid", creds: valid},
		{name: "nil credentials", creds: nil, wantErr: true},
		{
			name:    "missing refresh token",
			creds:   &CredentialSet{TokenURI: DefaultTokenURI, ClientID: "client-id"},
			wantErr: true,
		},
		{
			name:    "missing token endpoint",
			creds:   &CredentialSet{RefreshToken: "refresh", ClientID: "client-id"},
			wantErr: true,
		},
		{
			name:    "missing client id",
			creds:   &CredentialSet{RefreshToken: "refresh", TokenURI: DefaultTokenURI},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromSession(tt.creds)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrSessionInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.creds, got)
		})
	}
}
