package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/go-session-client/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OAUTH_TOKEN_URL", "https://auth.example.com/oauth/token")
	t.Setenv("OAUTH_CLIENT_ID", "web-app")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "openid profile", cfg.Scope)
	require.Equal(t, 60*time.Second, cfg.RefreshOffset)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFullEnvironment(t *testing.T) {
	t.Setenv("OAUTH_ISSUER", "https://auth.example.com")
	t.Setenv("OAUTH_CLIENT_ID", "web-app")
	t.Setenv("OAUTH_SCOPE", "openid email")
	t.Setenv("REFRESH_OFFSET", "90s")
	t.Setenv("CREDENTIALS_FILE", "/tmp/creds.bin")
	t.Setenv("CREDENTIALS_PASSPHRASE", "hunter2")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "https://auth.example.com", cfg.Issuer)
	require.Equal(t, "openid email", cfg.Scope)
	require.Equal(t, 90*time.Second, cfg.RefreshOffset)
	require.Equal(t, "/tmp/creds.bin", cfg.CredentialsFile)
}

func TestLoadRequiresEndpointSource(t *testing.T) {
	t.Setenv("OAUTH_CLIENT_ID", "web-app")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoadRequiresClientID(t *testing.T) {
	t.Setenv("OAUTH_TOKEN_URL", "https://auth.example.com/oauth/token")

	_, err := config.Load()
	require.Error(t, err)
}
