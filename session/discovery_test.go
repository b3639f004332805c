package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/go-session-client/session"
)

func TestDiscoverResolvesEndpoints(t *testing.T) {
	var issuer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/.well-known/openid-configuration", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/oauth/authorize",
			"token_endpoint":         issuer + "/oauth/token",
			"userinfo_endpoint":      issuer + "/userinfo",
			"jwks_uri":               issuer + "/.well-known/jwks.json",
		}))
	}))
	defer server.Close()
	issuer = server.URL

	endpoints, err := session.Discover(context.Background(), issuer)
	require.NoError(t, err)
	require.Equal(t, issuer+"/oauth/token", endpoints.TokenURL)
	require.Equal(t, issuer+"/userinfo", endpoints.UserInfoURL)

	cfg := endpoints.Config("web-app", "openid profile")
	require.Equal(t, "web-app", cfg.ClientID)
	require.Equal(t, issuer+"/oauth/token", cfg.TokenURL)
	require.Equal(t, issuer+"/userinfo", cfg.UserInfoURL)
}

func TestDiscoverUnreachableIssuer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := session.Discover(context.Background(), server.URL)
	require.Error(t, err)
}
