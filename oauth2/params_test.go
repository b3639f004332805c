package oauth2_test

import (
	"io"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/go-session-client/oauth2"
)

func TestParamsEncode(t *testing.T) {
	params := oauth2.Params{
		oauth2.FieldClientID:  "web-app",
		oauth2.FieldGrantType: string(oauth2.PasswordGrant),
		oauth2.FieldUsername:  "admin@x.com",
		oauth2.FieldPassword:  "p&ss word",
		oauth2.FieldScope:     "openid profile",
	}

	decoded, err := url.ParseQuery(params.Encode())
	require.NoError(t, err)
	require.Equal(t, "web-app", decoded.Get("client_id"))
	require.Equal(t, "password", decoded.Get("grant_type"))
	require.Equal(t, "admin@x.com", decoded.Get("username"))
	require.Equal(t, "p&ss word", decoded.Get("password"))
	require.Equal(t, "openid profile", decoded.Get("scope"))
}

func TestParamsEncodeDeterministic(t *testing.T) {
	params := oauth2.Params{"b": "2", "a": "1", "c": "3"}
	require.Equal(t, "a=1&b=2&c=3", params.Encode())
}

func TestParamsReader(t *testing.T) {
	params := oauth2.Params{"grant_type": "refresh_token"}

	body, err := io.ReadAll(params.Reader())
	require.NoError(t, err)
	require.Equal(t, "grant_type=refresh_token", string(body))
}
