package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/oauthkit/go-session-client/internal/errors"
	"github.com/oauthkit/go-session-client/token"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestDecodeRoundTrip(t *testing.T) {
	now := time.Now()
	raw := mintToken(t, jwt.MapClaims{
		"exp":        float64(now.Add(15 * time.Minute).Unix()),
		"iat":        float64(now.Unix()),
		"sub":        "user-1",
		"given_name": "John",
		"role":       []any{"admin", "user"},
		"tenant":     "tenant-1",
	})

	claims, err := token.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, now.Add(15*time.Minute).Unix(), claims.Exp)
	require.Equal(t, now.Unix(), claims.Iat)
	require.Equal(t, "user-1", claims.Sub)
	require.Equal(t, "John", claims.GivenName)
	require.Equal(t, []string{"admin", "user"}, claims.Roles)
	require.Equal(t, "tenant-1", claims.Extra["tenant"])
}

func TestDecodeSingleRoleString(t *testing.T) {
	raw := mintToken(t, jwt.MapClaims{
		"exp":  float64(time.Now().Add(time.Hour).Unix()),
		"role": "admin",
	})

	claims, err := token.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"admin"}, claims.Roles)
	require.True(t, claims.HasRole("admin"))
	require.False(t, claims.HasRole("user"))
}

func TestDecodeMalformed(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":           "",
		"not a token":     "garbage",
		"two parts":       "aaaa.bbbb",
		"invalid payload": "aaaa.!!!!.cccc",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := token.Decode(raw)
			require.ErrorIs(t, err, apperrors.ErrMalformedToken)
		})
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	future := mintToken(t, jwt.MapClaims{"exp": float64(now.Add(time.Hour).Unix())})
	past := mintToken(t, jwt.MapClaims{"exp": float64(now.Add(-time.Hour).Unix())})

	require.False(t, token.IsExpired(future, now))
	require.True(t, token.IsExpired(past, now))
}

func TestIsExpiredAbsentOrMalformed(t *testing.T) {
	now := time.Now()

	require.True(t, token.IsExpired("", now))
	require.True(t, token.IsExpired("garbage", now))
}

func TestIsExpiredNoExpClaim(t *testing.T) {
	raw := mintToken(t, jwt.MapClaims{"sub": "user-1"})
	require.True(t, token.IsExpired(raw, time.Now()))
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Unix()
	raw := mintToken(t, jwt.MapClaims{"exp": float64(exp)})

	claims, err := token.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, time.Unix(exp, 0), claims.ExpiresAt())
}
