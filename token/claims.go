// Package token decodes bearer token payloads for expiry bookkeeping and
// claim projection. No signature verification happens here: the server is
// the trusted verifier, and the client only needs to know when a token
// lapses and what it asserts.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/oauthkit/go-session-client/internal/errors"
	"github.com/oauthkit/go-session-client/internal/utils"
)

// Claims is the decoded payload of an access token. Known fields are typed;
// everything else lands in Extra so unknown claims survive round trips
// through the profile projection.
type Claims struct {
	// Exp is the absolute expiry in unix seconds.
	Exp int64

	// Iat is the issued-at time in unix seconds, zero when absent.
	Iat int64

	// Sub is the subject (user ID) the token was issued for.
	Sub string

	// GivenName is the user's first name, when the server includes it.
	GivenName string

	// Roles holds the "role"/"roles" claim. Servers emit either a single
	// string or a list; both normalize to a slice here.
	Roles []string

	// Extra holds every claim not lifted into a typed field.
	Extra map[string]any
}

// Decode extracts the claims of a bearer token without verifying its
// signature. It fails with errors.ErrMalformedToken when the token is not a
// well-formed three-part JWT or its payload is not valid encoded JSON.
func Decode(raw string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "token.Decode: %s", err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "token.Decode: unexpected claims type")
	}

	claims := &Claims{
		Extra: make(map[string]any),
	}

	for name, value := range mapClaims {
		switch name {
		case "exp":
			if exp, ok := value.(float64); ok {
				claims.Exp = int64(exp)
			}
		case "iat":
			if iat, ok := value.(float64); ok {
				claims.Iat = int64(iat)
			}
		case "sub":
			claims.Sub, _ = value.(string)
		case "given_name":
			claims.GivenName, _ = value.(string)
		case "role", "roles":
			claims.Roles = normalizeRoles(value)
		default:
			claims.Extra[name] = value
		}
	}

	return claims, nil
}

// ExpiresAt returns the expiry as a time.Time. A zero Exp claim yields the
// unix epoch, which every expiry comparison treats as long past.
func (c *Claims) ExpiresAt() time.Time {
	return time.Unix(c.Exp, 0)
}

// HasRole reports whether the claims assert the given role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsExpired reports whether raw has lapsed at the given instant. An empty or
// malformed token counts as expired: either way there is no valid session.
func IsExpired(raw string, now time.Time) bool {
	if raw == "" {
		return true
	}
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	return !claims.ExpiresAt().After(now)
}

func normalizeRoles(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []any:
		return utils.ToStringSlice(v)
	}
	return nil
}
