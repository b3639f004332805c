package session

import (
	"github.com/oauthkit/go-session-client/internal/utils"
	"github.com/oauthkit/go-session-client/token"
)

// UserProfile is the in-memory projection of the signed-in user: the access
// token's claims merged with the user-info endpoint's payload. It is rebuilt
// on each successful sign-in and cleared on sign-out; it is never persisted.
type UserProfile struct {
	Sub       string
	GivenName string
	Roles     []string

	// Claims carries every claim and user-info field not lifted into a
	// typed field above.
	Claims map[string]any
}

// HasRole reports whether the profile asserts the given role.
func (p *UserProfile) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func profileFromClaims(claims *token.Claims) *UserProfile {
	profile := &UserProfile{
		Sub:       claims.Sub,
		GivenName: claims.GivenName,
		Roles:     claims.Roles,
		Claims:    make(map[string]any, len(claims.Extra)),
	}
	for name, value := range claims.Extra {
		profile.Claims[name] = value
	}
	return profile
}

// merge overlays the user-info payload. The endpoint is authoritative for
// identity fields, so its values win over the token claims.
func (p *UserProfile) merge(info map[string]any) {
	for name, value := range info {
		switch name {
		case "sub":
			if s, ok := value.(string); ok && s != "" {
				p.Sub = s
			}
		case "given_name":
			if s, ok := value.(string); ok && s != "" {
				p.GivenName = s
			}
		case "role", "roles":
			switch v := value.(type) {
			case string:
				p.Roles = []string{v}
			case []any:
				p.Roles = utils.ToStringSlice(v)
			}
		default:
			p.Claims[name] = value
		}
	}
}
