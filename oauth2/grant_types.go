// Package oauth2 holds the client-side wire vocabulary for the token
// endpoint: grant types, request field names, the token response shape, and
// the form encoding of request bodies.
package oauth2

// GrantType represents the OAuth 2.0 grant type sent to the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// PasswordGrant exchanges resource owner credentials for tokens.
	// Used in: Resource Owner Password Credentials Flow (first-party clients)
	// Token request includes: client_id, username, password, scope
	// Returns: access_token, refresh_token
	PasswordGrant GrantType = "password"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Used in: Token refresh flow (get new access token without re-authenticating user)
	// Token request includes: client_id, refresh_token
	// Returns: new access_token, and usually a rotated refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// Token request body field names as defined in RFC 6749.
const (
	FieldClientID     = "client_id"
	FieldGrantType    = "grant_type"
	FieldUsername     = "username"
	FieldPassword     = "password"
	FieldScope        = "scope"
	FieldRefreshToken = "refresh_token"
)
