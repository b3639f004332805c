package oauth2

// TokenResponse represents the response from an OAuth2 token request.
// This is the standard OAuth2 token endpoint response format as defined in RFC 6749.
// Received from the /token endpoint for both supported grant types.
type TokenResponse struct {
	// AccessToken is the JWT token used to access protected resources.
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Lifespan: Short-lived (typically 15 minutes - 1 hour)
	// A success body without this field is treated as a server error.
	AccessToken *string `json:"access_token,omitempty"`

	// IdToken is the OpenID Connect ID token containing user identity information.
	// Example: "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."
	// Only present: When "openid" scope was requested
	IdToken *string `json:"id_token,omitempty"`

	// TokenType indicates how to use the access token (expected "bearer").
	// Standard: OAuth2 spec requires this field
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 900 (for 15 minutes)
	// Note: This is a hint - the authoritative expiration is the JWT's "exp"
	// claim, which is what refresh scheduling is computed from.
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Example: "tGzv3JOkF0XG5Qx2TlKWIA"
	// Usage: Send to /token endpoint with grant_type=refresh_token
	// Note: Providers that do not rotate refresh tokens omit this field on
	// the refresh grant; the previously stored refresh token stays valid.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// Scope indicates the access token's granted permissions.
	// Example: "openid profile email api.read"
	// Note: May be less than requested if some scopes were denied
	Scope string `json:"scope,omitempty"`
}
