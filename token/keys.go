package token

// Names of the two persisted credential store entries. Expiry is never
// persisted separately; it is recomputed from the access token's claims.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)
