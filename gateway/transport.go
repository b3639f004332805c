// Package gateway decorates outgoing requests to protected resources with
// the current bearer token. The store is injected rather than read from
// ambient globals, so the same process can hold independent sessions.
package gateway

import (
	"net/http"

	"github.com/oauthkit/go-session-client/credentials"
	"github.com/oauthkit/go-session-client/token"
)

var _ http.RoundTripper = (*Transport)(nil)

// Transport is an http.RoundTripper that reads the current access token from
// the credential store and attaches it as a bearer credential. When no token
// is present the request goes out bare; the resource server rejects it, and
// reacting to that rejection belongs to the UI layer, not here.
type Transport struct {
	store credentials.Store
	base  http.RoundTripper
}

// Option defines a function type to modify the Transport instance.
type Option func(*Transport)

// WithBase sets the underlying round tripper (default http.DefaultTransport).
func WithBase(base http.RoundTripper) Option {
	return func(t *Transport) {
		t.base = base
	}
}

// NewTransport creates a Transport reading tokens from the given store.
func NewTransport(store credentials.Store, options ...Option) *Transport {
	t := &Transport{
		store: store,
		base:  http.DefaultTransport,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// RoundTrip attaches the bearer header and delegates. The incoming request
// is cloned first; round trippers must not mutate their argument.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	accessToken, err := t.store.Get(token.AccessTokenKey)
	if err == nil && accessToken != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return t.base.RoundTrip(req)
}

// Client returns an http.Client whose requests carry the current bearer token.
func Client(store credentials.Store) *http.Client {
	return &http.Client{Transport: NewTransport(store)}
}
