package session

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	xoauth2 "golang.org/x/oauth2"

	apperrors "github.com/oauthkit/go-session-client/internal/errors"
)

// Endpoints are the provider endpoints resolved from OIDC discovery.
type Endpoints struct {
	xoauth2.Endpoint

	// UserInfoURL is the provider's userinfo_endpoint, empty when the
	// discovery document omits it.
	UserInfoURL string
}

// Discover resolves the provider endpoints from an OIDC issuer URL, so
// deployments only configure the issuer instead of individual endpoints.
func Discover(ctx context.Context, issuer string) (Endpoints, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return Endpoints{}, apperrors.Wrapf(apperrors.ErrNetwork, "[session.Discover] issuer %s: %s", issuer, err)
	}

	var metadata struct {
		UserInfoEndpoint string `json:"userinfo_endpoint"`
	}
	if err := provider.Claims(&metadata); err != nil {
		return Endpoints{}, errors.Wrap(err, "[session.Discover] provider metadata")
	}

	return Endpoints{
		Endpoint:    provider.Endpoint(),
		UserInfoURL: metadata.UserInfoEndpoint,
	}, nil
}

// Config builds a session Config from the discovered endpoints.
func (e Endpoints) Config(clientID, scope string) Config {
	return Config{
		ClientID:    clientID,
		Scope:       scope,
		TokenURL:    e.TokenURL,
		UserInfoURL: e.UserInfoURL,
	}
}
