// Package session implements the client side of the OAuth2 Resource Owner
// Password Credentials flow: sign-in and refresh against the token endpoint,
// token persistence through the credential store, and the cached user
// profile. Automatic renewal lives in the refresh package; this client only
// performs single explicit attempts.
package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/oauthkit/go-session-client/credentials"
	apperrors "github.com/oauthkit/go-session-client/internal/errors"
	"github.com/oauthkit/go-session-client/internal/utils"
	"github.com/oauthkit/go-session-client/oauth2"
	"github.com/oauthkit/go-session-client/token"
)

// Config holds the collaborator endpoints and client identity.
type Config struct {
	// ClientID identifies this application to the token endpoint.
	ClientID string

	// Scope is the space-separated scope list requested on sign-in.
	Scope string

	// TokenURL is the token endpoint for both grant types.
	TokenURL string

	// UserInfoURL is the user-info endpoint. Optional; when empty the
	// profile is built from token claims alone.
	UserInfoURL string
}

// Client issues unauthenticated requests to the token endpoint and owns all
// writes to the credential store. Readers of the store (expiry checks, the
// request gateway) never write.
type Client struct {
	cfg        Config
	store      credentials.Store
	httpClient *http.Client
	log        zerolog.Logger
	nowFunc    func() time.Time

	lock    sync.RWMutex
	profile *UserProfile
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all endpoint calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(nowFunc func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = nowFunc
	}
}

// New initializes a Client with its required dependencies.
func New(store credentials.Store, cfg Config, options ...Option) (*Client, error) {
	if store == nil {
		return nil, errors.New("[session.New] credential store is required")
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("[session.New] ClientID is required")
	}
	if strings.TrimSpace(cfg.TokenURL) == "" {
		return nil, errors.New("[session.New] TokenURL is required")
	}

	client := &Client{
		cfg:        cfg,
		store:      store,
		httpClient: http.DefaultClient,
		log:        zerolog.Nop(),
		nowFunc:    time.Now,
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// SignIn performs the password grant. On success both tokens are persisted,
// the user-info endpoint is consulted, and the resulting profile is cached
// and returned. On any failure nothing in the store changes.
func (c *Client) SignIn(ctx context.Context, username, password string) (*UserProfile, error) {
	attemptID := uuid.New().String()
	c.log.Debug().Str("attempt_id", attemptID).Str("username", username).Msg("signing in")

	tokenResp, status, err := c.requestToken(ctx, oauth2.Params{
		oauth2.FieldClientID:  c.cfg.ClientID,
		oauth2.FieldGrantType: string(oauth2.PasswordGrant),
		oauth2.FieldUsername:  username,
		oauth2.FieldPassword:  password,
		oauth2.FieldScope:     c.cfg.Scope,
	})
	if err != nil {
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidCredentials, "[Client.SignIn] %s", err)
		}
		return nil, errors.Wrap(err, "[Client.SignIn]")
	}

	accessToken := utils.Value(tokenResp.AccessToken)
	claims, err := token.Decode(accessToken)
	if err != nil {
		// A token we cannot decode cannot drive expiry bookkeeping;
		// treat it like any other malformed success body.
		return nil, errors.Wrap(err, "[Client.SignIn] issued access token")
	}

	if err := c.persistTokens(tokenResp); err != nil {
		return nil, errors.Wrap(err, "[Client.SignIn]")
	}

	profile := profileFromClaims(claims)
	if info, err := c.userInfo(ctx, accessToken); err != nil {
		c.log.Warn().Err(err).Str("attempt_id", attemptID).Msg("user-info fetch failed, profile built from token claims")
	} else {
		profile.merge(info)
	}
	c.setProfile(profile)

	c.log.Info().Str("attempt_id", attemptID).Str("sub", profile.Sub).Msg("signed in")
	return profile, nil
}

// Refresh performs the refresh token grant with the stored refresh token.
// Success overwrites the stored token pair; failure leaves it untouched and
// surfaces the error to the caller, which decides whether to halt.
func (c *Client) Refresh(ctx context.Context) error {
	refreshToken, err := c.store.Get(token.RefreshTokenKey)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Wrapf(apperrors.ErrNoRefreshToken, "[Client.Refresh]")
		}
		return errors.Wrap(err, "[Client.Refresh] read refresh token")
	}

	attemptID := uuid.New().String()
	c.log.Debug().Str("attempt_id", attemptID).Msg("refreshing tokens")

	tokenResp, _, err := c.requestToken(ctx, oauth2.Params{
		oauth2.FieldClientID:     c.cfg.ClientID,
		oauth2.FieldGrantType:    string(oauth2.RefreshTokenGrant),
		oauth2.FieldRefreshToken: refreshToken,
	})
	if err != nil {
		return errors.Wrap(err, "[Client.Refresh]")
	}

	// A schedule handle cancelled while this call was in flight must not
	// write to the store; the result is discarded.
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "[Client.Refresh] cancelled before persisting")
	}

	if err := c.persistTokens(tokenResp); err != nil {
		return errors.Wrap(err, "[Client.Refresh]")
	}

	c.log.Info().Str("attempt_id", attemptID).Msg("tokens refreshed")
	return nil
}

// SignOut removes the stored token pair and clears the cached profile. The
// password grant defines no revocation endpoint, so no server call is made.
func (c *Client) SignOut() error {
	if err := c.store.Remove(token.AccessTokenKey); err != nil {
		return errors.Wrap(err, "[Client.SignOut] remove access token")
	}
	if err := c.store.Remove(token.RefreshTokenKey); err != nil {
		return errors.Wrap(err, "[Client.SignOut] remove refresh token")
	}

	c.lock.Lock()
	c.profile = nil
	c.lock.Unlock()

	c.log.Info().Msg("signed out")
	return nil
}

// FetchUserInfo refreshes the cached profile from the user-info endpoint.
// With no valid access token present it logs and returns nothing: this call
// is telemetry-grade, not a hard dependency of the session.
func (c *Client) FetchUserInfo(ctx context.Context) (*UserProfile, error) {
	accessToken, err := c.store.Get(token.AccessTokenKey)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, errors.Wrap(err, "[Client.FetchUserInfo] read access token")
	}
	if token.IsExpired(accessToken, c.nowFunc()) {
		c.log.Debug().Msg("user-info skipped, no valid access token")
		return nil, nil
	}

	info, err := c.userInfo(ctx, accessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.FetchUserInfo]")
	}

	claims, err := token.Decode(accessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.FetchUserInfo]")
	}

	profile := profileFromClaims(claims)
	profile.merge(info)
	c.setProfile(profile)
	return profile, nil
}

// Profile returns the cached user profile, or nil when signed out.
func (c *Client) Profile() *UserProfile {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.profile
}

func (c *Client) setProfile(profile *UserProfile) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.profile = profile
}

// persistTokens writes the new pair. A response without a refresh token
// keeps the previously stored one (providers that do not rotate omit it).
func (c *Client) persistTokens(tokenResp *oauth2.TokenResponse) error {
	if err := c.store.Set(token.AccessTokenKey, utils.Value(tokenResp.AccessToken)); err != nil {
		return errors.Wrap(err, "persist access token")
	}
	if refreshToken := utils.Value(tokenResp.RefreshToken); refreshToken != "" {
		if err := c.store.Set(token.RefreshTokenKey, refreshToken); err != nil {
			return errors.Wrap(err, "persist refresh token")
		}
	}
	return nil
}

// requestToken POSTs a form-encoded grant request and parses the response.
// The returned status is non-zero whenever the endpoint answered.
func (c *Client) requestToken(ctx context.Context, params oauth2.Params) (*oauth2.TokenResponse, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, params.Reader())
	if err != nil {
		return nil, 0, errors.Wrap(err, "[Client.requestToken] build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, apperrors.Wrapf(apperrors.ErrNetwork, "[Client.requestToken] POST %s: %s", c.cfg.TokenURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode, apperrors.Wrapf(apperrors.ErrAuthServer,
			"[Client.requestToken] token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tokenResp oauth2.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, resp.StatusCode, apperrors.Wrapf(apperrors.ErrAuthServer, "[Client.requestToken] decode response: %s", err)
	}
	if utils.Value(tokenResp.AccessToken) == "" {
		return nil, resp.StatusCode, apperrors.Wrapf(apperrors.ErrAuthServer, "[Client.requestToken] response missing access_token")
	}
	return &tokenResp, resp.StatusCode, nil
}

// userInfo GETs the user-info endpoint with the given bearer token.
func (c *Client) userInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	if c.cfg.UserInfoURL == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.userInfo] build request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrNetwork, "[Client.userInfo] GET %s: %s", c.cfg.UserInfoURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperrors.Wrapf(apperrors.ErrAuthServer, "[Client.userInfo] user-info endpoint returned %d", resp.StatusCode)
	}

	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrAuthServer, "[Client.userInfo] decode response: %s", err)
	}
	return info, nil
}
