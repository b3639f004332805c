// Package config loads the session manager's settings from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config holds everything the CLI needs to run a session. Either the issuer
// (for OIDC discovery) or the explicit token URL must be set.
type Config struct {
	Issuer      string `env:"OAUTH_ISSUER"`
	TokenURL    string `env:"OAUTH_TOKEN_URL"`
	UserInfoURL string `env:"OAUTH_USERINFO_URL"`

	ClientID string `env:"OAUTH_CLIENT_ID"`
	Scope    string `env:"OAUTH_SCOPE" envDefault:"openid profile"`

	Username string `env:"OAUTH_USERNAME"`
	Password string `env:"OAUTH_PASSWORD"`

	RefreshOffset time.Duration `env:"REFRESH_OFFSET" envDefault:"60s"`

	// CredentialsFile enables the encrypted file-backed store; empty keeps
	// credentials in memory for the lifetime of the process.
	CredentialsFile       string `env:"CREDENTIALS_FILE"`
	CredentialsPassphrase string `env:"CREDENTIALS_PASSPHRASE"`

	AppName  string `env:"APP_NAME" envDefault:"Session Manager"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] parse env")
	}
	if cfg.Issuer == "" && cfg.TokenURL == "" {
		return Config{}, errors.New("[config.Load] OAUTH_ISSUER or OAUTH_TOKEN_URL must be set")
	}
	if cfg.ClientID == "" {
		return Config{}, errors.New("[config.Load] OAUTH_CLIENT_ID must be set")
	}
	return cfg, nil
}
