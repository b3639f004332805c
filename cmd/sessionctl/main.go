package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oauthkit/go-session-client/credentials"
	"github.com/oauthkit/go-session-client/credentials/filestore"
	"github.com/oauthkit/go-session-client/internal/config"
	"github.com/oauthkit/go-session-client/refresh"
	"github.com/oauthkit/go-session-client/session"
	"github.com/oauthkit/go-session-client/token"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("sessionctl failed")
	}
	log.Info().Msg("session closed")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)
	displayAppname(cfg.AppName)

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	sessionCfg, err := resolveEndpoints(ctx, cfg)
	if err != nil {
		return err
	}

	client, err := session.New(store, sessionCfg, session.WithLogger(log.Logger))
	if err != nil {
		return err
	}

	scheduler, err := refresh.New(client, store,
		refresh.WithOffset(cfg.RefreshOffset),
		refresh.WithLogger(log.Logger),
		refresh.WithHaltFunc(func(err error) {
			log.Warn().Err(err).Msg("automatic refresh halted, sign in again")
		}),
	)
	if err != nil {
		return err
	}
	defer scheduler.Cancel()

	// A prior session may still hold a valid token (file-backed store).
	if !scheduler.StartupCheck() {
		if err := signIn(ctx, client, scheduler, store, cfg); err != nil {
			return err
		}
	}

	if profile := client.Profile(); profile != nil {
		log.Info().Str("given_name", profile.GivenName).Strs("roles", profile.Roles).Msg("session active")
	}

	waitForStopSignal()
	return client.SignOut()
}

func signIn(ctx context.Context, client *session.Client, scheduler *refresh.Scheduler, store credentials.Store, cfg config.Config) error {
	if cfg.Username == "" || cfg.Password == "" {
		return errors.New("no stored session: OAUTH_USERNAME and OAUTH_PASSWORD must be set")
	}

	signInCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	profile, err := client.SignIn(signInCtx, cfg.Username, cfg.Password)
	if err != nil {
		return fmt.Errorf("sign-in: %w", err)
	}
	log.Info().Str("sub", profile.Sub).Msg("signed in")

	accessToken, err := store.Get(token.AccessTokenKey)
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}
	return scheduler.Schedule(accessToken)
}

func newStore(cfg config.Config) (credentials.Store, error) {
	if cfg.CredentialsFile == "" {
		return credentials.NewMemoryStore(), nil
	}
	return filestore.New(cfg.CredentialsFile, cfg.CredentialsPassphrase)
}

func resolveEndpoints(ctx context.Context, cfg config.Config) (session.Config, error) {
	if cfg.TokenURL != "" {
		return session.Config{
			ClientID:    cfg.ClientID,
			Scope:       cfg.Scope,
			TokenURL:    cfg.TokenURL,
			UserInfoURL: cfg.UserInfoURL,
		}, nil
	}

	discoverCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	endpoints, err := session.Discover(discoverCtx, cfg.Issuer)
	if err != nil {
		return session.Config{}, err
	}
	return endpoints.Config(cfg.ClientID, cfg.Scope), nil
}

func setupLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(parsed).With().Timestamp().Logger()
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
