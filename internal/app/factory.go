// Package app wires configuration into ready-to-use clients for the
// command-line tools.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/notexe/reminders-cli/internal/auth"
	"github.com/notexe/reminders-cli/internal/config"
	"github.com/notexe/reminders-cli/internal/remote"
	"github.com/notexe/reminders-cli/internal/timeparse"
	"github.com/notexe/reminders-cli/internal/wire"
)

// AppKeys returns the OAuth client credentials: auth.client_id and
// auth.client_secret when both are set, the app keys file otherwise.
func AppKeys(cfg *config.Config) (auth.AppKeys, error) {
	if cfg.Auth.ClientID != "" && cfg.Auth.ClientSecret != "" {
		return auth.AppKeys{ClientID: cfg.Auth.ClientID, ClientSecret: cfg.Auth.ClientSecret}, nil
	}
	return auth.LoadAppKeys(cfg.Auth.AppKeysFile)
}

// NewCredentialManager builds the manager that loads, refreshes and stores
// the user's token. Consent instructions are written to prompt.
func NewCredentialManager(cfg *config.Config, logger *zap.Logger, prompt io.Writer) (*auth.Manager, error) {
	keys, err := AppKeys(cfg)
	if err != nil {
		return nil, err
	}

	oauthCfg := auth.NewOAuthConfig(keys, auth.Endpoint{
		AuthURL:  cfg.Auth.AuthURL,
		TokenURL: cfg.Auth.TokenURL,
	})
	authorizer := &auth.LoopbackAuthorizer{
		Port:        cfg.Auth.RedirectPort,
		OpenBrowser: cfg.Auth.OpenBrowser,
		Out:         prompt,
		Logger:      logger.Named("auth"),
	}

	return auth.NewManager(
		oauthCfg,
		auth.NewFileTokenStore(cfg.Auth.TokenFile),
		authorizer,
		auth.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}),
		auth.WithLogger(logger.Named("auth")),
	), nil
}

// NewClient acquires credentials and returns the remote reminders client.
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger, prompt io.Writer) (*remote.Client, error) {
	offset, err := cfg.CursorOffset()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	mgr, err := NewCredentialManager(cfg, logger, prompt)
	if err != nil {
		return nil, err
	}

	httpClient, err := mgr.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire credentials: %w", err)
	}

	codec := wire.NewCodec()
	codec.Location = loc

	return remote.New(httpClient,
		remote.WithBaseURL(cfg.API.BaseURL),
		remote.WithCodec(codec),
		remote.WithCursorOffset(offset),
		remote.WithLogger(logger.Named("remote")),
	), nil
}

// NewTimeParser reads TIME arguments in the configured zone.
func NewTimeParser(cfg *config.Config) (*timeparse.Parser, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return timeparse.New(loc), nil
}
