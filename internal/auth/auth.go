// Package auth obtains the OAuth2 bearer credential used to talk to the
// reminders service and keeps it fresh across runs.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ScopeReminders grants read/write access to the user's reminders.
const ScopeReminders = "https://www.googleapis.com/auth/reminders"

// Default Google OAuth2 endpoints.
const (
	DefaultAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
)

// ErrAuthFailure is wrapped by every error caused by missing application
// keys, a failed consent flow, or a failed token refresh.
var ErrAuthFailure = errors.New("authentication failed")

// AppKeys are the OAuth2 client credentials provisioned for this tool.
type AppKeys struct {
	ClientID     string `json:"APP_CLIENT_ID"`
	ClientSecret string `json:"APP_CLIENT_SECRET"`
}

// LoadAppKeys reads the application keys file.
func LoadAppKeys(path string) (AppKeys, error) {
	var keys AppKeys

	data, err := os.ReadFile(path)
	if err != nil {
		return keys, fmt.Errorf("%w: failed to read app keys: %w", ErrAuthFailure, err)
	}
	if err := json.Unmarshal(data, &keys); err != nil {
		return keys, fmt.Errorf("%w: failed to parse app keys %s: %w", ErrAuthFailure, path, err)
	}
	if keys.ClientID == "" || keys.ClientSecret == "" {
		return keys, fmt.Errorf("%w: app keys file %s must set APP_CLIENT_ID and APP_CLIENT_SECRET", ErrAuthFailure, path)
	}
	return keys, nil
}

// Endpoint groups the OAuth2 URLs. Zero fields fall back to Google's.
type Endpoint struct {
	AuthURL  string
	TokenURL string
}

// NewOAuthConfig builds the OAuth2 client configuration for the reminders scope.
func NewOAuthConfig(keys AppKeys, ep Endpoint) *oauth2.Config {
	if ep.AuthURL == "" {
		ep.AuthURL = DefaultAuthURL
	}
	if ep.TokenURL == "" {
		ep.TokenURL = DefaultTokenURL
	}

	return &oauth2.Config{
		ClientID:     keys.ClientID,
		ClientSecret: keys.ClientSecret,
		Scopes:       []string{ScopeReminders},
		Endpoint: oauth2.Endpoint{
			AuthURL:   ep.AuthURL,
			TokenURL:  ep.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Authorizer runs the interactive consent step and returns a fresh token.
type Authorizer interface {
	Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

// Manager hands out HTTP clients that carry a valid bearer credential.
type Manager struct {
	config     *oauth2.Config
	store      TokenStore
	authorizer Authorizer
	base       *http.Client
	logger     *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient sets the client used for token requests and as the base of
// the authenticated client. Its timeout bounds every request.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		m.base = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a credential manager.
func NewManager(cfg *oauth2.Config, store TokenStore, authorizer Authorizer, opts ...Option) *Manager {
	m := &Manager{
		config:     cfg,
		store:      store,
		authorizer: authorizer,
		base:       http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns an HTTP client that attaches the bearer credential to every
// request and refreshes it when it expires. The first call on a machine may
// block on the user completing the consent step.
func (m *Manager) Acquire(ctx context.Context) (*http.Client, error) {
	tok, err := m.store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load stored token: %w", ErrAuthFailure, err)
	}

	// Refreshes happen long after Acquire returns, so they must not inherit
	// the caller's cancellation.
	refreshCtx := context.WithValue(context.Background(), oauth2.HTTPClient, m.base)

	src := m.tokenSource(refreshCtx, tok)
	if src != nil {
		if _, err := src.Token(); err != nil {
			m.logger.Info("stored token unusable, starting authorization", zap.Error(err))
			src = nil
		}
	} else {
		m.logger.Debug("no usable stored token")
	}

	if src == nil {
		flowCtx := context.WithValue(ctx, oauth2.HTTPClient, m.base)
		tok, err = m.authorizer.Authorize(flowCtx, m.config)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuthFailure, err)
		}
		if err := m.store.Save(tok); err != nil {
			return nil, fmt.Errorf("%w: failed to save token: %w", ErrAuthFailure, err)
		}
		m.logger.Info("authorization complete, token saved")
		src = m.tokenSource(refreshCtx, tok)
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: src,
			Base:   m.base.Transport,
		},
		Timeout: m.base.Timeout,
	}, nil
}

// tokenSource returns nil when tok cannot produce an access token without
// user interaction.
func (m *Manager) tokenSource(ctx context.Context, tok *oauth2.Token) *persistingTokenSource {
	if tok == nil || (!tok.Valid() && tok.RefreshToken == "") {
		return nil
	}
	return &persistingTokenSource{
		base:    m.config.TokenSource(ctx, tok),
		store:   m.store,
		current: tok,
		logger:  m.logger,
	}
}
