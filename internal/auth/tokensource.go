package auth

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// persistingTokenSource saves every newly minted token to the store. The
// mutex makes refresh and save one critical section, so concurrent callers
// never race two refreshes or interleave two saves.
type persistingTokenSource struct {
	mu      sync.Mutex
	base    oauth2.TokenSource
	store   TokenStore
	current *oauth2.Token
	logger  *zap.Logger
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: token refresh failed: %w", ErrAuthFailure, err)
	}

	if s.current == nil || tok.AccessToken != s.current.AccessToken {
		s.logger.Debug("access token refreshed", zap.Time("expiry", tok.Expiry))
		if err := s.store.Save(tok); err != nil {
			// The token is still good for this process.
			s.logger.Warn("failed to persist refreshed token", zap.Error(err))
		}
		s.current = tok
	}
	return tok, nil
}
