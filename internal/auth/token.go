package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
)

const tokenFilePermMode = 0o600

// LoadToken loads an OAuth token from the specified file path
func LoadToken(tokenPath string) (*oauth2.Token, error) {
	b, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read token file: %w", err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, fmt.Errorf("unable to decode token: %w", err)
	}
	return tok, nil
}

// SaveToken writes an OAuth token to tokenPath, readable only by the owner.
func SaveToken(tokenPath string, token *oauth2.Token) error {
	b, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("unable to encode token: %w", err)
	}
	if err := os.WriteFile(tokenPath, b, tokenFilePermMode); err != nil {
		return fmt.Errorf("unable to write token file: %w", err)
	}
	return nil
}

// persistingTokenSource writes every newly issued token back to disk so a
// refreshed access token survives the process.
type persistingTokenSource struct {
	mu   sync.Mutex
	src  oauth2.TokenSource
	path string
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		if err := SaveToken(s.path, tok); err != nil {
			slog.Warn("failed to persist refreshed token", "path", s.path, "error", err)
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

// oauthClient returns a client for the user behind config, using the cached
// token at cfg.TokenPath or running the browser flow when there is none.
func oauthClient(ctx context.Context, config *oauth2.Config, cfg Config) (*http.Client, error) {
	tok, err := LoadToken(cfg.TokenPath)
	if err != nil {
		slog.Info("no cached token, starting browser authorization", "reason", err)

		tok, err = TokenFromWeb(ctx, config, cfg.CallbackPort)
		if err != nil {
			return nil, fmt.Errorf("unable to get token from web: %w", err)
		}
		if err := SaveToken(cfg.TokenPath, tok); err != nil {
			return nil, fmt.Errorf("unable to save token: %w", err)
		}
	}

	src := &persistingTokenSource{
		src:  config.TokenSource(ctx, tok),
		path: cfg.TokenPath,
		last: tok.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}
