// Package googleauth builds OAuth2 HTTP clients for the Google APIs.
package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes used by the assistant.
const (
	ScopeGmailCompose = "https://www.googleapis.com/auth/gmail.compose"
	ScopeCalendar     = "https://www.googleapis.com/auth/calendar"
)

// Client returns an authorised client from a desktop credentials file and a
// previously obtained token file. Refreshed tokens are written back to the
// token file.
func Client(ctx context.Context, credentialsPath, tokenPath string, scopes ...string) (*http.Client, error) {
	if credentialsPath == "" || tokenPath == "" {
		return nil, errors.New("googleauth: credentials and token paths are required")
	}
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("googleauth: read credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("googleauth: parse credentials: %w", err)
	}
	tok, err := readToken(tokenPath)
	if err != nil {
		return nil, err
	}
	src := &persistingSource{
		base: cfg.TokenSource(ctx, tok),
		path:   tokenPath,
		last:   tok.AccessToken,
		logger: slog.Default(),
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("googleauth: token file %s missing; authorise once and save the token: %w", path, err)
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("googleauth: decode token: %w", err)
	}
	return tok, nil
}

// persistingSource saves the token whenever the access token changes.
type persistingSource struct {
	base   oauth2.TokenSource
	path   string
	last   string
	logger *slog.Logger
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		if err := saveToken(p.path, tok); err != nil {
			// 新 token 仍然可用，只是下次启动需要重新刷新。
			p.logger.Warn("googleauth: save refreshed token failed", "path", p.path, "error", err)
		} else {
			p.last = tok.AccessToken
		}
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("googleauth: encode token: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("googleauth: write token: %w", err)
	}
	return nil
}
