// Package publisher creates LinkedIn posts through the UGC REST API.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.linkedin.com"
	ugcPostsPath   = "/v2/ugcPosts"
	// LinkedIn rejects commentary longer than this.
	maxCommentary = 3000
)

// Config holds the LinkedIn member credentials.
type Config struct {
	AccessToken string
	// AuthorURN is the posting member, e.g. "urn:li:person:abc123".
	AuthorURN string
	BaseURL   string
}

type shareCommentary struct {
	Text string `json:"text"`
}

type shareContent struct {
	ShareCommentary    shareCommentary `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
}

type ugcPayload struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]shareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type ugcResp struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Publisher posts text to the member's feed.
type Publisher struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New validates cfg. No network call happens until Publish.
func New(cfg Config, client *http.Client, logger *slog.Logger) (*Publisher, error) {
	if cfg.AccessToken == "" || cfg.AuthorURN == "" {
		return nil, errors.New("linkedin config must include access_token and author_urn")
	}
	if !strings.HasPrefix(cfg.AuthorURN, "urn:li:") {
		return nil, fmt.Errorf("linkedin author %q is not a urn", cfg.AuthorURN)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{cfg: cfg, client: client, logger: logger}, nil
}

// Publish creates a public post and returns its URN.
func (p *Publisher) Publish(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("post content is empty")
	}
	if n := len([]rune(text)); n > maxCommentary {
		return "", fmt.Errorf("post content has %d characters, limit is %d", n, maxCommentary)
	}

	payload := ugcPayload{
		Author:         p.cfg.AuthorURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]shareContent{
			"com.linkedin.ugc.ShareContent": {
				ShareCommentary:    shareCommentary{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+ugcPostsPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var data ugcResp
	if len(bytes.TrimSpace(raw)) > 0 {
		_ = json.Unmarshal(raw, &data)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := data.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", fmt.Errorf("failed to create linkedin post: %d %s", resp.StatusCode, msg)
	}

	id := data.ID
	if id == "" {
		id = resp.Header.Get("X-Restli-Id")
	}
	if id == "" {
		return "", errors.New("linkedin response carried no post id")
	}
	p.logger.Info("publisher: post created", "id", id)
	return id, nil
}

// PostURL is the public feed link for a post URN.
func PostURL(id string) string {
	return "https://www.linkedin.com/feed/update/" + id + "/"
}
