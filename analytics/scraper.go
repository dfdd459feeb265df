package analytics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrNoURL means no usable LinkedIn post URL was found.
	ErrNoURL = errors.New("no linkedin post url found")
	// ErrNoContent means the page had no post text.
	ErrNoContent = errors.New("no post content found")
)

const defaultUserAgent = "Mozilla/5.0 (compatible; personal-content-agent/1.0)"

// postSelectors 按优先级排列，取第一个有文字的。
var postSelectors = []string{
	".feed-shared-update-v2__description-wrapper .break-words",
	".feed-shared-text .break-words",
	".update-components-text",
	".feed-shared-text",
	".attributed-text-segment-list__content",
}

// Scraper fetches a public post page and extracts its text.
type Scraper struct {
	client    *http.Client
	userAgent string
	maxLength int
}

func NewScraper(client *http.Client, userAgent string) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Scraper{client: client, userAgent: userAgent, maxLength: 8000}
}

// Fetch returns the post text at rawURL.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNoURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("received status code %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	text := extractPostText(doc)
	if text == "" {
		return "", ErrNoContent
	}
	if r := []rune(text); len(r) > s.maxLength {
		text = string(r[:s.maxLength]) + "…"
	}
	return text, nil
}

func extractPostText(doc *goquery.Document) string {
	for _, sel := range postSelectors {
		if text := normalizeSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	if og, ok := doc.Find(`meta[property='og:description']`).Attr("content"); ok {
		return normalizeSpace(og)
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
