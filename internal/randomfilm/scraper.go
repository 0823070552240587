// Package randomfilm scrapes a pseudo-random movie title from randomfilm.ru.
// Best effort only: the discovery flow treats every failure here as
// retryable.
package randomfilm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoTitle is returned when the page carries no recognizable title.
var ErrNoTitle = errors.New("no title found")

type Scraper struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		if client != nil {
			s.httpClient = client
		}
	}
}

func New(baseURL string, opts ...Option) (*Scraper, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("randomfilm base url required")
	}
	s := &Scraper{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RandomTitle fetches the page and extracts the first h2 heading. Headings
// come as "Русское название / Original Title"; the part after the slash is
// what the metadata provider understands.
func (s *Scraper) RandomTitle(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("randomfilm returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	heading := doc.Find("h2").First()
	if heading.Length() == 0 {
		return "", ErrNoTitle
	}

	title := strings.TrimSpace(heading.Text())
	if title == "" {
		return "", ErrNoTitle
	}
	if _, after, ok := strings.Cut(title, "/"); ok {
		if t := strings.TrimSpace(after); t != "" {
			return t, nil
		}
	}
	return title, nil
}
