package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrNotFound reports that the provider has no match for the query. All
// transport and decoding failures wrap it too: the provider's status codes
// are not trustworthy, so from the caller's point of view there is only
// "found" and "not found".
var ErrNotFound = errors.New("movie not found")

// NA substitutes any field the provider left out.
const NA = "N/A"

// Movie is the canonical record built from one positive provider match.
type Movie struct {
	Title     string
	Plot      string
	Type      string
	Rated     string
	Released  string
	Runtime   string
	Genre     string
	Director  string
	Writer    string
	Actors    string
	Country   string
	Awards    string
	BoxOffice string
	Poster    string
	ImdbID    string

	// Positional rating sources: 0 = IMDb, 1 = Rotten Tomatoes,
	// 2 = Metacritic. Absent indices degrade to NA.
	RatingIMDb       string
	RatingRottenTom  string
	RatingMetacritic string
}

// HasPoster reports whether the record carries a usable poster URL.
func (m *Movie) HasPoster() bool {
	return m.Poster != "" && m.Poster != NA
}

type payload struct {
	Response  string `json:"Response"`
	Title     string `json:"Title"`
	Plot      string `json:"Plot"`
	Type      string `json:"Type"`
	Rated     string `json:"Rated"`
	Released  string `json:"Released"`
	Runtime   string `json:"Runtime"`
	Genre     string `json:"Genre"`
	Director  string `json:"Director"`
	Writer    string `json:"Writer"`
	Actors    string `json:"Actors"`
	Country   string `json:"Country"`
	Awards    string `json:"Awards"`
	BoxOffice string `json:"BoxOffice"`
	Poster    string `json:"Poster"`
	ImdbID    string `json:"imdbID"`
	Ratings   []struct {
		Source string `json:"Source"`
		Value  string `json:"Value"`
	} `json:"Ratings"`
}

// Searcher is the lookup operation the orchestrator and the discovery flow
// depend on.
type Searcher interface {
	Search(ctx context.Context, title, year string) (*Movie, error)
}

// Client queries the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	inFlight   *semaphore.Weighted
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMaxInFlight caps concurrent provider calls.
func WithMaxInFlight(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.inFlight = semaphore.NewWeighted(n)
		}
	}
}

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		inFlight:   semaphore.NewWeighted(4),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search performs a single full-plot movie lookup. Year may be "" to search
// without a release-year filter. There are no retries at this layer.
func (c *Client) Search(ctx context.Context, title, year string) (*Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}

	if err := c.inFlight.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire provider slot: %w", err)
	}
	defer c.inFlight.Release(1)

	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set("t", title)
	params.Set("apikey", c.apiKey)
	params.Set("plot", "full")
	params.Set("type", "movie")
	if year != "" {
		params.Set("y", year)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request (%v): %w", err, ErrNotFound)
	}
	defer resp.Body.Close()

	// OMDb answers 200 even for a miss; a non-200 here means the provider
	// itself misbehaved, which the caller cannot distinguish from a miss.
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb returned %d: %w", resp.StatusCode, ErrNotFound)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode omdb response (%v): %w", err, ErrNotFound)
	}

	if p.Response != "True" {
		return nil, ErrNotFound
	}

	return p.toMovie(), nil
}

func (p *payload) toMovie() *Movie {
	return &Movie{
		Title:            orNA(p.Title),
		Plot:             orNA(p.Plot),
		Type:             orNA(p.Type),
		Rated:            orNA(p.Rated),
		Released:         orNA(p.Released),
		Runtime:          orNA(p.Runtime),
		Genre:            orNA(p.Genre),
		Director:         orNA(p.Director),
		Writer:           orNA(p.Writer),
		Actors:           orNA(p.Actors),
		Country:          orNA(p.Country),
		Awards:           orNA(p.Awards),
		BoxOffice:        orNA(p.BoxOffice),
		Poster:           orNA(p.Poster),
		ImdbID:           strings.TrimSpace(p.ImdbID),
		RatingIMDb:       p.ratingAt(0),
		RatingRottenTom:  p.ratingAt(1),
		RatingMetacritic: p.ratingAt(2),
	}
}

func (p *payload) ratingAt(i int) string {
	if i >= len(p.Ratings) {
		return NA
	}
	return orNA(p.Ratings[i].Value)
}

func orNA(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NA
	}
	return s
}
