// Package discovery finds a presentable random movie: a scraped candidate
// title is resolved through the metadata provider until a matched,
// poster-bearing record turns up. Independent of user quotas.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/filmoteka/filmoteka-bot/internal/omdb"
)

// ErrExhausted is returned when no usable movie was found within the
// attempt budget.
var ErrExhausted = errors.New("no presentable movie found")

var errNoPoster = errors.New("match has no poster")

// TitleSource supplies one best-effort candidate title per call.
type TitleSource interface {
	RandomTitle(ctx context.Context) (string, error)
}

type Finder struct {
	titles      TitleSource
	movies      omdb.Searcher
	maxAttempts uint64
	backoff     time.Duration
}

// New creates a Finder. maxAttempts and backoff fall back to 5 attempts and
// a 1s pause; the loop is always bounded, there is no unlimited mode.
func New(titles TitleSource, movies omdb.Searcher, maxAttempts int, backoff time.Duration) *Finder {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Finder{
		titles:      titles,
		movies:      movies,
		maxAttempts: uint64(maxAttempts),
		backoff:     backoff,
	}
}

// Find retries with fresh candidate titles until a matched record with a
// poster is found, the attempt budget runs out, or ctx is cancelled.
func (f *Finder) Find(ctx context.Context) (*omdb.Movie, error) {
	var found *omdb.Movie

	b := retry.WithMaxRetries(f.maxAttempts-1, retry.NewConstant(f.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		title, err := f.titles.RandomTitle(ctx)
		if err != nil {
			log.Printf("discovery: no candidate title, retrying: %v", err)
			return retry.RetryableError(err)
		}
		movie, err := f.movies.Search(ctx, title, "")
		if err != nil {
			log.Printf("discovery: %q not found, retrying", title)
			return retry.RetryableError(err)
		}
		if !movie.HasPoster() {
			log.Printf("discovery: %q has no poster, retrying", title)
			return retry.RetryableError(errNoPoster)
		}
		found = movie
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrExhausted, err)
	}
	return found, nil
}
