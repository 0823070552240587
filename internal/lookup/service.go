// Package lookup composes the quota-gated pipeline: parse the query, check
// the user's sliding-window quota, ask the metadata provider, record the
// audit trail, and decide the reply text.
package lookup

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/filmoteka/filmoteka-bot/internal/messages"
	"github.com/filmoteka/filmoteka-bot/internal/omdb"
	"github.com/filmoteka/filmoteka-bot/internal/query"
	"github.com/filmoteka/filmoteka-bot/types"
)

// Error classifications stored in bad_requests.error.
const (
	ClassNotFound = "NotFound"
)

// Window is the sliding quota period: trailing 24 hours from "now", not a
// calendar day.
const Window = 24 * time.Hour

// Locker serializes the gate+audit section per user. Optional: without it
// two concurrent lookups from one user can both pass the gate and overshoot
// the limit by the number of in-flight requests.
type Locker interface {
	Acquire(ctx context.Context, userID int64) (release func(), err error)
}

// Outcome is the decided result of one lookup attempt.
type Outcome struct {
	Reply string
	// HTML is true when Reply carries HTML markup rather than a plain
	// movie card.
	HTML bool
	// Admitted is false when the quota gate rejected the request before
	// any provider traffic.
	Admitted bool
	// Found is true when a Request row was written.
	Found bool
}

type Service struct {
	store  types.MovieStore
	movies omdb.Searcher
	locks  Locker
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLocker enables per-user serialization of the admission check.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locks = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(store types.MovieStore, movies omdb.Searcher, opts ...Option) *Service {
	s := &Service{
		store:  store,
		movies: movies,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup runs the full pipeline for one user message. It never returns an
// error: every failure mode is folded into the reply the user gets.
func (s *Service) Lookup(ctx context.Context, user *types.User, text string) Outcome {
	attempt := uuid.NewString()
	title, year := query.Parse(text)

	if s.locks != nil {
		release, err := s.locks.Acquire(ctx, user.ID)
		if err != nil {
			// Degrade to the unserialized path: a transient
			// over-quota burst beats refusing lookups outright.
			log.Printf("lookup: attempt=%s user=%d lock unavailable: %v", attempt, user.TelegramID, err)
		} else {
			defer release()
		}
	}

	sub, err := s.store.SubscriptionByUser(ctx, user.ID)
	if err != nil {
		log.Printf("lookup: attempt=%s user=%d read subscription: %v", attempt, user.TelegramID, err)
		return Outcome{Reply: messages.ErrorDefault(), HTML: true}
	}

	count, err := s.store.CountRequestsSince(ctx, user.ID, s.now().Add(-Window))
	if err != nil {
		log.Printf("lookup: attempt=%s user=%d count requests: %v", attempt, user.TelegramID, err)
		return Outcome{Reply: messages.ErrorDefault(), HTML: true}
	}

	if count >= sub.MaxRequest {
		// No provider traffic and no audit rows: a rejected request is
		// not a lookup attempt.
		log.Printf("lookup: attempt=%s user=%d quota exceeded (%d/%d)", attempt, user.TelegramID, count, sub.MaxRequest)
		return Outcome{Reply: messages.QuotaExceeded(sub.MaxRequest), HTML: true}
	}

	movie, searchErr := s.movies.Search(ctx, title, year)
	at := s.now()

	var out Outcome
	switch {
	case searchErr == nil:
		out = Outcome{Reply: messages.MovieSummary(movie), Admitted: true, Found: true}
		if err := s.store.InsertRequest(ctx, user.ID, movie.ImdbID, at); err != nil {
			log.Printf("lookup: attempt=%s user=%d record request: %v", attempt, user.TelegramID, err)
		}
	case errors.Is(searchErr, omdb.ErrNotFound):
		out = Outcome{Reply: messages.MovieNotFound(), Admitted: true}
		if err := s.store.InsertBadRequest(ctx, user.ID, text, ClassNotFound, at); err != nil {
			log.Printf("lookup: attempt=%s user=%d record bad request: %v", attempt, user.TelegramID, err)
		}
	default:
		// Unreachable with the current client, which folds everything
		// into ErrNotFound; kept so a future client change cannot
		// silently drop the audit trail.
		out = Outcome{Reply: messages.MovieNotFound(), Admitted: true}
		if err := s.store.InsertBadRequest(ctx, user.ID, text, searchErr.Error(), at); err != nil {
			log.Printf("lookup: attempt=%s user=%d record bad request: %v", attempt, user.TelegramID, err)
		}
	}

	if err := s.store.TouchLastRequest(ctx, user.ID, at); err != nil {
		log.Printf("lookup: attempt=%s user=%d touch last request: %v", attempt, user.TelegramID, err)
	}

	log.Printf("[%s] | attempt=%s | %d | %s | %t | %v", at.Format("2006-01-02 15:04:05"), attempt, user.TelegramID, title, out.Found, searchErr)
	return out
}

// Usage reports the user's spent and allowed lookups for the current
// sliding window (the /amount command).
func (s *Service) Usage(ctx context.Context, user *types.User) (used, max int, err error) {
	sub, err := s.store.SubscriptionByUser(ctx, user.ID)
	if err != nil {
		return 0, 0, err
	}
	count, err := s.store.CountRequestsSince(ctx, user.ID, s.now().Add(-Window))
	if err != nil {
		return 0, 0, err
	}
	return count, sub.MaxRequest, nil
}
