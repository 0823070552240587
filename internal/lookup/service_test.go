package lookup_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/filmoteka/filmoteka-bot/internal/lookup"
	"github.com/filmoteka/filmoteka-bot/internal/omdb"
	"github.com/filmoteka/filmoteka-bot/types"
)

type fakeStore struct {
	users         map[int64]*types.User
	subs          map[int64]*types.Subscription
	requests      []types.Request
	badRequests   []types.BadRequest
	touches       []time.Time
	insertReqErr  error
	touchErr      error
	subErr        error
	countErr      error
	countSinceArg time.Time
}

func newFakeStore(maxRequest int) *fakeStore {
	return &fakeStore{
		users: map[int64]*types.User{1: {ID: 1, TelegramID: 100, Username: "tester", SubscriptionID: 1}},
		subs:  map[int64]*types.Subscription{1: {ID: 1, Name: "free", MaxRequest: maxRequest}},
	}
}

func (f *fakeStore) UserByTelegramID(ctx context.Context, telegramID int64) (*types.User, error) {
	for _, u := range f.users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeStore) CreateUser(ctx context.Context, telegramID int64, username string) (*types.User, error) {
	u := &types.User{ID: int64(len(f.users) + 1), TelegramID: telegramID, Username: username, SubscriptionID: 1}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) SubscriptionByUser(ctx context.Context, userID int64) (*types.Subscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return f.subs[u.SubscriptionID], nil
}

func (f *fakeStore) CountRequestsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.countSinceArg = since
	n := 0
	for _, r := range f.requests {
		if r.UserID == userID && !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) InsertRequest(ctx context.Context, userID int64, imdbID string, at time.Time) error {
	if f.insertReqErr != nil {
		return f.insertReqErr
	}
	f.requests = append(f.requests, types.Request{UserID: userID, ImdbID: imdbID, CreatedAt: at})
	return nil
}

func (f *fakeStore) InsertBadRequest(ctx context.Context, userID int64, title, errClass string, at time.Time) error {
	f.badRequests = append(f.badRequests, types.BadRequest{UserID: userID, Title: title, Error: errClass, CreatedAt: at})
	return nil
}

func (f *fakeStore) TouchLastRequest(ctx context.Context, userID int64, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touches = append(f.touches, at)
	return nil
}

type stubSearcher struct {
	movie *omdb.Movie
	err   error
	calls int
}

func (s *stubSearcher) Search(ctx context.Context, title, year string) (*omdb.Movie, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.movie, nil
}

type recordingLocker struct {
	acquired int
	released int
	err      error
}

func (l *recordingLocker) Acquire(ctx context.Context, userID int64) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func() { l.released++ }, nil
}

func inception() *omdb.Movie {
	return &omdb.Movie{
		Title: "Inception", Plot: "Dreams in dreams", Type: "movie", Rated: "PG-13",
		Released: "16 Jul 2010", Runtime: "148 min", Genre: "Sci-Fi", Director: "Christopher Nolan",
		Writer: "Christopher Nolan", Actors: "Leonardo DiCaprio", Country: "USA", Awards: "Won 4 Oscars",
		BoxOffice: "$292,576,195", Poster: "https://example.com/p.jpg", ImdbID: "tt1375666",
		RatingIMDb: "8.8/10", RatingRottenTom: "87%", RatingMetacritic: "74/100",
	}
}

func user(f *fakeStore) *types.User { return f.users[1] }

func TestLookupSuccessRecordsRequestAndTouches(t *testing.T) {
	store := newFakeStore(5)
	searcher := &stubSearcher{movie: inception()}
	svc := lookup.New(store, searcher)

	out := svc.Lookup(context.Background(), user(store), "Inception 2010")

	if !out.Admitted || !out.Found {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if !strings.Contains(out.Reply, "Название: Inception") {
		t.Errorf("reply missing summary:\n%s", out.Reply)
	}
	if len(store.requests) != 1 || store.requests[0].ImdbID != "tt1375666" {
		t.Errorf("requests = %#v, want one row with tt1375666", store.requests)
	}
	if len(store.badRequests) != 0 {
		t.Errorf("no bad request expected, got %#v", store.badRequests)
	}
	if len(store.touches) != 1 {
		t.Errorf("expected exactly one last-activity touch, got %d", len(store.touches))
	}
}

func TestLookupNotFoundRecordsBadRequest(t *testing.T) {
	store := newFakeStore(5)
	searcher := &stubSearcher{err: omdb.ErrNotFound}
	svc := lookup.New(store, searcher)

	out := svc.Lookup(context.Background(), user(store), "Unknown Movie Xyz")

	if out.Reply != "Фильм не найден" {
		t.Errorf("reply = %q, want not-found text", out.Reply)
	}
	if len(store.requests) != 0 {
		t.Errorf("no request row expected, got %#v", store.requests)
	}
	if len(store.badRequests) != 1 {
		t.Fatalf("expected one bad request, got %d", len(store.badRequests))
	}
	br := store.badRequests[0]
	if br.Error != lookup.ClassNotFound {
		t.Errorf("classification = %q, want %q", br.Error, lookup.ClassNotFound)
	}
	if br.Title != "Unknown Movie Xyz" {
		t.Errorf("bad request stores raw input, got %q", br.Title)
	}
	if len(store.touches) != 1 {
		t.Errorf("expected exactly one last-activity touch, got %d", len(store.touches))
	}
}

func TestLookupQuotaExceededSkipsProviderAndAudit(t *testing.T) {
	now := time.Now()
	store := newFakeStore(5)
	for i := 0; i < 5; i++ {
		store.requests = append(store.requests, types.Request{UserID: 1, ImdbID: "tt0", CreatedAt: now.Add(-time.Hour)})
	}
	searcher := &stubSearcher{movie: inception()}
	svc := lookup.New(store, searcher)

	out := svc.Lookup(context.Background(), user(store), "Inception")

	if out.Admitted {
		t.Error("request at limit must not be admitted")
	}
	if searcher.calls != 0 {
		t.Errorf("provider called %d times, want 0", searcher.calls)
	}
	if !strings.Contains(out.Reply, "/sub_buy") {
		t.Errorf("reply should upsell a subscription:\n%s", out.Reply)
	}
	if len(store.requests) != 5 || len(store.badRequests) != 0 || len(store.touches) != 0 {
		t.Error("quota rejection must write no rows and no touch")
	}
}

func TestLookupAdmittedJustBelowLimit(t *testing.T) {
	now := time.Now()
	store := newFakeStore(5)
	for i := 0; i < 4; i++ {
		store.requests = append(store.requests, types.Request{UserID: 1, ImdbID: "tt0", CreatedAt: now.Add(-time.Hour)})
	}
	searcher := &stubSearcher{movie: inception()}
	svc := lookup.New(store, searcher)

	out := svc.Lookup(context.Background(), user(store), "Inception")
	if !out.Admitted {
		t.Error("4/5 must be admitted")
	}
	if searcher.calls != 1 {
		t.Errorf("provider called %d times, want 1", searcher.calls)
	}
}

func TestLookupWindowIsSliding(t *testing.T) {
	now := time.Now()
	store := newFakeStore(5)
	// Five old successes just outside the trailing 24h window.
	for i := 0; i < 5; i++ {
		store.requests = append(store.requests, types.Request{UserID: 1, ImdbID: "tt0", CreatedAt: now.Add(-25 * time.Hour)})
	}
	searcher := &stubSearcher{movie: inception()}
	svc := lookup.New(store, searcher, lookup.WithClock(func() time.Time { return now }))

	out := svc.Lookup(context.Background(), user(store), "Inception")
	if !out.Admitted {
		t.Error("requests older than 24h must not count toward the quota")
	}
}

func TestLookupAuditFailureKeepsReply(t *testing.T) {
	store := newFakeStore(5)
	store.insertReqErr = errors.New("user record vanished")
	store.touchErr = errors.New("user record vanished")
	searcher := &stubSearcher{movie: inception()}
	svc := lookup.New(store, searcher)

	out := svc.Lookup(context.Background(), user(store), "Inception")
	if !strings.Contains(out.Reply, "Название: Inception") {
		t.Errorf("audit failure must not change the decided reply:\n%s", out.Reply)
	}
}

func TestLookupUsesLockerAndReleases(t *testing.T) {
	store := newFakeStore(5)
	locker := &recordingLocker{}
	searcher := &stubSearcher{movie: inception()}
	svc := lookup.New(store, searcher, lookup.WithLocker(locker))

	svc.Lookup(context.Background(), user(store), "Inception")
	if locker.acquired != 1 || locker.released != 1 {
		t.Errorf("lock acquired=%d released=%d, want 1/1", locker.acquired, locker.released)
	}
}

func TestLookupLockFailureDegrades(t *testing.T) {
	store := newFakeStore(5)
	locker := &recordingLocker{err: errors.New("redis down")}
	searcher := &stubSearcher{movie: inception()}
	svc := lookup.New(store, searcher, lookup.WithLocker(locker))

	out := svc.Lookup(context.Background(), user(store), "Inception")
	if !out.Found {
		t.Error("lock failure must not block the lookup")
	}
}

func TestUsage(t *testing.T) {
	now := time.Now()
	store := newFakeStore(5)
	store.requests = append(store.requests,
		types.Request{UserID: 1, CreatedAt: now.Add(-time.Hour)},
		types.Request{UserID: 1, CreatedAt: now.Add(-30 * time.Hour)},
	)
	svc := lookup.New(store, &stubSearcher{}, lookup.WithClock(func() time.Time { return now }))

	used, max, err := svc.Usage(context.Background(), user(store))
	if err != nil {
		t.Fatalf("Usage returned error: %v", err)
	}
	if used != 1 || max != 5 {
		t.Errorf("Usage = %d/%d, want 1/5", used, max)
	}
}
