package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/filmoteka/filmoteka-bot/types"
)

// ErrUserNotFound is returned when a telegram id is not in the whitelist.
var ErrUserNotFound = errors.New("user not found")

type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ types.MovieStore = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = buildPostgresDSNFromEnv()
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func buildPostgresDSNFromEnv() string {
	host := strings.TrimSpace(os.Getenv("POSTGRES_HOST"))
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(os.Getenv("POSTGRES_PORT"))
	if port == "" {
		port = "5432"
	}
	db := strings.TrimSpace(os.Getenv("POSTGRES_DB"))
	if db == "" {
		db = "filmoteka"
	}
	user := strings.TrimSpace(os.Getenv("POSTGRES_USER"))
	if user == "" {
		user = "filmoteka"
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", urlEscape(user), urlEscape(pass), host, port, db)
}

func urlEscape(s string) string {
	r := strings.NewReplacer(
		"%", "%25",
		":", "%3A",
		"/", "%2F",
		"@", "%40",
		"?", "%3F",
		"#", "%23",
		"[", "%5B",
		"]", "%5D",
	)
	return r.Replace(s)
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

func (s *PostgresStore) UserByTelegramID(ctx context.Context, telegramID int64) (*types.User, error) {
	var u types.User
	err := s.pool.QueryRow(ctx, `
SELECT id, telegram_id, COALESCE(username, ''), last_request, subscription_id
FROM users
WHERE telegram_id = $1
`, telegramID).Scan(&u.ID, &u.TelegramID, &u.Username, &u.LastRequest, &u.SubscriptionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser whitelists a new telegram user on the cheapest tier.
func (s *PostgresStore) CreateUser(ctx context.Context, telegramID int64, username string) (*types.User, error) {
	var u types.User
	err := s.pool.QueryRow(ctx, `
INSERT INTO users (telegram_id, username, subscription_id)
VALUES ($1, $2, (SELECT id FROM subscriptions ORDER BY max_request ASC, id ASC LIMIT 1))
ON CONFLICT (telegram_id) DO UPDATE SET username = EXCLUDED.username
RETURNING id, telegram_id, COALESCE(username, ''), last_request, subscription_id
`, telegramID, strings.TrimSpace(username)).Scan(&u.ID, &u.TelegramID, &u.Username, &u.LastRequest, &u.SubscriptionID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) SubscriptionByUser(ctx context.Context, userID int64) (*types.Subscription, error) {
	var sub types.Subscription
	err := s.pool.QueryRow(ctx, `
SELECT s.id, s.name, s.max_request, s.price
FROM subscriptions s
JOIN users u ON u.subscription_id = s.id
WHERE u.id = $1
`, userID).Scan(&sub.ID, &sub.Name, &sub.MaxRequest, &sub.Price)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CountRequestsSince counts successful lookups inside the sliding quota
// window. Bad requests never count.
func (s *PostgresStore) CountRequestsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM requests
WHERE user_id = $1 AND created_at >= $2
`, userID, since).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *PostgresStore) InsertRequest(ctx context.Context, userID int64, imdbID string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO requests (user_id, imdb_id, created_at)
VALUES ($1, $2, $3)
`, userID, strings.TrimSpace(imdbID), at)
	return err
}

func (s *PostgresStore) InsertBadRequest(ctx context.Context, userID int64, title, errClass string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO bad_requests (user_id, title, error, created_at)
VALUES ($1, $2, $3, $4)
`, userID, title, errClass, at)
	return err
}

func (s *PostgresStore) TouchLastRequest(ctx context.Context, userID int64, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
UPDATE users
SET last_request = $2
WHERE id = $1
`, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
