package types

import (
	"context"
	"time"
)

// User is a row of the users whitelist. Created by /activate, touched on
// every lookup attempt, never deleted.
type User struct {
	ID             int64
	TelegramID     int64
	Username       string
	LastRequest    *time.Time
	SubscriptionID int64
}

// Subscription is read-only tier reference data: how many lookups the
// trailing 24h window allows and what the tier costs.
type Subscription struct {
	ID         int64
	Name       string
	MaxRequest int
	Price      int
}

// Request records one successful lookup.
type Request struct {
	ID        int64
	UserID    int64
	ImdbID    string
	CreatedAt time.Time
}

// BadRequest records one failed lookup together with the raw input and the
// error classification.
type BadRequest struct {
	ID        int64
	UserID    int64
	Title     string
	Error     string
	CreatedAt time.Time
}

// MovieStore is the persistence surface the quota gate and the audit logger
// are composed against. Implemented by store.PostgresStore and by in-memory
// fakes in tests.
type MovieStore interface {
	UserByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	CreateUser(ctx context.Context, telegramID int64, username string) (*User, error)
	SubscriptionByUser(ctx context.Context, userID int64) (*Subscription, error)

	CountRequestsSince(ctx context.Context, userID int64, since time.Time) (int, error)
	InsertRequest(ctx context.Context, userID int64, imdbID string, at time.Time) error
	InsertBadRequest(ctx context.Context, userID int64, title, errClass string, at time.Time) error
	TouchLastRequest(ctx context.Context, userID int64, at time.Time) error
}
