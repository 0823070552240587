package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// UserLock serializes the quota-check/audit-write section per user so two
// concurrent lookups from the same user cannot both read a count below the
// limit. The TTL caps how long a crashed holder can block a user.
type UserLock struct {
	client  *RedisClient
	ttl     time.Duration
	retryIn time.Duration
}

func NewUserLock(client *RedisClient, ttl time.Duration) *UserLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &UserLock{
		client:  client,
		ttl:     ttl,
		retryIn: 50 * time.Millisecond,
	}
}

// Acquire blocks until the per-user lock is taken or ctx is done. The
// returned release func is safe to call exactly once.
func (l *UserLock) Acquire(ctx context.Context, userID int64) (func(), error) {
	key := l.client.key("lookup_lock", fmt.Sprintf("%d", userID))
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			release := func() {
				relCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				held, err := l.client.Get(relCtx, key)
				if err == nil && held != token {
					// TTL expired and someone else holds the lock now.
					return
				}
				if err := l.client.Del(relCtx, key); err != nil {
					log.Printf("UserLock: failed to release lock for user %d: %v", userID, err)
				}
			}
			return release, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryIn):
		}
	}
}
