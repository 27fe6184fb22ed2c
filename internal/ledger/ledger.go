// Package ledger records milestone sends per subscriber and local date in
// Redis, so a send hour observed twice on one local day sends once.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "milestone:sent:"
	// DefaultTTL outlives one cadence period.
	DefaultTTL = 8 * 24 * time.Hour
)

// Ledger is a Redis-backed send ledger.
type Ledger struct {
	client redis.Cmdable
	ttl    time.Duration
}

// New creates a ledger on client. ttl <= 0 uses DefaultTTL.
func New(client redis.Cmdable, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ledger{client: client, ttl: ttl}
}

// NewClient opens a Redis client for the ledger.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Claim marks (customerID, localDate) as sent. It returns false when the
// pair was already claimed.
func (l *Ledger) Claim(ctx context.Context, customerID, localDate string) (bool, error) {
	ok, err := l.client.SetNX(ctx, Key(customerID, localDate), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s on %s: %w", customerID, localDate, err)
	}
	return ok, nil
}

// Ping checks connectivity.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Key is the Redis key for one claim.
func Key(customerID, localDate string) string {
	return keyPrefix + localDate + ":" + customerID
}
