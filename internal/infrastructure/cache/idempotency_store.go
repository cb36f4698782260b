package cache

import (
	"context"
	"time"
)

// IdempotencyStore tracks request keys that have already been handled so that
// retried POSTs (payments, reconnection quotes) do not apply twice.
type IdempotencyStore interface {
	// MarkProcessed atomically records a key with a TTL. Returns true if the
	// key was newly recorded, false if it had already been seen.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether a key has already been recorded
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases any resources held by the store
	Close() error
}
