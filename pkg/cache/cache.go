package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. Get reports a miss with
// (nil, false, nil); expired entries are misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
