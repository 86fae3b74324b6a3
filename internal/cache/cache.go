// Package cache stores raw response bodies keyed by location.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Key namespaces a location so several tools can share one Redis database.
func Key(location string) string {
	return "episodes:body:" + location
}
