// Package cache holds the TTL stores behind the read-through post list cache.
//
// Cached values are snapshots, never the source of truth: a value may be up
// to one TTL older than the datastore, and nothing invalidates it early.
package cache

import (
	"context"
	"time"
)

// Store is a byte-valued key/value store whose entries expire after a TTL.
type Store interface {
	// Get returns the value and true on a hit, or false on a miss or an expired entry.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl, replacing any previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
