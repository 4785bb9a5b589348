package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/crucial707/postboard/internal/metrics"
)

// ReadThrough caches the result of compute under key for TTL. Concurrent
// misses on the same key may each compute and store; the last write wins.
type ReadThrough[V any] struct {
	Name  string
	Store Store
	TTL   time.Duration
}

func NewReadThrough[V any](name string, store Store, ttl time.Duration) *ReadThrough[V] {
	return &ReadThrough[V]{Name: name, Store: store, TTL: ttl}
}

// GetOrPopulate returns the cached value for key, or calls compute, stores its
// result and returns it. Errors from compute are returned and nothing is stored.
// A failing store degrades to calling compute on every request.
func (c *ReadThrough[V]) GetOrPopulate(ctx context.Context, key string, compute func(context.Context) (V, error)) (V, error) {
	raw, ok, err := c.Store.Get(ctx, key)
	if err != nil {
		slog.Warn("cache get failed", "cache", c.Name, "key", key, "error", err)
	}
	if ok {
		var v V
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.CacheHit(c.Name)
			return v, nil
		}
		slog.Warn("cache entry undecodable", "cache", c.Name, "key", key)
	}
	metrics.CacheMiss(c.Name)

	v, err := compute(ctx)
	if err != nil {
		return v, err
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode failed", "cache", c.Name, "key", key, "error", err)
		return v, nil
	}
	if err := c.Store.Set(ctx, key, encoded, c.TTL); err != nil {
		slog.Warn("cache set failed", "cache", c.Name, "key", key, "error", err)
	}
	return v, nil
}
