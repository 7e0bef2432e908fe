// Package store defines the injected key-value store the engine persists
// through, plus in-memory, SQLite and Valkey implementations. The engine
// treats every backend as unreliable: callers swallow errors and fall back to
// recomputation, so implementations only need best-effort semantics.
package store

import (
	"context"
	"errors"
	"time"
)

// KV is the minimal key-value contract required by the cache and plan
// persistence layers.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

// ErrNotFound signals that a key is absent (or expired).
var ErrNotFound = errors.New("key not found")

// Noop implements KV but never stores data. Useful when caching is disabled.
type Noop struct{}

// Get always reports a miss.
func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ErrNotFound }

// Set discards the value.
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Del is a no-op.
func (Noop) Del(context.Context, string) error { return nil }

// Close is a no-op.
func (Noop) Close() error { return nil }
