// Package cache provides content-addressed, TTL-bound storage of aggregated
// metric results over an injected key-value store. Every operation is
// best-effort: storage failures and malformed payloads degrade to a miss and
// the caller recomputes.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/formlens/insight-engine/internal/metrics"
	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/store"
)

const keyPrefix = "insight-engine:results:"

// DefaultTTL bounds how long an aggregated result stays valid.
const DefaultTTL = 24 * time.Hour

// Key builds the content-addressed cache key for a form and input signature.
func Key(formID, signature string) string {
	return keyPrefix + formID + ":" + signature
}

// ResultCache stores MetricEngineResult values under content-addressed keys.
type ResultCache struct {
	kv     store.KV
	ttl    time.Duration
	logger *slog.Logger
}

// NewResultCache wraps kv with TTL semantics. A zero ttl falls back to
// DefaultTTL; a nil logger falls back to slog.Default().
func NewResultCache(kv store.KV, ttl time.Duration, logger *slog.Logger) *ResultCache {
	if kv == nil {
		kv = store.Noop{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultCache{kv: kv, ttl: ttl, logger: logger}
}

// TTL returns the configured entry lifetime.
func (c *ResultCache) TTL() time.Duration { return c.ttl }

// Get returns the cached result for key, or ok=false on any miss: absent key,
// storage error, malformed payload, or an entry past its ExpiresAt. Expired
// values are discarded, not deleted; the backend TTL reaps them eventually.
func (c *ResultCache) Get(ctx context.Context, key string) (models.MetricEngineResult, bool) {
	var zero models.MetricEngineResult

	payload, err := c.kv.Get(ctx, key)
	if err != nil {
		if err != store.ErrNotFound {
			metrics.ObserveStoreError("cache_get")
			c.logger.Warn("result cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		metrics.ObserveCacheLookup(false)
		return zero, false
	}

	var result models.MetricEngineResult
	if err := json.Unmarshal(payload, &result); err != nil || result.ExpiresAt == 0 {
		metrics.ObserveCacheLookup(false)
		return zero, false
	}
	if time.Now().UnixMilli() > result.ExpiresAt {
		metrics.ObserveCacheLookup(false)
		return zero, false
	}

	metrics.ObserveCacheLookup(true)
	return result, true
}

// Set stores result under key. Failures are logged and swallowed; the next
// analysis simply recomputes.
func (c *ResultCache) Set(ctx context.Context, key string, result models.MetricEngineResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("result cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.kv.Set(ctx, key, payload, c.ttl); err != nil {
		metrics.ObserveStoreError("cache_set")
		c.logger.Warn("result cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}
