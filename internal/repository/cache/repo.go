// Package cache is the response cache gateway backed by the key-value store.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/HeetShah3114/21BCE2938-ML/internal/db"
)

const keyPrefix = "search_cache:"

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo stores serialized search result lists with expiry. Cache unavailability
// never fails a request: lookup errors count as a miss, store errors are
// logged and dropped.
type Repo struct {
	store      store
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a response cache gateway.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Repo {
	return &Repo{store: s, cacheTotal: cacheTotal, logger: logger}
}

// Lookup returns the previously stored serialized result list verbatim.
// The value is opaque once read: it is never re-parsed or re-validated beyond
// the store's own expiry.
func (r *Repo) Lookup(ctx context.Context, key string) (string, bool) {
	data, err := r.store.Get(ctx, keyPrefix+key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			r.logger.Warn("Response cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		r.incCache("miss")
		return "", false
	}
	r.incCache("hit")
	return string(data), true
}

// Store writes the serialized result list with the given TTL, unconditionally
// overwriting any prior value for the key.
func (r *Repo) Store(ctx context.Context, key, value string, ttl time.Duration) {
	if err := r.store.SetWithTTL(ctx, keyPrefix+key, []byte(value), ttl); err != nil {
		r.logger.Warn("Response cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Repo) incCache(result string) {
	if r.cacheTotal != nil {
		r.cacheTotal.WithLabelValues(result).Inc()
	}
}
