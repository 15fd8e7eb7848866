package kind

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domain "deleteop/internal/domain/kind"
)

// DefaultCacheSize bounds the number of kinds held in memory.
const DefaultCacheSize = 256

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deleteop_kind_cache_hits_total",
		Help: "Lifecycle opt-in lookups answered from the kind cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deleteop_kind_cache_misses_total",
		Help: "Lifecycle opt-in lookups that went to the database.",
	})
)

// CachedStore memoises SupportsLifecycle answers with a TTL.
// Reads other than SupportsLifecycle pass straight through.
type CachedStore struct {
	next  Store
	cache *expirable.LRU[string, bool]
}

// NewCachedStore wraps next with an expirable LRU.
// A non-positive ttl disables expiry; entries then live until Save or eviction.
func NewCachedStore(next Store, size int, ttl time.Duration) *CachedStore {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &CachedStore{
		next:  next,
		cache: expirable.NewLRU[string, bool](size, nil, ttl),
	}
}

func (c *CachedStore) GetByID(ctx context.Context, id string) (domain.Kind, error) {
	return c.next.GetByID(ctx, id)
}

func (c *CachedStore) List(ctx context.Context) ([]domain.Kind, error) {
	return c.next.List(ctx)
}

// Save writes through and drops the cached answer for value.ID.
func (c *CachedStore) Save(ctx context.Context, value domain.Kind) error {
	err := c.next.Save(ctx, value)
	c.cache.Remove(value.ID)
	return err
}

// SupportsLifecycle answers from cache when possible. Errors are not cached.
func (c *CachedStore) SupportsLifecycle(ctx context.Context, id string) (bool, error) {
	if v, ok := c.cache.Get(id); ok {
		cacheHits.Inc()
		return v, nil
	}
	cacheMisses.Inc()
	v, err := c.next.SupportsLifecycle(ctx, id)
	if err != nil {
		return false, err
	}
	c.cache.Add(id, v)
	return v, nil
}

// Purge empties the cache.
func (c *CachedStore) Purge() {
	c.cache.Purge()
}
