package niche

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/keywordscout/keywordscout/internal/domain"
	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
)

// CacheStats exposes hit/miss counters for the /cache/stats endpoint
// (SPEC_FULL.md §8).
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Errors int64 `json:"errors"`
}

// Cache fronts NicheConfig resolution with a Redis-backed TTL cache, keyed
// by the term as passed + hint niche. It never fails a resolution on a cache
// error — a miss just falls through to the resolver.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	hits   int64
	misses int64
	errs   int64
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(term string, hint domain.Niche) string {
	return "keywordscout:niche:" + string(hint) + ":" + term
}

// Get returns a cached NicheConfig for term/hint, or (false, nil) on a
// miss or a cache-layer error (logged via the Errors counter, never
// surfaced as a failure to the caller).
func (c *Cache) Get(ctx context.Context, term string, hint domain.Niche) (domain.NicheConfig, bool) {
	raw, err := c.client.Get(ctx, cacheKey(term, hint)).Bytes()
	if err == redis.Nil {
		atomic.AddInt64(&c.misses, 1)
		return domain.NicheConfig{}, false
	}
	if err != nil {
		atomic.AddInt64(&c.errs, 1)
		return domain.NicheConfig{}, false
	}

	var cfg domain.NicheConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		atomic.AddInt64(&c.errs, 1)
		return domain.NicheConfig{}, false
	}
	atomic.AddInt64(&c.hits, 1)
	return cfg, true
}

// Set stores a NicheConfig with the cache's configured TTL. Errors are
// swallowed: caching is a latency optimization, not a correctness path.
func (c *Cache) Set(ctx context.Context, term string, hint domain.Niche, cfg domain.NicheConfig) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		atomic.AddInt64(&c.errs, 1)
		return
	}
	if err := c.client.Set(ctx, cacheKey(term, hint), raw, c.ttl).Err(); err != nil {
		atomic.AddInt64(&c.errs, 1)
	}
}

// Stats snapshots the current counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		Errors: atomic.LoadInt64(&c.errs),
	}
}

// CachedResolver wraps a Resolver with a Cache, resolving through the
// cache first and populating it on a miss.
type CachedResolver struct {
	resolver *Resolver
	cache    *Cache
}

func NewCachedResolver(resolver *Resolver, cache *Cache) *CachedResolver {
	return &CachedResolver{resolver: resolver, cache: cache}
}

func (c *CachedResolver) Resolve(ctx context.Context, term string, hint domain.Niche) (domain.NicheConfig, error) {
	if c.cache != nil {
		if cfg, ok := c.cache.Get(ctx, term, hint); ok {
			return cfg, nil
		}
	}

	cfg, err := c.resolver.Resolve(term, hint)
	if err != nil {
		return domain.NicheConfig{}, kwerrors.Stage("niche_resolution_failed", "resolving niche", err)
	}

	if c.cache != nil {
		c.cache.Set(ctx, term, hint, cfg)
	}
	return cfg, nil
}
