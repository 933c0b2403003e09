package jobsearch

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache stores serialized search results
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// NopCache never stores anything
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (NopCache) Set(context.Context, string, []byte, time.Duration) {}

// MemoryCache keeps results in process
type MemoryCache struct {
	items *cache.Cache
}

func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{items: cache.New(defaultTTL, 10*time.Minute)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	m.items.Set(key, value, ttl)
}

// RedisCache shares results between server instances. Redis errors behave as cache misses.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	r.rdb.Set(ctx, key, value, ttl)
}
