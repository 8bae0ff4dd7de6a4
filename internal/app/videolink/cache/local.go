package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// LocalCache is the in-process L1 in front of Redis. Its TTL stays short so instances
// converge quickly when the catalog changes.
type LocalCache struct {
	cache    *ristretto.Cache
	ttl      time.Duration
	emptyTTL time.Duration
}

// NewLocalCache bounds the cache to maxItems entries (cost 1 each).
func NewLocalCache(maxItems int64, ttl time.Duration) (*LocalCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LocalCache{
		cache:    cache,
		ttl:      ttl,
		emptyTTL: 10 * time.Second,
	}, nil
}

func (l *LocalCache) Get(key string) (string, bool) {
	if v, ok := l.cache.Get(key); ok {
		s, ok := v.(string)
		return s, ok
	}
	return "", false
}

func (l *LocalCache) Set(key, value string) {
	l.cache.SetWithTTL(key, value, 1, l.ttl)
}

func (l *LocalCache) SetNotFound(key string) {
	l.cache.SetWithTTL(key, notFoundSentinel, 1, l.emptyTTL)
}

func (l *LocalCache) Del(key string) {
	l.cache.Del(key)
}

// Wait blocks until buffered writes are applied. Sets are asynchronous otherwise.
func (l *LocalCache) Wait() {
	l.cache.Wait()
}

func (l *LocalCache) Close() {
	l.cache.Close()
}
