package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter keeps a token bucket per key in process memory. Used when Redis is not
// configured for rate limiting (single instance, local dev); limits are per instance.
type LocalLimiter struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
	idleTTL time.Duration
	now     func() time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{
		buckets: make(map[string]*localBucket),
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow refills limit tokens per window with a burst of limit. member is unused.
func (l *LocalLimiter) Allow(_ context.Context, key string, limit int, window time.Duration, _ string) (bool, time.Duration, error) {
	if limit <= 0 || window <= 0 {
		return false, window, nil
	}
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)}
		l.buckets[key] = b
		if len(l.buckets)%1024 == 0 {
			l.evictLocked(now)
		}
	}
	b.lastSeen = now
	l.mu.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, window, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

func (l *LocalLimiter) evictLocked(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, k)
		}
	}
}
