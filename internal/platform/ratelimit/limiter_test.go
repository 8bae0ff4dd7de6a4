package ratelimit

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("skip: redis not available at %s: %v", addr, err)
	}
	return client
}

func TestLimiter_SlidingWindow(t *testing.T) {
	client := newTestRedis(t)
	l := NewLimiter(client)
	ctx := context.Background()
	key := "rl:test:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	t.Cleanup(func() { client.Del(context.Background(), key) })

	window := time.Second
	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, key, 2, window, strconv.Itoa(i))
		if err != nil || !ok {
			t.Fatalf("request %d: ok=%v err=%v", i, ok, err)
		}
	}
	ok, retry, err := l.Allow(ctx, key, 2, window, "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("3rd request should be rejected")
	}
	if retry <= 0 || retry > window {
		t.Fatalf("retryAfter: got %v", retry)
	}

	time.Sleep(window + 100*time.Millisecond)
	if ok, _, _ := l.Allow(ctx, key, 2, window, "4"); !ok {
		t.Fatal("request after window should be allowed")
	}
}
