package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"taboo.local/internal/app/videolink"
)

func newLocal(t *testing.T) *LocalCache {
	t.Helper()
	l, err := NewLocalCache(1000, time.Minute)
	if err != nil {
		t.Fatalf("NewLocalCache: %v", err)
	}
	t.Cleanup(l.Close)
	return l
}

func TestBloomFilter(t *testing.T) {
	b := NewBloomFilter(1000, 0.01)
	id := uuid.NewString()
	if b.MightExist(id) {
		t.Fatal("empty filter reported a member")
	}
	b.Add(id)
	if !b.MightExist(id) {
		t.Fatal("added id not reported")
	}
	if b.Count() == 0 {
		t.Fatal("Count should be > 0 after Add")
	}
}

func TestLocalCache_SetGet(t *testing.T) {
	l := newLocal(t)
	l.Set("a", "1")
	l.SetNotFound("b")
	l.Wait()

	if v, ok := l.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a): got %q %v", v, ok)
	}
	if v, ok := l.Get("b"); !ok || v != notFoundSentinel {
		t.Fatalf("Get(b): got %q %v", v, ok)
	}
	l.Del("a")
	if _, ok := l.Get("a"); ok {
		t.Fatal("Get(a) after Del should miss")
	}
}

func TestContentCache_LocalOnly(t *testing.T) {
	l := newLocal(t)
	c := NewContentCache(nil, l, time.Minute)
	ctx := context.Background()

	content := videolink.Content{
		ID:       uuid.NewString(),
		Kind:     videolink.KindVideo,
		SeriesID: uuid.NewString(),
	}

	if _, hit, err := c.Get(ctx, content.ID); hit || err != nil {
		t.Fatalf("cold Get: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, content); err != nil {
		t.Fatalf("Set: %v", err)
	}
	l.Wait()
	got, hit, err := c.Get(ctx, content.ID)
	if err != nil || !hit {
		t.Fatalf("Get after Set: hit=%v err=%v", hit, err)
	}
	if got != content {
		t.Fatalf("Get: got %+v, want %+v", got, content)
	}

	missing := uuid.NewString()
	if err := c.SetNotFound(ctx, missing); err != nil {
		t.Fatalf("SetNotFound: %v", err)
	}
	l.Wait()
	if _, hit, err := c.Get(ctx, missing); !hit || !errors.Is(err, videolink.ErrContentNotFound) {
		t.Fatalf("negative Get: hit=%v err=%v", hit, err)
	}

	if err := c.Delete(ctx, content.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, content.ID); hit {
		t.Fatal("Get after Delete should miss")
	}
}

func TestContentCache_NoLayers(t *testing.T) {
	c := NewContentCache(nil, nil, 0)
	ctx := context.Background()
	if err := c.Set(ctx, videolink.Content{ID: "x", Kind: videolink.KindShort}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, err := c.Get(ctx, "x"); hit || err != nil {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
}

func TestDecodeContent_Rejects(t *testing.T) {
	for _, in := range []string{"", "{", `{"kind":"video"}`} {
		if _, err := decodeContent(in); err == nil {
			t.Errorf("decodeContent(%q): expected error", in)
		}
	}
}

func redisForTest(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	ctx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("skip: redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestContentCache_RedisBackfillsLocal(t *testing.T) {
	client := redisForTest(t)
	ctx := context.Background()

	writer := NewContentCache(client, nil, time.Minute)
	content := videolink.Content{ID: uuid.NewString(), Kind: videolink.KindCourse}
	if err := writer.Set(ctx, content); err != nil {
		t.Fatalf("Set: %v", err)
	}
	t.Cleanup(func() { _ = writer.Delete(context.Background(), content.ID) })

	l := newLocal(t)
	reader := NewContentCache(client, l, time.Minute)
	got, hit, err := reader.Get(ctx, content.ID)
	if err != nil || !hit || got != content {
		t.Fatalf("Get via redis: %+v hit=%v err=%v", got, hit, err)
	}
	l.Wait()
	if _, ok := l.Get(content.ID); !ok {
		t.Fatal("redis hit should backfill the local layer")
	}

	missing := uuid.NewString()
	if err := writer.SetNotFound(ctx, missing); err != nil {
		t.Fatalf("SetNotFound: %v", err)
	}
	t.Cleanup(func() { _ = writer.Delete(context.Background(), missing) })
	if _, hit, err := reader.Get(ctx, missing); !hit || !errors.Is(err, videolink.ErrContentNotFound) {
		t.Fatalf("negative via redis: hit=%v err=%v", hit, err)
	}
}
