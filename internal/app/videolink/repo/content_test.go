package repo

import (
	"context"
	"errors"
	"testing"

	"taboo.local/internal/app/videolink"
)

type fakeBackend struct {
	calls   int
	content videolink.Content
	err     error
}

func (f *fakeBackend) FetchContent(_ context.Context, id string) (videolink.Content, error) {
	f.calls++
	if f.err != nil {
		return videolink.Content{}, f.err
	}
	c := f.content
	c.ID = id
	return c, nil
}

type mapCache struct {
	entries  map[string]videolink.Content
	negative map[string]bool
	getErr   error
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]videolink.Content{}, negative: map[string]bool{}}
}

func (m *mapCache) Get(_ context.Context, id string) (videolink.Content, bool, error) {
	if m.getErr != nil {
		return videolink.Content{}, false, m.getErr
	}
	if m.negative[id] {
		return videolink.Content{}, true, videolink.ErrContentNotFound
	}
	c, ok := m.entries[id]
	return c, ok, nil
}

func (m *mapCache) Set(_ context.Context, c videolink.Content) error {
	m.entries[c.ID] = c
	return nil
}

func (m *mapCache) SetNotFound(_ context.Context, id string) error {
	m.negative[id] = true
	return nil
}

const id = "123e4567-e89b-12d3-a456-426614174000"

func TestContentRepo_FillsCacheOnSuccess(t *testing.T) {
	backend := &fakeBackend{content: videolink.Content{Kind: videolink.KindShort}}
	c := newMapCache()
	r := NewContentRepo(backend, c)

	for i := 0; i < 3; i++ {
		got, err := r.Lookup(context.Background(), id)
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if got.Kind != videolink.KindShort || got.ID != id {
			t.Fatalf("Lookup: got %+v", got)
		}
	}
	if backend.calls != 1 {
		t.Fatalf("backend calls: got %d, want 1", backend.calls)
	}
}

func TestContentRepo_NegativeCachesNotFound(t *testing.T) {
	backend := &fakeBackend{err: videolink.ErrContentNotFound}
	c := newMapCache()
	r := NewContentRepo(backend, c)

	for i := 0; i < 2; i++ {
		if _, err := r.Lookup(context.Background(), id); !errors.Is(err, videolink.ErrContentNotFound) {
			t.Fatalf("Lookup: got %v", err)
		}
	}
	if backend.calls != 1 {
		t.Fatalf("backend calls: got %d, want 1", backend.calls)
	}
}

func TestContentRepo_BackendErrorsAreNotCached(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	c := newMapCache()
	r := NewContentRepo(backend, c)

	for i := 0; i < 2; i++ {
		_, err := r.Lookup(context.Background(), id)
		if err == nil || errors.Is(err, videolink.ErrContentNotFound) {
			t.Fatalf("Lookup: got %v", err)
		}
	}
	if backend.calls != 2 {
		t.Fatalf("backend calls: got %d, want 2", backend.calls)
	}
	if len(c.entries) != 0 || len(c.negative) != 0 {
		t.Fatal("failures must not be cached")
	}
}

func TestContentRepo_CacheErrorFallsThrough(t *testing.T) {
	backend := &fakeBackend{content: videolink.Content{Kind: videolink.KindVideo}}
	c := newMapCache()
	c.getErr = errors.New("redis down")
	r := NewContentRepo(backend, c)

	if _, err := r.Lookup(context.Background(), id); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if backend.calls != 1 {
		t.Fatalf("backend calls: got %d, want 1", backend.calls)
	}
}

func TestContentRepo_NilCache(t *testing.T) {
	backend := &fakeBackend{content: videolink.Content{Kind: videolink.KindSeries}}
	r := NewContentRepo(backend, nil)
	got, err := r.Lookup(context.Background(), id)
	if err != nil || got.Kind != videolink.KindSeries {
		t.Fatalf("Lookup: %+v %v", got, err)
	}
}
