package repo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"taboo.local/internal/app/videolink"
)

// ContentFetcher is the catalog backend.
type ContentFetcher interface {
	FetchContent(ctx context.Context, id string) (videolink.Content, error)
}

// ContentCacher is the two level content cache.
type ContentCacher interface {
	Get(ctx context.Context, id string) (videolink.Content, bool, error)
	Set(ctx context.Context, content videolink.Content) error
	SetNotFound(ctx context.Context, id string) error
}

// ContentRepo implements videolink.ContentLookup: cache first, then the catalog backend.
type ContentRepo struct {
	backend ContentFetcher
	cache   ContentCacher
}

// NewContentRepo accepts a nil cache.
func NewContentRepo(backend ContentFetcher, cache ContentCacher) *ContentRepo {
	return &ContentRepo{
		backend: backend,
		cache:   cache,
	}
}

var _ videolink.ContentLookup = (*ContentRepo)(nil)

// Lookup returns videolink.ErrContentNotFound when the catalog says so. Backend failures are
// returned as-is and never cached.
func (r *ContentRepo) Lookup(ctx context.Context, id string) (videolink.Content, error) {
	if r.cache != nil {
		cacheCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		content, hit, err := r.cache.Get(cacheCtx, id)
		cancel()
		if hit {
			return content, err
		}
		if err != nil {
			slog.Warn("content cache unavailable", "content_id", id, "err", err)
		}
	}

	content, err := r.backend.FetchContent(ctx, id)
	if errors.Is(err, videolink.ErrContentNotFound) {
		if r.cache != nil {
			r.fill(ctx, func(c context.Context) error { return r.cache.SetNotFound(c, id) })
		}
		return videolink.Content{}, videolink.ErrContentNotFound
	}
	if err != nil {
		return videolink.Content{}, err
	}

	if r.cache != nil {
		r.fill(ctx, func(c context.Context) error { return r.cache.Set(c, content) })
	}
	return content, nil
}

func (r *ContentRepo) fill(ctx context.Context, set func(context.Context) error) {
	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 50*time.Millisecond)
	defer cancel()
	if err := set(cacheCtx); err != nil {
		slog.Warn("content cache fill failed", "err", err)
	}
}
