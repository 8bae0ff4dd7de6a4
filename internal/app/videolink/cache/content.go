package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"taboo.local/internal/app/videolink"
	"taboo.local/internal/platform/metrics"
)

// notFoundSentinel marks a negative entry. "" is not used so a miss never reads as a hit.
const notFoundSentinel = "__nil__"

const keyPrefix = "vl:content:"

type contentEntry struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	SeriesID string `json:"series_id,omitempty"`
	CourseID string `json:"course_id,omitempty"`
}

func encodeContent(c videolink.Content) (string, error) {
	b, err := json.Marshal(contentEntry{
		ID:       c.ID,
		Kind:     string(c.Kind),
		SeriesID: c.SeriesID,
		CourseID: c.CourseID,
	})
	return string(b), err
}

func decodeContent(s string) (videolink.Content, error) {
	var e contentEntry
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return videolink.Content{}, err
	}
	if e.ID == "" {
		return videolink.Content{}, errors.New("cache entry has no id")
	}
	return videolink.Content{
		ID:       e.ID,
		Kind:     videolink.Kind(e.Kind),
		SeriesID: e.SeriesID,
		CourseID: e.CourseID,
	}, nil
}

// ContentCache is a two level cache of catalog entries keyed by content id.
// A nil Redis client leaves only the local layer.
type ContentCache struct {
	client   *redis.Client
	local    *LocalCache
	ttl      time.Duration
	emptyTTL time.Duration
}

func NewContentCache(client *redis.Client, local *LocalCache, ttl time.Duration) *ContentCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ContentCache{
		client:   client,
		local:    local,
		ttl:      ttl,
		emptyTTL: 30 * time.Second,
	}
}

// Get reports hit=false on a miss. A negative hit returns hit=true with
// videolink.ErrContentNotFound.
func (c *ContentCache) Get(ctx context.Context, id string) (content videolink.Content, hit bool, err error) {
	if c.local != nil {
		if v, ok := c.local.Get(id); ok {
			if v == notFoundSentinel {
				metrics.CacheOperations.WithLabelValues("l1", "hit_negative").Inc()
				return videolink.Content{}, true, videolink.ErrContentNotFound
			}
			if content, err := decodeContent(v); err == nil {
				metrics.CacheOperations.WithLabelValues("l1", "hit").Inc()
				return content, true, nil
			}
			c.local.Del(id)
		}
		metrics.CacheOperations.WithLabelValues("l1", "miss").Inc()
	}

	if c.client == nil {
		return videolink.Content{}, false, nil
	}

	res, err := c.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		metrics.CacheOperations.WithLabelValues("l2", "miss").Inc()
		return videolink.Content{}, false, nil
	}
	if err != nil {
		return videolink.Content{}, false, fmt.Errorf("content cache get: %w", err)
	}

	if res == notFoundSentinel {
		metrics.CacheOperations.WithLabelValues("l2", "hit_negative").Inc()
		if c.local != nil {
			c.local.SetNotFound(id)
		}
		return videolink.Content{}, true, videolink.ErrContentNotFound
	}

	content, err = decodeContent(res)
	if err != nil {
		// a corrupt entry is treated as a miss and overwritten by the next Set
		slog.Warn("content cache entry undecodable", "content_id", id, "err", err)
		metrics.CacheOperations.WithLabelValues("l2", "miss").Inc()
		return videolink.Content{}, false, nil
	}
	metrics.CacheOperations.WithLabelValues("l2", "hit").Inc()
	if c.local != nil {
		c.local.Set(id, res)
	}
	return content, true, nil
}

func (c *ContentCache) Set(ctx context.Context, content videolink.Content) error {
	v, err := encodeContent(content)
	if err != nil {
		return err
	}
	if c.local != nil {
		c.local.Set(content.ID, v)
	}
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, keyPrefix+content.ID, v, c.ttl).Err()
}

// SetNotFound stores a short-lived negative entry so unknown ids do not hammer the backend.
func (c *ContentCache) SetNotFound(ctx context.Context, id string) error {
	if c.local != nil {
		c.local.SetNotFound(id)
	}
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, keyPrefix+id, notFoundSentinel, c.emptyTTL).Err()
}

func (c *ContentCache) Delete(ctx context.Context, id string) error {
	if c.local != nil {
		c.local.Del(id)
	}
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keyPrefix+id).Err()
}

func (c *ContentCache) Close() {
	if c.local != nil {
		c.local.Close()
		slog.Info("local content cache closed")
	}
}
