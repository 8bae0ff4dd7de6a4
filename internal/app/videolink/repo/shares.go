package repo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"taboo.local/internal/app/videolink/cache"
)

var ErrShareNotFound = errors.New("share link not found")

type ShareLink struct {
	ID         int64     `json:"-"`
	ContentID  string    `json:"content_id"`
	Code       string    `json:"code"`
	ClickCount int64     `json:"click_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type ClickStats struct {
	ID        int64     `json:"id"` // cursor for the next page
	ClickedAt time.Time `json:"clicked_at"`
	Referer   string    `json:"referer"`
	UserAgent string    `json:"user_agent"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
}

type StatsResponse struct {
	Code         string       `json:"code"`
	ContentID    string       `json:"content_id"`
	TotalClicks  int64        `json:"total_clicks"`
	RecentClicks []ClickStats `json:"recent_clicks"`
	NextCursor   *int64       `json:"next_cursor,omitempty"`
}

// SharesRepo records generated share links and reads their click statistics.
type SharesRepo struct {
	db    *pgxpool.Pool
	bloom *cache.BloomFilter
}

// NewSharesRepo accepts a nil bloom filter.
func NewSharesRepo(db *pgxpool.Pool, bloom *cache.BloomFilter) *SharesRepo {
	return &SharesRepo{
		db:    db,
		bloom: bloom,
	}
}

// Record upserts the share link of contentID and, for a signed-in caller, links it to userID.
// Codes are derived from the id, so repeated shares of the same content return the same row.
func (s *SharesRepo) Record(ctx context.Context, contentID, code, userID string) (ShareLink, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := s.db.Begin(dbctx)
	if err != nil {
		slog.Error("share record: begin tx failed", "err", err)
		return ShareLink{}, err
	}
	defer tx.Rollback(context.Background())

	link := ShareLink{ContentID: contentID, Code: code}
	if err := tx.QueryRow(dbctx, `
		INSERT INTO share_links (content_id, code) VALUES ($1, $2)
		ON CONFLICT (content_id) DO UPDATE SET code = EXCLUDED.code
		RETURNING id, click_count, created_at`, contentID, code).
		Scan(&link.ID, &link.ClickCount, &link.CreatedAt); err != nil {
		slog.Error("share record: upsert failed", "err", err, "content_id", contentID)
		return ShareLink{}, err
	}

	if userID != "" {
		if _, err := tx.Exec(dbctx,
			`INSERT INTO user_share_links (user_id, share_link_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, link.ID); err != nil {
			slog.Error("share record: user link failed", "err", err, "user_id", userID)
			return ShareLink{}, err
		}
	}

	if err := tx.Commit(dbctx); err != nil {
		slog.Error("share record: commit failed", "err", err)
		return ShareLink{}, err
	}

	if s.bloom != nil {
		s.bloom.Add(contentID)
	}
	return link, nil
}

func (s *SharesRepo) ListByUser(ctx context.Context, userID string, limit int) ([]ShareLink, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := s.db.Query(dbctx, `
		SELECT s.id, s.content_id::text, s.code, s.click_count, us.created_at
		FROM user_share_links us JOIN share_links s ON s.id = us.share_link_id
		WHERE us.user_id = $1
		ORDER BY us.created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		slog.Error("share list failed", "err", err)
		return nil, err
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ShareLink, error) {
		var item ShareLink
		err := row.Scan(&item.ID, &item.ContentID, &item.Code, &item.ClickCount, &item.CreatedAt)
		return item, err
	})
	if err != nil {
		slog.Error("share list scan failed", "err", err)
		return nil, err
	}
	return result, nil
}

func (s *SharesRepo) UserOwns(ctx context.Context, userID, contentID string) (bool, error) {
	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	var exists bool
	err := s.db.QueryRow(dbctx, `SELECT EXISTS(
		SELECT 1 FROM user_share_links us JOIN share_links s ON s.id = us.share_link_id
		WHERE us.user_id = $1 AND s.content_id = $2)`, userID, contentID).Scan(&exists)
	if err != nil {
		slog.Error("share ownership check failed", "err", err)
		return false, err
	}
	// the share may have been recorded by another instance since the last refresh
	if exists && s.bloom != nil {
		s.bloom.Add(contentID)
	}
	return exists, nil
}

// Stats returns the click total and one page of recent clicks, newest first. cursor 0 is the
// first page; pass NextCursor to continue. Content the bloom filter has never seen is rejected
// without touching Postgres.
func (s *SharesRepo) Stats(ctx context.Context, contentID string, limit int, cursor int64) (*StatsResponse, error) {
	if s.bloom != nil && !s.bloom.MightExist(contentID) {
		return nil, ErrShareNotFound
	}

	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp := &StatsResponse{ContentID: contentID}
	if err := s.db.QueryRow(dbctx,
		`SELECT code, click_count FROM share_links WHERE content_id = $1`, contentID).
		Scan(&resp.Code, &resp.TotalClicks); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShareNotFound
		}
		slog.Error("share stats failed", "err", err)
		return nil, err
	}

	const cols = `id, clicked_at, referer, user_agent, browser, os, device`
	var rows pgx.Rows
	var err error
	if cursor <= 0 {
		rows, err = s.db.Query(dbctx,
			`SELECT `+cols+` FROM link_clicks WHERE content_id = $1 ORDER BY id DESC LIMIT $2`,
			contentID, limit)
	} else {
		rows, err = s.db.Query(dbctx,
			`SELECT `+cols+` FROM link_clicks WHERE content_id = $1 AND id < $2 ORDER BY id DESC LIMIT $3`,
			contentID, cursor, limit)
	}
	if err != nil {
		slog.Error("share stats clicks failed", "err", err)
		return nil, err
	}

	clicks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ClickStats, error) {
		var c ClickStats
		err := row.Scan(&c.ID, &c.ClickedAt, &c.Referer, &c.UserAgent, &c.Browser, &c.OS, &c.Device)
		return c, err
	})
	if err != nil {
		slog.Error("share stats scan failed", "err", err)
		return nil, err
	}
	resp.RecentClicks = clicks
	if len(clicks) == limit {
		next := clicks[len(clicks)-1].ID
		resp.NextCursor = &next
	}
	return resp, nil
}

// WarmBloom loads every shared content id into the bloom filter.
func (s *SharesRepo) WarmBloom(ctx context.Context) (int, error) {
	if s.bloom == nil {
		return 0, nil
	}
	rows, err := s.db.Query(ctx, `SELECT content_id::text FROM share_links`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return n, err
		}
		s.bloom.Add(id)
		n++
	}
	return n, rows.Err()
}

// RefreshBloom re-runs WarmBloom every interval until ctx ends, so shares recorded by other
// instances stop being rejected by Stats.
func (s *SharesRepo) RefreshBloom(ctx context.Context, interval time.Duration) {
	if s.bloom == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			warmCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			n, err := s.WarmBloom(warmCtx)
			cancel()
			if err != nil {
				slog.Warn("bloom refresh failed", "err", err)
				continue
			}
			slog.Debug("bloom refreshed", "content_ids", n)
		}
	}
}
