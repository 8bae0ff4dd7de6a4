package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink persists a batch of click events.
type Sink interface {
	WriteClicks(ctx context.Context, batch []ClickEvent) error
}

// PGSink writes clicks into link_clicks and bumps share_links.click_count, all in one transaction.
type PGSink struct {
	db *pgxpool.Pool
}

func NewPGSink(db *pgxpool.Pool) *PGSink {
	return &PGSink{db: db}
}

func (s *PGSink) WriteClicks(ctx context.Context, batch []ClickEvent) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin click tx: %w", err)
	}
	defer tx.Rollback(context.Background())

	counts := make(map[string]int64)
	b := &pgx.Batch{}
	for _, e := range batch {
		client := ParseClient(e.UserAgent)
		b.Queue(`INSERT INTO link_clicks (content_id, code, clicked_at, ip, user_agent, referer, browser, os, device)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ContentID, e.Code, e.ClickedAt, e.IP, e.UserAgent, e.Referer, client.Browser, client.OS, client.Device)
		counts[e.ContentID]++
	}
	for contentID, n := range counts {
		b.Queue(`UPDATE share_links SET click_count = click_count + $2 WHERE content_id = $1`, contentID, n)
	}

	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("write clicks: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit clicks: %w", err)
	}
	slog.Debug("click stats flushed", "count", len(batch), "contents", len(counts))
	return nil
}
