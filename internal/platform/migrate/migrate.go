package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"taboo.local/migrations"
)

// lockID serializes migrations across instances starting at the same time.
const lockID = 7_301_551_001

type Options struct {
	// Dir overrides the embedded migrations with a directory on disk.
	Dir string
	// FS overrides both; used by tests.
	FS fs.FS
}

type Result struct {
	Source       string
	AppliedFiles []string
	SkippedFiles []string
}

// Up applies every .sql file not yet recorded in schema_migrations, one transaction per file.
func Up(ctx context.Context, db *pgxpool.Pool, opts Options) (*Result, error) {
	fsys, source := resolveSource(opts)

	entries, err := listSQLFiles(fsys)
	if err != nil {
		return nil, fmt.Errorf("list migrations in %s: %w", source, err)
	}

	conn, err := db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockID); err != nil {
		return nil, fmt.Errorf("migration lock: %w", err)
	}
	defer conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)

	if _, err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`); err != nil {
		return nil, err
	}

	res := &Result{Source: source}
	for _, name := range entries {
		var applied bool
		if err := conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, name).Scan(&applied); err != nil {
			return nil, err
		}
		if applied {
			res.SkippedFiles = append(res.SkippedFiles, name)
			continue
		}

		sqlBytes, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		tx, err := conn.Begin(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		res.AppliedFiles = append(res.AppliedFiles, name)
	}

	return res, nil
}

func resolveSource(opts Options) (fs.FS, string) {
	switch {
	case opts.FS != nil:
		return opts.FS, "custom fs"
	case strings.TrimSpace(opts.Dir) != "":
		return os.DirFS(opts.Dir), opts.Dir
	default:
		return migrations.FS, "embedded"
	}
}

// listSQLFiles returns top-level .sql files sorted by name.
func listSQLFiles(fsys fs.FS) ([]string, error) {
	dirEntries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	entries := make([]string, 0, len(dirEntries))
	for _, d := range dirEntries {
		if d.IsDir() {
			continue
		}
		if strings.EqualFold(path.Ext(d.Name()), ".sql") {
			entries = append(entries, d.Name())
		}
	}
	sort.Strings(entries)
	return entries, nil
}
