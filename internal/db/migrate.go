package db

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// Migrate applies migrations and optional seed files found in the repository.
// It creates a `schema_migrations` table to track applied migrations and applies
// any SQL files in `migrations/` that have not yet been recorded. Seed files
// are applied idempotently.
func Migrate(ctx context.Context, d *DB, migrationFS embed.FS, seedFS embed.FS) error {
	if _, err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	migDir := "migrations"

	entries, err := fs.ReadDir(migrationFS, migDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	for _, fname := range files {
		version := strings.TrimSuffix(fname, path.Ext(fname))

		var count int
		row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration applied count: %w", err)
		}
		if count > 0 {
			continue
		}

		b, err := fs.ReadFile(migrationFS, path.Join(migDir, fname))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		err = d.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(b)); err != nil {
				return fmt.Errorf("exec migration %s: %w", fname, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied) VALUES (?, strftime('%s','now'))`, version); err != nil {
				return fmt.Errorf("record migration %s: %w", fname, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		d.logger.Info("migration applied", "version", version)
	}

	return seedInternships(ctx, d, seedFS)
}

type seedInternship struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Stipend     string   `json:"stipend"`
	Duration    string   `json:"duration"`
	ApplyBy     string   `json:"apply_by"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// seedInternships loads seed/internships.json when present. Existing rows are
// left untouched so a re-run never resets stats of a live listing.
func seedInternships(ctx context.Context, d *DB, seedFS embed.FS) error {
	b, err := fs.ReadFile(seedFS, path.Join("seed", "internships.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read internship seed: %w", err)
	}
	var items []seedInternship
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("decode internship seed: %w", err)
	}
	now := time.Now().UTC().UnixMilli()
	return d.WithTx(ctx, func(tx *sql.Tx) error {
		for _, it := range items {
			skills, err := json.Marshal(it.Skills)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO internships (id, title, location, stipend, duration, apply_by, description, skills, posted_by, created) VALUES (?,?,?,?,?,?,?,?,?,?)`,
				it.ID, it.Title, it.Location, it.Stipend, it.Duration, it.ApplyBy, it.Description, string(skills), "seed", now); err != nil {
				return fmt.Errorf("seed internship %s: %w", it.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO internship_stats (internship_id, title, active, closed, application_count, applicants, updated) VALUES (?, ?, 1, 0, 0, '[]', ?)`,
				it.ID, it.Title, now); err != nil {
				return fmt.Errorf("seed internship stat %s: %w", it.ID, err)
			}
		}
		return nil
	})
}
