// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"context"
	"embed"
	"path/filepath"
	"testing"

	dbfs "github.com/sagniknandigit/internship-management/db"
	"github.com/sagniknandigit/internship-management/internal/db"
)

// Open returns a migrated database stored under t.TempDir. Seed data is not
// loaded so tests start from empty tables.
func Open(t testing.TB) *db.DB {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := db.Migrate(ctx, d, dbfs.Migrations, embed.FS{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return d
}
