// Package dbtest opens migrated throwaway SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/Lokesh1028/agentjobs/internal/db"
)

// URL returns a sqlite:// URL for a fresh file in the test's temp dir.
func URL(t testing.TB) string {
	t.Helper()
	return "sqlite://" + filepath.Join(t.TempDir(), "agentjobs.db")
}

// New migrates a fresh SQLite database and returns a connection to it that
// is closed when the test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	url := URL(t)
	if err := db.MigrateUp(url); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	conn, err := db.NewDB(context.Background(), url)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}
