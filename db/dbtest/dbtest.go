// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dosada05/poker-league/db"
)

// Open returns a migrated database in t.TempDir that is closed on cleanup.
func Open(t testing.TB) *db.DB {
	t.Helper()

	database, err := db.Connect("sqlite", filepath.Join(t.TempDir(), "league.db"), 5*time.Second)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})

	if _, err := database.ApplyMigrations(context.Background()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return database
}
