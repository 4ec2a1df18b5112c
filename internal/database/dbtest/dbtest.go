// Package dbtest provides a migrated throwaway SQLite database for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/math-adventure/backend/internal/database"
)

func New(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreatePlayer inserts a player with a placeholder PIN hash and returns its id.
func CreatePlayer(t testing.TB, db *database.DB, username string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO players (username, email, avatar, pin_hash)
		 VALUES (?, ?, ?, ?) RETURNING id`,
		username, username+"@example.com", "🧒", "hash",
	).Scan(&id)
	if err != nil {
		t.Fatalf("create player %s: %v", username, err)
	}
	return id
}
