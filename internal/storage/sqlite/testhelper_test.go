package sqlite

import (
	"path/filepath"
	"testing"
)

// setupTestDB opens a migrated database in a per-test temporary directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "survey.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}
