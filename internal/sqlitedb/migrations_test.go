package sqlitedb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func openTempDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, ctx
}

func TestApplyAndRollbackMigrations(t *testing.T) {
	db, ctx := openTempDB(t)
	if err := ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	mustExist := []string{"notes", "tags"}
	for _, table := range mustExist {
		var name string
		if err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name); err != nil {
			t.Fatalf("expected table %s to exist: %v", table, err)
		}
	}

	if err := RollbackAll(ctx, db); err != nil {
		t.Fatalf("rollback migrations: %v", err)
	}

	for _, table := range mustExist {
		var count int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("count table %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("table %s still exists after rollback", table)
		}
	}
}

func TestApplyMigrationsIdempotent(t *testing.T) {
	db, ctx := openTempDB(t)
	if err := ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("re-apply migrations should be a no-op: %v", err)
	}
}
