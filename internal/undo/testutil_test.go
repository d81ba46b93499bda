package undo

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/undosql/undosql/internal/sqlitedb"
)

// newTestDB opens a temp SQLite database and creates the single-column
// tbl1(a) table used by spec.md's own scenarios (S1-S6), so expected stack
// shapes can be checked against the scenario numbers verbatim.
func newTestDB(t *testing.T) (*sql.DB, sqlitedb.Conn) {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scenario.db")
	db, err := sqlitedb.Open(ctx, path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.ExecContext(ctx, `CREATE TABLE tbl1(a)`); err != nil {
		t.Fatalf("create tbl1: %v", err)
	}
	return db, sqlitedb.Wrap(db)
}

func mustActivate(t *testing.T, e *Engine, tables ...string) {
	t.Helper()
	if err := e.Activate(context.Background(), tables); err != nil {
		t.Fatalf("activate: %v", err)
	}
}

func tbl1Values(t *testing.T, db *sql.DB) []int {
	t.Helper()
	rows, err := db.QueryContext(context.Background(), `SELECT a FROM tbl1 ORDER BY a`)
	if err != nil {
		t.Fatalf("query tbl1: %v", err)
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var a int
		if err := rows.Scan(&a); err != nil {
			t.Fatalf("scan tbl1: %v", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate tbl1: %v", err)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalIntervals(a, b []Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
