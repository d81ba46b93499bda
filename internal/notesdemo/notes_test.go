package notesdemo

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/undosql/undosql/internal/sqlitedb"
)

func openTestDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.db")
	db, err := sqlitedb.Open(ctx, path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlitedb.ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db, ctx
}

func TestInsertAndList(t *testing.T) {
	db, ctx := openTestDB(t)

	n := Note{ID: NewID(), Title: "first", Body: "body one"}
	if err := Insert(ctx, db, n); err != nil {
		t.Fatalf("insert: %v", err)
	}

	notes, err := List(ctx, db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("notes = %v, want 1 entry", notes)
	}
	if notes[0].ID != n.ID || notes[0].Title != "first" || notes[0].Body != "body one" {
		t.Fatalf("notes[0] = %+v, want id=%s title=first body=\"body one\"", notes[0], n.ID)
	}
}

func TestUpdateUnknownNoteErrors(t *testing.T) {
	db, ctx := openTestDB(t)
	if err := Update(ctx, db, "missing", "t", "b"); err == nil {
		t.Fatalf("expected error updating a nonexistent note")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	db, ctx := openTestDB(t)

	n := Note{ID: NewID(), Title: "before", Body: "before body"}
	if err := Insert(ctx, db, n); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := Update(ctx, db, n.ID, "after", "after body"); err != nil {
		t.Fatalf("update: %v", err)
	}

	notes, err := List(ctx, db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "after" || notes[0].Body != "after body" {
		t.Fatalf("notes = %v, want one updated entry", notes)
	}

	if err := Delete(ctx, db, n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	notes, err = List(ctx, db)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("notes after delete = %v, want empty", notes)
	}
}

func TestTagCascadesOnNoteDelete(t *testing.T) {
	db, ctx := openTestDB(t)

	n := Note{ID: NewID(), Title: "tagged", Body: "body"}
	if err := Insert(ctx, db, n); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := Tag(ctx, db, n.ID, "work"); err != nil {
		t.Fatalf("tag: %v", err)
	}

	var before int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags WHERE note_id = ?`, n.ID).Scan(&before); err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if before != 1 {
		t.Fatalf("tags before delete = %d, want 1", before)
	}

	if err := Delete(ctx, db, n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var after int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags WHERE note_id = ?`, n.ID).Scan(&after); err != nil {
		t.Fatalf("count tags after delete: %v", err)
	}
	if after != 0 {
		t.Fatalf("tags after delete = %d, want 0 (ON DELETE CASCADE)", after)
	}
}
