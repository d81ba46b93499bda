// Package notesdemo is a minimal CRUD model whose tables cmd/undoctl
// registers with the undo engine. The undo engine's own tests do not use
// it; they register an ad hoc tbl1 table instead. Neither table
// declares an INTEGER PRIMARY KEY, so compensating statements generated by
// internal/undo must target SQLite's implicit rowid rather than a
// user-declared key.
package notesdemo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID        string
	Title     string
	Body      string
	UpdatedAt time.Time
}

// Tables is the registered table set passed to undo.Engine.Activate by the
// demo CLI.
var Tables = []string{"notes", "tags"}

func NewID() string {
	return uuid.NewString()
}

func Insert(ctx context.Context, db *sql.DB, n Note) error {
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `INSERT INTO notes(id, title, body, updated_at) VALUES (?, ?, ?, ?)`,
		n.ID, n.Title, n.Body, n.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func Update(ctx context.Context, db *sql.DB, id, title, body string) error {
	res, err := db.ExecContext(ctx, `UPDATE notes SET title = ?, body = ?, updated_at = ? WHERE id = ?`,
		title, body, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("note %s not found", id)
	}
	return nil
}

func Delete(ctx context.Context, db *sql.DB, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

func Tag(ctx context.Context, db *sql.DB, noteID, tag string) error {
	if _, err := db.ExecContext(ctx, `INSERT INTO tags(note_id, tag) VALUES (?, ?)`, noteID, tag); err != nil {
		return fmt.Errorf("tag note: %w", err)
	}
	return nil
}

func List(ctx context.Context, db *sql.DB) ([]Note, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, title, body, updated_at FROM notes ORDER BY updated_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := make([]Note, 0)
	for rows.Next() {
		var n Note
		var updatedAt string
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse note updated_at: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter notes: %w", err)
	}
	return out, nil
}
