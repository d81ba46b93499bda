package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is a single forward/backward schema step, tracked by version in
// schema_migrations. Only the undoctl demo schema (notes, tags) is migrated
// this way; the undo engine's own undolog table is session-local and is
// created/dropped directly by internal/undo, not through this mechanism.
type Migration struct {
	Version int
	UpSQL   string
	DownSQL string
}

var migrations = []Migration{
	{
		Version: 1,
		UpSQL: `
CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	note_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	FOREIGN KEY(note_id) REFERENCES notes(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS tags_note_id ON tags(note_id);
`,
		DownSQL: `
DROP INDEX IF EXISTS tags_note_id;
DROP TABLE IF EXISTS tags;
DROP TABLE IF EXISTS notes;
`,
	},
}

// ApplyMigrations runs every migration not yet recorded in schema_migrations,
// each inside its own transaction. Safe to call repeatedly.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations(version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE version = ?`, m.Version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx for migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("apply migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, applied_at) VALUES (?, datetime('now'))`, m.Version); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// RollbackAll reverses every migration in descending version order.
func RollbackAll(ctx context.Context, db *sql.DB) error {
	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin rollback tx %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.DownSQL); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("rollback migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, m.Version); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("unrecord migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit rollback %d: %w", m.Version, err)
		}
	}
	return nil
}
