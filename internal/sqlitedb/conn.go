// Package sqlitedb wraps database/sql + modernc.org/sqlite with the
// minimal collaborator surface the undo engine (internal/undo) depends on:
// execute, batch-execute, prepared query, and transactions.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Row mirrors *sql.Row's Scan method so fakes can stand in for tests.
type Row interface {
	Scan(dest ...any) error
}

// Rows mirrors the subset of *sql.Rows the engine needs.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Tx is a transaction-scoped Conn. Callers must call Commit or Rollback
// exactly once.
type Tx interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Commit() error
	Rollback() error
}

// Conn is the database collaborator the undo engine depends on. A
// *sql.DB-backed implementation is provided by Wrap; tests may substitute a
// fake satisfying the same interface.
type Conn interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	ExecBatch(ctx context.Context, script string) error
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	BeginTx(ctx context.Context) (Tx, error)
}

type sqlDBConn struct {
	db *sql.DB
}

// Open opens a SQLite database at path, applying the pragmas the engine
// relies on (WAL journal mode, a busy timeout, foreign keys on, and a
// single open connection — SQLite's writer lock means concurrency must be
// serialized at the connection-pool level, not the driver level).
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Wrap adapts a *sql.DB into the Conn interface the undo engine consumes.
func Wrap(db *sql.DB) Conn {
	return &sqlDBConn{db: db}
}

func (c *sqlDBConn) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// ExecBatch runs a semicolon-separated script in one ExecContext call.
// modernc.org/sqlite (like the reference SQLite C API) executes every
// statement in the string, which is what lets the trigger factory install
// three triggers per table in a single round trip.
func (c *sqlDBConn) ExecBatch(ctx context.Context, script string) error {
	_, err := c.db.ExecContext(ctx, script)
	return err
}

func (c *sqlDBConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *sqlDBConn) QueryRow(ctx context.Context, query string, args ...any) Row {
	return c.db.QueryRowContext(ctx, query, args...)
}

func (c *sqlDBConn) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *sqlTx) QueryRow(ctx context.Context, query string, args ...any) Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }
