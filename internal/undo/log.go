package undo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/undosql/undosql/internal/sqlitedb"
)

// LogEntry is one row of undolog: a sequence number and the compensating
// statement it carries.
type LogEntry struct {
	Seq int64
	SQL string
}

const createUndologSQL = `CREATE TEMP TABLE undolog(seq INTEGER PRIMARY KEY, sql TEXT)`

// execer and queryer are the minimal collaborator shapes fetchRange,
// deleteRange, and exec0 need. Both sqlitedb.Conn and sqlitedb.Tx satisfy
// them, which lets the Step Engine (step.go) run these same helpers inside
// an open transaction.
type execer interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	Query(ctx context.Context, query string, args ...any) (sqlitedb.Rows, error)
}

// rower is the minimal collaborator shape maxSeq needs. Both sqlitedb.Conn
// and sqlitedb.Tx satisfy it, which lets the Step Engine recompute the log's
// high-water mark mid-transaction, before the transaction commits.
type rower interface {
	QueryRow(ctx context.Context, query string, args ...any) sqlitedb.Row
}

// createLogTable drops any pre-existing undolog (ignoring "not found") and
// creates a fresh session-local one.
func createLogTable(ctx context.Context, conn sqlitedb.Conn) error {
	if err := exec0(ctx, conn, `DROP TABLE IF EXISTS undolog`); err != nil {
		return fmt.Errorf("undo: drop stale undolog: %w", err)
	}
	if err := exec0(ctx, conn, createUndologSQL); err != nil {
		return fmt.Errorf("undo: create undolog: %w", err)
	}
	return nil
}

func dropLogTable(ctx context.Context, conn sqlitedb.Conn) error {
	if err := exec0(ctx, conn, `DROP TABLE IF EXISTS undolog`); err != nil {
		return fmt.Errorf("undo: drop undolog: %w", err)
	}
	return nil
}

// maxSeq returns MAX(seq) from undolog, or 0 if the log is empty. Accepts the
// narrow rower interface so it can run against an open Tx (see step.go)
// as well as the top-level Conn.
func maxSeq(ctx context.Context, conn rower) (int64, error) {
	var seq sql.NullInt64
	if err := conn.QueryRow(ctx, `SELECT MAX(seq) FROM undolog`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("undo: max seq: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return seq.Int64, nil
}

// fetchRange returns every log entry with seq in [begin,end], ordered by seq
// descending (reverse-chronological replay order, per the step algorithm).
func fetchRange(ctx context.Context, conn queryer, begin, end int64) ([]LogEntry, error) {
	rows, err := conn.Query(ctx, `SELECT seq, sql FROM undolog WHERE seq BETWEEN ? AND ? ORDER BY seq DESC`, begin, end)
	if err != nil {
		return nil, fmt.Errorf("undo: fetch range [%d,%d]: %w", begin, end, err)
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.Seq, &e.SQL); err != nil {
			return nil, fmt.Errorf("undo: scan log entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("undo: iterate range [%d,%d]: %w", begin, end, err)
	}
	return out, nil
}

func deleteRange(ctx context.Context, conn execer, begin, end int64) error {
	if err := exec0(ctx, conn, `DELETE FROM undolog WHERE seq BETWEEN ? AND ?`, begin, end); err != nil {
		return fmt.Errorf("undo: delete range [%d,%d]: %w", begin, end, err)
	}
	return nil
}

func deleteAbove(ctx context.Context, conn sqlitedb.Conn, mark int64) error {
	if err := exec0(ctx, conn, `DELETE FROM undolog WHERE seq > ?`, mark); err != nil {
		return fmt.Errorf("undo: delete rows above %d: %w", mark, err)
	}
	return nil
}
