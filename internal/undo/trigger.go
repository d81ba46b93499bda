package undo

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/undosql/undosql/internal/sqlitedb"
)

// ColumnInfo mirrors one row of PRAGMA table_info(<table>).
type ColumnInfo struct {
	CID     int
	Name    string
	Type    string
	NotNull bool
	Default sql.NullString
	IsPK    bool
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: invalid table name %q", ErrSchemaIntrospection, name)
	}
	return nil
}

// introspectColumns runs PRAGMA table_info(table) and returns its columns in
// declaration order. PRAGMA does not accept bound parameters, so the table
// name is validated against identifierPattern before being embedded in the
// statement text.
func introspectColumns(ctx context.Context, conn sqlitedb.Conn, table string) ([]ColumnInfo, error) {
	if err := validateIdentifier(table); err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return nil, fmt.Errorf("%w: pragma table_info(%s): %w", ErrSchemaIntrospection, table, err)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		var notnull, pk int
		var dflt any
		if err := rows.Scan(&c.CID, &c.Name, &c.Type, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("%w: scan table_info(%s): %w", ErrSchemaIntrospection, table, err)
		}
		c.NotNull = notnull != 0
		c.IsPK = pk != 0
		if s, ok := dflt.(string); ok {
			c.Default = sql.NullString{String: s, Valid: true}
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate table_info(%s): %w", ErrSchemaIntrospection, table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: table %q has no columns (does it exist?)", ErrSchemaIntrospection, table)
	}
	return cols, nil
}

func insertTriggerName(table string) string { return "_" + table + "_it" }
func updateTriggerName(table string) string { return "_" + table + "_ut" }
func deleteTriggerName(table string) string { return "_" + table + "_dt" }

// installTriggers introspects each table and installs its three temp
// triggers (AFTER INSERT, AFTER UPDATE, BEFORE DELETE) as one batch. Trigger
// bodies write a single compensating SQL statement into undolog per row
// mutation, built with the sqlite quote() builtin so every value round-trips
// as a valid SQL literal regardless of embedded quotes, NULLs, or blobs.
func installTriggers(ctx context.Context, conn sqlitedb.Conn, tables []string) error {
	var script strings.Builder
	for _, table := range tables {
		if err := validateIdentifier(table); err != nil {
			return err
		}
		cols, err := introspectColumns(ctx, conn, table)
		if err != nil {
			return err
		}
		writeInsertTrigger(&script, table)
		writeUpdateTrigger(&script, table, cols)
		writeDeleteTrigger(&script, table, cols)
	}
	if script.Len() == 0 {
		return nil
	}
	if err := conn.ExecBatch(ctx, script.String()); err != nil {
		return fmt.Errorf("undo: install triggers: %w", err)
	}
	return nil
}

// dropTriggers removes every trigger installTriggers may have created for
// the given tables. Safe to call even if some or all triggers don't exist.
func dropTriggers(ctx context.Context, conn sqlitedb.Conn, tables []string) error {
	var script strings.Builder
	for _, table := range tables {
		fmt.Fprintf(&script, "DROP TRIGGER IF EXISTS %s;\n", insertTriggerName(table))
		fmt.Fprintf(&script, "DROP TRIGGER IF EXISTS %s;\n", updateTriggerName(table))
		fmt.Fprintf(&script, "DROP TRIGGER IF EXISTS %s;\n", deleteTriggerName(table))
	}
	if script.Len() == 0 {
		return nil
	}
	if err := conn.ExecBatch(ctx, script.String()); err != nil {
		return fmt.Errorf("undo: drop triggers: %w", err)
	}
	return nil
}

func writeInsertTrigger(b *strings.Builder, table string) {
	fmt.Fprintf(b, "CREATE TEMP TRIGGER %s AFTER INSERT ON %s BEGIN\n", insertTriggerName(table), table)
	fmt.Fprintf(b, "  INSERT INTO undolog VALUES(NULL, 'DELETE FROM %s WHERE rowid='||new.rowid);\n", table)
	b.WriteString("END;\n")
}

// updateCompensatingExpr builds the SQL expression (a chain of string
// literals and ||quote(old.col) terms) that, evaluated by the engine at
// trigger-fire time, yields the UPDATE statement reversing one row's prior
// values. For columns a,b this produces:
//
//	'UPDATE T SET a='||quote(old.a)||',b='||quote(old.b)||' WHERE rowid='||old.rowid
func updateCompensatingExpr(table string, cols []ColumnInfo) string {
	var b strings.Builder
	b.WriteString("'UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(c.Name)
		b.WriteString("='||quote(old.")
		b.WriteString(c.Name)
		b.WriteString(")||'")
	}
	b.WriteString(" WHERE rowid='||old.rowid")
	return b.String()
}

// deleteCompensatingExpr builds the expression yielding the INSERT statement
// that restores a row about to be deleted. For columns a,b this produces:
//
//	'INSERT INTO T(rowid,a,b) VALUES('||old.rowid||','||quote(old.a)||','||quote(old.b)||')'
func deleteCompensatingExpr(table string, cols []ColumnInfo) string {
	var b strings.Builder
	b.WriteString("'INSERT INTO ")
	b.WriteString(table)
	b.WriteString("(rowid")
	for _, c := range cols {
		b.WriteString(",")
		b.WriteString(c.Name)
	}
	b.WriteString(") VALUES('||old.rowid")
	for _, c := range cols {
		b.WriteString("||','||quote(old.")
		b.WriteString(c.Name)
		b.WriteString(")")
	}
	b.WriteString("||')'")
	return b.String()
}

func writeUpdateTrigger(b *strings.Builder, table string, cols []ColumnInfo) {
	fmt.Fprintf(b, "CREATE TEMP TRIGGER %s AFTER UPDATE ON %s BEGIN\n", updateTriggerName(table), table)
	fmt.Fprintf(b, "  INSERT INTO undolog VALUES(NULL, %s);\n", updateCompensatingExpr(table, cols))
	b.WriteString("END;\n")
}

func writeDeleteTrigger(b *strings.Builder, table string, cols []ColumnInfo) {
	fmt.Fprintf(b, "CREATE TEMP TRIGGER %s BEFORE DELETE ON %s BEGIN\n", deleteTriggerName(table), table)
	fmt.Fprintf(b, "  INSERT INTO undolog VALUES(NULL, %s);\n", deleteCompensatingExpr(table, cols))
	b.WriteString("END;\n")
}
