// Command undoctl is a line-oriented demo of the undo/redo engine over a
// tiny notes+tags schema. It reads commands from stdin: raw SQL statements
// are executed directly against the database; a handful of bare words
// (barrier, undo, redo, freeze, unfreeze, event, .stacks, .notes) drive the
// engine itself.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/undosql/undosql/internal/config"
	"github.com/undosql/undosql/internal/notesdemo"
	"github.com/undosql/undosql/internal/sqlitedb"
	"github.com/undosql/undosql/internal/undo"
)

func main() {
	cfg := config.Default()
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite path for the notes demo database")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	db, err := sqlitedb.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if err := sqlitedb.ApplyMigrations(ctx, db); err != nil {
		return err
	}

	conn := sqlitedb.Wrap(db)
	notifier := undo.NotifierFunc{
		OnRefresh:   func() { fmt.Fprintln(os.Stderr, "[refresh]") },
		OnReloadAll: func() { fmt.Fprintln(os.Stderr, "[reload-all]") },
	}
	engine := undo.New(conn, undo.WithNotifier(notifier))
	if err := engine.Activate(ctx, notesdemo.Tables); err != nil {
		return fmt.Errorf("activate undo engine: %w", err)
	}
	defer engine.Deactivate(ctx) //nolint:errcheck

	fmt.Println("undoctl ready. Enter SQL, or: barrier | undo | redo | freeze | unfreeze | event | .stacks | .notes | .quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ".quit" {
			return nil
		}
		if err := dispatch(ctx, engine, db, line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func dispatch(ctx context.Context, engine *undo.Engine, db *sql.DB, line string) error {
	switch line {
	case "barrier":
		return engine.Barrier(ctx)
	case "undo":
		return engine.Undo(ctx)
	case "redo":
		return engine.Redo(ctx)
	case "freeze":
		return engine.Freeze(ctx)
	case "unfreeze":
		return engine.Unfreeze(ctx)
	case "event":
		return engine.Event(ctx)
	case ".stacks":
		printStacks(engine)
		return nil
	case ".notes":
		return printNotes(ctx, db)
	}
	_, err := db.ExecContext(ctx, line)
	return err
}

func printStacks(engine *undo.Engine) {
	fmt.Printf("firstlog=%d\n", engine.FirstLog())
	fmt.Printf("undo: %s\n", formatStack(engine.UndoStack()))
	fmt.Printf("redo: %s\n", formatStack(engine.RedoStack()))
}

func formatStack(stack []undo.Interval) string {
	if len(stack) == 0 {
		return "[]"
	}
	parts := make([]string, len(stack))
	for i, iv := range stack {
		parts[i] = fmt.Sprintf("(%d,%d len=%s)", iv.Begin, iv.End, humanize.Comma(intervalLen(iv)))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func intervalLen(iv undo.Interval) int64 {
	n := iv.End - iv.Begin + 1
	if n < 0 {
		return 0
	}
	return n
}

func printNotes(ctx context.Context, db *sql.DB) error {
	notes, err := notesdemo.List(ctx, db)
	if err != nil {
		return err
	}
	for _, n := range notes {
		fmt.Printf("%s\t%s\t%s\n", n.ID, n.Title, n.Body)
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "undoctl:", err)
	os.Exit(1)
}
