// Package undo implements a row-level undo/redo engine layered on a SQLite
// connection that supports triggers, temp tables, and textual SQL execution.
// It records a reversible history of mutations to a caller-registered set of
// tables via generated triggers, groups the resulting log rows into
// barrier-delimited intervals, and exposes Undo/Redo to traverse that
// history.
package undo

import (
	"context"
	"fmt"
	"sync"

	"github.com/undosql/undosql/internal/sqlitedb"
)

// stack is a LIFO sequence of intervals. The zero value is an empty stack.
type stack []Interval

func (s *stack) push(iv Interval) {
	*s = append(*s, iv)
}

func (s *stack) pop() (Interval, bool) {
	if len(*s) == 0 {
		return Interval{}, false
	}
	n := len(*s) - 1
	iv := (*s)[n]
	*s = (*s)[:n]
	return iv, true
}

func (s *stack) clear() {
	*s = nil
}

func (s stack) snapshot() []Interval {
	out := make([]Interval, len(s))
	copy(out, s)
	return out
}

// Engine is the undo/redo engine. The zero value is not usable; construct
// with New. An Engine borrows its connection for its lifetime — the
// connection must outlive the Engine, and the Engine owns undolog and every
// trigger it installs, tearing both down on Deactivate.
//
// Engine is not reentrant: callers must not invoke a second public method
// from within a Notifier callback or otherwise overlap calls on the same
// Engine from multiple goroutines. The mutex below is a safety margin, not
// a substitute for the single-caller discipline spec'd in §5 — it only
// prevents corruption of the in-memory stacks if a caller violates that
// discipline, it does not make concurrent undo/redo calls meaningful.
type Engine struct {
	mu sync.Mutex

	conn   sqlitedb.Conn
	tables []string

	active   bool
	freeze   int64
	firstLog int64

	undoStack stack
	redoStack stack

	notifier Notifier
}

// Option configures an Engine constructed by New.
type Option func(*Engine)

// WithNotifier registers an observer invoked after every mutating public
// operation (Activate, Deactivate, Freeze, Unfreeze, Barrier, Undo, Redo,
// Event). See Notifier.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// New constructs an inactive Engine bound to conn. Call Activate to begin
// recording.
func New(conn sqlitedb.Conn, opts ...Option) *Engine {
	e := &Engine{conn: conn, notifier: noopNotifier{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Active reports whether the engine is currently recording.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// FirstLog returns the sequence number the next log row is expected to
// receive. Exposed primarily for tests asserting invariant I3/property P7.
func (e *Engine) FirstLog() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.firstLog
}

// UndoStack returns a snapshot of the undo stack, bottom to top.
func (e *Engine) UndoStack() []Interval {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.undoStack.snapshot()
}

// RedoStack returns a snapshot of the redo stack, bottom to top.
func (e *Engine) RedoStack() []Interval {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.redoStack.snapshot()
}

// Tables returns the registered table set from the most recent Activate.
func (e *Engine) Tables() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.tables))
	copy(out, e.tables)
	return out
}

// Activate installs triggers on tables, resets both stacks, and opens the
// first recording interval. Idempotent if already active: returns
// ErrAlreadyActive but otherwise leaves the engine untouched (the caller
// must Deactivate first to change the registered table set).
func (e *Engine) Activate(ctx context.Context, tables []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return ErrAlreadyActive
	}

	if err := createLogTable(ctx, e.conn); err != nil {
		return err
	}
	if err := installTriggers(ctx, e.conn, tables); err != nil {
		return err
	}

	e.tables = append([]string(nil), tables...)
	e.undoStack.clear()
	e.redoStack.clear()
	e.active = true
	e.freeze = freezeActive
	if err := e.startInterval(ctx, e.conn); err != nil {
		return err
	}

	e.notify()
	return nil
}

// Deactivate drops every trigger installed by Activate, drops undolog, and
// resets all engine state. Idempotent if already inactive.
func (e *Engine) Deactivate(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return nil
	}

	if err := dropTriggers(ctx, e.conn, e.tables); err != nil {
		return err
	}
	if err := dropLogTable(ctx, e.conn); err != nil {
		return err
	}

	e.tables = nil
	e.undoStack.clear()
	e.redoStack.clear()
	e.active = false
	e.freeze = freezeActive
	e.firstLog = 0

	e.notify()
	return nil
}

// Freeze begins excluding subsequent changes from any interval a barrier
// would publish. A no-op (ErrAlreadyFrozen) if already frozen; a no-op
// (ErrNotActive) if the engine is inactive.
func (e *Engine) Freeze(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return ErrNotActive
	}
	if e.freeze >= 0 {
		return ErrAlreadyFrozen
	}

	max, err := maxSeq(ctx, e.conn)
	if err != nil {
		return fmt.Errorf("undo: freeze: %w", err)
	}
	e.freeze = max

	e.notify()
	return nil
}

// Unfreeze discards every log row recorded while frozen and resumes normal
// recording. A no-op (ErrNotFrozen) if not currently frozen; a no-op
// (ErrNotActive) if inactive.
func (e *Engine) Unfreeze(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return ErrNotActive
	}
	if e.freeze < 0 {
		return ErrNotFrozen
	}

	if err := deleteAbove(ctx, e.conn, e.freeze); err != nil {
		return fmt.Errorf("undo: unfreeze: %w", err)
	}
	e.freeze = freezeActive

	e.notify()
	return nil
}

// Event is an advisory "a change happened" hook. The reference engine
// leaves idle-time barrier batching as a design placeholder (see spec §9);
// this implementation resolves that placeholder by calling Barrier
// directly, making Event a synonym callers can use at natural checkpoints
// (e.g. after a UI action completes) without having to name Barrier itself.
func (e *Engine) Event(ctx context.Context) error {
	return e.Barrier(ctx)
}

func (e *Engine) notify() {
	e.notifier.Refresh()
	e.notifier.ReloadAll()
}

// exec0 runs a statement and discards its Result, wrapping the common case
// where callers only care whether the statement succeeded. Accepts the
// narrow execer interface (see log.go) so it works against both a Conn and
// an open Tx.
func exec0(ctx context.Context, conn execer, query string, args ...any) error {
	_, err := conn.Exec(ctx, query, args...)
	return err
}
