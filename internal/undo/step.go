package undo

import "context"

// Undo pops the top interval off the undo stack, replays its compensating
// statements, and pushes the resulting mirror interval onto the redo stack.
// A no-op (ErrStackEmpty) if the undo stack is empty.
func (e *Engine) Undo(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return ErrNotActive
	}
	return e.step(ctx, &e.undoStack, &e.redoStack)
}

// Redo pops the top interval off the redo stack, replays its compensating
// statements, and pushes the resulting mirror interval onto the undo stack.
// A no-op (ErrStackEmpty) if the redo stack is empty.
func (e *Engine) Redo(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return ErrNotActive
	}
	return e.step(ctx, &e.redoStack, &e.undoStack)
}

// step implements the Step Engine algorithm (spec §4.5): pop an interval
// from source, delete its log rows, reset firstlog to the post-delete
// high-water mark, replay the popped rows' compensating statements in
// reverse sequence order (which, with triggers still live, writes a fresh
// set of compensating rows), and push that fresh range as the mirror
// interval onto target.
//
// An interval with Begin > End (the empty-after-freeze-clamp shape from
// Barrier, see S5) is not special-cased: fetchRange/deleteRange see an empty
// BETWEEN window and touch zero rows, so the sequence below still runs to
// completion and still pushes a (possibly itself empty) mirror interval onto
// target — preserving symmetry with the push-even-when-empty behavior
// Barrier already commits to for the forward direction.
//
// Must be called with e.mu held.
func (e *Engine) step(ctx context.Context, source, target *stack) error {
	iv, ok := source.pop()
	if !ok {
		return ErrStackEmpty
	}

	tx, err := e.conn.BeginTx(ctx)
	if err != nil {
		source.push(iv)
		return err
	}

	entries, err := fetchRange(ctx, tx, iv.Begin, iv.End)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		source.push(iv)
		return err
	}

	if err := deleteRange(ctx, tx, iv.Begin, iv.End); err != nil {
		tx.Rollback() //nolint:errcheck
		source.push(iv)
		return err
	}

	postDelete, err := maxSeq(ctx, tx)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		source.push(iv)
		return err
	}
	newBegin := postDelete + 1

	for _, entry := range entries {
		if err := exec0(ctx, tx, entry.SQL); err != nil {
			tx.Rollback() //nolint:errcheck
			// The rollback restores undolog and the tables, but iv has
			// been popped and is not pushed back, so the in-memory stack
			// no longer matches undolog; per
			// spec §7 the engine does not attempt to repair this, the
			// caller should treat engine state as undefined and
			// deactivate+reactivate.
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	newEnd, err := maxSeq(ctx, e.conn)
	if err != nil {
		return err
	}
	target.push(Interval{Begin: newBegin, End: newEnd})

	if err := e.startInterval(ctx, e.conn); err != nil {
		return err
	}

	e.notify()
	return nil
}
