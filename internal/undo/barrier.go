package undo

import "context"

// Barrier closes the currently open recording interval and, if it produced
// any log rows, pushes it onto the undo stack and clears the redo stack —
// the standard linear-history model, where a new user action invalidates
// every previously undone action (I4, P6).
//
// If freeze is active and the open interval extends past the freeze mark,
// end is clamped to the mark (I5) so frozen rows never enter the published
// interval. That clamp can leave begin > end (an "empty" interval by the
// Begin==End+1 definition); per the reference behavior this is still pushed
// onto the undo stack rather than suppressed — see spec §9 and scenario S5.
// Only a barrier over a window with no log rows at all, frozen or not, is a
// true no-op (P4): firstLog hasn't advanced, so there is nothing to push.
func (e *Engine) Barrier(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return ErrNotActive
	}

	max, err := maxSeq(ctx, e.conn)
	if err != nil {
		return err
	}

	end := max
	if e.freeze >= 0 && end > e.freeze {
		end = e.freeze
	}

	begin := e.firstLog
	preBarrierBegin := begin

	if err := e.startInterval(ctx, e.conn); err != nil {
		return err
	}

	if e.firstLog == preBarrierBegin {
		// No rows were logged in this window at all: nothing to publish,
		// frozen or not. Consecutive barriers with no intervening mutation
		// are idempotent (P4).
		e.notify()
		return nil
	}

	e.undoStack.push(Interval{Begin: begin, End: end})
	e.redoStack.clear()

	e.notify()
	return nil
}
