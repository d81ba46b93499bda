package undo

import (
	"context"
	"fmt"

	"github.com/undosql/undosql/internal/sqlitedb"
)

// Interval is an inclusive [Begin,End] range of undolog sequence numbers
// forming one logical undo/redo unit.
type Interval struct {
	Begin int64
	End   int64
}

// Empty reports whether the interval produced no log rows (Begin == End+1).
func (iv Interval) Empty() bool {
	return iv.Begin == iv.End+1
}

// Freeze sentinel regimes (spec §3). freezeActive means "active, not
// currently frozen"; any value >= 0 means frozen at that seq mark. The
// "None" regime (feature disabled) is represented by Engine.active == false
// rather than a third magic freeze value — every Freeze/Unfreeze call
// checks active first, so freeze's own zero value never needs to mean
// "inactive".
const freezeActive int64 = -1

// startInterval sets firstLog to one past the current tail of undolog. It
// is called after activation, after every barrier, and after every
// undo/redo step — each of those moments defines the start of a new
// recording interval.
func (e *Engine) startInterval(ctx context.Context, conn sqlitedb.Conn) error {
	max, err := maxSeq(ctx, conn)
	if err != nil {
		return fmt.Errorf("undo: start interval: %w", err)
	}
	e.firstLog = max + 1
	return nil
}
