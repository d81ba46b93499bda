package undo

import "errors"

// Error taxonomy per the engine's contract. SchemaError and SqlExecutionError
// conditions are not represented as distinct types — they surface as the
// underlying driver/introspection error wrapped with an operation-named
// prefix (errors.Is against the wrapped sqlite error still works), matching
// how this repository's store layer wraps every database error rather than
// defining a parallel hierarchy. LogicError and StackUnderflow conditions do
// get sentinels below, since callers reasonably want to distinguish "no-op
// because already frozen" from "the database rejected a statement".
var (
	// ErrNotActive is returned by Freeze, Unfreeze, Barrier, Undo, Redo,
	// and Event when the engine has not been activated.
	ErrNotActive = errors.New("undo: engine not active")

	// ErrAlreadyActive is returned by Activate when the engine is already
	// active (Activate is otherwise idempotent: no error is the common
	// case, this sentinel exists so callers can detect the no-op).
	ErrAlreadyActive = errors.New("undo: engine already active")

	// ErrAlreadyFrozen is a LogicError: Freeze called while already frozen.
	ErrAlreadyFrozen = errors.New("undo: already frozen")

	// ErrNotFrozen is a LogicError: Unfreeze called while not frozen.
	ErrNotFrozen = errors.New("undo: not frozen")

	// ErrStackEmpty is a StackUnderflow: Undo/Redo called with an empty
	// source stack. The operation is a no-op; the error is returned so a
	// caller can distinguish "nothing to do" from success, not because the
	// engine considers it fatal.
	ErrStackEmpty = errors.New("undo: stack empty")

	// ErrSchemaIntrospection is the SchemaError sentinel: PRAGMA
	// table_info yielded no columns, or a registered table name is not a
	// safe SQL identifier.
	ErrSchemaIntrospection = errors.New("undo: schema introspection failed")
)
