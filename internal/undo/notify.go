package undo

// Notifier is the engine's UI-refresh hook (spec §6/§9). Refresh and
// ReloadAll are invoked, in that order, after every mutating public
// operation (Activate, Deactivate, Freeze, Unfreeze, Barrier, Undo, Redo,
// Event). The core only guarantees the calls happen; dispatch to actual
// observers (redrawing a widget tree, invalidating a cache) is the caller's
// concern, supplied via WithNotifier.
type Notifier interface {
	Refresh()
	ReloadAll()
}

// NotifierFunc adapts two plain functions to the Notifier interface, the way
// http.HandlerFunc adapts a function to http.Handler. A nil field is treated
// as a no-op call.
type NotifierFunc struct {
	OnRefresh   func()
	OnReloadAll func()
}

func (f NotifierFunc) Refresh() {
	if f.OnRefresh != nil {
		f.OnRefresh()
	}
}

func (f NotifierFunc) ReloadAll() {
	if f.OnReloadAll != nil {
		f.OnReloadAll()
	}
}

type noopNotifier struct{}

func (noopNotifier) Refresh()   {}
func (noopNotifier) ReloadAll() {}
