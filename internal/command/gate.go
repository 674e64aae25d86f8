package command

import "sync/atomic"

// Gate is the flag held while a direct (non-priority) command such as
// open, close or seek executes. It must be entered before the direct work
// starts and exited after it ends; enter it through Manager.BeginDirect so
// that it never overlaps a pending priority command.
type Gate struct {
	executing atomic.Bool
}

// IsExecuting returns true while a direct command holds the gate.
func (g *Gate) IsExecuting() bool {
	return g.executing.Load()
}

// TryEnter takes the gate if it is free.
func (g *Gate) TryEnter() bool {
	return g.executing.CompareAndSwap(false, true)
}

// Exit releases the gate.
func (g *Gate) Exit() {
	g.executing.Store(false)
}
