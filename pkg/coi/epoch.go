package coi

import "sync/atomic"

// Epoch is a monotonically increasing counter a caller can pin to observe
// a point in the index's lifetime, e.g. to assert that a deleted node has
// actually become unreachable before asserting on memory-sensitive
// behavior in tests. It does not gate node reclamation itself — the Go
// runtime reclaims unlinked nodes once no reader holds a reference to
// them, the same as it would any other unreachable value.
type Epoch struct {
	counter atomic.Uint64
}

// Pin advances the epoch and returns the new value.
func (e *Epoch) Pin() uint64 {
	return e.counter.Add(1)
}

// Current returns the last pinned epoch value.
func (e *Epoch) Current() uint64 {
	return e.counter.Load()
}
