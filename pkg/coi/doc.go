/*
Package coi implements a Concurrent Ordered Index: a lock-free, multi-level
skip list keyed by an ordered type, supporting lock-free reads and
CAS-retrying writers under concurrent access.

The design follows the lock-free skip list pattern (sentinel head/tail
nodes, per-level atomic next pointers, a mark-then-unlink two-phase
delete, and an adaptive tower height keyed to list size) with Go's
garbage collector standing in for the explicit epoch-based memory
reclamation a non-GC'd implementation would need: once a node is
unlinked at every level no live reader can reach it, and the runtime
reclaims it once the last reference drops. The Epoch type in this
package exists to pin that moment for callers that want to observe it
(tests, stats) rather than to manage memory by hand.
*/
package coi
