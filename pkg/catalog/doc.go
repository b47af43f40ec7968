/*
Package catalog implements the backup catalog: a centralized repository
of backup metadata across every database managed by the engine, in the
style of a commercial RMAN-class catalog.

It tracks registered databases, backup sets and their constituent
pieces, archived redo logs, restore points, and generated reports. Its
job is bookkeeping, not data movement: callers register completed
backup work here and consult it to answer "what do I need to restore
database X to SCN Y" (FindRecoveryPath) or "what logs cover this SCN
range" (FindArchivedLogs).

# Ordering

Backup sets and archived logs are the catalog's two range-scanned
collections (recovery-path computation walks SCN order; archived-log
lookup walks sequence order), so both are held in a github.com/google/btree
B-tree keyed for that access path rather than a map re-sorted on every
call.

# Persistence

The catalog is kept in memory and survives a process restart only via
explicit Export/Import to a single JSON document; it does not maintain
its own write-ahead log.
*/
package catalog
