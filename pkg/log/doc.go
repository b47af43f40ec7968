/*
Package log provides structured logging for dbcore using zerolog.

It wraps zerolog to provide JSON-structured logging with component-specific
loggers, configurable log levels, and helper functions for common logging
patterns. All logs include timestamps and support filtering by severity
level.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Safe for concurrent use                  │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("coi"|"tps"|"catalog")     │          │
	│  │  - WithDatabaseID("db-1")                   │          │
	│  │  - WithPageID(1024)                         │          │
	│  │  - WithSetID("set-abc123")                  │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})
	log.Info("dbcore starting")

	coiLog := log.WithComponent("coi")
	coiLog.Debug().Int("height", 6).Msg("skip list height changed")

	pageLog := log.WithPageID(uint64(page.ID))
	pageLog.Warn().Str("tier", "cold").Msg("page migration deferred")

# Integration Points

This package is used by pkg/tps, pkg/catalog, and pkg/engine for
component-scoped logging. engine.New calls Init from the
engineconfig.Config it is given; cmd/dbcore sets that config's log level
and format from its flags.
*/
package log
