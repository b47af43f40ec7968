/*
Package engineconfig loads the YAML configuration passed to engine.New:
page size, tier predictor thresholds, migration batch size and queue
capacity, read cache size, cold storage path, the catalog's data
directory, maintenance interval, log level and format, and the metrics
address. engine.New applies the queue capacity, read cache size, cold
storage path, catalog directory, maintenance interval and logging
fields; page size, tier thresholds and migration batch size are parsed
but not applied by it. Load reads a file from disk; Default returns the
defaults cmd/dbcore uses when no file is supplied.
*/
package engineconfig
