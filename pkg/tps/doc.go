/*
Package tps implements the Tiered Page Store: a page cache that classifies
each page into a Hot, Warm, or Cold tier based on its observed access
pattern, compresses it accordingly (none, snappy, or zstd), and migrates
it between tiers in the background as its access pattern changes.

# Tiers

  - Hot: uncompressed, lowest latency, for frequently accessed pages.
  - Warm: snappy-compressed, moderate ratio and speed.
  - Cold: zstd-compressed, highest ratio, optionally spilled to a
    bbolt-backed ColdBackend instead of process memory.

A heuristic tierPredictor classifies pages from their rolling access
frequency and recency, with thresholds that adapt to the overall
workload on each Maintenance pass. GetPage on a Warm or Cold page always
reconsiders its tier and enqueues a migration task when the predicted
tier differs from where the page currently lives; Maintenance drains a
bounded number of queued migrations per call, highest-priority first.
*/
package tps
