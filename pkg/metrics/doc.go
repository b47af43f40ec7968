/*
Package metrics provides Prometheus metrics collection and exposition for dbcore.

It defines gauges and counters for the three core subsystems (COI, TPS,
backup catalog) using the Prometheus client library, plus a small
component health registry and a Timer helper for histogram observations.
Metrics are exposed over HTTP for scraping; see Handler.

# Categories

  - COI: index size, observed height, adaptive max height, operation counts.
  - TPS: resident page count per tier, migration counts by direction,
    average compression ratio, GetPage/maintenance latency.
  - Catalog: backup set counts, obsolete set counts, recovery-window
    compliance, recovery-path computation latency.

Metrics are registered at package init against the default Prometheus
registry, following the same MustRegister-at-init convention used
throughout the reference stack this package is adapted from.
*/
package metrics
