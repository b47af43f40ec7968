/*
Package engine wires the concurrent ordered index, tiered page store, and
backup catalog into a single runnable unit. It owns one instance of each
component, loads engineconfig.Config, runs a background maintenance loop
on a ticker, and registers component health with pkg/metrics so a caller
(cmd/dbcore) can expose /health, /ready, and /metrics over HTTP.

This package has no SQL, network protocol, or cluster-membership
awareness of its own; it is the minimal glue a caller embeds to run the
three core components together.
*/
package engine
