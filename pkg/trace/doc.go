// Package trace is the Tracer half of C8 (spec.md §4.8): it collects one
// NodeEvent per node invocation into a per-execution Record, applies the
// env-configurable truncation and binary redaction rules, and writes the
// result to a workspace debug directory as JSON plus an optional smart-debug
// Markdown file. pkg/telemetry owns the counters and histograms that leave
// the process (Prometheus/OTLP); this package owns the artifacts that stay
// on disk for a human or an agent to read back after a run.
package trace
