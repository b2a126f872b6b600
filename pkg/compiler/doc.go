// Package compiler turns a validated workflow IR into an executable graph:
// one node.Wrapped instance per node spec, plus an action-routing table.
// Compilation is pure and deterministic — no I/O, no network, no node is
// ever invoked — mirroring the teacher's graph.New+DefaultRegistry
// construction step before Engine.Execute runs anything.
package compiler
