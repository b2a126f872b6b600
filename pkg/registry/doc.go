// Package registry implements the node registry (C2): it holds every
// registered node type's constructor plus a static Interface extracted
// from a structured "Interface:" doc block, and serves lookups by name.
//
// Unlike the teacher's executor registry, which maps a type enum straight
// to an executor with no declared contract, this registry also parses the
// Interface grammar from spec.md §4.2 (Reads/Writes/Params/Actions) once at
// registration time, so the compiler, the template engine's validation
// pass, and the discovery index can all reason about a node's shape
// without instantiating or running it.
//
// There is no filesystem directory scan: Go has no runtime equivalent of
// walking source files for implementations, so built-in nodes call
// Register (or MustRegister) from their own package's init, the same way
// the teacher's executors call MustRegister at startup. Scan exists to
// satisfy the re-scan-is-idempotent contract (spec.md §8 invariant 10): it
// simply re-reads the already-registered entries, which is trivially
// idempotent since registration never mutates an existing entry.
package registry
