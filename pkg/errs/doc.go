// Package errs defines the canonical error taxonomy shared by every node,
// the compiler, and the executor.
//
// Every failure that crosses a node boundary is wrapped in an *Error before
// it reaches the trace or the caller: a short, stable Category plus enough
// structured metadata (fixable, suggestion, shell exit code, available
// fields) for an agent to decide whether and how to repair the workflow.
// Errors that never leave a single function (a slice bounds check, a nil
// map) stay plain Go errors; only errors that become part of a node's
// outward contract get a Category.
package errs
