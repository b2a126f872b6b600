// Package engine is the Executor/Scheduler (spec.md §4.7): it walks a
// compiled graph one node at a time along the action edge each node's Post
// phase chooses, enforces a workflow-level deadline, checkpoints progress
// to the shared store's __execution__ side channel, and computes the
// tri-state final status. Per-node retries, fallback, and timeout already
// happened inside pkg/node by the time an action comes back here — see
// the architectural note in this repository's design notes for why.
package engine
