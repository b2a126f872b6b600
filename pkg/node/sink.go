package node

import (
	"time"

	"github.com/loomrun/loom/pkg/store"
)

// NodeEvent is everything the Instrumented layer knows about one node's
// invocation, handed to a Sink for the Tracer (C8) to shape into its own
// on-disk record. Kept intentionally thin: pkg/node has no opinion on
// truncation, redaction, or JSON layout.
type NodeEvent struct {
	NodeID       string
	NodeType     string
	Duration     time.Duration
	Success      bool
	Action       string
	Err          error
	SharedBefore map[string]map[string]any
	SharedAfter  map[string]map[string]any
	Mutations    store.Mutations
	Cancelled    bool
}

// Sink receives one NodeEvent per node invocation (or per batch as a whole,
// not per iteration). A nil Sink is valid and means "don't trace".
type Sink interface {
	Record(NodeEvent)
}
