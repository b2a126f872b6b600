package trace

import (
	"time"

	"github.com/loomrun/loom/pkg/store"
)

// NodeTrace is one node's entry in a Record, shaped from a node.NodeEvent
// after truncation and binary redaction.
type NodeTrace struct {
	NodeID       string               `json:"node_id"`
	NodeType     string                `json:"node_type"`
	Action       string                `json:"action,omitempty"`
	DurationMS   int64                `json:"duration_ms"`
	Success      bool                 `json:"success"`
	Cancelled    bool                 `json:"cancelled,omitempty"`
	Error        string               `json:"error,omitempty"`
	SharedBefore map[string]map[string]any `json:"shared_before,omitempty"`
	SharedAfter  map[string]map[string]any `json:"shared_after,omitempty"`
	Mutations    store.Mutations      `json:"mutations"`
}

// Record is one execution's full trace, written as a single JSON file
// (spec.md §4.8).
type Record struct {
	ExecutionID        string      `json:"execution_id"`
	WorkflowName       string      `json:"workflow_name,omitempty"`
	StartedAt          time.Time   `json:"started_at"`
	DurationMS         int64       `json:"duration_ms"`
	Status             string      `json:"status"`
	Nodes              []NodeTrace `json:"nodes"`
	Warnings           []string    `json:"warnings,omitempty"`
	NonRepairableError string      `json:"non_repairable_error,omitempty"`
	Cancelled          bool        `json:"cancelled,omitempty"`
}
