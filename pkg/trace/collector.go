package trace

import (
	"sync"
	"time"

	"github.com/loomrun/loom/pkg/node"
)

// Collector implements node.Sink, accumulating one NodeTrace per node.Invoke
// call in invocation order. It is created fresh per execution (the same
// lifetime as the shared store it's paired with via compiler.WithSink) and
// is safe for the sequential scheduler to call from pkg/node's Instrumented
// layer.
type Collector struct {
	mu        sync.Mutex
	limits    Limits
	startedAt time.Time
	nodes     []NodeTrace
}

// NewCollector creates a Collector bounded by limits.
func NewCollector(limits Limits) *Collector {
	return &Collector{limits: limits, startedAt: timeNow()}
}

// timeNow exists so tests can't accidentally rely on wall-clock ordering
// beyond what Record captures; production always uses time.Now.
var timeNow = time.Now

// Record implements node.Sink.
func (c *Collector) Record(ev node.NodeEvent) {
	errMsg := ""
	if ev.Err != nil {
		errMsg = ev.Err.Error()
	}

	nt := NodeTrace{
		NodeID:       ev.NodeID,
		NodeType:     ev.NodeType,
		Action:       ev.Action,
		DurationMS:   ev.Duration.Milliseconds(),
		Success:      ev.Success,
		Cancelled:    ev.Cancelled,
		Error:        errMsg,
		SharedBefore: redactSnapshot(ev.SharedBefore, c.limits),
		SharedAfter:  redactSnapshot(ev.SharedAfter, c.limits),
		Mutations:    ev.Mutations,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = append(c.nodes, nt)
}

// Finalize builds the completed Record. executionID and workflowName come
// from the caller (pkg/engine stamps __execution_id__ on the store;
// workflowName is the ir.Workflow's Name field), since the Collector itself
// never sees either.
func (c *Collector) Finalize(executionID, workflowName, status string, warnings []string, nonRepairableError string, cancelled bool) *Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	nodes := make([]NodeTrace, len(c.nodes))
	copy(nodes, c.nodes)

	return &Record{
		ExecutionID:        executionID,
		WorkflowName:       workflowName,
		StartedAt:          c.startedAt,
		DurationMS:         time.Since(c.startedAt).Milliseconds(),
		Status:             status,
		Nodes:              nodes,
		Warnings:           warnings,
		NonRepairableError: nonRepairableError,
		Cancelled:          cancelled,
	}
}
