package trace

import (
	"github.com/loomrun/loom/pkg/engine"
	"github.com/loomrun/loom/pkg/ir"
	"github.com/loomrun/loom/pkg/store"
)

// FinalizeFromEngine builds a Record from one engine.Run call's outputs:
// the Collector wired in via compiler.WithSink, the Result Run returned, the
// store it ran against (for the warnings and non-repairable-error side
// channels), and the workflow that was run (for its name).
func FinalizeFromEngine(c *Collector, wf *ir.Workflow, result *engine.Result, shared *store.Store) *Record {
	var warnings []string
	if raw, ok := shared.RootValue(store.KeyWarnings); ok {
		warnings, _ = raw.([]string)
	}

	var nonRepairable string
	if raw, ok := shared.RootValue(store.KeyNonRepairableError); ok {
		nonRepairable, _ = raw.(string)
	}

	status := string(engine.StatusFailed)
	cancelled := false
	executionID := ""
	if result != nil {
		status = string(result.Status)
		cancelled = result.Cancelled
		executionID = result.ExecutionID
	}
	if executionID == "" {
		if raw, ok := shared.RootValue(store.KeyExecutionID); ok {
			executionID, _ = raw.(string)
		}
	}

	return c.Finalize(executionID, wf.Name, status, warnings, nonRepairable, cancelled)
}
