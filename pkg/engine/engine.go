package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loomrun/loom/pkg/compiler"
	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/ir"
	"github.com/loomrun/loom/pkg/logging"
	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/store"
	"github.com/loomrun/loom/pkg/template"
)

// RepairFunc is the optional agent-driven repair hook (C12): given the
// workflow that just failed and the categorized error that stopped it, it
// may return a patched workflow to recompile and retry, or ok=false to
// give up. Engine never constructs one itself — it's supplied by whatever
// drives the engine (a CLI flag, an agent loop) via WithRepair.
type RepairFunc func(wf *ir.Workflow, cause *errs.Error) (repaired *ir.Workflow, ok bool)

type config struct {
	deadline          time.Duration
	repair            RepairFunc
	maxRepairAttempts int
	logger            *logging.Logger
}

// Option configures an Engine.
type Option func(*config)

// WithDeadline bounds total execution time; the first of this deadline or
// any per-node timeout to fire wins. Zero (the default) means no
// workflow-level deadline.
func WithDeadline(d time.Duration) Option {
	return func(c *config) { c.deadline = d }
}

// WithLogger installs the logger Run derives its workflow- and
// execution-scoped child logger from, and that it passes to the compiler
// for every node to derive its own child logger from in turn. Unset, the
// engine falls back to its own package default.
func WithLogger(l *logging.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithRepair installs a repair hook, consulted up to maxAttempts times
// when a graph walk fails, before the engine gives up and records
// __non_repairable_error__.
func WithRepair(fn RepairFunc, maxAttempts int) Option {
	return func(c *config) {
		c.repair = fn
		c.maxRepairAttempts = maxAttempts
	}
}

// Engine runs workflows against a fixed registry. It is stateless between
// Run calls: every call builds its own store, its own compiled graph, and
// has no shared mutable state with any other call, including concurrent
// ones (spec.md §4.7's ordering guarantee).
type Engine struct {
	reg *registry.Registry
	cfg config
}

var defaultLogger = logging.New(logging.DefaultConfig())

// New creates an Engine backed by reg.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{reg: reg}
	for _, opt := range opts {
		opt(&e.cfg)
	}
	if e.cfg.logger == nil {
		e.cfg.logger = defaultLogger
	}
	return e
}

// Run compiles wf and walks it to completion (or failure), retrying the
// whole workflow through the repair hook (if configured) when a walk
// fails. It returns the last Result produced (even on failure, so callers
// can see how far execution got), the store the execution ran against,
// and a non-nil error only if the workflow could not be completed.
func (e *Engine) Run(ctx context.Context, wf *ir.Workflow, inputs map[string]any, compileOpts ...compiler.Option) (*Result, *store.Store, error) {
	shared := store.New(seedDeclaredInputs(wf, inputs))
	executionID := uuid.NewString()
	_ = shared.SetSideChannel(store.KeyExecutionID, executionID)
	current := wf

	log := e.cfg.logger.WithWorkflowID(wf.Name).WithExecutionID(executionID)
	log.Debug("workflow execution started")
	compileOpts = append([]compiler.Option{compiler.WithLogger(log)}, compileOpts...)

	for attempt := 0; ; attempt++ {
		graph, err := compiler.Compile(current, e.reg, compileOpts...)
		if err != nil {
			log.WithError(err).Error("workflow compilation failed")
			return nil, shared, fmt.Errorf("engine: compiling workflow: %w", err)
		}

		result, err := e.walk(ctx, graph, shared)
		if result != nil {
			result.ExecutionID = executionID
			result.Outputs = resolveOutputs(current, shared)
		}
		if err == nil {
			log.WithField("status", string(result.Status)).Debug("workflow execution finished")
			return result, shared, nil
		}

		if e.cfg.repair == nil || attempt >= e.cfg.maxRepairAttempts {
			log.WithError(err).Error("workflow execution failed")
			recordNonRepairable(shared, err)
			return result, shared, err
		}

		cause, ok := errs.As(err)
		if !ok {
			cause = errs.Wrap(errs.CategoryInternal, "", err)
		}
		repaired, ok := e.cfg.repair(current, cause)
		if !ok {
			log.WithError(err).Error("workflow execution failed, repair declined")
			recordNonRepairable(shared, err)
			return result, shared, err
		}
		log.WithError(err).Warn("workflow execution failed, retrying with repaired workflow")
		current = repaired
	}
}

// seedDeclaredInputs returns a copy of inputs with every workflow-level
// InputSpec not already supplied by the caller added: its Default if it
// has one, nil otherwise. A declared-but-unsupplied optional input must
// be present in the root store with a nil value, not merely absent, so a
// "${name}" reference against it resolves as found (substituting ""
// under either template policy) instead of raising an unresolved-
// reference error.
func seedDeclaredInputs(wf *ir.Workflow, inputs map[string]any) map[string]any {
	seeded := make(map[string]any, len(inputs)+len(wf.Inputs))
	for k, v := range inputs {
		seeded[k] = v
	}
	for _, in := range wf.Inputs {
		if _, ok := seeded[in.Name]; ok {
			continue
		}
		seeded[in.Name] = in.Default
	}
	return seeded
}

// resolveOutputs resolves wf.Outputs' declared dotted paths against shared
// and returns them keyed by path. A path that fails to parse or never
// resolves is omitted rather than included as nil.
func resolveOutputs(wf *ir.Workflow, shared *store.Store) map[string]any {
	if len(wf.Outputs) == 0 {
		return nil
	}

	view := store.NewReadView(shared)
	out := make(map[string]any, len(wf.Outputs))
	for _, path := range wf.Outputs {
		steps, err := template.ParsePath(path)
		if err != nil {
			continue
		}
		if v, ok := view.Resolve(steps); ok {
			out[path] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// walk runs a single compiled graph to completion: starting at graph.Start,
// invoking each node and following the action edge it returns, until a
// node has no matching route (a terminal node) or a node fails.
func (e *Engine) walk(ctx context.Context, graph *compiler.Graph, shared *store.Store) (*Result, error) {
	if e.cfg.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.deadline)
		defer cancel()
	}

	var visited []string
	actions := make(map[string]string)
	current := graph.Start

	for {
		if err := ctx.Err(); err != nil {
			writeCheckpoint(shared, visited, actions)
			return &Result{Status: StatusFailed, VisitedNodes: visited, Cancelled: true}, errs.NewCancelledError(current)
		}

		wrapped, ok := graph.Node(current)
		if !ok {
			return &Result{Status: StatusFailed, VisitedNodes: visited}, fmt.Errorf("engine: node %q not found in compiled graph", current)
		}

		action, err := wrapped.Invoke(ctx, shared)
		if err != nil {
			writeCheckpoint(shared, visited, actions)
			return &Result{Status: StatusFailed, VisitedNodes: visited}, err
		}

		visited = append(visited, current)
		actions[current] = action
		writeCheckpoint(shared, visited, actions)

		next, ok := graph.Route(current, action)
		if !ok {
			return &Result{Status: e.finalStatus(shared), VisitedNodes: visited, LastAction: action}, nil
		}
		current = next
	}
}

// finalStatus reports degraded if anything was recorded on the warnings
// side channel during the walk, success otherwise. Node-type-specific
// degraded triggers (binary-suspicious output, non-empty stderr with a
// zero exit code — spec.md §4.7) are each node's own responsibility to
// surface onto that same channel; the engine has no node-type-specific
// knowledge to detect them itself.
func (e *Engine) finalStatus(shared *store.Store) Status {
	warnings, _ := shared.RootValue(store.KeyWarnings)
	if list, ok := warnings.([]string); ok && len(list) > 0 {
		return StatusDegraded
	}
	return StatusSuccess
}

func recordNonRepairable(shared *store.Store, err error) {
	_ = shared.SetSideChannel(store.KeyNonRepairableError, err.Error())
}
