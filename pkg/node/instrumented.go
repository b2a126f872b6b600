package node

import (
	"context"
	"time"

	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/store"
)

// Invoke is the Instrumented layer: it is the only exported entry point on
// wrapped, so every call is timed and recorded, including retries and,
// for a batched node, every iteration's combined effect. Nothing below
// this layer is reachable except through it.
func (w *wrapped) Invoke(ctx context.Context, shared *store.Store) (string, error) {
	log := w.logger()
	log.Debug("node execution started")

	before := shared.Snapshot()
	start := time.Now()

	action, err := w.runBatchOrSingle(ctx, shared)

	duration := time.Since(start)
	after := shared.Snapshot()

	if err != nil {
		log.WithError(err).Error("node execution failed")
	} else {
		log.WithField("action", action).WithField("duration_ms", duration.Milliseconds()).Debug("node execution finished")
	}

	if w.cfg.Sink != nil {
		w.cfg.Sink.Record(NodeEvent{
			NodeID:       w.id,
			NodeType:     w.nodeType,
			Duration:     duration,
			Success:      err == nil,
			Action:       action,
			Err:          err,
			SharedBefore: before,
			SharedAfter:  after,
			Mutations:    store.Diff(before[w.id], after[w.id]),
			Cancelled:    errs.IsCategory(err, errs.CategoryCancelled),
		})
	}

	return action, err
}

func (w *wrapped) runBatchOrSingle(ctx context.Context, shared *store.Store) (string, error) {
	if w.cfg.Batch == nil {
		return w.runSingle(ctx, shared, w.id, w.cfg.Params)
	}
	return w.runBatch(ctx, shared)
}
