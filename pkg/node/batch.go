package node

import (
	"context"
	"fmt"

	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/store"
	"github.com/loomrun/loom/pkg/template"
)

// runBatch is the Batch layer (spec.md §4.5 step 2): resolves the
// collection to iterate, then for each item gives the inner chain a fresh,
// isolated clone of the store with the item injected at that clone's root
// — so Namespaced and Template-Aware, running against the clone, see
// "${item}" the same way they'd see any other root-level input. Results
// are collected in input order and written back into the real store under
// the node's own namespace.
func (w *wrapped) runBatch(ctx context.Context, shared *store.Store) (string, error) {
	view := store.NewReadView(shared)
	resolver := template.NewResolver(view, w.id, w.cfg.Policy)

	collection, _, err := resolver.Resolve(w.cfg.Batch.Over)
	if err != nil {
		return "", err
	}
	items, ok := collection.([]any)
	if !ok {
		return "", errs.New(errs.CategoryValidation, w.id,
			fmt.Sprintf("batch.over resolved to %T, want a list", collection))
	}

	alias := w.cfg.Batch.EffectiveItemAlias()
	results := make([]any, 0, len(items))
	lastAction := "default"

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return "", errs.NewCancelledError(w.id)
		}

		iteration := shared.Clone()
		iteration.SetBatchItem(alias, item)

		action, err := w.runSingle(ctx, iteration, w.id, w.cfg.Params)
		if err != nil {
			return "", err
		}
		results = append(results, iteration.NodeOutputs(w.id))
		lastAction = action
	}

	shared.Namespace(w.id).Set(BatchResultsKey, results)
	return lastAction, nil
}
