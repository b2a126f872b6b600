package node

import (
	"context"

	"github.com/loomrun/loom/pkg/store"
	"github.com/loomrun/loom/pkg/template"
)

// runSingle is the Namespaced + Template-Aware layers (spec.md §4.5 steps
// 3-4) plus the Iteration Cache (C9) check, wrapped around one retry/
// fallback-governed Prep/Exec/Post cycle. shared is whatever store this
// invocation should see: the live execution store for a non-batched node,
// or one iteration's clone for a batched one — runSingle itself has no
// idea which.
func (w *wrapped) runSingle(ctx context.Context, shared *store.Store, nodeID string, rawParams map[string]any) (string, error) {
	ns := shared.Namespace(nodeID)
	view := store.NewReadView(shared)
	resolver := template.NewResolver(view, nodeID, w.cfg.Policy)

	resolvedParams, warnings, err := resolveParamsTree(resolver, rawParams)
	if err != nil {
		return "", err
	}
	for _, warning := range warnings {
		appendWarning(shared, nodeID, warning)
	}

	var cacheKey CacheKey
	cacheable := w.cfg.Cache != nil
	if cacheable {
		cacheKey = CacheKey{
			NodeType: w.nodeType,
			Version:  w.cfg.Version,
			Params:   resolvedParams,
			Inputs:   ns.All(),
		}
		if entry, ok := w.cfg.Cache.Get(cacheKey); ok {
			ns.SetAll(entry.Outputs)
			return entry.Action, nil
		}
	}

	action, err := w.runWithRetry(ctx, ns, resolvedParams)
	if err != nil {
		return "", err
	}

	if raw, ok := ns.Get(WarningsKey); ok {
		if list, ok := raw.([]string); ok {
			for _, warning := range list {
				appendWarning(shared, nodeID, warning)
			}
		}
	}

	if cacheable {
		w.cfg.Cache.Put(cacheKey, CacheEntry{Outputs: ns.All(), Action: action})
	}
	return action, nil
}

// resolveParamsTree walks params, resolving every string leaf as a
// template and leaving every other value (numbers, bools, nested
// maps/lists with no string leaves) untouched. Nested maps and lists are
// resolved recursively so a dict- or list-typed param can carry template
// references at any depth.
func resolveParamsTree(resolver *template.Resolver, v any) (any, []string, error) {
	switch val := v.(type) {
	case string:
		resolved, warnings, err := resolver.Resolve(val)
		return resolved, warnings, err
	case map[string]any:
		out := make(map[string]any, len(val))
		var warnings []string
		for k, child := range val {
			resolvedChild, childWarnings, err := resolveParamsTree(resolver, child)
			if err != nil {
				return nil, warnings, err
			}
			out[k] = resolvedChild
			warnings = append(warnings, childWarnings...)
		}
		return out, warnings, nil
	case []any:
		out := make([]any, len(val))
		var warnings []string
		for i, child := range val {
			resolvedChild, childWarnings, err := resolveParamsTree(resolver, child)
			if err != nil {
				return nil, warnings, err
			}
			out[i] = resolvedChild
			warnings = append(warnings, childWarnings...)
		}
		return out, warnings, nil
	default:
		return v, nil, nil
	}
}

// appendWarning records a permissive-policy template warning onto the
// shared __warnings__ side channel, prefixed with the node id that raised
// it.
func appendWarning(shared *store.Store, nodeID, message string) {
	existing, _ := shared.RootValue(store.KeyWarnings)
	warnings, _ := existing.([]string)
	warnings = append(warnings, nodeID+": "+message)
	_ = shared.SetSideChannel(store.KeyWarnings, warnings)
}
