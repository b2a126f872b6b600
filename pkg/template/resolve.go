package template

import (
	"sort"
	"strings"

	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/store"
)

// Policy controls what happens when a reference fails to resolve.
type Policy int

const (
	// PolicyStrict aborts the workflow with a *errs.Error on any unresolved
	// reference.
	PolicyStrict Policy = iota
	// PolicyPermissive substitutes "" (interpolation) or nil (pure
	// reference) for an unresolved reference and records a warning instead
	// of failing.
	PolicyPermissive
)

// Resolver resolves param strings for a single node against a store's
// read-only view.
type Resolver struct {
	view   *store.ReadView
	nodeID string
	policy Policy
}

// NewResolver creates a Resolver scoped to one node's params.
func NewResolver(view *store.ReadView, nodeID string, policy Policy) *Resolver {
	return &Resolver{view: view, nodeID: nodeID, policy: policy}
}

// Resolve resolves a single param string. A pure reference returns the
// referenced value in its original type; an interpolation always returns a
// string. Warnings are non-nil only under PolicyPermissive.
func (r *Resolver) Resolve(raw string) (any, []string, error) {
	segments, err := scan(raw)
	if err != nil {
		return nil, nil, errs.New(errs.CategoryTemplate, r.nodeID, err.Error())
	}

	if token, ok := isPureReference(segments); ok {
		val, found, resolveErr := r.resolvePath(token)
		if resolveErr != nil {
			return nil, nil, resolveErr
		}
		if !found {
			return r.handleUnresolved(token)
		}
		return val, nil, nil
	}

	var b strings.Builder
	var warnings []string
	for _, seg := range segments {
		if !seg.isRef {
			b.WriteString(seg.literal)
			continue
		}

		val, found, resolveErr := r.resolvePath(seg.reference)
		if resolveErr != nil {
			return nil, warnings, resolveErr
		}
		if !found {
			_, warning, err := r.handleUnresolved(seg.reference)
			if err != nil {
				return nil, warnings, err
			}
			if warning != nil {
				warnings = append(warnings, warning...)
			}
			continue
		}
		b.WriteString(Stringify(val))
	}
	return b.String(), warnings, nil
}

func (r *Resolver) resolvePath(token string) (any, bool, error) {
	steps, err := parsePath(token)
	if err != nil {
		return nil, false, errs.New(errs.CategoryTemplate, r.nodeID, err.Error())
	}
	val, found := r.view.Resolve(steps)
	return val, found, nil
}

// handleUnresolved applies the configured Policy to an unresolved
// reference: PolicyStrict returns the self-repair-ready *errs.Error;
// PolicyPermissive returns nil plus a recorded warning.
func (r *Resolver) handleUnresolved(token string) (any, []string, error) {
	if r.policy == PolicyStrict {
		return nil, nil, newResolutionError(r.nodeID, token, r.siblingsFor(token))
	}
	return nil, []string{"unresolved reference " + token + " treated as missing"}, nil
}

// siblingsFor computes the available sibling keys at the last resolvable
// prefix of token, for the fixable-error contract.
func (r *Resolver) siblingsFor(token string) []string {
	steps, err := parsePath(token)
	if err != nil || len(steps) == 0 {
		return nil
	}

	if len(steps) == 1 {
		keys := r.view.TopLevelKeys()
		sort.Strings(keys)
		return keys
	}

	container, ok := r.view.ResolveContainer(steps)
	if !ok {
		keys := r.view.TopLevelKeys()
		sort.Strings(keys)
		return keys
	}
	m, ok := container.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
