package store

import "reflect"

// Mutations records what changed in one node's namespace between two
// snapshots, in the shape the trace record's NodeEvent carries.
type Mutations struct {
	Added    map[string]any `json:"added,omitempty"`
	Removed  []string       `json:"removed,omitempty"`
	Modified map[string]any `json:"modified,omitempty"`
}

// Empty reports whether no keys changed.
func (m Mutations) Empty() bool {
	return len(m.Added) == 0 && len(m.Removed) == 0 && len(m.Modified) == 0
}

// Diff computes the Mutations between a node's namespace before and after
// its exec/post phases ran, by shallow key comparison. Values are compared
// with a simple equality check; deeply nested changes surface as a single
// "modified" entry for the top-level key, matching the trace's key-level
// granularity.
func Diff(before, after map[string]any) Mutations {
	m := Mutations{}

	for k, av := range after {
		bv, existed := before[k]
		if !existed {
			if m.Added == nil {
				m.Added = make(map[string]any)
			}
			m.Added[k] = av
			continue
		}
		if !shallowEqual(bv, av) {
			if m.Modified == nil {
				m.Modified = make(map[string]any)
			}
			m.Modified[k] = av
		}
	}

	for k := range before {
		if _, stillPresent := after[k]; !stillPresent {
			m.Removed = append(m.Removed, k)
		}
	}

	return m
}

// shallowEqual compares two values for the purposes of mutation detection.
// A top-level key either changed or it didn't; reflect.DeepEqual avoids a
// runtime panic comparing uncomparable types (maps, slices) that commonly
// appear as JSON-shaped node output values.
func shallowEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
