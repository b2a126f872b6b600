package store

import "sync"

// Reserved side-channel keys. These live at the store's root level, bypass
// namespacing, and are the only cross-node signals permitted outside the
// template engine's read-only view.
const (
	KeyWarnings           = "__warnings__"
	KeyExecution          = "__execution__"
	KeyNonRepairableError = "__non_repairable_error__"
	KeyExecutionID        = "__execution_id__"
)

var sideChannelKeys = map[string]bool{
	KeyWarnings:           true,
	KeyExecution:          true,
	KeyNonRepairableError: true,
	KeyExecutionID:        true,
}

// IsSideChannelKey reports whether key is one of the reserved root-level
// signal keys.
func IsSideChannelKey(key string) bool {
	return sideChannelKeys[key]
}

// Store is the hierarchical shared state for one workflow execution: a
// root level of workflow inputs and side-channel keys, plus one namespace
// per node id. It is safe for concurrent use, though within a single
// execution the sequential scheduler never mutates it concurrently except
// across Batch's per-iteration copies (see pkg/node).
type Store struct {
	mu    sync.RWMutex
	root  map[string]any
	nodes map[string]map[string]any
}

// New creates a Store seeded with workflow-level inputs at the root level.
func New(inputs map[string]any) *Store {
	root := make(map[string]any, len(inputs))
	for k, v := range inputs {
		root[k] = v
	}
	return &Store{
		root:  root,
		nodes: make(map[string]map[string]any),
	}
}

// Namespace returns the view a node with the given id writes and reads
// through. It is created lazily and always succeeds: a node's namespace
// exists from the moment it is first referenced.
func (s *Store) Namespace(nodeID string) *Namespace {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[nodeID]; !ok {
		s.nodes[nodeID] = make(map[string]any)
	}
	return &Namespace{store: s, nodeID: nodeID}
}

// RootValue reads a workflow-level input or side-channel value.
func (s *Store) RootValue(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.root[key]
	return v, ok
}

// SetSideChannel writes one of the reserved root-level signal keys. It
// refuses any key outside the fixed side-channel set so that root-level
// writes never become an uncontrolled second namespacing scheme.
func (s *Store) SetSideChannel(key string, value any) error {
	if !IsSideChannelKey(key) {
		return ErrUnknownSideChannel
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.root[key] = value
	return nil
}

// NodeOutputs returns a defensive copy of a node's full output namespace,
// or nil if the node has never written anything. Used by the template
// engine's read view and by trace snapshotting.
func (s *Store) NodeOutputs(nodeID string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.nodes[nodeID]
	if !ok {
		return nil
	}
	return copyMap(ns)
}

// Snapshot returns a deep-ish copy (one level of map nesting) of the entire
// store: root plus every node namespace. Used by the node wrapper chain's
// Instrumented stage to compute shared_before/shared_after for the trace.
func (s *Store) Snapshot() map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[string]any, len(s.nodes)+1)
	out[""] = copyMap(s.root)
	for id, ns := range s.nodes {
		out[id] = copyMap(ns)
	}
	return out
}

// Clone produces an independent Store carrying the same root and node data,
// used by Batch to give each iteration its own isolated shallow copy before
// injecting "item" at the root of the copy.
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := &Store{
		root:  copyMap(s.root),
		nodes: make(map[string]map[string]any, len(s.nodes)),
	}
	for id, ns := range s.nodes {
		clone.nodes[id] = copyMap(ns)
	}
	return clone
}

// SetBatchItem injects the current Batch iteration's item value under alias
// at the root level of a cloned store. Unlike SetSideChannel this accepts
// any key, since the alias is caller-chosen per node (default "item"); it
// exists only to be called on a Store already produced by Clone, one per
// iteration, never on the live execution store.
func (s *Store) SetBatchItem(alias string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root[alias] = value
}

// TopLevelKeys returns every root key and node id currently known to the
// store, combined. Used to build "did you mean" suggestions when a
// reference's first path component fails to resolve at all.
func (s *Store) TopLevelKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.root)+len(s.nodes))
	for k := range s.root {
		keys = append(keys, k)
	}
	for id := range s.nodes {
		keys = append(keys, id)
	}
	return keys
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
