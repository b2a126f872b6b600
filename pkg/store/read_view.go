package store

// PathStep is one component of a template path: a map key, optionally
// followed by an array index (`q[0]` is Key:"q", HasIndex:true, Index:0).
type PathStep struct {
	Key      string
	Index    int
	HasIndex bool
}

// ReadView is the read-only union over the whole store that the template
// engine resolves "${...}" references against. It never exposes a way to
// write, so a node holding only its own Namespace can never reach another
// node's section through it.
type ReadView struct {
	store *Store
}

// NewReadView returns a read-only view over s.
func NewReadView(s *Store) *ReadView {
	return &ReadView{store: s}
}

// Resolve walks path against the store: the first step selects either a
// node's output namespace (by node id) or a root-level key (workflow input
// or side-channel); remaining steps traverse nested maps and slices.
func (v *ReadView) Resolve(path []PathStep) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}

	head := path[0]
	rest := path[1:]
	var current any
	var ok bool

	if ns := v.store.NodeOutputs(head.Key); ns != nil {
		if len(rest) == 0 {
			return ns, true
		}
		current, ok = lookupStep(ns, rest[0])
		rest = rest[1:]
	} else if root, found := v.store.RootValue(head.Key); found {
		current, ok = root, true
		if head.HasIndex {
			current, ok = indexInto(current, head.Index)
		}
	} else {
		return nil, false
	}
	if !ok {
		return nil, false
	}

	for _, step := range rest {
		current, ok = descend(current, step)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// TopLevelKeys returns every root key and node id currently known to the
// underlying store.
func (v *ReadView) TopLevelKeys() []string {
	return v.store.TopLevelKeys()
}

// ResolveContainer resolves all but the last step of path and returns
// whatever container (map or slice) that prefix lands on, so a caller
// building a "did you mean" error can list its keys. An empty or
// single-step path has no containing prefix and always reports false.
func (v *ReadView) ResolveContainer(path []PathStep) (any, bool) {
	if len(path) < 2 {
		return nil, false
	}
	return v.Resolve(path[:len(path)-1])
}

// lookupStep resolves the first path step against a node's namespace map,
// applying an index if the step itself carries one (e.g. "node.list[0]").
func lookupStep(ns map[string]any, step PathStep) (any, bool) {
	v, ok := ns[step.Key]
	if !ok {
		return nil, false
	}
	if step.HasIndex {
		return indexInto(v, step.Index)
	}
	return v, true
}

func descend(current any, step PathStep) (any, bool) {
	m, ok := current.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[step.Key]
	if !ok {
		return nil, false
	}
	if step.HasIndex {
		return indexInto(v, step.Index)
	}
	return v, true
}

func indexInto(v any, index int) (any, bool) {
	slice, ok := v.([]any)
	if !ok {
		return nil, false
	}
	if index < 0 || index >= len(slice) {
		return nil, false
	}
	return slice[index], true
}
