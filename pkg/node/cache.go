package node

// CacheKey is the input envelope the Iteration Cache (C9) hashes against:
// node type, the registry-declared version of that type (so a node
// implementation change invalidates old entries), the fully-resolved
// params for this invocation, and a copy of the node's own namespace as it
// stands before the node runs. pkg/node never hashes it itself — that's pkg/cache's
// job — it only assembles the envelope.
type CacheKey struct {
	NodeType string
	Version  string
	Params   map[string]any
	Inputs   map[string]any
}

// CacheEntry is what a cache hit replays: the outputs to overlay onto the
// node's namespace, and the action it chose last time.
type CacheEntry struct {
	Outputs map[string]any
	Action  string
}

// Cache is the narrow interface the wrapper chain consults around a single
// node's execution. pkg/cache implements it; pkg/node only depends on this
// shape, the same decoupling pkg/ir uses for NodeTypeResolver.
type Cache interface {
	Get(key CacheKey) (CacheEntry, bool)
	Put(key CacheKey, entry CacheEntry)
}
