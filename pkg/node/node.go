package node

import (
	"context"
	"time"

	"github.com/loomrun/loom/pkg/logging"
	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/store"
	"github.com/loomrun/loom/pkg/template"
)

var defaultLogger = logging.New(logging.DefaultConfig())

// BatchResultsKey is where a batched node's per-iteration outputs land
// inside its own namespace: a list, one entry per iteration, in input
// order. A non-batched node never writes this key.
const BatchResultsKey = "items"

// WarningsKey is a reserved namespace output key an inner node may write a
// []string to from Post; runSingle promotes its contents onto the shared
// __warnings__ side channel after a successful invocation, the same way a
// permissive template resolution does. This is how a node that degrades
// instead of failing outright (a tool call that came back with its own
// warnings field, an HTTP response read past a truncation limit) reaches
// the engine's degraded-status signal without needing access to the root
// store itself.
const WarningsKey = "__node_warnings__"

// BatchConfig fans a node out over a collection, once per element. Over is
// a template reference resolved against the store before iterating; the
// resolved value must be a list.
type BatchConfig struct {
	Over      string
	ItemAlias string
}

// EffectiveItemAlias returns ItemAlias, defaulting to "item".
func (b *BatchConfig) EffectiveItemAlias() string {
	if b == nil || b.ItemAlias == "" {
		return "item"
	}
	return b.ItemAlias
}

// Config configures one node's wrapper chain. The compiler builds one of
// these per node spec from the IR and the registry entry.
type Config struct {
	Params  map[string]any
	Retries int
	WaitMS  int
	Timeout time.Duration
	Batch   *BatchConfig
	Policy  template.Policy

	// Version is the registry-declared version of this node type, used as
	// part of the cache key so a changed implementation invalidates stale
	// entries. Empty is valid (no versioning configured).
	Version string

	Sink  Sink  // optional
	Cache Cache // optional

	// Logger receives this node's per-invocation events. Nil falls back to
	// defaultLogger, the same way an unconfigured pkg/cache falls back to
	// its own package default.
	Logger *logging.Logger
}

// Wrapped is what the compiler attaches to a compiled graph node and the
// executor invokes. It owns everything between "the executor decided to
// run this node" and "the inner node's Prep/Exec/Post ran": template
// resolution, namespacing, batch fan-out, retry/fallback, and tracing.
type Wrapped interface {
	// Invoke runs the node against shared and returns the outgoing action
	// chosen by Post (or by the last batch iteration's Post, for a batched
	// node).
	Invoke(ctx context.Context, shared *store.Store) (action string, err error)

	// NodeID returns the id this wrapper was built for.
	NodeID() string
}

type wrapped struct {
	id       string
	nodeType string
	inner    registry.Node
	cfg      Config
}

// Wrap builds the full wrapper chain around inner for the node identified
// by id. nodeType is the registry type name, used for cache keys and
// trace events.
func Wrap(id, nodeType string, inner registry.Node, cfg Config) Wrapped {
	return &wrapped{id: id, nodeType: nodeType, inner: inner, cfg: cfg}
}

func (w *wrapped) NodeID() string { return w.id }

// logger returns the per-node structured logger, scoped by node id and
// type, falling back to defaultLogger when the compiler never configured
// one.
func (w *wrapped) logger() *logging.Logger {
	base := w.cfg.Logger
	if base == nil {
		base = defaultLogger
	}
	return base.WithNodeID(w.id).WithNodeType(w.nodeType)
}

// fallbackNode is the optional interface an inner node implements to
// customize what happens once retries are exhausted, mirroring the
// "exec_fallback" hook spec.md describes: given the last prep result and
// the terminal error, it may return a substitute exec result instead of
// letting the error propagate.
type fallbackNode interface {
	ExecFallback(prep any, cause error) (any, error)
}
