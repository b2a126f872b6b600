package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/loomrun/loom/pkg/logging"
	"github.com/loomrun/loom/pkg/store"
)

var defaultLogger = logging.New(logging.DefaultConfig())

// lookupCacheSize bounds the hot-path Lookup cache. The registry itself
// rarely holds more than a few dozen types, but Lookup is called once per
// node per compile and again per template-reference check, so a small LRU
// in front of the map trims repeated map probing under a read lock during
// validation-heavy workloads (many nodes, many template references).
const lookupCacheSize = 256

// Node is the three-phase contract every registered node implementation
// satisfies (spec.md §3 "Node (runtime form)"): prep reads whatever it
// needs from its own namespace, exec does the (possibly failing, possibly
// retried) work, post writes results into the namespace and picks the
// outgoing action. It is declared here, in the registry's own leaf
// package, rather than in pkg/node, so the registry that stores and looks
// up node constructors never has to import the wrapper chain built around
// them.
type Node interface {
	Prep(shared *store.Namespace, params map[string]any) (any, error)
	Exec(prep any) (any, error)
	Post(shared *store.Namespace, prep, exec any) (action string, err error)
}

// Factory constructs a fresh Node instance. The registry holds one Factory
// per type rather than a shared instance, mirroring the teacher's
// one-executor-per-type registration but avoiding any instance state
// leaking between workflow executions.
type Factory func() Node

// Entry is what the registry returns from Lookup: a type's declared
// Interface plus the constructor for new instances.
type Entry struct {
	Type      string
	Interface *Interface
	New       Factory

	// Version identifies this registration for the Iteration Cache (C9):
	// any change to it invalidates every cache entry for the type. Register
	// derives it from the interface doc's content hash, so editing a node's
	// doc comment (adding a param, changing a write shape) naturally bumps
	// it; RegisterSynthetic takes it directly from the caller since a
	// synthetic node's "doc" is a schema fetched over the wire.
	Version string
}

// hashVersion returns a short, stable fingerprint of doc, used as Entry.Version.
func hashVersion(doc string) string {
	sum := sha256.Sum256([]byte(doc))
	return hex.EncodeToString(sum[:])[:12]
}

// Registry holds every registered node type's Interface and constructor,
// keyed by kebab-case type name. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	cache   *lru.Cache[string, Entry]
	log     *logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger Register/RegisterSynthetic use. Unset, the
// registry falls back to its own package default.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	cache, err := lru.New[string, Entry](lookupCacheSize)
	if err != nil {
		panic(err) // only returns an error for a non-positive size, which is a constant here
	}
	r := &Registry{entries: make(map[string]Entry), cache: cache}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) logger() *logging.Logger {
	if r.log != nil {
		return r.log
	}
	return defaultLogger
}

// Register parses interfaceDoc and adds a new entry for nodeType. It
// refuses to replace an existing registration, the same way the teacher's
// executor registry refuses to double-register a type.
func (r *Registry) Register(nodeType, interfaceDoc string, factory Factory) error {
	iface, err := ParseInterface(interfaceDoc)
	if err != nil {
		return fmt.Errorf("registry: parsing interface for %q: %w", nodeType, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[nodeType]; exists {
		return fmt.Errorf("registry: node type %q already registered", nodeType)
	}
	r.entries[nodeType] = Entry{Type: nodeType, Interface: iface, New: factory, Version: hashVersion(interfaceDoc)}
	r.cache.Remove(nodeType)
	r.logger().WithField("node_type", nodeType).Debug("registry: node type registered")
	return nil
}

// MustRegister registers a node type and panics on error. Built-in nodes
// call this from their own package's init, since Go has no runtime
// equivalent of scanning a source tree for implementations.
func (r *Registry) MustRegister(nodeType, interfaceDoc string, factory Factory) {
	if err := r.Register(nodeType, interfaceDoc, factory); err != nil {
		panic(err)
	}
}

// RegisterSynthetic adds a tool-protocol node (C10) whose Interface is
// derived from an external tool's advertised schema rather than a Go doc
// comment. It bypasses ParseInterface entirely: the caller builds the
// Interface itself (see pkg/toolprotocol).
func (r *Registry) RegisterSynthetic(nodeType string, iface *Interface, version string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[nodeType]; exists {
		return fmt.Errorf("registry: node type %q already registered", nodeType)
	}
	r.entries[nodeType] = Entry{Type: nodeType, Interface: iface, New: factory, Version: version}
	r.cache.Remove(nodeType)
	r.logger().WithField("node_type", nodeType).Debug("registry: synthetic node type registered")
	return nil
}

// Lookup returns the entry for nodeType, if registered.
func (r *Registry) Lookup(nodeType string) (Entry, bool) {
	if e, ok := r.cache.Get(nodeType); ok {
		return e, true
	}

	r.mu.RLock()
	e, ok := r.entries[nodeType]
	r.mu.RUnlock()
	if ok {
		r.cache.Add(nodeType, e)
	}
	return e, ok
}

// List returns every registered entry matching filter (or all entries if
// filter is nil), sorted by type name for deterministic output.
func (r *Registry) List(filter func(Entry) bool) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if filter == nil || filter(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Scan re-reads the currently registered entries and returns their type
// names, sorted. There is nothing to discover at runtime beyond what has
// already self-registered via init, so repeated calls are trivially
// idempotent (spec.md §8 invariant 10).
func (r *Registry) Scan() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// reservedNodeTypeNames collide with the fixed action vocabulary the
// executor routes on, or with names a saved-workflow file format would
// otherwise interpret specially; registering a node under one of these is
// a configuration mistake the caller should catch before it becomes a
// routing ambiguity at runtime.
var reservedNodeTypeNames = []string{"default", "error"}

// ReservedNames returns the node type names a registration must avoid.
// Distinct from pkg/ir.ReservedNames, which reserves workflow (not node
// type) names.
func ReservedNames() []string {
	out := make([]string, len(reservedNodeTypeNames))
	copy(out, reservedNodeTypeNames)
	return out
}
