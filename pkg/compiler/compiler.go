package compiler

import (
	"fmt"

	"github.com/loomrun/loom/pkg/ir"
	"github.com/loomrun/loom/pkg/node"
	"github.com/loomrun/loom/pkg/registry"
)

// Compile builds an executable Graph from wf against reg. It does not
// re-run structural validation (spec.md §4.1's IR Schema & Validator is
// the place for that) but still refuses an unknown node type or a
// duplicate (from, action) edge pair, so Compile is safe to call directly
// in tests or tooling that skips ir.Validate.
func Compile(wf *ir.Workflow, reg *registry.Registry, opts ...Option) (*Graph, error) {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	g := &Graph{
		nodes:  make(map[string]node.Wrapped, len(wf.Nodes)),
		routes: make(map[string]map[string]string, len(wf.Nodes)),
	}

	for _, spec := range wf.Nodes {
		entry, ok := reg.Lookup(spec.Type)
		if !ok {
			return nil, fmt.Errorf("compiler: node %q: unknown type %q", spec.ID, spec.Type)
		}

		g.nodes[spec.ID] = node.Wrap(spec.ID, spec.Type, entry.New(), node.Config{
			Params:  spec.Params,
			Retries: spec.Retries,
			WaitMS:  spec.WaitMS,
			Timeout: spec.Timeout,
			Batch:   toBatchConfig(spec.Batch),
			Policy:  cfg.policy,
			Version: entry.Version,
			Sink:    cfg.sink,
			Cache:   cfg.cache,
			Logger:  cfg.logger,
		})
	}

	for _, edge := range wf.Edges {
		action := edge.EffectiveAction()
		if g.routes[edge.From] == nil {
			g.routes[edge.From] = make(map[string]string)
		}
		if existing, ok := g.routes[edge.From][action]; ok {
			return nil, fmt.Errorf("compiler: duplicate edge (%s, %s) already routes to %q, cannot also route to %q",
				edge.From, action, existing, edge.To)
		}
		g.routes[edge.From][action] = edge.To
	}

	g.Start = wf.EffectiveStartNode()
	if g.Start == "" {
		return nil, fmt.Errorf("compiler: workflow has no nodes")
	}
	if _, ok := g.nodes[g.Start]; !ok {
		return nil, fmt.Errorf("compiler: start node %q is not among the compiled nodes", g.Start)
	}

	return g, nil
}

func toBatchConfig(b *ir.BatchSpec) *node.BatchConfig {
	if b == nil {
		return nil
	}
	return &node.BatchConfig{Over: b.Over, ItemAlias: b.EffectiveItemAlias()}
}
