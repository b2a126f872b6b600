package compiler

import "github.com/loomrun/loom/pkg/node"

// Graph is the compiled, executable form of a workflow: every node's
// wrapper chain already built, plus the (from, action) -> to routing
// table the Executor (C7) walks. Building one performs no I/O and never
// invokes a node.
type Graph struct {
	Start  string
	nodes  map[string]node.Wrapped
	routes map[string]map[string]string
}

// Node returns the wrapped node for id, if the graph has one.
func (g *Graph) Node(id string) (node.Wrapped, bool) {
	w, ok := g.nodes[id]
	return w, ok
}

// Route returns the node id reached from (from, action), if a matching
// edge was compiled.
func (g *Graph) Route(from, action string) (string, bool) {
	to, ok := g.routes[from][action]
	return to, ok
}

// NodeIDs returns every node id in the graph, in no particular order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}
