// Package graph provides graph algorithms and utilities for workflow execution.
//
// # Overview
//
// The graph package holds the small set of directed-graph operations the
// workflow engine needs over plain node ids: topological ordering, cycle
// detection, reachability, and edge and terminal-node queries.
//
// # Graph Representation
//
// A Graph is built with New from a list of node ids and a list of Edge
// values:
//
//   - Nodes are identified by their string ids
//   - Each Edge points from Source to Target
//   - Multiple edges can connect the same nodes
//
// # Usage
//
//	g := graph.New([]string{"A", "B", "C"}, []graph.Edge{
//	    {Source: "A", Target: "B"},
//	    {Source: "B", Target: "C"},
//	})
//
//	order, err := g.TopologicalSort() // [A B C]
//	if err != nil {
//	    // the nodes could not all be ordered: the graph has a cycle
//	}
//
//	reachable := g.Reachable("A")    // A, B and C
//	terminal := g.GetTerminalNodes() // [C]
//	err = g.DetectCycles()           // nil: no cycle
//
// # Algorithm Details
//
// TopologicalSort uses Kahn's algorithm:
//  1. Calculate in-degree for all nodes
//  2. Add zero in-degree nodes to the queue, sorted by id so the order is deterministic
//  3. Process queue: remove node, decrement neighbor in-degrees
//  4. Add newly zero in-degree nodes to queue
//  5. If processed count != node count, a cycle exists
//
// DetectCycles runs TopologicalSort and returns its error; the error says
// that a cycle exists and does not list the nodes on it. Reachable walks
// the edges depth-first from its start node.
//
// # Performance Characteristics
//
//   - Topological sort: O(V + E), plus sorting the zero in-degree start set
//   - Reachable: O(V + E)
//
// # Error Handling
//
// TopologicalSort returns an error only when it cannot order every node,
// as happens for a graph with a cycle (a self-loop included). An empty
// graph sorts to an empty order without error.
//
// # Thread Safety
//
// Graph algorithms do not modify the Graph and are safe for concurrent use.
// Multiple goroutines can analyze the same graph simultaneously.
package graph
