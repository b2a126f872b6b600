// Package graph provides DAG (Directed Acyclic Graph) operations for workflow execution.
// This includes topological sorting, cycle detection, and graph traversal utilities.
package graph

import "fmt"

// Edge is a directed edge between two node ids. The compiler and the IR
// validator both reduce their richer edge types (action-labeled, with
// templated params) down to this shape before asking the graph package
// anything about reachability or ordering.
type Edge struct {
	Source string
	Target string
}

// Graph represents a workflow graph with node ids and edges.
type Graph struct {
	nodeIDs []string
	edges   []Edge
}

// New creates a new Graph from node ids and edges.
func New(nodeIDs []string, edges []Edge) *Graph {
	return &Graph{
		nodeIDs: nodeIDs,
		edges:   edges,
	}
}

// TopologicalSort performs topological sorting on the workflow graph using Kahn's algorithm.
// This determines a valid node-level dependency order (distinct from the
// executor's runtime order, which instead follows the action-routing table).
//
// Algorithm:
//  1. Calculate in-degree (number of incoming edges) for each node
//  2. Start with nodes that have no dependencies (in-degree = 0)
//  3. Process nodes and reduce in-degree of their neighbors
//  4. If all nodes processed, we have a valid execution order
//  5. If nodes remain, there's a cycle in the graph
//
// Optimizations:
//   - Pre-allocated slices with exact capacity to minimize allocations
//   - Ring buffer for queue to avoid expensive slice operations
//   - Insertion sort for small orphan node sets (faster than generic sort for small n)
//   - Single pass edge processing to build both adjacency list and in-degree
func (g *Graph) TopologicalSort() ([]string, error) {
	numNodes := len(g.nodeIDs)

	if numNodes == 0 {
		return []string{}, nil
	}

	inDegree := make(map[string]int, numNodes)
	adjacency := make(map[string][]string, numNodes)

	for _, id := range g.nodeIDs {
		inDegree[id] = 0
	}

	for i := range g.edges {
		edge := &g.edges[i]
		adjacency[edge.Source] = append(adjacency[edge.Source], edge.Target)
		inDegree[edge.Target]++
	}

	orphanNodes := make([]string, 0, numNodes)
	for nodeID, degree := range inDegree {
		if degree == 0 {
			orphanNodes = append(orphanNodes, nodeID)
		}
	}

	// Deterministic order matters: two orphan nodes (e.g. two independent
	// inputs) must always sort the same way run to run.
	insertionSort(orphanNodes)

	queue := make([]string, numNodes)
	queueStart := 0
	queueEnd := len(orphanNodes)
	copy(queue, orphanNodes)

	order := make([]string, 0, numNodes)

	for queueStart < queueEnd {
		current := queue[queueStart]
		queueStart++
		order = append(order, current)

		neighbors := adjacency[current]
		for i := range neighbors {
			neighbor := neighbors[i]
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue[queueEnd] = neighbor
				queueEnd++
			}
		}
	}

	if len(order) != numNodes {
		return nil, fmt.Errorf("graph contains a cycle (circular dependency)")
	}

	return order, nil
}

// insertionSort sorts a slice of strings in place using insertion sort.
// Faster than the standard library sort for the small slices (node ids
// with no incoming edges) this function is actually called with.
func insertionSort(arr []string) {
	for i := 1; i < len(arr); i++ {
		key := arr[i]
		j := i - 1
		for j >= 0 && arr[j] > key {
			arr[j+1] = arr[j]
			j--
		}
		arr[j+1] = key
	}
}

// Reachable returns the set of node ids reachable from start, inclusive.
func (g *Graph) Reachable(start string) map[string]bool {
	adjacency := make(map[string][]string, len(g.nodeIDs))
	for i := range g.edges {
		adjacency[g.edges[i].Source] = append(adjacency[g.edges[i].Source], g.edges[i].Target)
	}

	seen := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adjacency[n] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return seen
}

// GetNodeOutputEdges returns all edges where the given node is the source.
func (g *Graph) GetNodeOutputEdges(nodeID string) []Edge {
	var edges []Edge
	for _, edge := range g.edges {
		if edge.Source == nodeID {
			edges = append(edges, edge)
		}
	}
	return edges
}

// GetTerminalNodes returns all nodes that have no outgoing edges.
func (g *Graph) GetTerminalNodes() []string {
	terminal := make(map[string]bool, len(g.nodeIDs))
	for _, id := range g.nodeIDs {
		terminal[id] = true
	}
	for _, edge := range g.edges {
		terminal[edge.Source] = false
	}

	result := make([]string, 0, len(terminal))
	for _, id := range g.nodeIDs {
		if terminal[id] {
			result = append(result, id)
		}
	}
	return result
}

// DetectCycles detects if the graph contains any cycles.
func (g *Graph) DetectCycles() error {
	_, err := g.TopologicalSort()
	return err
}
