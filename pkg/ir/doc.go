// Package ir defines the workflow Intermediate Representation and its
// validator: the canonical in-memory shape a compiled graph is built from,
// and the structural-plus-semantic checks a document must pass before the
// compiler is allowed to touch it.
//
// Validation never executes a node. It checks the document against a fixed
// JSON schema, then walks the graph and every template reference to reject
// duplicate ids, dangling edges, unreachable nodes, unknown node types,
// missing required params, and references to node outputs that the node's
// declared Interface says it never writes. The graph checks run only on a
// document that passes the schema; each stage reports every issue it finds,
// not just the first.
package ir
