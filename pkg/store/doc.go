// Package store implements the hierarchical shared store that lives for the
// duration of one workflow execution.
//
// The store is a map indexed first by node id, then by key, plus a root
// level holding workflow-level inputs and a small set of reserved
// side-channel keys. A node only ever writes through its own Namespace,
// which routes writes to store[node_id][key] and refuses writes to any
// other node's section or to an undeclared side-channel key. The Template
// Engine reads through a separate ReadView that can see the whole store,
// so "${other_node.x}" resolves without the writing node ever holding a
// reference to another node's namespace.
package store
