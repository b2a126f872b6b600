// Package cache is the Iteration Cache (C9, spec.md §4.9): a workspace-local
// bbolt-backed node.Cache that hashes (node_type, version, resolved_params,
// inputs_view) into a lookup key and replays a stored (outputs, action) pair
// on hit, invalidated automatically whenever the node type's Version
// changes. One bucket per workflow name keeps cache entries from different
// workflows from colliding or needing to be invalidated together.
package cache
