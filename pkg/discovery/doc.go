// Package discovery builds and queries the offline Discovery Index (C13):
// a point-in-time snapshot of every registered node type's interface and
// every saved workflow's metadata, searchable by a free-form intent
// string. The compiler and registry remain the source of truth for
// interfaces — this package only ever reflects what BuildNodes and
// BuildWorkflows last saw, the
// same way pkg/cache's Iteration Cache is an explicit, rebuildable
// artifact rather than something kept live-synchronized with the registry.
package discovery
