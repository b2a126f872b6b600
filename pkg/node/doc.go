// Package node builds the wrapper chain the compiler attaches to every
// registry-supplied node implementation: instrumentation, batch fan-out,
// namespacing, and template resolution, composed outside-in exactly in that
// order around retry/fallback handling of a single Prep/Exec/Post cycle.
//
// The inner node itself (a registry.Node) only ever sees its own namespace
// and already-resolved params; everything about templates, batching, and
// tracing happens in the layers built here, the same way the teacher wraps
// an http.RoundTripper in successive middlewares rather than teaching the
// transport about auth, headers, or SSRF policy directly.
package node
