package compiler

import (
	"github.com/loomrun/loom/pkg/logging"
	"github.com/loomrun/loom/pkg/node"
	"github.com/loomrun/loom/pkg/template"
)

// options collects everything every node in the graph shares: where to
// send trace events, the iteration cache (if enabled for this run), the
// unresolved-reference policy, and the logger each compiled node derives
// its own scoped child logger from.
type options struct {
	sink   node.Sink
	cache  node.Cache
	policy template.Policy
	logger *logging.Logger
}

// Option configures a Compile call.
type Option func(*options)

// WithSink routes every compiled node's trace events to s.
func WithSink(s node.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithCache enables the Iteration Cache (C9) for every compiled node.
func WithCache(c node.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithPolicy sets the unresolved-template-reference policy (defaults to
// template.PolicyStrict).
func WithPolicy(p template.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the logger every compiled node's own scoped logger is
// derived from. Unset, each node falls back to its own package default.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}
