package registry

import "github.com/loomrun/loom/pkg/ir"

// IRResolver adapts a *Registry to pkg/ir.NodeTypeResolver, so the
// compiler can validate a workflow against the live registry without
// pkg/ir ever importing this package.
type IRResolver struct {
	registry *Registry
}

// NewIRResolver wraps r for use as an ir.NodeTypeResolver.
func NewIRResolver(r *Registry) IRResolver {
	return IRResolver{registry: r}
}

// Lookup implements ir.NodeTypeResolver.
func (a IRResolver) Lookup(nodeType string) (ir.NodeInterface, bool) {
	entry, ok := a.registry.Lookup(nodeType)
	if !ok {
		return ir.NodeInterface{}, false
	}
	return ir.NodeInterface{
		Params: toParamSpecs(entry.Interface.Params),
		Writes: toWriteShape(entry.Interface.Writes),
	}, true
}

func toParamSpecs(params map[string]ParamDecl) map[string]ir.ParamSpec {
	out := make(map[string]ir.ParamSpec, len(params))
	for name, p := range params {
		out[name] = ir.ParamSpec{Required: !p.HasDefault}
	}
	return out
}

func toWriteShape(nodes []*WriteNode) ir.WriteShape {
	if len(nodes) == 0 {
		return nil
	}
	shape := make(ir.WriteShape, len(nodes))
	for _, n := range nodes {
		shape[n.Key] = toWriteShape(n.Children)
	}
	return shape
}
