package discovery

import (
	"fmt"
	"strings"

	"github.com/loomrun/loom/pkg/ir"
	"github.com/loomrun/loom/pkg/registry"
)

// BuildNodes turns every entry in reg into a node Candidate, flattening
// each declared Writes tree into dotted paths (spec.md §4.13: "writes tree
// flattened to dotted paths") so a query like "workflow name" scores
// against "result.name" the same way it would against a bare "name".
func BuildNodes(reg *registry.Registry) []Candidate {
	entries := reg.List(nil)
	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, Candidate{
			Kind:      KindNode,
			Name:      e.Type,
			Paths:     flattenWrites(e.Interface.Writes, ""),
			Params:    paramNames(e.Interface.Params),
			Interface: renderInterface(e.Interface),
		})
	}
	return out
}

// BuildWorkflows turns saved workflow metadata into Candidates. Only
// Name, Description, and declared Inputs are indexed — a workflow's node
// graph is discoverable through its own nodes' Candidates instead.
func BuildWorkflows(workflows []*ir.Workflow) []Candidate {
	out := make([]Candidate, 0, len(workflows))
	for _, wf := range workflows {
		inputNames := make([]string, 0, len(wf.Inputs))
		for _, in := range wf.Inputs {
			inputNames = append(inputNames, in.Name)
		}
		out = append(out, Candidate{
			Kind:        KindWorkflow,
			Name:        wf.Name,
			Description: wf.Description,
			Paths:       inputNames,
		})
	}
	return out
}

// flattenWrites walks a Writes tree depth-first, returning every path from
// a root key to each leaf joined with ".".
func flattenWrites(nodes []*registry.WriteNode, prefix string) []string {
	var out []string
	for _, n := range nodes {
		path := n.Key
		if prefix != "" {
			path = prefix + "." + n.Key
		}
		if len(n.Children) == 0 {
			out = append(out, path)
			continue
		}
		out = append(out, flattenWrites(n.Children, path)...)
	}
	return out
}

func paramNames(params map[string]registry.ParamDecl) []string {
	out := make([]string, 0, len(params))
	for name := range params {
		out = append(out, name)
	}
	return out
}

// renderInterface renders iface back to a human-readable summary for a
// discovery response's top-K full-interface payload. It's intentionally
// not the exact "Interface:" doc grammar ParseInterface consumes — nothing
// re-parses this text, it's read by whatever issued the discovery query.
func renderInterface(iface *registry.Interface) string {
	var b strings.Builder
	if len(iface.Params) > 0 {
		b.WriteString("Params:\n")
		for name, p := range iface.Params {
			fmt.Fprintf(&b, "  %s: %s\n", name, p.Type)
		}
	}
	if len(iface.Writes) > 0 {
		b.WriteString("Writes:\n")
		for _, path := range flattenWrites(iface.Writes, "") {
			fmt.Fprintf(&b, "  %s\n", path)
		}
	}
	if len(iface.Actions) > 0 {
		b.WriteString("Actions:\n")
		for _, a := range iface.Actions {
			fmt.Fprintf(&b, "  %s\n", a.Name)
		}
	}
	return b.String()
}
