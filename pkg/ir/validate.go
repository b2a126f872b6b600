package ir

import (
	"encoding/json"
	"fmt"

	"github.com/loomrun/loom/pkg/graph"
	"github.com/loomrun/loom/pkg/store"
	"github.com/loomrun/loom/pkg/template"
)

// maxWritePathDepth mirrors the registry's bounded nesting depth for
// declared Writes (see pkg/registry), so a template reference can never be
// checked deeper than a node's Interface could possibly declare.
const maxWritePathDepth = 5

// ParseAndValidate unmarshals data against the IR envelope schema, then
// runs the full semantic validation pass against resolver. It returns the
// canonical *Workflow on success, or a *ValidationError listing every
// problem found.
func ParseAndValidate(data []byte, resolver NodeTypeResolver) (*Workflow, error) {
	if issues := validateSchema(data); len(issues) > 0 {
		sortIssues(issues)
		return nil, &ValidationError{Issues: issues}
	}

	var wf Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, &ValidationError{Issues: []Issue{{Field: "$", Message: err.Error()}}}
	}

	if issues := Validate(&wf, resolver); len(issues) > 0 {
		sortIssues(issues)
		return nil, &ValidationError{Issues: issues}
	}
	return &wf, nil
}

// Validate runs the semantic (non-schema) checks against an already-parsed
// Workflow and returns every Issue found, sorted. Exported separately
// from ParseAndValidate so callers that already hold a *Workflow (e.g. a
// workflow built programmatically, never serialized) can validate it
// directly.
func Validate(wf *Workflow, resolver NodeTypeResolver) []Issue {
	var issues []Issue

	if len(wf.Nodes) == 0 {
		return []Issue{{Field: "nodes", Message: "workflow has no nodes"}}
	}

	ids := make(map[string]int, len(wf.Nodes))
	for i, n := range wf.Nodes {
		if prev, dup := ids[n.ID]; dup {
			issues = append(issues,
				Issue{NodeID: n.ID, Field: "id", Message: fmt.Sprintf("duplicate node id (also used by nodes[%d])", prev)},
			)
			continue
		}
		ids[n.ID] = i
	}

	issues = append(issues, validateEdges(wf, ids)...)
	issues = append(issues, validateNodeTypesAndParams(wf, resolver)...)
	issues = append(issues, validateStartAndReachability(wf, ids)...)
	issues = append(issues, validateTemplateReferences(wf, ids, resolver)...)

	sortIssues(issues)
	return issues
}

func validateEdges(wf *Workflow, ids map[string]int) []Issue {
	var issues []Issue
	seenActions := make(map[string]map[string]bool, len(wf.Edges))

	for _, e := range wf.Edges {
		if _, ok := ids[e.From]; !ok {
			issues = append(issues, Issue{NodeID: e.From, Field: "edges.from", Message: "edge references unknown node id"})
		}
		if _, ok := ids[e.To]; !ok {
			issues = append(issues, Issue{NodeID: e.To, Field: "edges.to", Message: "edge references unknown node id"})
		}

		action := e.EffectiveAction()
		byAction := seenActions[e.From]
		if byAction == nil {
			byAction = make(map[string]bool)
			seenActions[e.From] = byAction
		}
		if byAction[action] {
			issues = append(issues, Issue{
				NodeID:  e.From,
				Field:   "edges.action",
				Message: fmt.Sprintf("duplicate outgoing edge for action %q", action),
			})
		}
		byAction[action] = true
	}
	return issues
}

func validateNodeTypesAndParams(wf *Workflow, resolver NodeTypeResolver) []Issue {
	var issues []Issue
	for _, n := range wf.Nodes {
		if resolver == nil {
			continue
		}
		iface, ok := resolver.Lookup(n.Type)
		if !ok {
			issues = append(issues, Issue{NodeID: n.ID, Field: "type", Message: fmt.Sprintf("unknown node type %q", n.Type)})
			continue
		}
		for param, spec := range iface.Params {
			if !spec.Required {
				continue
			}
			if _, present := n.Params[param]; !present {
				issues = append(issues, Issue{
					NodeID:  n.ID,
					Field:   "params." + param,
					Message: "required param is missing and no template supplies it",
				})
			}
		}
	}
	return issues
}

func validateStartAndReachability(wf *Workflow, ids map[string]int) []Issue {
	var issues []Issue

	start := wf.EffectiveStartNode()
	if _, ok := ids[start]; !ok {
		issues = append(issues, Issue{NodeID: start, Field: "start_node", Message: "start node is not a known node id"})
		return issues
	}

	nodeIDs := make([]string, 0, len(wf.Nodes))
	for _, n := range wf.Nodes {
		nodeIDs = append(nodeIDs, n.ID)
	}
	edges := make([]graph.Edge, 0, len(wf.Edges))
	for _, e := range wf.Edges {
		if _, ok := ids[e.From]; !ok {
			continue
		}
		if _, ok := ids[e.To]; !ok {
			continue
		}
		edges = append(edges, graph.Edge{Source: e.From, Target: e.To})
	}

	g := graph.New(nodeIDs, edges)
	reachable := g.Reachable(start)
	for _, n := range wf.Nodes {
		if !reachable[n.ID] {
			issues = append(issues, Issue{NodeID: n.ID, Field: "id", Message: "unreachable from start node"})
		}
	}
	return issues
}

// validateTemplateReferences scans every string leaf in every node's
// params for "${...}" references and checks that each one names either a
// known workflow input or a known node id, and, when the node declares a
// structured Writes shape, that the remainder of the path actually exists
// under that shape. It also rejects references that, reduced to
// node-to-node dependencies, form a cycle; a reference to a node that runs
// later is not flagged unless it closes such a cycle.
func validateTemplateReferences(wf *Workflow, ids map[string]int, resolver NodeTypeResolver) []Issue {
	var issues []Issue

	inputNames := make(map[string]bool, len(wf.Inputs))
	for _, in := range wf.Inputs {
		inputNames[in.Name] = true
	}

	depEdges := make([]graph.Edge, 0)

	for _, n := range wf.Nodes {
		walkStrings(n.Params, func(field, s string) {
			refs, err := template.References(s)
			if err != nil {
				issues = append(issues, Issue{NodeID: n.ID, Field: field, Message: err.Error()})
				return
			}
			for _, ref := range refs {
				steps, perr := template.ParsePath(ref)
				if perr != nil || len(steps) == 0 {
					issues = append(issues, Issue{NodeID: n.ID, Field: field, Message: fmt.Sprintf("malformed reference %q", ref)})
					continue
				}

				head := steps[0].Key
				if inputNames[head] {
					continue
				}
				if _, known := ids[head]; !known {
					issues = append(issues, Issue{
						NodeID:  n.ID,
						Field:   field,
						Message: fmt.Sprintf("reference %q names an unknown node id or input %q", ref, head),
					})
					continue
				}

				depEdges = append(depEdges, graph.Edge{Source: head, Target: n.ID})

				if issue, ok := checkWritePath(resolver, wf.NodeByID(head), steps[1:]); !ok {
					issues = append(issues, Issue{NodeID: n.ID, Field: field, Message: issue})
				}
			}
		})
	}

	if len(depEdges) == 0 {
		return issues
	}
	nodeIDs := make([]string, 0, len(wf.Nodes))
	for _, n := range wf.Nodes {
		nodeIDs = append(nodeIDs, n.ID)
	}
	if err := graph.New(nodeIDs, depEdges).DetectCycles(); err != nil {
		issues = append(issues, Issue{Field: "edges", Message: "template references form a cyclic dependency between nodes"})
	}

	return issues
}

// checkWritePath reports whether the given path (already past the node-id
// head) resolves under source's declared Writes shape. A source with no
// declared Writes (unknown type, or a node whose output is intentionally
// unstructured, e.g. a tool-protocol synthetic node) is never rejected.
func checkWritePath(resolver NodeTypeResolver, source *NodeSpec, path []store.PathStep) (string, bool) {
	if resolver == nil || source == nil || len(path) == 0 {
		return "", true
	}
	iface, ok := resolver.Lookup(source.Type)
	if !ok || len(iface.Writes) == 0 {
		return "", true
	}
	if len(path) > maxWritePathDepth {
		return fmt.Sprintf("reference exceeds the maximum output nesting depth of %d", maxWritePathDepth), false
	}

	shape := iface.Writes
	for i, step := range path {
		next, ok := shape[step.Key]
		if !ok {
			return fmt.Sprintf("node %q has no declared output %q", source.ID, step.Key), false
		}
		if i == len(path)-1 {
			return "", true
		}
		shape = next
	}
	return "", true
}

// walkStrings visits every string leaf reachable from v (which may be a
// param map, a nested map, a slice, or a plain string), calling fn with a
// dotted field path and the string value.
func walkStrings(v any, fn func(field, s string)) {
	walkStringsField("params", v, fn)
}

func walkStringsField(field string, v any, fn func(field, s string)) {
	switch val := v.(type) {
	case string:
		fn(field, val)
	case map[string]any:
		for k, vv := range val {
			walkStringsField(field+"."+k, vv, fn)
		}
	case []any:
		for i, vv := range val {
			walkStringsField(fmt.Sprintf("%s[%d]", field, i), vv, fn)
		}
	}
}
