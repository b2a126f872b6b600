package ir

import (
	"strings"
	"testing"
)

type stubResolver map[string]NodeInterface

func (s stubResolver) Lookup(nodeType string) (NodeInterface, bool) {
	iface, ok := s[nodeType]
	return iface, ok
}

func baseWorkflow() *Workflow {
	return &Workflow{
		Nodes: []NodeSpec{
			{ID: "fetch", Type: "http", Params: map[string]any{"url": "https://example.com"}},
			{ID: "save", Type: "write-file", Params: map[string]any{"path": "/tmp/out", "content": "${fetch.body}"}},
		},
		Edges: []EdgeSpec{
			{From: "fetch", To: "save"},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	resolver := stubResolver{
		"http":       {Writes: WriteShape{"body": {}, "status": {}}},
		"write-file": {},
	}
	if issues := Validate(baseWorkflow(), resolver); len(issues) != 0 {
		t.Fatalf("unexpected issues: %+v", issues)
	}
}

func TestValidate_EmptyWorkflow(t *testing.T) {
	issues := Validate(&Workflow{}, nil)
	if len(issues) != 1 || issues[0].Field != "nodes" {
		t.Fatalf("issues = %+v, want a single nodes issue", issues)
	}
}

func TestValidate_DuplicateNodeID(t *testing.T) {
	wf := baseWorkflow()
	wf.Nodes = append(wf.Nodes, NodeSpec{ID: "fetch", Type: "http"})

	issues := Validate(wf, nil)
	if !hasIssue(issues, "fetch", "id") {
		t.Fatalf("expected a duplicate-id issue, got %+v", issues)
	}
}

func TestValidate_EdgeReferencesUnknownID(t *testing.T) {
	wf := baseWorkflow()
	wf.Edges = append(wf.Edges, EdgeSpec{From: "fetch", To: "missing"})

	issues := Validate(wf, nil)
	if !hasIssue(issues, "missing", "edges.to") {
		t.Fatalf("expected an unknown-edge-target issue, got %+v", issues)
	}
}

func TestValidate_UnreachableNode(t *testing.T) {
	wf := baseWorkflow()
	wf.Nodes = append(wf.Nodes, NodeSpec{ID: "orphan", Type: "http"})

	issues := Validate(wf, nil)
	if !hasIssue(issues, "orphan", "id") {
		t.Fatalf("expected an unreachable-node issue, got %+v", issues)
	}
}

func TestValidate_SelfLoopIsUnreachableExit(t *testing.T) {
	wf := &Workflow{
		Nodes: []NodeSpec{{ID: "a", Type: "http"}, {ID: "b", Type: "http"}},
		Edges: []EdgeSpec{{From: "a", To: "a"}},
	}
	issues := Validate(wf, nil)
	if !hasIssue(issues, "b", "id") {
		t.Fatalf("expected b to be unreachable, got %+v", issues)
	}
}

func TestValidate_UnknownNodeType(t *testing.T) {
	wf := baseWorkflow()
	issues := Validate(wf, stubResolver{})
	if !hasIssue(wantFields(issues, "fetch"), "fetch", "type") {
		t.Fatalf("expected unknown-type issue for fetch, got %+v", issues)
	}
}

func TestValidate_MissingRequiredParam(t *testing.T) {
	wf := baseWorkflow()
	resolver := stubResolver{
		"http":       {Params: map[string]ParamSpec{"url": {Required: true}, "method": {Required: true}}},
		"write-file": {},
	}
	issues := Validate(wf, resolver)
	if !hasIssue(issues, "fetch", "params.method") {
		t.Fatalf("expected a missing-required-param issue, got %+v", issues)
	}
}

func TestValidate_RequiredParamSuppliedByTemplate(t *testing.T) {
	wf := baseWorkflow()
	wf.Inputs = []InputSpec{{Name: "method"}}
	wf.Nodes[0].Params["method"] = "${method}"
	resolver := stubResolver{
		"http":       {Params: map[string]ParamSpec{"url": {Required: true}, "method": {Required: true}}},
		"write-file": {},
	}
	issues := Validate(wf, resolver)
	if hasIssue(issues, "fetch", "params.method") {
		t.Fatalf("template-supplied param should not be flagged, got %+v", issues)
	}
}

func TestValidate_TemplateReferencesUnknownNode(t *testing.T) {
	wf := baseWorkflow()
	wf.Nodes[1].Params["content"] = "${nonexistent.body}"

	issues := Validate(wf, nil)
	if !hasIssue(issues, "save", "params.content") {
		t.Fatalf("expected an unknown-reference issue, got %+v", issues)
	}
}

func TestValidate_TemplateReferencesUnknownOutputPath(t *testing.T) {
	wf := baseWorkflow()
	resolver := stubResolver{
		"http":       {Writes: WriteShape{"body": {}, "status": {}}},
		"write-file": {},
	}
	wf.Nodes[1].Params["content"] = "${fetch.headers}"

	issues := Validate(wf, resolver)
	if !hasIssue(issues, "save", "params.content") {
		t.Fatalf("expected an unknown-output-path issue, got %+v", issues)
	}
}

func TestValidate_TemplateReferenceIntoInputIsFine(t *testing.T) {
	wf := baseWorkflow()
	wf.Inputs = []InputSpec{{Name: "dir"}}
	wf.Nodes[1].Params["path"] = "${dir}/out"

	issues := Validate(wf, nil)
	if hasIssue(issues, "save", "params.path") {
		t.Fatalf("reference to a known input should not be flagged, got %+v", issues)
	}
}

func TestValidate_TemplateCycleRejected(t *testing.T) {
	wf := &Workflow{
		Nodes: []NodeSpec{
			{ID: "a", Type: "http", Params: map[string]any{"x": "${b.y}"}},
			{ID: "b", Type: "http", Params: map[string]any{"y": "${a.x}"}},
		},
		Edges: []EdgeSpec{{From: "a", To: "b"}},
	}
	issues := Validate(wf, nil)
	found := false
	for _, i := range issues {
		if strings.Contains(i.Message, "cyclic") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a cyclic-dependency issue, got %+v", issues)
	}
}

func TestValidate_DuplicateOutgoingAction(t *testing.T) {
	wf := baseWorkflow()
	wf.Edges = append(wf.Edges, EdgeSpec{From: "fetch", To: "save", Action: "default"})

	issues := Validate(wf, nil)
	if !hasIssue(issues, "fetch", "edges.action") {
		t.Fatalf("expected a duplicate-action issue, got %+v", issues)
	}
}

func TestParseAndValidate_SchemaRejectsMissingID(t *testing.T) {
	doc := []byte(`{"nodes":[{"type":"http"}]}`)
	_, err := ParseAndValidate(doc, nil)
	if err == nil {
		t.Fatal("expected a schema validation error")
	}
	ve, ok := err.(*ValidationError)
	if !ok || len(ve.Issues) == 0 {
		t.Fatalf("expected a *ValidationError with issues, got %v", err)
	}
}

func TestParseAndValidate_RoundTrip(t *testing.T) {
	doc := []byte(`{
		"nodes": [
			{"id": "fetch", "type": "http", "params": {"url": "https://example.com"}, "timeout_ms": 2000},
			{"id": "save", "type": "write-file", "params": {"path": "/tmp/out"}}
		],
		"edges": [{"from": "fetch", "to": "save"}]
	}`)
	wf, err := ParseAndValidate(doc, nil)
	if err != nil {
		t.Fatalf("ParseAndValidate() error = %v", err)
	}
	if wf.EffectiveStartNode() != "fetch" {
		t.Errorf("EffectiveStartNode() = %q, want %q", wf.EffectiveStartNode(), "fetch")
	}
	if wf.Nodes[0].Timeout.Milliseconds() != 2000 {
		t.Errorf("Timeout = %v, want 2000ms", wf.Nodes[0].Timeout)
	}
}

func TestBatchSpec_EffectiveItemAlias(t *testing.T) {
	var b *BatchSpec
	if got := b.EffectiveItemAlias(); got != "item" {
		t.Errorf("nil BatchSpec EffectiveItemAlias() = %q, want %q", got, "item")
	}
	b = &BatchSpec{ItemAlias: "row"}
	if got := b.EffectiveItemAlias(); got != "row" {
		t.Errorf("EffectiveItemAlias() = %q, want %q", got, "row")
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Issues: []Issue{
		{NodeID: "a", Field: "type", Message: "unknown node type"},
		{Field: "nodes", Message: "workflow has no nodes"},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "a.type") || !strings.Contains(msg, "nodes:") {
		t.Errorf("Error() = %q, want it to mention both issues", msg)
	}
}

func hasIssue(issues []Issue, nodeID, field string) bool {
	for _, i := range issues {
		if i.NodeID == nodeID && i.Field == field {
			return true
		}
	}
	return false
}

func wantFields(issues []Issue, nodeID string) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.NodeID == nodeID {
			out = append(out, i)
		}
	}
	return out
}
