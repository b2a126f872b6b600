package toolprotocol

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/store"
)

type fakeTransport struct {
	discoverResult []Tool
	discoverErr    error

	callResult Response
	callErr    error
	gotRequest Request

	closed bool
}

func (f *fakeTransport) Discover(ctx context.Context) ([]Tool, error) {
	return f.discoverResult, f.discoverErr
}

func (f *fakeTransport) Call(ctx context.Context, req Request) (Response, error) {
	f.gotRequest = req
	return f.callResult, f.callErr
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func TestClient_CallSurfacesSemanticErrorWithoutGoError(t *testing.T) {
	ft := &fakeTransport{callResult: Response{IsError: true, Message: "file not found"}}
	c := NewClient("srv", ft, ClientConfig{})

	resp, err := c.Call(context.Background(), "read-file", map[string]any{"path": "/nope"})
	if err != nil {
		t.Fatalf("Call() error = %v, want nil for a semantic tool error", err)
	}
	if !resp.IsError || resp.Message != "file not found" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestClient_CallWrapsTransportFailure(t *testing.T) {
	ft := &fakeTransport{callErr: errors.New("connection reset")}
	c := NewClient("srv", ft, ClientConfig{})

	_, err := c.Call(context.Background(), "read-file", nil)
	if !errs.IsCategory(err, errs.CategoryToolProtocol) {
		t.Fatalf("err = %v, want CategoryToolProtocol", err)
	}
}

func TestClient_RateLimitExceededReportsCapacityError(t *testing.T) {
	ft := &fakeTransport{callResult: Response{Result: "ok"}}
	c := NewClient("srv", ft, ClientConfig{RatePerSecond: 1, Burst: 1})

	if _, err := c.Call(context.Background(), "t", nil); err != nil {
		t.Fatalf("first Call() error = %v, want nil (burst covers it)", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := c.Call(ctx, "t", nil)
	if !errs.IsCategory(err, errs.CategoryToolProtocol) {
		t.Fatalf("second Call() err = %v, want a CategoryToolProtocol capacity error", err)
	}
}

func TestDiscoveryCache_MissesWhenConfigChanges(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "servers.json")
	cachePath := filepath.Join(dir, "discovery-cache.json")

	if err := os.WriteFile(configPath, []byte(`{"v":1}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cache := NewDiscoveryCache(cachePath)
	tools := map[string][]Tool{"srv": {{Name: "read-file"}}}
	if err := cache.Store(configPath, tools); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	loaded, ok := cache.Load(configPath)
	if !ok || len(loaded["srv"]) != 1 {
		t.Fatalf("Load() = %v, %v, want the stored tools", loaded, ok)
	}

	time.Sleep(10 * time.Millisecond) // force a distinct mtime
	if err := os.WriteFile(configPath, []byte(`{"v":2}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, ok := cache.Load(configPath); ok {
		t.Error("expected a miss after the config file changed")
	}
}

func TestBuildInterface_MapsSchemaTypes(t *testing.T) {
	tool := Tool{
		Name: "search",
		InputSchema: map[string]any{
			"properties": map[string]any{
				"query": map[string]any{"type": "string"},
				"limit": map[string]any{"type": "integer"},
				"exact": map[string]any{"type": "boolean"},
			},
			"required": []any{"query"},
		},
	}

	iface := buildInterface(tool, "docs")
	if iface.Params["query"].Type != "string" || !required(iface.Params["query"]) {
		t.Errorf("query param = %+v", iface.Params["query"])
	}
	if iface.Params["limit"].Type != "int" {
		t.Errorf("limit param = %+v", iface.Params["limit"])
	}
	if iface.Params["exact"].Type != "bool" {
		t.Errorf("exact param = %+v", iface.Params["exact"])
	}
	if iface.WriteNodeByKey("result") == nil || iface.WriteNodeByKey("error") == nil {
		t.Errorf("iface.Writes = %+v, want result and error", iface.Writes)
	}
}

func required(pd registry.ParamDecl) bool { return !pd.HasDefault }

func TestRegisterServer_RoundTripsThroughSyntheticNode(t *testing.T) {
	ft := &fakeTransport{callResult: Response{Result: map[string]any{"matches": 3}}}
	client := NewClient("srv", ft, ClientConfig{})

	reg := registry.New()
	tools := []Tool{{Name: "search", InputSchema: map[string]any{
		"properties": map[string]any{"query": map[string]any{"type": "string"}},
		"required":   []any{"query"},
	}}}
	if err := RegisterServer(reg, "docs", tools, client); err != nil {
		t.Fatalf("RegisterServer() error = %v", err)
	}

	entry, ok := reg.Lookup(NodeType("docs", "search"))
	if !ok {
		t.Fatal("expected tool-docs-search to be registered")
	}

	n := entry.New()
	shared := store.New(nil)
	ns := shared.Namespace("n1")

	prep, err := n.Prep(ns, map[string]any{"query": "hello"})
	if err != nil {
		t.Fatalf("Prep() error = %v", err)
	}
	exec, err := n.Exec(prep)
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	action, err := n.Post(ns, prep, exec)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if action != "default" {
		t.Errorf("action = %q, want default", action)
	}
	result, _ := ns.Get("result")
	if m, ok := result.(map[string]any); !ok || m["matches"] != 3 {
		t.Errorf("result = %v", result)
	}
	alias, _ := ns.Get("docs")
	if m, ok := alias.(map[string]any); !ok || m["matches"] != 3 {
		t.Errorf("server alias \"docs\" = %v, want the same value as result", alias)
	}
	if ft.gotRequest.Tool != "search" || ft.gotRequest.Args["query"] != "hello" {
		t.Errorf("transport saw request = %+v", ft.gotRequest)
	}
}

func TestRegisterServer_SemanticErrorRoutesToErrorAction(t *testing.T) {
	ft := &fakeTransport{callResult: Response{IsError: true, Message: "not found"}}
	client := NewClient("srv", ft, ClientConfig{})

	reg := registry.New()
	tools := []Tool{{Name: "lookup"}}
	if err := RegisterServer(reg, "docs", tools, client); err != nil {
		t.Fatalf("RegisterServer() error = %v", err)
	}

	entry, _ := reg.Lookup(NodeType("docs", "lookup"))
	n := entry.New()
	shared := store.New(nil)
	ns := shared.Namespace("n1")

	prep, _ := n.Prep(ns, map[string]any{})
	exec, err := n.Exec(prep)
	if err != nil {
		t.Fatalf("Exec() error = %v, want nil for a semantic tool error", err)
	}
	action, err := n.Post(ns, prep, exec)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if action != "error" {
		t.Errorf("action = %q, want error", action)
	}
	errVal, _ := ns.Get("error")
	if errVal != "not found" {
		t.Errorf("error output = %v", errVal)
	}
}
