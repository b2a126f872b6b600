package httpnode

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loomrun/loom/pkg/config"
	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/store"
)

func testConfig() *config.Config {
	cfg := config.Testing()
	cfg.AllowHTTP = true
	cfg.AllowLocalhost = true
	return cfg
}

func run(t *testing.T, n registry.Node, params map[string]any) (*store.Namespace, string, error) {
	t.Helper()
	s := store.New(nil)
	ns := s.Namespace("n1")

	prep, err := n.Prep(ns, params)
	if err != nil {
		return ns, "", err
	}
	exec, err := n.Exec(prep)
	if err != nil {
		return ns, "", err
	}
	action, err := n.Post(ns, prep, exec)
	return ns, action, err
}

func TestHTTPNode_SuccessWritesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	n := &httpNode{cfg: testConfig()}
	ns, action, err := run(t, n, map[string]any{"url": server.URL})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if action != "default" {
		t.Errorf("action = %q, want default", action)
	}
	body, _ := ns.Get("body")
	if body != "hello" {
		t.Errorf("body = %v, want hello", body)
	}
	status, _ := ns.Get("status")
	if status != 200 {
		t.Errorf("status = %v, want 200", status)
	}
}

func TestHTTPNode_NonSuccessStatusRoutesToError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	n := &httpNode{cfg: testConfig()}
	_, action, err := run(t, n, map[string]any{"url": server.URL})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if action != "error" {
		t.Errorf("action = %q, want error", action)
	}
}

func TestHTTPNode_MissingURL(t *testing.T) {
	n := &httpNode{cfg: testConfig()}
	_, _, err := run(t, n, map[string]any{})
	if err == nil {
		t.Fatal("expected an error for missing url")
	}
}

func TestHTTPNode_BinaryBodyIsBase64Flagged(t *testing.T) {
	payload := []byte{0x00, 0xFF, 0x10, 'h', 'i'}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	n := &httpNode{cfg: testConfig()}
	ns, _, err := run(t, n, map[string]any{"url": server.URL})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	isBinary, _ := ns.Get("body_is_binary")
	if isBinary != true {
		t.Error("expected body_is_binary = true for non-UTF8 payload")
	}
}

func TestRegister_ParsesInterfaceDoc(t *testing.T) {
	reg := registry.New()
	if err := Register(reg, testConfig()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	entry, ok := reg.Lookup("http")
	if !ok {
		t.Fatal("expected \"http\" to be registered")
	}
	if entry.Interface.WriteNodeByKey("status") == nil {
		t.Error("expected a declared status write")
	}
}
