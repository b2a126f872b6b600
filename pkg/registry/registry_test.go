package registry

import (
	"testing"

	"github.com/loomrun/loom/pkg/store"
)

type stubNode struct{}

func (stubNode) Prep(shared *store.Namespace, params map[string]any) (any, error) { return nil, nil }
func (stubNode) Exec(prep any) (any, error)                                       { return nil, nil }
func (stubNode) Post(shared *store.Namespace, prep, exec any) (string, error)     { return "default", nil }

const httpDoc = `
Interface:
- Writes: shared["body"]: string
- Writes: shared["status"]: int
- Params: url: string
`

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	if err := r.Register("http", httpDoc, func() Node { return stubNode{} }); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	entry, ok := r.Lookup("http")
	if !ok {
		t.Fatal("Lookup() did not find the registered type")
	}
	if entry.Interface.WriteNodeByKey("body") == nil {
		t.Error("expected a body write declaration")
	}
	if _, ok := entry.Interface.Params["url"]; !ok {
		t.Error("expected a url param declaration")
	}
	if _, ok := r.Lookup("nonexistent"); ok {
		t.Error("Lookup() found a type that was never registered")
	}
}

func TestRegistry_RegisterDuplicateRejected(t *testing.T) {
	r := New()
	factory := func() Node { return stubNode{} }
	if err := r.Register("http", httpDoc, factory); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if err := r.Register("http", httpDoc, factory); err == nil {
		t.Fatal("expected an error registering the same type twice")
	}
}

func TestRegistry_MustRegisterPanicsOnBadDoc(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustRegister to panic on a malformed doc")
		}
	}()
	New().MustRegister("bad", "no interface block here", func() Node { return stubNode{} })
}

func TestRegistry_List(t *testing.T) {
	r := New()
	r.MustRegister("http", httpDoc, func() Node { return stubNode{} })
	r.MustRegister("shell", "Interface:\n- Params: command: string\n", func() Node { return stubNode{} })

	all := r.List(nil)
	if len(all) != 2 || all[0].Type != "http" || all[1].Type != "shell" {
		t.Fatalf("List(nil) = %+v, want [http, shell] sorted", all)
	}

	onlyShell := r.List(func(e Entry) bool { return e.Type == "shell" })
	if len(onlyShell) != 1 || onlyShell[0].Type != "shell" {
		t.Fatalf("List(filter) = %+v, want only shell", onlyShell)
	}
}

func TestRegistry_ScanIsIdempotent(t *testing.T) {
	r := New()
	r.MustRegister("http", httpDoc, func() Node { return stubNode{} })

	first := r.Scan()
	for i := 0; i < 3; i++ {
		next := r.Scan()
		if len(first) != len(next) || first[0] != next[0] {
			t.Fatalf("Scan() not idempotent: %v vs %v", first, next)
		}
	}
}

func TestReservedNames(t *testing.T) {
	names := ReservedNames()
	found := false
	for _, n := range names {
		if n == "default" {
			found = true
		}
	}
	if !found {
		t.Error(`expected "default" among reserved node type names`)
	}
}
