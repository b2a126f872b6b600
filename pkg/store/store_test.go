package store

import "testing"

func TestNamespace_WriteIsolation(t *testing.T) {
	s := New(nil)

	a := s.Namespace("node-a")
	b := s.Namespace("node-b")

	a.Set("x", 1)
	b.Set("x", 2)

	if v, _ := a.Get("x"); v != 1 {
		t.Errorf("node-a.x = %v, want 1", v)
	}
	if v, _ := b.Get("x"); v != 2 {
		t.Errorf("node-b.x = %v, want 2", v)
	}
}

func TestNamespace_GetMissingKey(t *testing.T) {
	s := New(nil)
	ns := s.Namespace("node-a")

	if _, ok := ns.Get("missing"); ok {
		t.Error("Get() of an unset key should report false")
	}
}

func TestNamespace_SetAll(t *testing.T) {
	s := New(nil)
	ns := s.Namespace("node-a")

	ns.SetAll(map[string]any{"x": 1, "y": 2})

	all := ns.All()
	if all["x"] != 1 || all["y"] != 2 {
		t.Errorf("All() = %v, want x=1 y=2", all)
	}
}

func TestNamespace_All_DefensiveCopy(t *testing.T) {
	s := New(nil)
	ns := s.Namespace("node-a")
	ns.Set("x", 1)

	snap := ns.All()
	snap["x"] = 999

	if v, _ := ns.Get("x"); v != 1 {
		t.Error("mutating the copy returned by All() should not affect the namespace")
	}
}

func TestStore_RootValue(t *testing.T) {
	s := New(map[string]any{"input_a": "hello"})

	v, ok := s.RootValue("input_a")
	if !ok || v != "hello" {
		t.Errorf("RootValue(input_a) = %v, %v, want hello, true", v, ok)
	}

	if _, ok := s.RootValue("missing"); ok {
		t.Error("RootValue() of a missing key should report false")
	}
}

func TestStore_SetSideChannel(t *testing.T) {
	s := New(nil)

	if err := s.SetSideChannel(KeyWarnings, []string{"careful"}); err != nil {
		t.Fatalf("SetSideChannel(%s) error = %v", KeyWarnings, err)
	}
	v, ok := s.RootValue(KeyWarnings)
	if !ok {
		t.Fatal("expected the side-channel value to be readable via RootValue")
	}
	if warnings, ok := v.([]string); !ok || len(warnings) != 1 {
		t.Errorf("RootValue(%s) = %v, want [careful]", KeyWarnings, v)
	}

	if err := s.SetSideChannel("__not_reserved__", 1); err != ErrUnknownSideChannel {
		t.Errorf("SetSideChannel(unreserved key) error = %v, want %v", err, ErrUnknownSideChannel)
	}
}

func TestStore_Clone_Isolation(t *testing.T) {
	s := New(map[string]any{"a": 1})
	ns := s.Namespace("node-a")
	ns.Set("x", 1)

	clone := s.Clone()
	clone.Namespace("node-a").Set("x", 999)
	clone.root["a"] = 2

	if v, _ := ns.Get("x"); v != 1 {
		t.Error("mutating the clone's namespace should not affect the original")
	}
	if v, _ := s.RootValue("a"); v != 1 {
		t.Error("mutating the clone's root should not affect the original")
	}
}

func TestReadView_ResolveNodeOutput(t *testing.T) {
	s := New(nil)
	s.Namespace("fetch-1").Set("body", map[string]any{"id": "42"})

	view := NewReadView(s)
	v, ok := view.Resolve([]PathStep{{Key: "fetch-1"}, {Key: "body"}, {Key: "id"}})
	if !ok {
		t.Fatal("Resolve() should find fetch-1.body.id")
	}
	if v != "42" {
		t.Errorf("Resolve() = %v, want 42", v)
	}
}

func TestReadView_ResolveRootInput(t *testing.T) {
	s := New(map[string]any{"limit": 10})

	view := NewReadView(s)
	v, ok := view.Resolve([]PathStep{{Key: "limit"}})
	if !ok || v != 10 {
		t.Errorf("Resolve(limit) = %v, %v, want 10, true", v, ok)
	}
}

func TestReadView_ResolveArrayIndex(t *testing.T) {
	s := New(nil)
	s.Namespace("list-1").Set("items", []any{"a", "b", "c"})

	view := NewReadView(s)
	v, ok := view.Resolve([]PathStep{{Key: "list-1"}, {Key: "items", HasIndex: true, Index: 1}})
	if !ok || v != "b" {
		t.Errorf("Resolve(list-1.items[1]) = %v, %v, want b, true", v, ok)
	}
}

func TestReadView_ResolveUnknownPath(t *testing.T) {
	s := New(nil)
	view := NewReadView(s)

	if _, ok := view.Resolve([]PathStep{{Key: "nonexistent"}}); ok {
		t.Error("Resolve() of an unknown node/root key should report false")
	}
}

func TestReadView_ResolveOutOfBoundsIndex(t *testing.T) {
	s := New(nil)
	s.Namespace("list-1").Set("items", []any{"a"})

	view := NewReadView(s)
	if _, ok := view.Resolve([]PathStep{{Key: "list-1"}, {Key: "items", HasIndex: true, Index: 5}}); ok {
		t.Error("Resolve() of an out-of-bounds index should report false")
	}
}

func TestDiff(t *testing.T) {
	before := map[string]any{"a": 1, "b": 2, "c": "same"}
	after := map[string]any{"a": 1, "b": 99, "d": "new"}

	m := Diff(before, after)

	if m.Added["d"] != "new" {
		t.Errorf("Added = %v, want d=new", m.Added)
	}
	if m.Modified["b"] != 99 {
		t.Errorf("Modified = %v, want b=99", m.Modified)
	}
	if len(m.Removed) != 1 || m.Removed[0] != "c" {
		t.Errorf("Removed = %v, want [c]", m.Removed)
	}
	if _, ok := m.Modified["a"]; ok {
		t.Error("unchanged key a should not appear in Modified")
	}
}

func TestDiff_NestedValuesDoNotPanic(t *testing.T) {
	before := map[string]any{"body": map[string]any{"id": 1}}
	after := map[string]any{"body": map[string]any{"id": 2}}

	m := Diff(before, after)
	if m.Modified["body"] == nil {
		t.Error("nested map change should be reported as modified")
	}
}

func TestDiff_Empty(t *testing.T) {
	m := Diff(map[string]any{"a": 1}, map[string]any{"a": 1})
	if !m.Empty() {
		t.Errorf("Diff() of identical maps should be Empty(), got %+v", m)
	}
}

func TestIsSideChannelKey(t *testing.T) {
	for _, key := range []string{KeyWarnings, KeyExecution, KeyNonRepairableError} {
		if !IsSideChannelKey(key) {
			t.Errorf("IsSideChannelKey(%q) = false, want true", key)
		}
	}
	if IsSideChannelKey("arbitrary") {
		t.Error("IsSideChannelKey(arbitrary) = true, want false")
	}
}
