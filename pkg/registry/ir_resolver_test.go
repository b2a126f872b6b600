package registry

import "testing"

func TestIRResolver_Lookup(t *testing.T) {
	r := New()
	r.MustRegister("http", httpDoc, func() Node { return stubNode{} })
	resolver := NewIRResolver(r)

	iface, ok := resolver.Lookup("http")
	if !ok {
		t.Fatal("Lookup() did not find the registered type")
	}
	if !iface.Params["url"].Required {
		t.Error("url has no declared default, expected Required true")
	}
	if _, ok := iface.Writes["body"]; !ok {
		t.Error("expected body in the resolved write shape")
	}

	if _, ok := resolver.Lookup("nonexistent"); ok {
		t.Error("Lookup() found a type that was never registered")
	}
}

func TestIRResolver_RequiredReflectsDefault(t *testing.T) {
	r := New()
	r.MustRegister("shell", "Interface:\n- Params: command: string\n- Params: timeout: int # default 30\n",
		func() Node { return stubNode{} })
	resolver := NewIRResolver(r)

	iface, _ := resolver.Lookup("shell")
	if !iface.Params["command"].Required {
		t.Error("command has no default, expected Required true")
	}
	if iface.Params["timeout"].Required {
		t.Error("timeout has a default, expected Required false")
	}
}
