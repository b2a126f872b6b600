package llmnode

import (
	"context"
	"errors"
	"testing"

	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/store"
)

type fakeCaller struct {
	resp Response
	err  error
}

func (f *fakeCaller) Complete(ctx context.Context, req Request) (Response, error) {
	return f.resp, f.err
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

func TestLLMNode_WritesTextAndUsage(t *testing.T) {
	caller := &fakeCaller{resp: Response{Text: "42", Usage: Usage{PromptTokens: 3, CompletionTokens: 1, TotalTokens: 4}}}
	n := &llmNode{caller: caller}

	ns, action, err := run(t, n, map[string]any{"prompt": "what is the answer?"})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if action != "default" {
		t.Errorf("action = %q, want default", action)
	}
	text, _ := ns.Get("text")
	if text != "42" {
		t.Errorf("text = %v, want 42", text)
	}
	usage, _ := ns.Get("usage")
	u := usage.(map[string]any)
	if u["total_tokens"] != 4 {
		t.Errorf("usage.total_tokens = %v, want 4", u["total_tokens"])
	}
}

func TestLLMNode_MissingPrompt(t *testing.T) {
	n := &llmNode{caller: &fakeCaller{}}
	_, _, err := run(t, n, map[string]any{})
	if err == nil {
		t.Fatal("expected an error for missing prompt")
	}
}

func TestLLMNode_CallerErrorIsWrapped(t *testing.T) {
	n := &llmNode{caller: &fakeCaller{err: errors.New("provider unavailable")}}
	_, _, err := run(t, n, map[string]any{"prompt": "hi"})
	if err == nil {
		t.Fatal("expected the caller's error to propagate")
	}
}

func TestRegister_ParsesInterfaceDoc(t *testing.T) {
	reg := registry.New()
	if err := Register(reg, &fakeCaller{}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, ok := reg.Lookup("llm"); !ok {
		t.Fatal("expected \"llm\" to be registered")
	}
}
