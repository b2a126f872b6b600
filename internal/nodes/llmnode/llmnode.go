// Package llmnode implements the built-in "llm" node. No concrete provider
// SDK is wired here — spec.md §1 treats any LLM provider as "an opaque
// text-in/text-out call with usage metadata", so this package defines only
// the Caller hook a caller supplies, the same way pkg/discovery's Reranker
// and pkg/engine's RepairFunc are hooks the owning package never
// constructs itself.
//
// Interface:
// - Writes: shared["text"]: string
// - Writes: shared["usage"]: dict
//     - prompt_tokens: int
//     - completion_tokens: int
//     - total_tokens: int
// - Params: prompt: string
// - Params: system: string  # default
// - Params: model: string   # default
// - Actions: default
package llmnode

import (
	"context"
	"fmt"

	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/store"
)

const interfaceDoc = `Interface:
- Writes: shared["text"]: string
- Writes: shared["usage"]: dict
    - prompt_tokens: int
    - completion_tokens: int
    - total_tokens: int
- Params: prompt: string
- Params: system: string # default
- Params: model: string # default
- Actions: default
`

// Request is one completion request handed to a Caller.
type Request struct {
	Prompt string
	System string
	Model  string
}

// Usage carries token-accounting metadata alongside a completion, the
// minimal shape any provider can report regardless of its own pricing
// model.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is what a Caller returns for one completion.
type Response struct {
	Text  string
	Usage Usage
}

// Caller is the opaque LLM provider hook. No provider client lives in this
// repository; cmd/loom registers a placeholder Caller whose every call fails
// with a "no llm provider configured" error.
type Caller interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Register adds the "llm" node type to reg, backed by caller.
func Register(reg *registry.Registry, caller Caller) error {
	return reg.Register("llm", interfaceDoc, func() registry.Node {
		return &llmNode{caller: caller}
	})
}

type llmNode struct {
	caller Caller
}

func (n *llmNode) Prep(shared *store.Namespace, params map[string]any) (any, error) {
	prompt, _ := params["prompt"].(string)
	if prompt == "" {
		return nil, errs.New(errs.CategoryLLM, shared.NodeID(), "llm node missing prompt")
	}
	system, _ := params["system"].(string)
	model, _ := params["model"].(string)
	return Request{Prompt: prompt, System: system, Model: model}, nil
}

func (n *llmNode) Exec(prep any) (any, error) {
	req := prep.(Request)
	resp, err := n.caller.Complete(context.Background(), req)
	if err != nil {
		if _, ok := errs.As(err); ok {
			return nil, err
		}
		return nil, errs.Wrap(errs.CategoryLLM, "", fmt.Errorf("completion failed: %w", err))
	}
	return resp, nil
}

func (n *llmNode) Post(shared *store.Namespace, prep, exec any) (string, error) {
	resp := exec.(Response)
	shared.Set("text", resp.Text)
	shared.Set("usage", map[string]any{
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	})
	return "default", nil
}
