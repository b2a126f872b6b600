package main

import (
	"context"
	"fmt"

	"github.com/loomrun/loom/internal/nodes/conditionnode"
	"github.com/loomrun/loom/internal/nodes/filenode"
	"github.com/loomrun/loom/internal/nodes/httpnode"
	"github.com/loomrun/loom/internal/nodes/llmnode"
	"github.com/loomrun/loom/internal/nodes/shellnode"
	"github.com/loomrun/loom/pkg/config"
	"github.com/loomrun/loom/pkg/logging"
	"github.com/loomrun/loom/pkg/registry"
)

// unconfiguredLLMCaller backs the "llm" node when no concrete provider has
// been wired in (spec.md §1's Non-goal excludes any concrete LLM SDK).
// Registering the node type unconditionally, rather than only when a
// provider exists, means a workflow referencing "llm" always gets the same
// "unknown node type" vs. "no provider configured" error regardless of how
// loom was invoked.
type unconfiguredLLMCaller struct{}

func (unconfiguredLLMCaller) Complete(ctx context.Context, req llmnode.Request) (llmnode.Response, error) {
	return llmnode.Response{}, fmt.Errorf("no llm provider configured for this loom invocation")
}

// buildRegistry registers every built-in node type against cfg and env.
func buildRegistry(cfg *config.Config, env *config.RuntimeEnv, log *logging.Logger) (*registry.Registry, error) {
	reg := registry.New(registry.WithLogger(log))

	if err := httpnode.Register(reg, cfg); err != nil {
		return nil, err
	}
	if err := shellnode.Register(reg, env.ShellStrict); err != nil {
		return nil, err
	}
	if err := filenode.Register(reg); err != nil {
		return nil, err
	}
	if err := conditionnode.Register(reg); err != nil {
		return nil, err
	}
	if err := llmnode.Register(reg, unconfiguredLLMCaller{}); err != nil {
		return nil, err
	}

	return reg, nil
}
