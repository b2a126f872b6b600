package toolprotocol

import (
	"context"

	"github.com/loomrun/loom/pkg/node"
	"github.com/loomrun/loom/pkg/store"
)

// toolNode is the registry.Node every synthetic tool-protocol registration
// constructs. It has a fixed write contract regardless of what the tool
// actually returns (spec.md §4.10): "result" holds whatever the tool sent
// back, aliased under the server name too as a convenience for workflows
// calling several tools on the same server (`${node_id.docs}` reads the
// same value as `${node_id.result}`); "error" carries the tool's own
// message when it reported one. A node-level retry only ever covers
// transport failures — a tool that ran and reported its own error is not
// something retrying helps with, so that case is surfaced as the "error"
// action instead of a Go error.
type toolNode struct {
	client *Client
	server string
	tool   string
}

// toolNode declares no Interface of its own; the schema-derived Interface
// built by buildInterface in register.go is what the registry and template
// validator see. Prep/Exec/Post below only care
// about the concrete values, not their declared types.

func (n *toolNode) Prep(shared *store.Namespace, params map[string]any) (any, error) {
	return params, nil
}

func (n *toolNode) Exec(prep any) (any, error) {
	params, _ := prep.(map[string]any)
	return n.client.Call(context.Background(), n.tool, params)
}

func (n *toolNode) Post(shared *store.Namespace, prep, exec any) (string, error) {
	resp := exec.(Response)

	if len(resp.Warnings) > 0 {
		shared.Set(node.WarningsKey, resp.Warnings)
	}

	if resp.IsError {
		shared.Set("error", resp.Message)
		return "error", nil
	}

	shared.Set("result", resp.Result)
	shared.Set(n.server, resp.Result)
	return "default", nil
}
