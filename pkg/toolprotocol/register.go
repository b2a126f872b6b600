package toolprotocol

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/loomrun/loom/pkg/registry"
)

// NodeType returns the synthetic node type name a discovered tool is
// registered under: "tool-<server>-<tool>".
func NodeType(server, tool string) string {
	return fmt.Sprintf("tool-%s-%s", server, tool)
}

// RegisterServer registers every tool a server advertised as its own
// synthetic node type, sharing one Client (and therefore one rate limiter
// and one underlying transport) across all of them.
func RegisterServer(reg *registry.Registry, server string, tools []Tool, client *Client) error {
	for _, t := range tools {
		iface := buildInterface(t, server)
		nodeType := NodeType(server, t.Name)
		toolName := t.Name
		err := reg.RegisterSynthetic(nodeType, iface, schemaVersion(t), func() registry.Node {
			return &toolNode{client: client, server: server, tool: toolName}
		})
		if err != nil {
			return fmt.Errorf("toolprotocol: registering %q: %w", nodeType, err)
		}
	}
	return nil
}

// buildInterface derives a registry.Interface from a tool's advertised
// JSON-schema input shape, best-effort mapped onto the closed Params type
// set (a schema property this module can't represent, e.g. a schema using
// "oneOf", degrades to "string" rather than failing registration — the
// template validator still checks every reference against this declared
// shape, it just can't be as precise for that one field).
func buildInterface(t Tool, server string) *registry.Interface {
	iface := &registry.Interface{Params: make(map[string]registry.ParamDecl)}

	required := map[string]bool{}
	if reqRaw, ok := t.InputSchema["required"].([]any); ok {
		for _, r := range reqRaw {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}

	if props, ok := t.InputSchema["properties"].(map[string]any); ok {
		for name, raw := range props {
			prop, _ := raw.(map[string]any)
			pd := registry.ParamDecl{Name: name, Type: schemaType(prop)}
			if !required[name] {
				pd.HasDefault = true
				pd.Default = ""
			}
			iface.Params[name] = pd
		}
	}

	iface.Writes = []*registry.WriteNode{
		{Key: "result", Type: "dict"},
		{Key: server, Type: "dict"}, // convenience alias for "result"
		{Key: "error", Type: "string"},
	}
	iface.Actions = []registry.ActionDecl{
		{Name: "default", When: "the tool call succeeded"},
		{Name: "error", When: "the tool reported its own failure"},
	}
	return iface
}

// schemaType maps a JSON-schema property's "type" onto the closed
// registry type set, falling back to "string" for anything this module
// doesn't recognize (object/array subtypes, "oneOf"/"anyOf" unions, a
// missing "type" entirely).
func schemaType(prop map[string]any) string {
	raw, _ := prop["type"].(string)
	switch raw {
	case "integer":
		return "int"
	case "number":
		return "float"
	case "boolean":
		return "bool"
	case "object":
		return "dict"
	case "array":
		return "list"
	case "string":
		return "string"
	default:
		return "string"
	}
}

// schemaVersion fingerprints a tool's advertised schema so a server that
// changes a tool's input shape invalidates the Iteration Cache (C9) for
// every node built from the old Version, the same way a Go node's doc
// comment hash does.
func schemaVersion(t Tool) string {
	data, err := json.Marshal(t)
	if err != nil {
		return t.Name
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12]
}
