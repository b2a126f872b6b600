// Package filenode implements the built-in "read-file" and "write-file"
// nodes: the binary-data contract (pkg/binary) names these two exact node
// names as its producer and consumer, so they are registered as two
// distinct types rather than one "file" node with a mode param.
//
// No teacher file touches the filesystem directly; these follow the same
// Prep/Exec/Post shape and errs.CategoryFile error handling established by
// the other built-in nodes in this package family.
package filenode

import (
	"fmt"
	"os"

	"github.com/loomrun/loom/pkg/binary"
	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/node"
	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/store"
)

// Register adds both "read-file" and "write-file" to reg.
func Register(reg *registry.Registry) error {
	if err := reg.Register("read-file", readInterfaceDoc, func() registry.Node { return &readFileNode{} }); err != nil {
		return err
	}
	return reg.Register("write-file", writeInterfaceDoc, func() registry.Node { return &writeFileNode{} })
}

const readInterfaceDoc = `Interface:
- Writes: shared["content"]: string
- Writes: shared["content_is_binary"]: bool
- Params: path: string
- Actions: default
`

type readFileNode struct{}

func (n *readFileNode) Prep(shared *store.Namespace, params map[string]any) (any, error) {
	path, _ := params["path"].(string)
	if path == "" {
		return nil, errs.New(errs.CategoryFile, shared.NodeID(), "read-file node missing path")
	}
	return path, nil
}

func (n *readFileNode) Exec(prep any) (any, error) {
	path := prep.(string)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.CategoryFile, "", fmt.Errorf("reading %s: %w", path, err))
	}
	return raw, nil
}

func (n *readFileNode) Post(shared *store.Namespace, prep, exec any) (string, error) {
	raw := exec.([]byte)
	if binary.IsBinaryValue(raw) {
		enc := binary.Encode(raw)
		shared.Set("content", enc.Value)
		shared.Set("content_is_binary", true)
		if enc.Warning != "" {
			shared.Set(node.WarningsKey, []string{enc.Warning})
		}
	} else {
		shared.Set("content", string(raw))
		shared.Set("content_is_binary", false)
	}
	return "default", nil
}

const writeInterfaceDoc = `Interface:
- Writes: shared["path"]: string
- Writes: shared["bytes_written"]: int
- Params: path: string
- Params: content: string
- Params: content_is_binary: bool # default false
- Actions: default
`

type writeFileNode struct{}

type preparedWrite struct {
	path     string
	content  string
	isBinary bool
}

func (n *writeFileNode) Prep(shared *store.Namespace, params map[string]any) (any, error) {
	path, _ := params["path"].(string)
	if path == "" {
		return nil, errs.New(errs.CategoryFile, shared.NodeID(), "write-file node missing path")
	}
	content, _ := params["content"].(string)
	isBinary, _ := params["content_is_binary"].(bool)
	return preparedWrite{path: path, content: content, isBinary: isBinary}, nil
}

func (n *writeFileNode) Exec(prep any) (any, error) {
	req := prep.(preparedWrite)

	var raw []byte
	if req.isBinary {
		decoded, err := binary.Decode(req.content)
		if err != nil {
			return nil, errs.Wrap(errs.CategoryFile, "", fmt.Errorf("decoding binary content: %w", err))
		}
		raw = decoded
	} else {
		raw = []byte(req.content)
	}

	if err := os.WriteFile(req.path, raw, 0o644); err != nil {
		return nil, errs.Wrap(errs.CategoryFile, "", fmt.Errorf("writing %s: %w", req.path, err))
	}
	return struct {
		path string
		n    int
	}{path: req.path, n: len(raw)}, nil
}

func (n *writeFileNode) Post(shared *store.Namespace, prep, exec any) (string, error) {
	result := exec.(struct {
		path string
		n    int
	})
	shared.Set("path", result.path)
	shared.Set("bytes_written", result.n)
	return "default", nil
}
