package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/loomrun/loom/pkg/ir"
)

// loadWorkflow reads path and parses it as IR, sniffing the on-disk form
// (spec.md §6: JSON or Markdown-with-YAML-frontmatter) from its leading
// bytes rather than its file extension, since either form may be saved
// under any name.
func loadWorkflow(path string, resolver ir.NodeTypeResolver) (*ir.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	if strings.HasPrefix(strings.TrimLeft(string(data), "\n"), "---\n") {
		wf, err := ir.ParseMarkdown(data)
		if err != nil {
			return nil, err
		}
		if issues := ir.Validate(wf, resolver); len(issues) > 0 {
			return nil, &ir.ValidationError{Issues: issues}
		}
		return wf, nil
	}

	return ir.ParseAndValidate(data, resolver)
}

// exitCodeForError maps an error to one of the three exit codes spec.md
// §6 names: 2 for a validation failure, 1 for anything else that stopped
// the command short of its goal.
func exitCodeForError(err error) int {
	if _, ok := err.(*ir.ValidationError); ok {
		return 2
	}
	return 1
}
