package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// filenameTimestamp is the layout spec.md §4.8 names for trace/debug
// filenames: workflow-trace-<name>-<YYYYMMDD-HHMMSS>.json.
const filenameTimestamp = "20060102-150405"

// WriteJSON writes rec as a single JSON file under dir, named
// workflow-trace-<name>-<timestamp>.json, creating dir if needed. It
// returns the path written.
func WriteJSON(dir string, rec *Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("trace: creating debug directory %q: %w", dir, err)
	}

	name := fmt.Sprintf("workflow-trace-%s-%s.json", safeName(rec.WorkflowName), rec.StartedAt.Format(filenameTimestamp))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("trace: marshaling record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("trace: writing %q: %w", path, err)
	}
	return path, nil
}

// WriteSmartDebugMarkdown writes the derived debug Markdown file (spec.md
// §4.8): on failure, the failing node's error message and input envelope
// (an error's fuzzy-match suggestion is not part of its message, so it is
// not written); on success or degraded, a thin timeline plus any warnings.
func WriteSmartDebugMarkdown(dir string, rec *Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("trace: creating debug directory %q: %w", dir, err)
	}

	name := fmt.Sprintf("workflow-debug-%s-%s.md", safeName(rec.WorkflowName), rec.StartedAt.Format(filenameTimestamp))
	path := filepath.Join(dir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", rec.WorkflowName, rec.Status)
	fmt.Fprintf(&b, "- execution: `%s`\n", rec.ExecutionID)
	fmt.Fprintf(&b, "- duration: %dms\n", rec.DurationMS)
	if rec.Cancelled {
		b.WriteString("- cancelled: true\n")
	}
	b.WriteString("\n")

	if rec.Status == "failed" {
		writeFailureSection(&b, rec)
	} else {
		writeTimelineSection(&b, rec)
	}

	if len(rec.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range rec.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("trace: writing %q: %w", path, err)
	}
	return path, nil
}

func writeFailureSection(b *strings.Builder, rec *Record) {
	b.WriteString("## Failing node\n\n")
	failing := lastFailedNode(rec.Nodes)
	if failing == nil {
		b.WriteString("(no node recorded before the workflow stopped)\n")
		return
	}
	fmt.Fprintf(b, "- id: `%s` (%s)\n", failing.NodeID, failing.NodeType)
	fmt.Fprintf(b, "- error: %s\n", failing.Error)
	b.WriteString("\n### Input envelope\n\n")
	writeKeys(b, failing.SharedBefore[failing.NodeID])
}

func writeTimelineSection(b *strings.Builder, rec *Record) {
	b.WriteString("## Timeline\n\n")
	for _, n := range rec.Nodes {
		status := "ok"
		if !n.Success {
			status = "error"
		}
		fmt.Fprintf(b, "- `%s` (%s) -> %s [%s, %dms]\n", n.NodeID, n.NodeType, n.Action, status, n.DurationMS)
	}
}

func lastFailedNode(nodes []NodeTrace) *NodeTrace {
	for i := len(nodes) - 1; i >= 0; i-- {
		if !nodes[i].Success {
			return &nodes[i]
		}
	}
	return nil
}

func writeKeys(b *strings.Builder, fields map[string]any) {
	if len(fields) == 0 {
		b.WriteString("(empty)\n")
		return
	}
	for k, v := range fields {
		fmt.Fprintf(b, "- `%s`: %v\n", k, v)
	}
}

func safeName(name string) string {
	if name == "" {
		return "unnamed"
	}
	replacer := strings.NewReplacer("/", "_", " ", "_", "\\", "_")
	return replacer.Replace(name)
}
