package ir

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// frontmatter is the YAML block at the top of a Markdown IR document; it
// carries everything about a Workflow except its nodes and edges, which
// live in the body as one fenced YAML block per node plus one for edges.
type frontmatter struct {
	Name        string      `yaml:"name,omitempty"`
	Version     string      `yaml:"version,omitempty"`
	Description string      `yaml:"description,omitempty"`
	StartNode   string      `yaml:"start_node,omitempty"`
	Inputs      []InputSpec `yaml:"inputs,omitempty"`
	Outputs     []string    `yaml:"outputs,omitempty"`
}

// nodeBody is the fenced-YAML shape of one "## <id> (<type>)" section.
type nodeBody struct {
	Params  map[string]any `yaml:"params,omitempty"`
	Retries int            `yaml:"retries,omitempty"`
	WaitMS  int            `yaml:"wait_ms,omitempty"`
	Timeout int            `yaml:"timeout_ms,omitempty"`
	Batch   *BatchSpec     `yaml:"batch,omitempty"`
}

// edgeBody is the fenced-YAML shape of the "## Edges" section: a plain
// list, since an edge has no id of its own to hang a heading off of.
type edgeBody struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Action string `yaml:"action,omitempty"`
}

const edgesHeading = "Edges"

// ParseMarkdown converts the Markdown-with-YAML-frontmatter form (spec.md
// §6) into a Workflow. It does not run ParseAndValidate's semantic checks
// itself — callers that need both call ir.Validate afterward, the same as
// a caller building a Workflow by hand.
//
// The format: a "---"-delimited YAML frontmatter block carrying everything
// about the workflow except its nodes and edges, then one "## <id> (type)"
// section per node and one "## Edges" section, each holding a fenced
// ```yaml block. This mirrors the registry's "structured-text-as-source-
// of-truth" Interface: doc grammar (C2) rather than inventing a second,
// unrelated convention for human-authored IR documents.
func ParseMarkdown(data []byte) (*Workflow, error) {
	fmBlock, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, err
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(fmBlock), &fm); err != nil {
		return nil, fmt.Errorf("ir: parsing frontmatter: %w", err)
	}

	sections := splitSections(body)

	wf := &Workflow{
		Name:        fm.Name,
		Version:     fm.Version,
		Description: fm.Description,
		StartNode:   fm.StartNode,
		Inputs:      fm.Inputs,
		Outputs:     fm.Outputs,
	}

	for _, sec := range sections {
		if sec.heading == edgesHeading {
			edges, err := parseEdgesSection(sec.yamlBlock)
			if err != nil {
				return nil, err
			}
			wf.Edges = append(wf.Edges, edges...)
			continue
		}

		id, nodeType, err := parseNodeHeading(sec.heading)
		if err != nil {
			return nil, err
		}
		var nb nodeBody
		if sec.yamlBlock != "" {
			if err := yaml.Unmarshal([]byte(sec.yamlBlock), &nb); err != nil {
				return nil, fmt.Errorf("ir: parsing node %q body: %w", id, err)
			}
		}
		wf.Nodes = append(wf.Nodes, NodeSpec{
			ID:      id,
			Type:    nodeType,
			Params:  nb.Params,
			Retries: nb.Retries,
			WaitMS:  nb.WaitMS,
			Timeout: time.Duration(nb.Timeout) * time.Millisecond,
			Batch:   nb.Batch,
		})
	}

	return wf, nil
}

// RenderMarkdown renders wf back to the Markdown-with-frontmatter form.
// ParseMarkdown(RenderMarkdown(wf)) reproduces wf's node and edge data
// exactly; only insignificant whitespace differs from a hand-authored
// document (spec.md §8's round-trip invariant).
func RenderMarkdown(wf *Workflow) ([]byte, error) {
	fm := frontmatter{
		Name:        wf.Name,
		Version:     wf.Version,
		Description: wf.Description,
		StartNode:   wf.StartNode,
		Inputs:      wf.Inputs,
		Outputs:     wf.Outputs,
	}
	fmData, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("ir: rendering frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fmData)
	b.WriteString("---\n")

	for _, n := range wf.Nodes {
		nb := nodeBody{
			Params:  n.Params,
			Retries: n.Retries,
			WaitMS:  n.WaitMS,
			Timeout: int(n.Timeout / time.Millisecond),
			Batch:   n.Batch,
		}
		nbData, err := yaml.Marshal(nb)
		if err != nil {
			return nil, fmt.Errorf("ir: rendering node %q: %w", n.ID, err)
		}
		fmt.Fprintf(&b, "\n## %s (%s)\n\n```yaml\n%s```\n", n.ID, n.Type, string(nbData))
	}

	if len(wf.Edges) > 0 {
		edges := make([]edgeBody, 0, len(wf.Edges))
		for _, e := range wf.Edges {
			edges = append(edges, edgeBody{From: e.From, To: e.To, Action: e.Action})
		}
		edgesData, err := yaml.Marshal(edges)
		if err != nil {
			return nil, fmt.Errorf("ir: rendering edges: %w", err)
		}
		fmt.Fprintf(&b, "\n## %s\n\n```yaml\n%s```\n", edgesHeading, string(edgesData))
	}

	return []byte(b.String()), nil
}

func splitFrontmatter(doc string) (block, body string, err error) {
	doc = strings.TrimLeft(doc, "\n")
	if !strings.HasPrefix(doc, "---\n") {
		return "", "", fmt.Errorf("ir: markdown document missing frontmatter delimiter")
	}
	rest := doc[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end == -1 {
		return "", "", fmt.Errorf("ir: markdown document missing closing frontmatter delimiter")
	}
	return rest[:end+1], rest[end+len("\n---\n"):], nil
}

type section struct {
	heading   string
	yamlBlock string
}

// splitSections walks body looking for "## <heading>" lines, collecting
// the fenced ```yaml block that follows each one.
func splitSections(body string) []section {
	lines := strings.Split(body, "\n")
	var sections []section
	var current *section

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if heading, ok := strings.CutPrefix(line, "## "); ok {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &section{heading: strings.TrimSpace(heading)}
			continue
		}
		if current == nil {
			continue
		}
		if strings.TrimSpace(line) == "```yaml" {
			j := i + 1
			var block strings.Builder
			for j < len(lines) && strings.TrimSpace(lines[j]) != "```" {
				block.WriteString(lines[j])
				block.WriteByte('\n')
				j++
			}
			current.yamlBlock = block.String()
			i = j
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

// parseNodeHeading splits "id (type)" into its id and type.
func parseNodeHeading(heading string) (id, nodeType string, err error) {
	open := strings.LastIndex(heading, "(")
	shut := strings.LastIndex(heading, ")")
	if open == -1 || shut == -1 || shut < open {
		return "", "", fmt.Errorf("ir: malformed node heading %q, want \"id (type)\"", heading)
	}
	id = strings.TrimSpace(heading[:open])
	nodeType = strings.TrimSpace(heading[open+1 : shut])
	if id == "" || nodeType == "" {
		return "", "", fmt.Errorf("ir: malformed node heading %q, want \"id (type)\"", heading)
	}
	return id, nodeType, nil
}

func parseEdgesSection(yamlBlock string) ([]EdgeSpec, error) {
	if strings.TrimSpace(yamlBlock) == "" {
		return nil, nil
	}
	var edges []edgeBody
	if err := yaml.Unmarshal([]byte(yamlBlock), &edges); err != nil {
		return nil, fmt.Errorf("ir: parsing edges section: %w", err)
	}
	out := make([]EdgeSpec, 0, len(edges))
	for _, e := range edges {
		out = append(out, EdgeSpec{From: e.From, To: e.To, Action: e.Action})
	}
	return out, nil
}
