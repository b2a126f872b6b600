package discovery

// Kind distinguishes what a Candidate describes.
type Kind string

const (
	KindNode     Kind = "node"
	KindWorkflow Kind = "workflow"
)

// Candidate is one discoverable thing: a registered node type or a saved
// workflow, flattened down to the text a free-form query is scored
// against plus the full interface to return for a top-K match.
type Candidate struct {
	Kind        Kind     `json:"kind"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Paths       []string `json:"paths,omitempty"` // dotted write paths (node) or input names (workflow)
	Params      []string `json:"params,omitempty"`

	// Interface is a readable summary of the node's registry.Interface
	// (its params, writes and actions; not the "Interface:" doc grammar
	// the registry parses), or empty for a workflow candidate (whose full
	// shape is its ir.Workflow, out of this package's scope to carry).
	Interface string `json:"interface,omitempty"`
}

// searchText is everything about a candidate a term-overlap score looks
// at, joined into one lowercased blob.
func (c Candidate) searchText() string {
	parts := make([]string, 0, 3+len(c.Paths)+len(c.Params))
	parts = append(parts, c.Name, c.Description, string(c.Kind))
	parts = append(parts, c.Paths...)
	parts = append(parts, c.Params...)
	return joinLower(parts)
}
