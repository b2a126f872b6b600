package ir

import (
	"sort"
	"strings"
)

// Issue is one structural or semantic problem found while validating a
// workflow document. NodeID is empty for workflow-level issues (an empty
// graph, an unreachable start node).
type Issue struct {
	NodeID  string
	Field   string
	Message string
}

// ValidationError collects every Issue found in a single validation pass.
// The validator never stops at the first failure: it reports everything it
// finds in one shot, in stable (node id, then field) order, so an agent
// fixing a workflow can act on the whole list at once.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return formatIssue(e.Issues[0])
	}
	var b strings.Builder
	for i, issue := range e.Issues {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(formatIssue(issue))
	}
	return b.String()
}

func formatIssue(i Issue) string {
	if i.NodeID == "" {
		return i.Field + ": " + i.Message
	}
	return i.NodeID + "." + i.Field + ": " + i.Message
}

// sortIssues orders issues by (NodeID, Field, Message) so repeated
// validation runs over the same document always report problems in the
// same order.
func sortIssues(issues []Issue) {
	sort.Slice(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.NodeID != b.NodeID {
			return a.NodeID < b.NodeID
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.Message < b.Message
	})
}
