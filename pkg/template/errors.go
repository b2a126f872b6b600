package template

import (
	"fmt"
	"strings"

	"github.com/loomrun/loom/pkg/errs"
)

func errUnterminatedReference(tail string) error {
	return fmt.Errorf("unterminated reference starting at %q", tail)
}

// newResolutionError builds the *errs.Error contract spec.md §4.3 promises
// agents for self-repair: the offending token, the node whose params held
// it, the available sibling keys at the last resolvable prefix (top 20),
// and the best fuzzy matches over those siblings (top 3).
func newResolutionError(nodeID, token string, siblings []string) *errs.Error {
	available := siblings
	if len(available) > 20 {
		available = available[:20]
	}

	matches := fuzzyMatch(lastComponent(token), siblings, 3)

	e := errs.New(errs.CategoryTemplate, nodeID,
		fmt.Sprintf("unresolved reference %q", token)).
		WithAvailableFields(available)

	if len(matches) > 0 {
		e = e.WithSuggestion(fmt.Sprintf("did you mean one of: %s?", strings.Join(matches, ", ")))
	}
	return e
}

func lastComponent(token string) string {
	idx := strings.LastIndexByte(token, '.')
	if idx < 0 {
		return token
	}
	return token[idx+1:]
}
