package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loomrun/loom/pkg/store"
)

// parsePath splits a reference body ("p.q[0].r") into path steps walkable
// by store.ReadView. Each dotted component may carry a single "[n]" index.
func parsePath(body string) ([]store.PathStep, error) {
	if body == "" {
		return nil, fmt.Errorf("empty reference")
	}

	parts := strings.Split(body, ".")
	steps := make([]store.PathStep, 0, len(parts))
	for _, part := range parts {
		step, err := parseStep(part)
		if err != nil {
			return nil, fmt.Errorf("invalid path component %q: %w", part, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(part string) (store.PathStep, error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if part == "" {
			return store.PathStep{}, fmt.Errorf("empty component")
		}
		return store.PathStep{Key: part}, nil
	}

	if !strings.HasSuffix(part, "]") {
		return store.PathStep{}, fmt.Errorf("unterminated index")
	}
	key := part[:open]
	idxStr := part[open+1 : len(part)-1]
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return store.PathStep{}, fmt.Errorf("non-integer index %q", idxStr)
	}
	if key == "" {
		return store.PathStep{}, fmt.Errorf("missing key before index")
	}
	return store.PathStep{Key: key, Index: idx, HasIndex: true}, nil
}

// JoinPath renders path steps back into "p.q[0].r" form, used to report the
// offending token and to build sibling-key suggestions.
func JoinPath(steps []store.PathStep) string {
	var b strings.Builder
	for i, s := range steps {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
		if s.HasIndex {
			fmt.Fprintf(&b, "[%d]", s.Index)
		}
	}
	return b.String()
}
