package discovery

import (
	"sort"
	"strings"
)

// scored pairs a Candidate with the score Query ranked it by, kept
// unexported since score is an implementation detail of ranking, not part
// of the response shape a caller persists or compares across runs.
type scored struct {
	Candidate Candidate
	Score     float64
}

// score combines an exact-substring bonus with term-overlap: every query
// term that appears anywhere in the candidate's indexed text contributes,
// and the whole query appearing as a substring contributes an extra point
// so "read file" outscores a candidate that merely mentions "file" and
// "read" unrelatedly.
func score(query string, c Candidate) float64 {
	text := c.searchText()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	var total float64
	if strings.Contains(text, q) {
		total += 1
	}
	for _, term := range strings.Fields(q) {
		if strings.Contains(text, term) {
			total += 1.0 / float64(len(strings.Fields(q)))
		}
	}
	return total
}

func joinLower(parts []string) string {
	return strings.ToLower(strings.Join(parts, " "))
}

// rank scores every candidate against query and returns them sorted
// highest-score first, ties broken by name for determinism. Zero-scoring
// candidates are dropped.
func rank(query string, candidates []Candidate) []scored {
	out := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		s := score(query, c)
		if s > 0 {
			out = append(out, scored{Candidate: c, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Candidate.Name < out[j].Candidate.Name
	})
	return out
}
