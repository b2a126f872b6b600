package template

import (
	"sort"
	"strings"
)

// fuzzyMatch ranks candidates by substring similarity to target and returns
// the top n. Similarity is the length of the longest common substring,
// case-insensitive; ties break by shorter candidate first, then
// lexicographically, to keep ordering stable for repeated calls.
func fuzzyMatch(target string, candidates []string, n int) []string {
	if target == "" || len(candidates) == 0 {
		return nil
	}

	type scored struct {
		name  string
		score int
	}

	lowerTarget := strings.ToLower(target)
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		score := longestCommonSubstring(lowerTarget, strings.ToLower(c))
		if score == 0 {
			continue
		}
		ranked = append(ranked, scored{name: c, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if len(ranked[i].name) != len(ranked[j].name) {
			return len(ranked[i].name) < len(ranked[j].name)
		}
		return ranked[i].name < ranked[j].name
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.name
	}
	return out
}

// longestCommonSubstring returns the length of the longest run of
// characters shared contiguously between a and b.
func longestCommonSubstring(a, b string) int {
	if a == "" || b == "" {
		return 0
	}

	prev := make([]int, len(b)+1)
	best := 0
	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
				}
			}
		}
		prev = cur
	}
	return best
}
