package command

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// suggestThreshold is the minimum Jaro-Winkler similarity for a "did you
// mean" hint. Below it, misspellings are too far off to suggest anything.
const suggestThreshold = 0.84

// suggest returns the candidate most similar to name, or "" when nothing is
// close enough. Comparison is case-insensitive.
func suggest(name string, candidates []string) string {
	best := ""
	bestScore := suggestThreshold
	lower := strings.ToLower(name)
	for _, c := range candidates {
		score := matchr.JaroWinkler(lower, strings.ToLower(c), true)
		if score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}
