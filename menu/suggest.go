package menu

import "github.com/agnivade/levenshtein"

// maxSuggestDistance is the largest edit distance for a suggestion.
const maxSuggestDistance = 2

// suggest returns the candidate closest to name, if close enough.
func suggest(name string, candidates []string) (string, bool) {
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist <= maxSuggestDistance
}
