package help

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns the candidate closest to name, or "" when none is close
// enough to be a plausible typo. A prefix match always qualifies.
func Suggest(name string, candidates []string) string {
	name = strings.ToLower(name)
	if name == "" {
		return ""
	}
	best, bestDist := "", -1
	for _, c := range candidates {
		if strings.HasPrefix(c, name) && len(name) >= 3 {
			return c
		}
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > maxDistance(name) {
		return ""
	}
	return best
}

func maxDistance(name string) int {
	if n := len(name) / 3; n > 2 {
		return n
	}
	return 2
}
