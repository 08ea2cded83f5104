package match

import (
	"sort"
	"strings"
)

// MinSimilarity is the score below which a candidate is not worth suggesting.
const MinSimilarity = 0.5

// Suggest returns up to limit candidates closest to name, best first.
// Comparison is case-insensitive; ties keep the candidates' input order.
func Suggest(name string, candidates []string, limit int) []string {
	type scored struct {
		name  string
		score float64
	}

	lower := strings.ToLower(name)

	var ranked []scored

	for _, c := range candidates {
		score := Similarity(lower, strings.ToLower(c))
		if score >= MinSimilarity {
			ranked = append(ranked, scored{name: c, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.name)
	}

	return out
}
