package plagiarism

import (
	"sort"

	"github.com/RishiKendai/verbatim/internal/models"
)

// filterContained drops matches that are sub-occurrences of a longer match on
// the same alignment. Overlapping matches on different alignments are kept.
// The result is ordered by length, longest first; ties keep scan order.
func filterContained(matches []models.Match) []models.Match {
	sorted := make([]models.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Length > sorted[j].Length
	})

	accepted := make([]models.Match, 0, len(sorted))
	for _, candidate := range sorted {
		redundant := false
		for _, e := range accepted {
			if isContained(candidate, e) {
				redundant = true
				break
			}
		}
		if !redundant {
			accepted = append(accepted, candidate)
		}
	}
	return accepted
}

// isContained reports whether m lies inside e in both documents and on the
// same diagonal.
func isContained(m, e models.Match) bool {
	if m.PosA-e.PosA != m.PosB-e.PosB {
		return false
	}
	return m.PosA >= e.PosA && m.PosA+m.Length <= e.PosA+e.Length &&
		m.PosB >= e.PosB && m.PosB+m.Length <= e.PosB+e.Length
}
