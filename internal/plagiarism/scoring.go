package plagiarism

import (
	"math"
	"sort"

	"github.com/RishiKendai/verbatim/internal/models"
)

const (
	RiskClean            = "clean"
	RiskSuspicious       = "suspicious"
	RiskHighlySuspicious = "highly suspicious"
	RiskNearCopy         = "near copy"
)

// Similarity measures coverage against the shorter document (A on a tie) and
// returns the percentage, clamped to [0, 100], and the covered byte count.
func Similarity(coverage *CoverageMap, lenA, lenB int) (float64, int) {
	if lenA == 0 || lenB == 0 {
		return 0, 0
	}

	covered := coverage.CoveredA()
	shorter := lenA
	if lenB < lenA {
		covered = coverage.CoveredB()
		shorter = lenB
	}

	percentage := 100.0 * float64(covered) / float64(shorter)
	return math.Max(0, math.Min(100, percentage)), covered
}

// LongestMatch returns the length of the longest match, or 0
func LongestMatch(matches []models.Match) int {
	longest := 0
	for _, m := range matches {
		longest = max(longest, m.Length)
	}
	return longest
}

// RiskLevel returns risk level based on a similarity percentage
func RiskLevel(similarity float64) string {
	if similarity < 30 {
		return RiskClean
	} else if similarity < 60 {
		return RiskSuspicious
	} else if similarity < 85 {
		return RiskHighlySuspicious
	}
	return RiskNearCopy
}

// CollectionScore folds the similarities of flagged pairs into one score:
// the mean of the top three plus a boost of 5 per extra flagged pair, capped
// at 15 and clamped to 100.
func CollectionScore(similarities []float64) float64 {
	if len(similarities) == 0 {
		return 0
	}

	sorted := make([]float64, len(similarities))
	copy(sorted, similarities)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	k := min(3, len(sorted))
	sum := 0.0
	for _, s := range sorted[:k] {
		sum += s
	}
	score := sum / float64(k)

	boost := math.Min(15, 5*float64(len(sorted)-1))
	score += boost

	return math.Max(0, math.Min(100, score))
}
