package plagiarism

import (
	"github.com/RishiKendai/verbatim/internal/models"
)

// DefaultMinMatchLength is the shortest shared substring reported when the
// caller does not choose one.
const DefaultMinMatchLength = 10

// Analyze finds the substrings shared by textA and textB that are at least
// minMatchLength bytes long and scores how much of the shorter document they
// cover. A minMatchLength of zero or less accepts any shared substring.
//
// Analyze keeps no state between calls and may be called concurrently.
func Analyze(textA, textB []byte, minMatchLength int) *models.Report {
	if minMatchLength < 1 {
		minMatchLength = 1
	}

	report := &models.Report{
		Matches: make([]models.Match, 0),
	}
	if len(textA) == 0 || len(textB) == 0 {
		return report
	}

	c := newCorpus(textA, textB)
	sa := c.suffixArray()
	lcp := sa.LCP()

	ex := extractMatches(c, sa.SA(), lcp, minMatchLength)
	report.Matches = filterContained(ex.matches)
	report.SimilarityPercentage, report.TotalMatchedChars = Similarity(ex.coverage, len(textA), len(textB))
	report.LongestMatch = LongestMatch(report.Matches)

	return report
}

// AnalyzeStrings is Analyze for string inputs.
func AnalyzeStrings(textA, textB string, minMatchLength int) *models.Report {
	return Analyze([]byte(textA), []byte(textB), minMatchLength)
}
