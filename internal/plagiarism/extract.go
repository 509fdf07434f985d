package plagiarism

import (
	"github.com/RishiKendai/verbatim/internal/models"
)

// CoverageMap records, per document, which bytes belong to at least one
// accepted match.
type CoverageMap struct {
	A []bool
	B []bool
}

func newCoverageMap(lenA, lenB int) *CoverageMap {
	return &CoverageMap{
		A: make([]bool, lenA),
		B: make([]bool, lenB),
	}
}

func (m *CoverageMap) mark(match models.Match) {
	for i := match.PosA; i < match.PosA+match.Length; i++ {
		m.A[i] = true
	}
	for i := match.PosB; i < match.PosB+match.Length; i++ {
		m.B[i] = true
	}
}

// CoveredA returns the number of covered bytes in document A
func (m *CoverageMap) CoveredA() int {
	return popcount(m.A)
}

// CoveredB returns the number of covered bytes in document B
func (m *CoverageMap) CoveredB() int {
	return popcount(m.B)
}

func popcount(bits []bool) int {
	n := 0
	for _, set := range bits {
		if set {
			n++
		}
	}
	return n
}

type matchKey struct {
	posA, posB int
}

// extraction holds the raw output of a scan over the LCP array
type extraction struct {
	matches  []models.Match
	coverage *CoverageMap
	longest  int
}

// extractMatches walks adjacent suffix pairs and keeps those that start in
// different documents and share at least minLength symbols.
func extractMatches(c *corpus, sa, lcp []int, minLength int) *extraction {
	ex := &extraction{
		matches:  make([]models.Match, 0),
		coverage: newCoverageMap(len(c.a), len(c.b)),
	}
	seen := make(map[matchKey]struct{})

	for i := 1; i < len(lcp) && i < len(sa); i++ {
		length := lcp[i]
		if length < minLength {
			continue
		}

		pos1, pos2 := sa[i-1], sa[i]
		side1, side2 := c.side(pos1), c.side(pos2)
		if side1 == sideBoundary || side2 == sideBoundary || side1 == side2 {
			continue
		}
		if side1 == sideB {
			pos1, pos2 = pos2, pos1
		}
		posB := c.offsetInB(pos2)

		key := matchKey{pos1, posB}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		// The boundary symbol is unique, so a shared prefix never crosses it.
		// Clamp anyway before slicing.
		length = min(length, len(c.a)-pos1, len(c.b)-posB)
		if length <= 0 {
			continue
		}

		match := models.Match{
			PosA:   pos1,
			PosB:   posB,
			Length: length,
			Text:   string(c.a[pos1 : pos1+length]),
		}
		ex.coverage.mark(match)
		ex.matches = append(ex.matches, match)
		ex.longest = max(ex.longest, length)
	}
	return ex
}
