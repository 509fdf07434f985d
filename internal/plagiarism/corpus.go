package plagiarism

import (
	"github.com/RishiKendai/verbatim/internal/suffixarray"
)

// boundary separates the two documents inside a corpus. Document bytes map to
// symbols 0..255, so the boundary can never collide with content.
const boundary int32 = suffixarray.ByteAlphabet

const corpusAlphabet = suffixarray.ByteAlphabet + 1

type side int

const (
	sideA side = iota
	sideB
	sideBoundary
)

// corpus is document A, the boundary symbol and document B laid out as one
// symbol sequence.
type corpus struct {
	a, b          []byte
	symbols       []int32
	boundaryIndex int
}

func newCorpus(a, b []byte) *corpus {
	symbols := make([]int32, 0, len(a)+1+len(b))
	for _, c := range a {
		symbols = append(symbols, int32(c))
	}
	symbols = append(symbols, boundary)
	for _, c := range b {
		symbols = append(symbols, int32(c))
	}
	return &corpus{
		a:             a,
		b:             b,
		symbols:       symbols,
		boundaryIndex: len(a),
	}
}

// side reports which document the corpus offset pos belongs to.
func (c *corpus) side(pos int) side {
	switch {
	case pos < c.boundaryIndex:
		return sideA
	case pos > c.boundaryIndex:
		return sideB
	default:
		return sideBoundary
	}
}

// offsetInB converts a corpus offset on the B side to an offset in B.
func (c *corpus) offsetInB(pos int) int {
	return pos - c.boundaryIndex - 1
}

func (c *corpus) suffixArray() *suffixarray.SuffixArray {
	return suffixarray.ConstructSymbols(c.symbols, corpusAlphabet)
}
