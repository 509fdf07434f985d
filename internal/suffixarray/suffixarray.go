package suffixarray

import (
	"slices"
	"sort"
)

// ByteAlphabet is the alphabet size of plain byte text.
const ByteAlphabet = 256

// SuffixArray holds a text, the sorted order of its suffixes and the inverse
// of that order.
type SuffixArray struct {
	text []int32
	sa   []int
	rank []int
}

// Construct builds the suffix array of a byte sequence. Any byte content is
// accepted.
func Construct(text []byte) *SuffixArray {
	symbols := make([]int32, len(text))
	for i, c := range text {
		symbols[i] = int32(c)
	}
	return ConstructSymbols(symbols, ByteAlphabet)
}

// ConstructSymbols builds the suffix array of a symbol sequence whose values
// all lie in [0, alphabet). Callers use it to reserve symbols outside the byte
// range, such as a document boundary.
func ConstructSymbols(text []int32, alphabet int) *SuffixArray {
	sa := build(text, alphabet)
	rank := make([]int, len(sa))
	for i, pos := range sa {
		rank[pos] = i
	}
	return &SuffixArray{text: text, sa: sa, rank: rank}
}

// SA returns suffix offsets in lexicographic order.
func (s *SuffixArray) SA() []int {
	return s.sa
}

// Rank returns the inverse permutation of SA: Rank()[offset] is the sorted
// position of the suffix starting at offset.
func (s *SuffixArray) Rank() []int {
	return s.rank
}

// Len returns the length of the indexed text.
func (s *SuffixArray) Len() int {
	return len(s.text)
}

// LCP returns the longest-common-prefix array of adjacent sorted suffixes.
func (s *SuffixArray) LCP() []int {
	return Kasai(s.text, s.sa, s.rank)
}

// comparePrefix compares a suffix against a pattern over at most len(pattern)
// symbols. A suffix that runs out first is smaller.
func comparePrefix(suf []int32, pattern []byte) int {
	n := min(len(suf), len(pattern))
	for i := 0; i < n; i++ {
		c := int32(pattern[i])
		if suf[i] < c {
			return -1
		}
		if suf[i] > c {
			return 1
		}
	}
	if len(suf) < len(pattern) {
		return -1
	}
	return 0
}

// Search reports whether pattern occurs in the text. The empty pattern is
// reported only for non-empty text.
func (s *SuffixArray) Search(pattern []byte) bool {
	n := len(s.sa)
	i := sort.Search(n, func(i int) bool {
		return comparePrefix(s.text[s.sa[i]:], pattern) >= 0
	})
	return i < n && comparePrefix(s.text[s.sa[i]:], pattern) == 0
}

// Lookup returns every offset at which pattern occurs, in text order.
func (s *SuffixArray) Lookup(pattern []byte) []int {
	n := len(s.sa)
	l := sort.Search(n, func(i int) bool {
		return comparePrefix(s.text[s.sa[i]:], pattern) >= 0
	})
	r := l + sort.Search(n-l, func(i int) bool {
		return comparePrefix(s.text[s.sa[l+i]:], pattern) > 0
	})
	offsets := slices.Clone(s.sa[l:r])
	slices.Sort(offsets)
	return offsets
}
