package suffixarray

// Kasai builds the LCP array in O(n): lcp[r] is the length of the common
// prefix of the suffixes at sa[r-1] and sa[r], and lcp[0] is 0.
//
// Positions are visited in text order. Moving from i to i+1 shortens the
// previous match by at most one, so h is only decremented once per step.
func Kasai(text []int32, sa, rank []int) []int {
	n := len(sa)
	lcp := make([]int, n)
	h := 0
	for i := 0; i < n; i++ {
		r := rank[i]
		if r == 0 {
			h = 0
			continue
		}
		j := sa[r-1]
		for i+h < n && j+h < n && text[i+h] == text[j+h] {
			h++
		}
		lcp[r] = h
		if h > 0 {
			h--
		}
	}
	return lcp
}
