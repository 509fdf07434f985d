package suffixarray

// build sorts the suffixes of text by prefix doubling. Each round orders the
// suffixes by their first 2k symbols using the ranks of the first k, with two
// stable counting sorts: by the rank at pos+k, then by the rank at pos.
//
// Ranks are kept 1-based so that 0 can stand for "past the end", which sorts
// before every real rank.
func build(text []int32, alphabet int) []int {
	n := len(text)
	switch n {
	case 0:
		return []int{}
	case 1:
		return []int{0}
	}

	sa := make([]int, n)
	tmp := make([]int, n)
	rank := make([]int, n)
	next := make([]int, n)
	cnt := make([]int, max(alphabet, n)+1)

	for i, c := range text {
		rank[i] = int(c) + 1
	}
	maxVal := alphabet + 1

	// Initial order by first symbol.
	for i := 0; i < n; i++ {
		cnt[rank[i]]++
	}
	accumulate(cnt[:maxVal])
	for i := n - 1; i >= 0; i-- {
		cnt[rank[i]]--
		sa[cnt[rank[i]]] = i
	}

	for k := 1; k < n; k <<= 1 {
		second := func(pos int) int {
			if pos+k < n {
				return rank[pos+k]
			}
			return 0
		}

		clear(cnt[:maxVal])
		for _, pos := range sa {
			cnt[second(pos)]++
		}
		accumulate(cnt[:maxVal])
		for i := n - 1; i >= 0; i-- {
			pos := sa[i]
			key := second(pos)
			cnt[key]--
			tmp[cnt[key]] = pos
		}

		clear(cnt[:maxVal])
		for _, pos := range tmp {
			cnt[rank[pos]]++
		}
		accumulate(cnt[:maxVal])
		for i := n - 1; i >= 0; i-- {
			pos := tmp[i]
			cnt[rank[pos]]--
			sa[cnt[rank[pos]]] = pos
		}

		next[sa[0]] = 1
		for i := 1; i < n; i++ {
			prev, cur := sa[i-1], sa[i]
			next[cur] = next[prev]
			if rank[prev] != rank[cur] || second(prev) != second(cur) {
				next[cur]++
			}
		}
		rank, next = next, rank

		top := rank[sa[n-1]]
		maxVal = top + 1
		if top == n {
			// every suffix already has its own rank
			break
		}
	}
	return sa
}

// accumulate turns counts into exclusive upper bounds of each bucket.
func accumulate(cnt []int) {
	for i := 1; i < len(cnt); i++ {
		cnt[i] += cnt[i-1]
	}
}
