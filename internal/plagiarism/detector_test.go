package plagiarism

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/RishiKendai/verbatim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeScenario(t *testing.T) {
	report := AnalyzeStrings("abcdXYZ", "ZZZabcdYYY", 4)

	require.Len(t, report.Matches, 1)
	assert.Equal(t, models.Match{PosA: 0, PosB: 3, Length: 4, Text: "abcd"}, report.Matches[0])
	assert.Equal(t, 4, report.TotalMatchedChars)
	assert.Equal(t, 4, report.LongestMatch)
	assert.InDelta(t, 57.142857, report.SimilarityPercentage, 1e-4)
}

func TestAnalyzeIdenticalDocuments(t *testing.T) {
	tests := map[string]struct {
		text string
		k    int
	}{
		"sentence":         {text: "the quick brown fox jumps over the lazy dog", k: 10},
		"single character": {text: "a", k: 1},
		"k equals length":  {text: "abcdef", k: 6},
		"repetitive":       {text: "aaaaaaaaaaaa", k: 3},
		"periodic":         {text: "abcabcabcabcabc", k: 4},
		"zero k":           {text: "xyz", k: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			report := AnalyzeStrings(tc.text, tc.text, tc.k)
			assert.Equal(t, 100.0, report.SimilarityPercentage)
			assert.Equal(t, len(tc.text), report.TotalMatchedChars)
			assert.Equal(t, len(tc.text), report.LongestMatch)
		})
	}
}

func TestAnalyzeNoSharedSubstring(t *testing.T) {
	report := AnalyzeStrings("abc", "xyz", 1)

	assert.Equal(t, 0, report.TotalMatchedChars)
	assert.Equal(t, 0.0, report.SimilarityPercentage)
	assert.Equal(t, 0, report.LongestMatch)
	assert.NotNil(t, report.Matches)
	assert.Empty(t, report.Matches)
}

func TestAnalyzeEmptyDocuments(t *testing.T) {
	for name, tc := range map[string]struct{ a, b string }{
		"empty A":    {a: "", b: "abc"},
		"empty B":    {a: "abc", b: ""},
		"both empty": {a: "", b: ""},
	} {
		t.Run(name, func(t *testing.T) {
			report := AnalyzeStrings(tc.a, tc.b, 1)
			assert.Equal(t, &models.Report{Matches: []models.Match{}}, report)
		})
	}
}

func TestAnalyzeMinMatchLength(t *testing.T) {
	a, b := "hello world", "say hello there"

	t.Run("below threshold", func(t *testing.T) {
		report := AnalyzeStrings(a, b, 7)
		assert.Empty(t, report.Matches)
	})

	t.Run("at threshold", func(t *testing.T) {
		report := AnalyzeStrings(a, b, 6)
		require.Len(t, report.Matches, 1)
		assert.Equal(t, "hello ", report.Matches[0].Text)
		assert.Equal(t, 0, report.Matches[0].PosA)
		assert.Equal(t, 4, report.Matches[0].PosB)
	})

	t.Run("non-positive is any shared substring", func(t *testing.T) {
		zero := AnalyzeStrings("ab", "xa", 0)
		negative := AnalyzeStrings("ab", "xa", -5)
		one := AnalyzeStrings("ab", "xa", 1)
		assert.Equal(t, one, zero)
		assert.Equal(t, one, negative)
		require.Len(t, one.Matches, 1)
		assert.Equal(t, "a", one.Matches[0].Text)
	})
}

func TestAnalyzeRemovesNestedMatches(t *testing.T) {
	// Suffixes at offset 0 and 1 of both copies give raw matches of length 11
	// and 10 on the same alignment.
	report := AnalyzeStrings("abcdefghijk", "abcdefghijk", 10)

	require.Len(t, report.Matches, 1)
	assert.Equal(t, 11, report.Matches[0].Length)
	assert.Equal(t, 0, report.Matches[0].PosA)
	assert.Equal(t, 0, report.Matches[0].PosB)
}

func TestAnalyzeArbitraryBytes(t *testing.T) {
	// Bytes that a literal separator could collide with must not join the
	// documents into one match.
	a := []byte{'#', 0x00, 0xff, 'x', 'y'}
	b := []byte{'x', 'y', '#', 0x00, 0xff}

	report := Analyze(a, b, 2)

	texts := make([]string, 0, len(report.Matches))
	for _, m := range report.Matches {
		texts = append(texts, m.Text)
		assert.Equal(t, a[m.PosA:m.PosA+m.Length], b[m.PosB:m.PosB+m.Length])
	}
	assert.ElementsMatch(t, []string{"#\x00\xff", "xy"}, texts)
	assert.Equal(t, 100.0, report.SimilarityPercentage)
}

func TestAnalyzeReportsEachSharedRegion(t *testing.T) {
	report := AnalyzeStrings("abcdeXXXXXfghij", "fghijYYabcde", 5)

	require.Len(t, report.Matches, 2)
	assert.ElementsMatch(t, []models.Match{
		{PosA: 0, PosB: 7, Length: 5, Text: "abcde"},
		{PosA: 10, PosB: 0, Length: 5, Text: "fghij"},
	}, report.Matches)
	assert.Equal(t, 10, report.TotalMatchedChars)
	assert.InDelta(t, 83.333333, report.SimilarityPercentage, 1e-4)
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := strings.Repeat("lorem ipsum dolor sit amet ", 20)
	b := strings.Repeat("dolor sit amet consectetur ", 15)

	first := AnalyzeStrings(a, b, 5)
	second := AnalyzeStrings(a, b, 5)
	assert.Equal(t, first, second)
}

func TestAnalyzeSymmetricWhenLengthsDiffer(t *testing.T) {
	a := "the cat sat on the mat and looked around"
	b := "a cat sat on the mat"

	ab := AnalyzeStrings(a, b, 4)
	ba := AnalyzeStrings(b, a, 4)
	assert.Equal(t, ab.SimilarityPercentage, ba.SimilarityPercentage)
	assert.Equal(t, ab.TotalMatchedChars, ba.TotalMatchedChars)
	assert.Equal(t, ab.LongestMatch, ba.LongestMatch)
}

func TestAnalyzeRandomInputs(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	gen := func(n int) []byte {
		out := make([]byte, n)
		for i := range out {
			out[i] = "ab#"[r.Intn(3)]
		}
		return out
	}

	for iter := 0; iter < 100; iter++ {
		a, b := gen(1+r.Intn(60)), gen(1+r.Intn(60))
		k := 1 + r.Intn(5)
		report := Analyze(a, b, k)

		assert.GreaterOrEqual(t, report.SimilarityPercentage, 0.0)
		assert.LessOrEqual(t, report.SimilarityPercentage, 100.0)
		assert.LessOrEqual(t, report.TotalMatchedChars, min(len(a), len(b)))

		for i, m := range report.Matches {
			require.GreaterOrEqual(t, m.Length, k)
			require.LessOrEqual(t, m.PosA+m.Length, len(a))
			require.LessOrEqual(t, m.PosB+m.Length, len(b))
			assert.True(t, bytes.Equal(a[m.PosA:m.PosA+m.Length], b[m.PosB:m.PosB+m.Length]))
			assert.Equal(t, string(a[m.PosA:m.PosA+m.Length]), m.Text)
			if i > 0 {
				assert.GreaterOrEqual(t, report.Matches[i-1].Length, m.Length)
			}
		}

		// The longest common substring is always reported when it reaches k.
		if lcs := longestCommonSubstring(a, b); lcs >= k {
			assert.Equal(t, lcs, report.LongestMatch)
		} else {
			assert.Empty(t, report.Matches)
		}
	}
}

func longestCommonSubstring(a, b []byte) int {
	best := 0
	for i := range a {
		for j := range b {
			n := 0
			for i+n < len(a) && j+n < len(b) && a[i+n] == b[j+n] {
				n++
			}
			best = max(best, n)
		}
	}
	return best
}
