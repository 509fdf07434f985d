package plagiarism

import (
	"sort"

	"github.com/RishiKendai/verbatim/internal/models"
)

// Pair is two documents of a collection that should be compared
type Pair struct {
	DocumentA   *models.Document
	DocumentB   *models.Document
	Fingerprint float64 // shared fingerprint ratio, see FingerprintSimilarity
}

// GII (Global Inverted Index) maps fingerprint → indexes of the documents containing it
type GII map[uint64][]int

// DocumentFingerprints computes the k-gram fingerprints of every document
func DocumentFingerprints(documents []*models.Document, k int) []map[uint64]struct{} {
	fps := make([]map[uint64]struct{}, len(documents))
	for i, doc := range documents {
		fps[i] = Fingerprints([]byte(doc.Content), k)
	}
	return fps
}

// BuildGII indexes fingerprints by document position.
// Fingerprints found in a single document are dropped since they cannot pair anything.
func BuildGII(fingerprints []map[uint64]struct{}) GII {
	gii := make(GII)
	for i, fp := range fingerprints {
		for h := range fp {
			gii[h] = append(gii[h], i)
		}
	}

	for h, docs := range gii {
		if len(docs) < 2 {
			delete(gii, h)
		}
	}
	return gii
}

// GetWorthyPairs returns every pair of documents sharing at least one
// fingerprint, ordered by document position. A pair that shares none has no
// match of length k, so skipping it never changes a result.
func GetWorthyPairs(gii GII, documents []*models.Document, fingerprints []map[uint64]struct{}) []Pair {
	type pairKey struct{ a, b int }
	seen := make(map[pairKey]struct{})

	for _, docs := range gii {
		for x := 0; x < len(docs); x++ {
			for y := x + 1; y < len(docs); y++ {
				a, b := docs[x], docs[y]
				if a > b {
					a, b = b, a
				}
				seen[pairKey{a, b}] = struct{}{}
			}
		}
	}

	keys := make([]pairKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})

	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{
			DocumentA:   documents[k.a],
			DocumentB:   documents[k.b],
			Fingerprint: FingerprintSimilarity(fingerprints[k.a], fingerprints[k.b]),
		})
	}
	return pairs
}
