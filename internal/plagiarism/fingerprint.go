package plagiarism

import (
	"github.com/cespare/xxhash/v2"
)

// Fingerprints hashes every k-byte window of text. Two texts that share a
// substring of length k or more always share at least one fingerprint.
func Fingerprints(text []byte, k int) map[uint64]struct{} {
	if k < 1 {
		k = 1
	}
	hashes := make(map[uint64]struct{})
	for i := 0; i+k <= len(text); i++ {
		hashes[xxhash.Sum64(text[i:i+k])] = struct{}{}
	}
	return hashes
}

// FingerprintSimilarity returns shared fingerprints over the smaller
// fingerprint set, in [0, 1].
func FingerprintSimilarity(a, b map[uint64]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	if len(b) < len(a) {
		a, b = b, a
	}

	shared := 0
	for h := range a {
		if _, ok := b[h]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a))
}
