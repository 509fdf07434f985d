package preprocess

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case and composes the text to NFC so that spellings which
// differ only in case or in Unicode composition compare byte-equal.
func Normalize(text string) string {
	// A Caser holds state, so one is made per call.
	folded := cases.Fold().String(text)
	return norm.NFC.String(folded)
}
