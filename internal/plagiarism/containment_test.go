package plagiarism

import (
	"testing"

	"github.com/RishiKendai/verbatim/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFilterContained(t *testing.T) {
	tests := map[string]struct {
		input []models.Match
		want  []models.Match
	}{
		"empty": {
			input: []models.Match{},
			want:  []models.Match{},
		},
		"nested on the same alignment": {
			input: []models.Match{
				{PosA: 1, PosB: 1, Length: 10},
				{PosA: 0, PosB: 0, Length: 11},
			},
			want: []models.Match{
				{PosA: 0, PosB: 0, Length: 11},
			},
		},
		"inside both spans but another alignment": {
			input: []models.Match{
				{PosA: 0, PosB: 0, Length: 5},
				{PosA: 1, PosB: 2, Length: 3},
			},
			want: []models.Match{
				{PosA: 0, PosB: 0, Length: 5},
				{PosA: 1, PosB: 2, Length: 3},
			},
		},
		"overlapping on the same alignment": {
			input: []models.Match{
				{PosA: 0, PosB: 4, Length: 6},
				{PosA: 3, PosB: 7, Length: 6},
			},
			want: []models.Match{
				{PosA: 0, PosB: 4, Length: 6},
				{PosA: 3, PosB: 7, Length: 6},
			},
		},
		"equal lengths keep scan order": {
			input: []models.Match{
				{PosA: 9, PosB: 0, Length: 4},
				{PosA: 0, PosB: 9, Length: 4},
				{PosA: 20, PosB: 20, Length: 8},
			},
			want: []models.Match{
				{PosA: 20, PosB: 20, Length: 8},
				{PosA: 9, PosB: 0, Length: 4},
				{PosA: 0, PosB: 9, Length: 4},
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, filterContained(tc.input))
		})
	}
}

func TestFilterContainedLeavesInputAlone(t *testing.T) {
	input := []models.Match{{PosA: 1, PosB: 1, Length: 2}, {PosA: 0, PosB: 0, Length: 5}}
	filterContained(input)
	assert.Equal(t, []models.Match{{PosA: 1, PosB: 1, Length: 2}, {PosA: 0, PosB: 0, Length: 5}}, input)
}
