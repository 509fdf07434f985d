package preprocess

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RishiKendai/verbatim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	stored []*models.Document
	err    error
}

func (f *fakeWriter) UpsertDocument(_ context.Context, document *models.Document) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, document)
	return nil
}

func TestNormalize(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"ascii case":         {input: "Hello WORLD", want: "hello world"},
		"already normalized": {input: "plain text", want: "plain text"},
		"decomposed accent":  {input: "E\u0301COLE", want: "\u00e9cole"},
		"composed accent":    {input: "\u00c9cole", want: "\u00e9cole"},
		"empty":              {input: "", want: ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.input))
		})
	}
}

func TestNormalizeMakesVariantsEqual(t *testing.T) {
	assert.Equal(t, Normalize("Cafe\u0301 Society"), Normalize("CAF\u00c9 society"))
}

func TestProcessSubmission(t *testing.T) {
	submission := &models.Submission{
		DocumentID:   "doc-1",
		CollectionID: "col-1",
		Title:        "Essay",
		Content:      "The Quick Fox",
	}

	t.Run("stores raw content", func(t *testing.T) {
		writer := &fakeWriter{}
		svc := NewService(writer, 1024, false)

		require.NoError(t, svc.ProcessSubmission(context.Background(), submission))
		require.Len(t, writer.stored, 1)
		assert.Equal(t, &models.Document{
			DocumentID:   "doc-1",
			CollectionID: "col-1",
			Title:        "Essay",
			Content:      "The Quick Fox",
			Normalized:   false,
			Length:       13,
		}, writer.stored[0])
	})

	t.Run("stores normalized content", func(t *testing.T) {
		writer := &fakeWriter{}
		svc := NewService(writer, 1024, true)

		require.NoError(t, svc.ProcessSubmission(context.Background(), submission))
		require.Len(t, writer.stored, 1)
		assert.Equal(t, "the quick fox", writer.stored[0].Content)
		assert.True(t, writer.stored[0].Normalized)
	})

	t.Run("too large", func(t *testing.T) {
		writer := &fakeWriter{}
		svc := NewService(writer, 4, false)

		err := svc.ProcessSubmission(context.Background(), submission)
		assert.ErrorIs(t, err, ErrDocumentTooLarge)
		assert.True(t, IsPermanent(err))
		assert.Empty(t, writer.stored)
	})

	t.Run("too large after normalization", func(t *testing.T) {
		writer := &fakeWriter{}
		svc := NewService(writer, 10, true)

		// each U+0149 is two bytes and folds to three
		grows := *submission
		grows.Content = strings.Repeat("\u0149", 4)
		require.Len(t, grows.Content, 8)

		err := svc.ProcessSubmission(context.Background(), &grows)
		assert.ErrorIs(t, err, ErrDocumentTooLarge)
		assert.Empty(t, writer.stored)
	})

	t.Run("no size limit", func(t *testing.T) {
		writer := &fakeWriter{}
		svc := NewService(writer, 0, false)

		big := *submission
		big.Content = strings.Repeat("x", 1<<16)
		require.NoError(t, svc.ProcessSubmission(context.Background(), &big))
		assert.Equal(t, 1<<16, writer.stored[0].Length)
	})

	t.Run("write failure is retryable", func(t *testing.T) {
		cause := errors.New("mongo timeout")
		svc := NewService(&fakeWriter{err: cause}, 1024, false)

		err := svc.ProcessSubmission(context.Background(), submission)
		assert.ErrorIs(t, err, cause)
		assert.False(t, IsPermanent(err))
	})
}
