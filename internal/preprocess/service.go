package preprocess

import (
	"context"
	"errors"
	"fmt"

	"github.com/RishiKendai/verbatim/internal/models"
	"github.com/rs/zerolog/log"
)

var ErrDocumentTooLarge = errors.New("document exceeds maximum size")

// DocumentWriter stores preprocessed documents
type DocumentWriter interface {
	UpsertDocument(ctx context.Context, document *models.Document) error
}

type Service struct {
	documents DocumentWriter
	maxBytes  int
	normalize bool
}

func NewService(documents DocumentWriter, maxBytes int, normalize bool) *Service {
	return &Service{
		documents: documents,
		maxBytes:  maxBytes,
		normalize: normalize,
	}
}

// IsPermanent reports whether retrying err can never succeed
func IsPermanent(err error) bool {
	return errors.Is(err, ErrDocumentTooLarge)
}

// Prepare applies the configured normalization to text
func (s *Service) Prepare(text string) string {
	if s.normalize {
		return Normalize(text)
	}
	return text
}

// ProcessSubmission validates and normalizes a submission and stores it as a document
func (s *Service) ProcessSubmission(ctx context.Context, submission *models.Submission) error {
	if s.maxBytes > 0 && len(submission.Content) > s.maxBytes {
		return fmt.Errorf("%w: %d > %d bytes", ErrDocumentTooLarge, len(submission.Content), s.maxBytes)
	}

	content := s.Prepare(submission.Content)
	// Case folding can grow the text (U+0149 becomes two runes).
	if s.maxBytes > 0 && len(content) > s.maxBytes {
		return fmt.Errorf("%w: %d > %d bytes after normalization", ErrDocumentTooLarge, len(content), s.maxBytes)
	}

	document := &models.Document{
		DocumentID:   submission.DocumentID,
		CollectionID: submission.CollectionID,
		Title:        submission.Title,
		Content:      content,
		Normalized:   s.normalize,
		Length:       len(content),
	}

	if err := s.documents.UpsertDocument(ctx, document); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	log.Debug().
		Str("documentId", document.DocumentID).
		Str("collectionId", document.CollectionID).
		Int("length", document.Length).
		Msg("Document stored")

	return nil
}
