package stream

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RishiKendai/verbatim/internal/models"
)

var ErrInvalidSubmission = errors.New("invalid submission")

// StreamMessage is a Redis stream entry with its fields flattened to strings
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseSubmission reads a document submission from a stream message.
// documentId and collectionId are required; content may be empty.
func ParseSubmission(msg *StreamMessage) (*models.Submission, error) {
	submission := &models.Submission{
		DocumentID:   strings.TrimSpace(msg.Fields["documentId"]),
		CollectionID: strings.TrimSpace(msg.Fields["collectionId"]),
		Title:        msg.Fields["title"],
		Content:      msg.Fields["content"],
	}

	if submission.DocumentID == "" {
		return nil, fmt.Errorf("%w: message %s: documentId is required", ErrInvalidSubmission, msg.ID)
	}
	if submission.CollectionID == "" {
		return nil, fmt.Errorf("%w: message %s: collectionId is required", ErrInvalidSubmission, msg.ID)
	}
	if _, ok := msg.Fields["content"]; !ok {
		return nil, fmt.Errorf("%w: message %s: content is required", ErrInvalidSubmission, msg.ID)
	}

	return submission, nil
}
