package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/RishiKendai/verbatim/internal/preprocess"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// deadLetterWriter is the part of the Redis client used for the dead-letter stream
type deadLetterWriter interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RetryHandler retries message processing with exponential backoff and moves
// messages that keep failing to a dead-letter stream.
type RetryHandler struct {
	client        deadLetterWriter
	deadLetterKey string
	maxRetries    int
	baseDelay     time.Duration
	maxDelay      time.Duration
}

func NewRetryHandler(client deadLetterWriter, deadLetterKey string, maxRetries int) *RetryHandler {
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
		maxRetries:    maxRetries,
		baseDelay:     500 * time.Millisecond,
		maxDelay:      10 * time.Second,
	}
}

func (h *RetryHandler) backoff(attempt int) time.Duration {
	if attempt > 30 {
		return h.maxDelay
	}
	d := h.baseDelay << attempt
	if d <= 0 || d > h.maxDelay {
		return h.maxDelay
	}
	return d
}

// RetryWithBackoff runs fn up to maxRetries+1 times. Permanent errors are not
// retried. When every attempt fails the message is dead-lettered and the last
// error returned.
func (h *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	var err error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if preprocess.IsPermanent(err) || attempt == h.maxRetries {
			break
		}

		delay := h.backoff(attempt)
		log.Warn().
			Err(err).
			Str("message_id", messageID).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("Processing failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	if dlqErr := h.deadLetter(ctx, messageID, fields, err); dlqErr != nil {
		log.Error().Err(dlqErr).Str("message_id", messageID).Msg("Failed to dead-letter message")
		return fmt.Errorf("%w (dead-letter failed: %v)", err, dlqErr)
	}
	return err
}

func (h *RetryHandler) deadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error) error {
	values := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		values[k] = v
	}
	values["original_id"] = messageID
	values["error"] = cause.Error()
	values["failed_at"] = time.Now().UTC().Format(time.RFC3339)

	if err := h.client.XAdd(ctx, &redis.XAddArgs{
		Stream: h.deadLetterKey,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to dead-letter stream: %w", err)
	}

	log.Warn().
		Str("message_id", messageID).
		Str("stream", h.deadLetterKey).
		Msg("Message moved to dead-letter stream")
	return nil
}
