package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/verbatim/internal/metrics"
	"github.com/RishiKendai/verbatim/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	readCount           = 10
	readBlock           = time.Second
	pendingBatch        = 100
	minClaimIdle        = time.Minute
	pelRecoveryInterval = 30 * time.Second
	cleanupInterval     = time.Hour
)

// SubmissionProcessor turns a parsed submission into a stored document
type SubmissionProcessor interface {
	ProcessSubmission(ctx context.Context, submission *models.Submission) error
}

// streamClient is the part of the Redis client used by the consumer
type streamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XPendingExt(ctx context.Context, a *redis.XPendingExtArgs) *redis.XPendingExtCmd
	XClaim(ctx context.Context, a *redis.XClaimArgs) *redis.XMessageSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XTrimMinID(ctx context.Context, key string, minID string) *redis.IntCmd
}

// Consumer ingests document submissions from a Redis stream consumer group.
// Entries left pending by a crashed consumer are claimed after minClaimIdle,
// and entries older than the retention window are trimmed.
type Consumer struct {
	client       streamClient
	streamKey    string
	group        string
	name         string
	processor    SubmissionProcessor
	retryHandler *RetryHandler
	retention    time.Duration
	lastPELCheck time.Time
	now          func() time.Time
}

func NewConsumer(
	client streamClient,
	streamKey string,
	group string,
	name string,
	processor SubmissionProcessor,
	retryHandler *RetryHandler,
	retention time.Duration,
) *Consumer {
	return &Consumer{
		client:       client,
		streamKey:    streamKey,
		group:        group,
		name:         name,
		processor:    processor,
		retryHandler: retryHandler,
		retention:    retention,
		now:          time.Now,
	}
}

// Start consumes until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create consumer group")
	}

	if err := c.recoverPending(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to recover pending submissions on startup")
	}
	c.lastPELCheck = c.now()

	go c.trimPeriodically(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.poll(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Error().Err(err).Str("stream", c.streamKey).Msg("Failed to read submissions")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
}

// ensureGroup creates the consumer group at "0" so that submissions queued
// before the first start are ingested too.
func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.group, "0").Err()
	if err != nil && strings.Contains(err.Error(), "BUSYGROUP") {
		log.Debug().Str("group", c.group).Msg("Consumer group already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().Str("group", c.group).Str("stream", c.streamKey).Msg("Created consumer group")
	return nil
}

// poll reads one batch of new entries, running a pending-list sweep first
// when one is due.
func (c *Consumer) poll(ctx context.Context) error {
	if c.now().Sub(c.lastPELCheck) > pelRecoveryInterval {
		if err := c.recoverPending(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to recover pending submissions")
		}
		c.lastPELCheck = c.now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.streamKey, ">"},
		Count:    readCount,
		Block:    readBlock,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, s := range streams {
		if s.Stream != c.streamKey {
			continue
		}
		c.handleBatch(ctx, s.Messages)
	}
	return nil
}

// recoverPending claims entries another consumer read but never acknowledged
func (c *Consumer) recoverPending(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamKey,
		Group:  c.group,
		Start:  "-",
		End:    "+",
		Count:  pendingBatch,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list pending entries: %w", err)
	}

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		if p.Idle >= minClaimIdle {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamKey,
		Group:    c.group,
		Consumer: c.name,
		MinIdle:  minClaimIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to claim pending entries: %w", err)
	}

	log.Info().
		Int("idle", len(ids)).
		Int("claimed", len(claimed)).
		Msg("Claimed pending submissions")

	c.handleBatch(ctx, claimed)
	return nil
}

func (c *Consumer) handleBatch(ctx context.Context, msgs []redis.XMessage) {
	for i := range msgs {
		if err := c.handle(ctx, &msgs[i]); err != nil {
			log.Error().Err(err).Str("message_id", msgs[i].ID).Msg("Failed to ingest submission")
		}
	}
}

// handle ingests one entry. Unparseable entries and entries that were
// dead-lettered are acknowledged so they leave the pending list; an entry
// interrupted by shutdown stays pending and is claimed again later.
func (c *Consumer) handle(ctx context.Context, msg *redis.XMessage) error {
	fields := make(map[string]string, len(msg.Values))
	for k, v := range msg.Values {
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}

	submission, err := ParseSubmission(&StreamMessage{ID: msg.ID, Fields: fields})
	if err != nil {
		metrics.StreamMessages.WithLabelValues("invalid").Inc()
		c.ack(ctx, msg.ID)
		return err
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		return c.processor.ProcessSubmission(ctx, submission)
	}, msg.ID, msg.Values)
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case err != nil:
		metrics.StreamMessages.WithLabelValues("dead_lettered").Inc()
		c.ack(ctx, msg.ID)
		return err
	}

	metrics.StreamMessages.WithLabelValues("processed").Inc()
	c.ack(ctx, msg.ID)
	return nil
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, c.streamKey, c.group, id).Err(); err != nil {
		log.Error().Err(err).Str("message_id", id).Msg("Failed to acknowledge submission")
		return
	}
	log.Trace().Str("message_id", id).Msg("Submission acknowledged")
}

// trim drops entries older than the retention window
func (c *Consumer) trim(ctx context.Context) error {
	cutoff := c.now().Add(-c.retention)
	minID := fmt.Sprintf("%d-0", cutoff.UnixMilli())

	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}
	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Str("cutoff", cutoff.Format(time.RFC3339)).
			Msg("Trimmed old submissions")
	}
	return nil
}

func (c *Consumer) trimPeriodically(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		if err := c.trim(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to trim stream")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
