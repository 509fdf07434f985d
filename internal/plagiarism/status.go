package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/verbatim/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	statusKeyPrefix = "overlap_report_status:"
	statusTTL       = 12 * time.Hour
)

var ErrUnknownStep = errors.New("unknown step")

var validSteps = map[models.Step]bool{
	models.StepIdle:         true,
	models.StepInitiated:    true,
	models.StepStarted:      true,
	models.StepFiltering:    true,
	models.StepDeepAnalysis: true,
	models.StepCompleted:    true,
	models.StepFailed:       true,
}

// statusClient is the part of the Redis client used for status keys
type statusClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// StatusStore publishes the progress of collection runs to Redis
type StatusStore struct {
	client statusClient
}

func NewStatusStore(client statusClient) *StatusStore {
	return &StatusStore{client: client}
}

func statusKey(collectionID string) string {
	return statusKeyPrefix + collectionID
}

func (s *StatusStore) SetStep(ctx context.Context, collectionID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}

	rkey := statusKey(collectionID)
	if err := s.client.Set(ctx, rkey, string(step), statusTTL).Err(); err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("collectionId", collectionID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("collectionId", collectionID).
		Msg("Status updated in Redis")

	return nil
}

// GetStep returns the last published step, or StepIdle when none is stored
func (s *StatusStore) GetStep(ctx context.Context, collectionID string) (models.Step, error) {
	val, err := s.client.Get(ctx, statusKey(collectionID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.StepIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(val), nil
}
