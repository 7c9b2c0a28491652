package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/winnow/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrStatusNotFound is returned for jobs with no recorded status.
var ErrStatusNotFound = errors.New("status not found")

const (
	statusKeyPrefix = "comparison_status:"
	statusTTL       = 12 * time.Hour
)

var validSteps = map[models.Step]bool{
	models.StepQueued:     true,
	models.StepProcessing: true,
	models.StepCompleted:  true,
	models.StepFailed:     true,
}

// StatusTracker records the progress of queued comparison jobs in Redis.
type StatusTracker struct {
	client redis.Cmdable
}

func NewStatusTracker(client redis.Cmdable) *StatusTracker {
	return &StatusTracker{client: client}
}

func (s *StatusTracker) UpdateStatus(ctx context.Context, jobID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKeyPrefix + jobID

	err := s.client.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("jobId", jobID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("jobId", jobID).
		Msg("Status updated in Redis")

	return nil
}

func (s *StatusTracker) GetStatus(ctx context.Context, jobID string) (models.Step, error) {
	val, err := s.client.Get(ctx, statusKeyPrefix+jobID).Result()
	if err == redis.Nil {
		return "", ErrStatusNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(val), nil
}
