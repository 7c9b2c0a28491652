package stream

import (
	"context"
	"fmt"

	"github.com/RishiKendai/winnow/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Producer appends comparison jobs to the Redis stream.
type Producer struct {
	client    redis.Cmdable
	streamKey string
}

func NewProducer(client redis.Cmdable, streamKey string) *Producer {
	return &Producer{
		client:    client,
		streamKey: streamKey,
	}
}

// Enqueue appends job to the stream and returns the entry ID.
func (p *Producer) Enqueue(ctx context.Context, job *models.ComparisonJob) (string, error) {
	values, err := EncodeComparisonJob(job)
	if err != nil {
		return "", err
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.streamKey,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Debug().
		Str("jobId", job.ID).
		Str("message_id", id).
		Msg("Comparison job enqueued")

	return id, nil
}
