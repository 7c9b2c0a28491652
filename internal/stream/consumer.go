package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/winnow/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// JobProcessor runs one decoded comparison job.
type JobProcessor interface {
	ProcessJob(ctx context.Context, job *models.ComparisonJob) error
}

// Consumer reads comparison jobs from a Redis stream as a member of a
// consumer group, reclaiming entries left pending by crashed consumers.
type Consumer struct {
	client            *redis.Client
	streamKey         string
	consumerGroup     string
	consumerName      string
	processor         JobProcessor
	retryHandler      *RetryHandler
	retentionDuration time.Duration
	readCount         int64
	readBlock         time.Duration
	pelMinIdle        time.Duration
	pelInterval       time.Duration
	cleanupInterval   time.Duration
	lastPELCheck      time.Time
}

func NewConsumer(
	client *redis.Client,
	streamKey string,
	consumerGroup string,
	consumerName string,
	processor JobProcessor,
	retryHandler *RetryHandler,
	retentionDuration time.Duration,
) *Consumer {
	return &Consumer{
		client:            client,
		streamKey:         streamKey,
		consumerGroup:     consumerGroup,
		consumerName:      consumerName,
		processor:         processor,
		retryHandler:      retryHandler,
		retentionDuration: retentionDuration,
		readCount:         10,
		readBlock:         time.Second,
		pelMinIdle:        time.Minute,
		pelInterval:       30 * time.Second,
		cleanupInterval:   time.Hour,
	}
}

// Start consumes until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	// Entries claimed by a consumer that died before acknowledging them.
	if err := c.recoverPending(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to recover pending jobs on startup")
	}
	c.lastPELCheck = time.Now()

	go c.trimPeriodically(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("Error consuming comparison jobs")
			time.Sleep(time.Second)
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	// MKSTREAM creates the stream if it does not exist yet.
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.consumerGroup, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().
		Str("group", c.consumerGroup).
		Str("stream", c.streamKey).
		Str("consumer", c.consumerName).
		Msg("Consumer group ready")
	return nil
}

func (c *Consumer) recoverPending(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamKey,
		Group:  c.consumerGroup,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list pending jobs: %w", err)
	}

	ids := claimableIDs(pending, c.pelMinIdle)
	if len(ids) == 0 {
		return nil
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamKey,
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		MinIdle:  c.pelMinIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	log.Info().Int("claimed", len(claimed)).Msg("Reclaimed pending comparison jobs")

	for i := range claimed {
		if err := c.handle(ctx, &claimed[i]); err != nil {
			log.Error().Err(err).Str("message_id", claimed[i].ID).Msg("Failed to process reclaimed job")
		}
	}
	return nil
}

// claimableIDs returns the pending entries idle for at least minIdle.
func claimableIDs(pending []redis.XPendingExt, minIdle time.Duration) []string {
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		if p.Idle >= minIdle {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (c *Consumer) poll(ctx context.Context) error {
	if time.Since(c.lastPELCheck) > c.pelInterval {
		if err := c.recoverPending(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to recover pending jobs")
		}
		c.lastPELCheck = time.Now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{c.streamKey, ">"},
		Count:    c.readCount,
		Block:    c.readBlock,
	}).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		if stream.Stream != c.streamKey {
			continue
		}
		for i := range stream.Messages {
			if err := c.handle(ctx, &stream.Messages[i]); err != nil {
				log.Error().Err(err).Str("message_id", stream.Messages[i].ID).Msg("Failed to process comparison job")
			}
		}
	}
	return nil
}

// handle decodes and runs one entry. The entry is acknowledged once it has
// either succeeded or reached the dead-letter stream.
func (c *Consumer) handle(ctx context.Context, msg *redis.XMessage) error {
	streamMsg := toStreamMessage(msg)

	job, err := ParseComparisonJob(streamMsg)
	if err != nil {
		// Undecodable entries would fail forever.
		c.acknowledge(ctx, msg.ID)
		return err
	}

	fields := make(map[string]interface{}, len(streamMsg.Fields))
	for k, v := range streamMsg.Fields {
		fields[k] = v
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		return c.processor.ProcessJob(ctx, job)
	}, msg.ID, fields)

	switch {
	case err == nil:
		return c.acknowledge(ctx, msg.ID)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrDeadLetterFailed):
		// Left pending for recoverPending.
		return err
	default:
		c.acknowledge(ctx, msg.ID)
		return err
	}
}

func toStreamMessage(msg *redis.XMessage) *StreamMessage {
	fields := make(map[string]string, len(msg.Values))
	for key, val := range msg.Values {
		if value, ok := val.(string); ok {
			fields[key] = value
		}
	}
	return &StreamMessage{
		ID:     msg.ID,
		Fields: fields,
	}
}

// retentionMinID is the smallest stream ID kept when trimming entries older
// than retention.
func retentionMinID(now time.Time, retention time.Duration) string {
	return fmt.Sprintf("%d-0", now.Add(-retention).UnixMilli())
}

func (c *Consumer) trim(ctx context.Context) error {
	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, retentionMinID(time.Now(), c.retentionDuration)).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}

	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Dur("retention", c.retentionDuration).
			Msg("Trimmed old comparison jobs from stream")
	}
	return nil
}

func (c *Consumer) trimPeriodically(ctx context.Context) {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	if err := c.trim(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to run initial stream trim")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.trim(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to trim stream")
			}
		}
	}
}

func (c *Consumer) acknowledge(ctx context.Context, messageID string) error {
	if err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, messageID).Err(); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to acknowledge message")
		return err
	}

	log.Debug().Str("message_id", messageID).Msg("Message acknowledged")
	return nil
}
