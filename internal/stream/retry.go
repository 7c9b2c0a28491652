package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrDeadLetterFailed is returned when a message exhausted its retries but
// could not be written to the dead-letter stream.
var ErrDeadLetterFailed = errors.New("failed to dead-letter message")

// DeadLetterWriter is the subset of the Redis client the retry handler needs.
type DeadLetterWriter interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type RetryHandler struct {
	client        DeadLetterWriter
	deadLetterKey string
	maxRetries    int
	baseDelay     time.Duration
	maxDelay      time.Duration
	retryable     func(error) bool
}

// NewRetryHandler creates a handler retrying failed work up to maxRetries
// times with exponential back-off. Errors for which retryable returns false
// go to the dead-letter stream immediately; a nil retryable retries all.
func NewRetryHandler(client DeadLetterWriter, deadLetterKey string, maxRetries int, retryable func(error) bool) *RetryHandler {
	if retryable == nil {
		retryable = func(error) bool { return true }
	}
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
		maxRetries:    maxRetries,
		baseDelay:     500 * time.Millisecond,
		maxDelay:      30 * time.Second,
		retryable:     retryable,
	}
}

// SetBackoff overrides the initial and maximum delay between attempts.
func (h *RetryHandler) SetBackoff(base, maxDelay time.Duration) {
	h.baseDelay = base
	h.maxDelay = maxDelay
}

// RetryWithBackoff runs fn until it succeeds, fails permanently or runs out
// of retries. The last error is returned after the message has been written
// to the dead-letter stream, wrapped in ErrDeadLetterFailed if that write
// failed. A cancelled context stops retrying without dead-lettering.
func (h *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	delay := h.baseDelay
	var err error

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !h.retryable(err) {
			log.Warn().Err(err).Str("message_id", messageID).Msg("Permanent failure, skipping retries")
			break
		}
		if attempt == h.maxRetries {
			break
		}

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

		delay *= 2
		if delay > h.maxDelay {
			delay = h.maxDelay
		}
	}

	if dlqErr := h.deadLetter(ctx, err, messageID, fields); dlqErr != nil {
		return fmt.Errorf("%w: %v (processing error: %v)", ErrDeadLetterFailed, dlqErr, err)
	}
	return err
}

func (h *RetryHandler) deadLetter(ctx context.Context, cause error, messageID string, fields map[string]interface{}) error {
	values := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		values[k] = v
	}
	values["originalId"] = messageID
	values["error"] = cause.Error()

	if err := h.client.XAdd(ctx, &redis.XAddArgs{
		Stream: h.deadLetterKey,
		Values: values,
	}).Err(); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to write message to dead-letter stream")
		return err
	}

	log.Error().
		Err(cause).
		Str("message_id", messageID).
		Str("dead_letter_key", h.deadLetterKey).
		Msg("Message moved to dead-letter stream")
	return nil
}
