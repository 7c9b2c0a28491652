package stream

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RishiKendai/winnow/internal/models"
)

const (
	fieldJobID   = "jobId"
	fieldPayload = "payload"
)

// ErrInvalidMessage is returned for stream entries that cannot be decoded
// into a comparison job.
var ErrInvalidMessage = errors.New("invalid stream message")

// StreamMessage is a stream entry with its string-valued fields.
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// EncodeComparisonJob returns the stream fields carrying job.
func EncodeComparisonJob(job *models.ComparisonJob) (map[string]interface{}, error) {
	if job.ID == "" {
		return nil, fmt.Errorf("%w: missing job id", ErrInvalidMessage)
	}
	payload, err := json.Marshal(job.Request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comparison request: %w", err)
	}
	return map[string]interface{}{
		fieldJobID:   job.ID,
		fieldPayload: string(payload),
	}, nil
}

// ParseComparisonJob decodes the job carried by msg.
func ParseComparisonJob(msg *StreamMessage) (*models.ComparisonJob, error) {
	jobID := msg.Fields[fieldJobID]
	if jobID == "" {
		return nil, fmt.Errorf("%w: %s has no %s field", ErrInvalidMessage, msg.ID, fieldJobID)
	}

	payload, ok := msg.Fields[fieldPayload]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s field", ErrInvalidMessage, msg.ID, fieldPayload)
	}

	var req models.CompareRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMessage, msg.ID, err)
	}

	return &models.ComparisonJob{
		ID:      jobID,
		Request: req,
	}, nil
}
