package models

// ComparisonJob is a comparison queued on the Redis stream.
type ComparisonJob struct {
	ID      string         `json:"jobId"`
	Request CompareRequest `json:"request"`
}

// JobResponse is returned when a job is accepted.
type JobResponse struct {
	JobID string `json:"jobId"`
	Step  Step   `json:"step"`
}
