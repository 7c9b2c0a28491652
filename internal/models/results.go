package models

import (
	"time"
)

type Step string

const (
	StepQueued     Step = "queued"
	StepProcessing Step = "processing"
	StepCompleted  Step = "completed"
	StepFailed     Step = "failed"
)

// CompareRequest compares Main against each of Others. Zero K or T fall
// back to the configured defaults.
type CompareRequest struct {
	K         int             `json:"k" bson:"k"`
	T         int             `json:"t" bson:"t"`
	Main      DocumentInput   `json:"main" bson:"main"`
	Others    []DocumentInput `json:"others" bson:"others"`
	Highlight bool            `json:"highlight" bson:"highlight"`
}

// PairResult is the outcome of comparing the main document with one other.
// Match lists hold one-based character offsets of matched k-grams.
type PairResult struct {
	Name             string  `bson:"name" json:"name"`
	MainScore        float64 `bson:"mainScore" json:"mainScore"`
	OtherScore       float64 `bson:"otherScore" json:"otherScore"`
	Overall          float64 `bson:"overall" json:"overall"`
	Risk             string  `bson:"risk" json:"risk"` // clean, suspicious, highly suspicious, near copy
	SharedHashes     int     `bson:"sharedHashes" json:"sharedHashes"`
	MainMatches      []int   `bson:"mainMatches" json:"mainMatches"`
	OtherMatches     []int   `bson:"otherMatches" json:"otherMatches"`
	MainHighlighted  string  `bson:"-" json:"mainHighlighted,omitempty"`
	OtherHighlighted string  `bson:"-" json:"otherHighlighted,omitempty"`
}

// ComparisonReport is the stored result of one CompareRequest.
type ComparisonReport struct {
	ID        string       `bson:"_id" json:"reportId"`
	JobID     string       `bson:"jobId,omitempty" json:"jobId,omitempty"`
	K         int          `bson:"k" json:"k"`
	T         int          `bson:"t" json:"t"`
	HashSize  uint64       `bson:"hashSize" json:"hashSize"`
	MainName  string       `bson:"mainName" json:"mainName"`
	Results   []PairResult `bson:"results" json:"results"`
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt"`
}
