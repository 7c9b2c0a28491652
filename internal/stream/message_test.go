package stream

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/RishiKendai/winnow/internal/models"
	"github.com/redis/go-redis/v9"
)

func sampleJob() *models.ComparisonJob {
	return &models.ComparisonJob{
		ID: "job-1",
		Request: models.CompareRequest{
			K:    5,
			T:    8,
			Main: models.DocumentInput{Name: "main.c", Language: "c", Content: "int x;"},
			Others: []models.DocumentInput{
				{Name: "other.c", Language: "c", Content: "int y;"},
			},
			Highlight: true,
		},
	}
}

func stringFields(values map[string]interface{}) map[string]string {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		fields[k] = v.(string)
	}
	return fields
}

func TestEncodeParseComparisonJob(t *testing.T) {
	job := sampleJob()
	values, err := EncodeComparisonJob(job)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if values[fieldJobID] != "job-1" {
		t.Fatalf("expect jobId field, got %v", values)
	}

	got, err := ParseComparisonJob(&StreamMessage{ID: "1-0", Fields: stringFields(values)})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(got, job) {
		t.Fatalf("expect %+v, got %+v", job, got)
	}
}

func TestEncodeComparisonJobMissingID(t *testing.T) {
	if _, err := EncodeComparisonJob(&models.ComparisonJob{}); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expect ErrInvalidMessage, got %v", err)
	}
}

func TestParseComparisonJobInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"no job id":   {fieldPayload: "{}"},
		"no payload":  {fieldJobID: "job-1"},
		"bad payload": {fieldJobID: "job-1", fieldPayload: "{not json"},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseComparisonJob(&StreamMessage{ID: "1-0", Fields: fields})
			if !errors.Is(err, ErrInvalidMessage) {
				t.Fatalf("expect ErrInvalidMessage, got %v", err)
			}
		})
	}
}

// fakeStream records XAdd calls. err, when set, fails every call.
type fakeStream struct {
	redis.Cmdable
	adds []*redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.adds = append(f.adds, a)
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	return redis.NewStringResult("1700000000000-0", nil)
}

func TestProducerEnqueue(t *testing.T) {
	rdb := &fakeStream{}
	producer := NewProducer(rdb, "winnow:stream")

	id, err := producer.Enqueue(context.Background(), sampleJob())
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if id != "1700000000000-0" {
		t.Fatalf("unexpected entry id %q", id)
	}
	if len(rdb.adds) != 1 || rdb.adds[0].Stream != "winnow:stream" {
		t.Fatalf("expect one XADD to winnow:stream, got %+v", rdb.adds)
	}

	values := rdb.adds[0].Values.(map[string]interface{})
	job, err := ParseComparisonJob(&StreamMessage{ID: id, Fields: stringFields(values)})
	if err != nil {
		t.Fatalf("parse enqueued job: %v", err)
	}
	if job.ID != "job-1" {
		t.Fatalf("expect job-1, got %s", job.ID)
	}
}

func TestProducerEnqueueError(t *testing.T) {
	down := errors.New("connection refused")
	producer := NewProducer(&fakeStream{err: down}, "winnow:stream")

	if _, err := producer.Enqueue(context.Background(), sampleJob()); !errors.Is(err, down) {
		t.Fatalf("expect wrapped redis error, got %v", err)
	}
}
