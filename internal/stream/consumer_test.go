package stream

import (
	"reflect"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestClaimableIDs(t *testing.T) {
	pending := []redis.XPendingExt{
		{ID: "1-0", Idle: 2 * time.Minute},
		{ID: "2-0", Idle: 10 * time.Second},
		{ID: "3-0", Idle: time.Minute},
	}
	got := claimableIDs(pending, time.Minute)
	if !reflect.DeepEqual(got, []string{"1-0", "3-0"}) {
		t.Fatalf("expect [1-0 3-0], got %v", got)
	}
}

func TestToStreamMessage(t *testing.T) {
	msg := &redis.XMessage{
		ID: "5-1",
		Values: map[string]interface{}{
			fieldJobID: "job-1",
			"count":    3,
		},
	}
	got := toStreamMessage(msg)
	if got.ID != "5-1" || got.Fields[fieldJobID] != "job-1" {
		t.Fatalf("unexpected message %+v", got)
	}
	if _, ok := got.Fields["count"]; ok {
		t.Fatalf("expect non-string values skipped")
	}
}

func TestRetentionMinID(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	if got := retentionMinID(now, time.Hour); got != "1699996400000-0" {
		t.Fatalf("expect 1699996400000-0, got %s", got)
	}
}
