package repository

import "testing"

func TestUpsertByID(t *testing.T) {
	filter, opts := upsertByID("job-1")

	if got := filter["_id"]; got != "job-1" {
		t.Fatalf("expect filter on _id job-1, got %v", got)
	}
	if opts.Upsert == nil || !*opts.Upsert {
		t.Fatalf("expect upsert enabled")
	}
}
