package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePruner struct {
	records []time.Time
	err     error
	cutoff  time.Time
}

func (f *fakePruner) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.cutoff = cutoff

	var kept []time.Time
	var deleted int64
	for _, createdAt := range f.records {
		if createdAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, createdAt)
	}
	f.records = kept
	return deleted, nil
}

func TestRunPrunesRecordsOlderThanRetention(t *testing.T) {
	now := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)

	pruner := &fakePruner{
		records: []time.Time{
			now.Add(-91 * 24 * time.Hour),
			now.Add(-89 * 24 * time.Hour),
		},
	}

	job := New(pruner, 90*24*time.Hour, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	if len(pruner.records) != 1 {
		t.Fatalf("expected 1 record kept, got %d", len(pruner.records))
	}
	wantCutoff := now.Add(-90 * 24 * time.Hour)
	if !pruner.cutoff.Equal(wantCutoff) {
		t.Fatalf("expected cutoff %s, got %s", wantCutoff, pruner.cutoff)
	}
}

func TestRunPropagatesPruneError(t *testing.T) {
	boom := errors.New("backend down")
	job := New(&fakePruner{err: boom}, time.Hour, nil)

	if err := job.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped prune error, got %v", err)
	}
}

func TestRunWithoutStoreIsNoop(t *testing.T) {
	job := New(nil, time.Hour, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run without store: %v", err)
	}
}
