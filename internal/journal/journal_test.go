package journal_test

import (
	"context"
	"testing"
	"time"

	"github.com/P-ict0/HourTrack/internal/journal"
)

func TestAppendAndLatest(t *testing.T) {
	dir := t.TempDir()
	j, err := journal.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()
	j.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if err := j.Append(ctx, journal.EventCreate, "alpha", journal.Payload{"goal_hours": 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Append(ctx, journal.EventStart, "alpha", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Append(ctx, journal.EventStop, "alpha", nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := j.Latest(ctx, 2)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != journal.EventStop || events[1].Type != journal.EventStart {
		t.Fatalf("expected newest first, got %s then %s", events[0].Type, events[1].Type)
	}
	if events[0].TS != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected ts %s", events[0].TS)
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	j, err := journal.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Append(ctx, journal.EventDelete, "alpha", nil); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	// migrations are idempotent across opens
	j, err = journal.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	events, err := j.Latest(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != journal.EventDelete {
		t.Fatalf("expected persisted event, got %+v", events)
	}
}
