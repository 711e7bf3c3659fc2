package pipeline

import (
	"testing"
	"time"
)

func TestRun_StateTransitions(t *testing.T) {
	run := NewRun()
	if run.ID == "" {
		t.Fatal("expected run ID")
	}
	if run.Status != StatusRunning || run.Phase != PhaseLoading {
		t.Fatalf("expected running/loading, got %s/%s", run.Status, run.Phase)
	}

	transitions := []struct {
		status RunStatus
		phase  string
	}{
		{StatusRunning, PhasePooling},
		{StatusRunning, PhaseScoring},
		{StatusRunning, PhaseWriting},
		{StatusCompleted, PhaseDone},
	}

	for _, tr := range transitions {
		before := run.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		run.SetStatus(tr.status, tr.phase)

		if run.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, run.Status)
		}
		if run.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, run.Phase)
		}
		if !run.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestRun_SnapshotIsCopy(t *testing.T) {
	run := NewRun()
	run.AddError("first")
	snap := run.Snapshot()
	run.AddError("second")

	if len(snap.Errors) != 1 {
		t.Fatalf("expected snapshot to keep 1 error, got %d", len(snap.Errors))
	}
	if got := len(run.Snapshot().Errors); got != 2 {
		t.Fatalf("expected 2 errors, got %d", got)
	}
}

func TestNewRun_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewRun().ID
		if seen[id] {
			t.Fatalf("duplicate run ID %q", id)
		}
		seen[id] = true
	}
}

func TestRunStore_PutGetCleanup(t *testing.T) {
	store := NewRunStore(50 * time.Millisecond)
	run := NewRun()
	store.Put(run)

	if removed, remaining := store.Cleanup(); removed != 0 || remaining != 1 {
		t.Fatalf("expected fresh run to survive cleanup, got removed=%d remaining=%d", removed, remaining)
	}

	if got := store.Get(run.ID); got != run {
		t.Fatalf("expected stored run, got %v", got)
	}
	if store.Get("missing") != nil {
		t.Fatal("expected nil for unknown ID")
	}

	time.Sleep(120 * time.Millisecond)
	removed, remaining := store.Cleanup()
	if removed != 1 || remaining != 0 {
		t.Fatalf("expected expired run to be removed, got removed=%d remaining=%d", removed, remaining)
	}
	if store.Get(run.ID) != nil {
		t.Fatal("expected expired run to be gone")
	}
}
