package executor

import (
	"context"
	"testing"

	"github.com/tolelom/casinochain/config"
	"github.com/tolelom/casinochain/internal/testutil"
	"github.com/tolelom/casinochain/layer"
	"github.com/tolelom/casinochain/storage"
)

func newTestExecutor(t *testing.T) (*Executor, *storage.StateStore, *storage.EventStore) {
	t.Helper()
	state, err := storage.OpenStateStore(testutil.NewMemDB())
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	events, err := storage.OpenEventStore(testutil.NewMemDB())
	if err != nil {
		t.Fatalf("open event store: %v", err)
	}
	return New(state, events, config.EmptyAdminSet()), state, events
}

func TestStepCommitsAnEmptyRound(t *testing.T) {
	ctx := context.Background()
	exec, state, events := newTestExecutor(t)

	result, err := exec.Step(ctx, 1, 1000, [32]byte{1}, nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if result.Processed != 0 || result.Skipped != 0 {
		t.Fatalf("unexpected processed/skipped on an empty round: %+v", result)
	}
	// Every committed round appends exactly one trailing commit-marker
	// output, even with zero transactions.
	if result.EventsEnd-result.EventsStart != 1 {
		t.Fatalf("expected exactly one output (the commit marker), got %d", result.EventsEnd-result.EventsStart)
	}
	if result.StateRoot != state.Root() {
		t.Fatalf("StepResult.StateRoot does not match the store's root after commit")
	}
	if result.EventsRoot != events.Root() {
		t.Fatalf("StepResult.EventsRoot does not match the log's root after commit")
	}
}

func TestStepIsIdempotentOnReplay(t *testing.T) {
	ctx := context.Background()
	exec, _, _ := newTestExecutor(t)

	first, err := exec.Step(ctx, 1, 1000, [32]byte{1}, nil)
	if err != nil {
		t.Fatalf("first Step: %v", err)
	}
	// Re-driving the same height after it has already committed must be a
	// no-op that returns the already-committed window, not re-apply it.
	second, err := exec.Step(ctx, 1, 1000, [32]byte{1}, nil)
	if err != nil {
		t.Fatalf("replayed Step: %v", err)
	}
	if second.StateRoot != first.StateRoot || second.EventsRoot != first.EventsRoot {
		t.Fatalf("replayed Step diverged: first=%+v second=%+v", first, second)
	}
	if second.StateStart != second.StateEnd {
		t.Fatalf("idempotent replay must report an empty window, got [%d,%d)", second.StateStart, second.StateEnd)
	}
}

// TestStepRecoversFromEventsCommittedWithoutStateCommit simulates a crash
// between Events.Commit succeeding and State.Commit for the same height: it
// drives events through exactly what normalStep does, stops short of
// committing state, then re-drives Step at the same height and expects the
// recovery path to detect the mismatch, replay the STF, and settle on a
// single consistent committed window rather than duplicating the events.
func TestStepRecoversFromEventsCommittedWithoutStateCommit(t *testing.T) {
	ctx := context.Background()
	exec, state, events := newTestExecutor(t)

	if _, err := exec.Step(ctx, 1, 1000, [32]byte{1}, nil); err != nil {
		t.Fatalf("first Step: %v", err)
	}

	height := int64(2)
	nowMs := int64(2000)
	seed := [32]byte{2}
	eventsStart := events.OpCount()

	result, err := layer.Run(ctx, state, exec.Admin, height, nowMs, seed, nil)
	if err != nil {
		t.Fatalf("layer.Run: %v", err)
	}
	if err := exec.appendOutputs(ctx, height, eventsStart, result.Events); err != nil {
		t.Fatalf("appendOutputs: %v", err)
	}
	if _, err := events.Commit(ctx); err != nil {
		t.Fatalf("events commit: %v", err)
	}
	// Crash here: events committed for height 2, state never did.

	eventsOpCountAfterCrash := events.OpCount()

	recovered, err := exec.Step(ctx, height, nowMs, seed, nil)
	if err != nil {
		t.Fatalf("recovery Step: %v", err)
	}
	if recovered.StateRoot != state.Root() {
		t.Fatalf("recovered StateRoot does not match the store's root after commit")
	}
	if events.OpCount() != eventsOpCountAfterCrash {
		t.Fatalf("recovery must not re-append events: had %d, now %d", eventsOpCountAfterCrash, events.OpCount())
	}

	// A further Step at height 3 must see a consistent, in-sync marker and
	// take the normal path rather than looping back into recovery.
	if _, err := exec.Step(ctx, 3, 3000, [32]byte{3}, nil); err != nil {
		t.Fatalf("Step after recovery: %v", err)
	}
}

func TestStepRejectsNonSequentialHeight(t *testing.T) {
	ctx := context.Background()
	exec, _, _ := newTestExecutor(t)

	if _, err := exec.Step(ctx, 1, 1000, [32]byte{1}, nil); err != nil {
		t.Fatalf("first Step: %v", err)
	}
	if _, err := exec.Step(ctx, 3, 2000, [32]byte{2}, nil); err == nil {
		t.Fatalf("expected an error skipping from height 1 straight to height 3")
	}
}
