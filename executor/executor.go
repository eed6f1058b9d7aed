// Package executor drives the crash-consistent state-transition loop:
// execute the layer STF, commit events, then commit state, in that strict
// order, so a process crash between the two commits is detectable and
// repairable on the next Step (spec.md §4.10).
package executor

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tolelom/casinochain/codec"
	"github.com/tolelom/casinochain/config"
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/internal/xhash"
	"github.com/tolelom/casinochain/layer"
)

// Executor owns the authenticated state store and event log for one chain
// and advances them one block at a time.
type Executor struct {
	State  core.State
	Events core.EventLog
	Admin  *config.AdminSet
}

// New builds an Executor over an already-opened state store and event log.
func New(state core.State, events core.EventLog, admin *config.AdminSet) *Executor {
	return &Executor{State: state, Events: events, Admin: admin}
}

// StepResult is the authenticated window produced by one successful Step
// (spec.md §4.10's StateTransitionResult).
type StepResult struct {
	StateRoot   xhash.Digest
	StateStart  uint64
	StateEnd    uint64
	EventsRoot  xhash.Digest
	EventsStart uint64
	EventsEnd   uint64
	Processed   int
	Skipped     int
}

// Step advances the chain to height, applying txs under seed and nowMs, per
// the three-case table in spec.md §4.10. Callers MUST supply the same
// height/nowMs/seed/txs on a retried call after a crash, so recovery can
// deterministically re-derive the events it needs to verify.
func (e *Executor) Step(ctx context.Context, height int64, nowMs int64, seed [32]byte, txs []core.Transaction) (StepResult, error) {
	marker, err := e.loadMarker(ctx)
	if err != nil {
		return StepResult{}, fmt.Errorf("executor: load commit marker: %w", err)
	}

	switch {
	case marker.StateHeight == marker.EventsHeight:
		if height <= marker.StateHeight {
			return e.idempotentResult(), nil
		}
		if height > marker.StateHeight+1 {
			return StepResult{}, fmt.Errorf("executor: non-sequential height %d after state height %d", height, marker.StateHeight)
		}
		return e.normalStep(ctx, height, nowMs, seed, txs)

	case marker.EventsHeight == marker.StateHeight+1:
		return e.recoverStep(ctx, marker, nowMs, seed, txs)

	default:
		return StepResult{}, fmt.Errorf("executor: fatal state/events height mismatch (state=%d events=%d)", marker.StateHeight, marker.EventsHeight)
	}
}

// loadMarker assembles the current (state_height, events_height) pair from
// two independent sources: State's own metadata for StateHeight, and the
// event log's self-persisted commit marker for EventsHeight. Reading
// EventsHeight from State.GetMetadata alone is what makes the recovery
// branch below unreachable, since State only ever writes the two heights
// together (spec.md §4.3, §4.10): a crash between Events.Commit and
// State.Commit must surface as marker.EventsHeight > marker.StateHeight.
func (e *Executor) loadMarker(ctx context.Context) (core.CommitMarker, error) {
	var marker core.CommitMarker
	val, ok, err := e.State.GetMetadata(ctx)
	if err != nil {
		return core.CommitMarker{}, err
	}
	if ok && val.Commit != nil {
		marker = *val.Commit
	}

	eventsHeight, eventsStart, eventsOk, err := e.Events.CommitMarker(ctx)
	if err != nil {
		return core.CommitMarker{}, err
	}
	if !eventsOk {
		marker.EventsHeight = marker.StateHeight
		return marker, nil
	}
	marker.EventsHeight = eventsHeight
	if eventsHeight != marker.StateHeight {
		marker.EventsCommitStart = eventsStart
		marker.EventsCommitLoc = e.Events.OpCount()
	}
	return marker, nil
}

func (e *Executor) idempotentResult() StepResult {
	return StepResult{
		StateRoot:   e.State.Root(),
		StateStart:  e.State.OpCount(),
		StateEnd:    e.State.OpCount(),
		EventsRoot:  e.Events.Root(),
		EventsStart: e.Events.OpCount(),
		EventsEnd:   e.Events.OpCount(),
	}
}

// normalStep is the common case: state and events previously agreed, so
// execute the STF, append its outputs plus a trailing commit marker, commit
// events, then commit state (spec.md §4.9, §4.10 row 1).
func (e *Executor) normalStep(ctx context.Context, height int64, nowMs int64, seed [32]byte, txs []core.Transaction) (StepResult, error) {
	stateStart := e.State.OpCount()
	eventsStart := e.Events.OpCount()

	result, err := layer.Run(ctx, e.State, e.Admin, height, nowMs, seed, txs)
	if err != nil {
		return StepResult{}, fmt.Errorf("executor: stf: %w", err)
	}
	if err := e.appendOutputs(ctx, height, eventsStart, result.Events); err != nil {
		return StepResult{}, err
	}

	eventsRoot, err := e.Events.Commit(ctx)
	if err != nil {
		return StepResult{}, fmt.Errorf("executor: commit events: %w", err)
	}
	eventsEnd := e.Events.OpCount()

	stateRoot, err := e.commitStateWithMarker(ctx, height, eventsStart, eventsEnd)
	if err != nil {
		return StepResult{}, err
	}

	return StepResult{
		StateRoot:   stateRoot,
		StateStart:  stateStart,
		StateEnd:    e.State.OpCount(),
		EventsRoot:  eventsRoot,
		EventsStart: eventsStart,
		EventsEnd:   eventsEnd,
		Processed:   result.Processed,
		Skipped:     result.Skipped,
	}, nil
}

// recoverStep handles a crash where events for height were already
// committed but state was not: re-execute the STF against the same inputs,
// verify the regenerated output window matches the already-committed one
// byte-for-byte, then apply only the state side (spec.md §4.10 row 2).
func (e *Executor) recoverStep(ctx context.Context, prior core.CommitMarker, nowMs int64, seed [32]byte, txs []core.Transaction) (StepResult, error) {
	height := prior.EventsHeight
	stateStart := e.State.OpCount()

	result, err := layer.Run(ctx, e.State, e.Admin, height, nowMs, seed, txs)
	if err != nil {
		return StepResult{}, fmt.Errorf("executor: recovery stf: %w", err)
	}

	regenerated := buildOutputs(height, prior.EventsCommitStart, result.Events)
	_, committed, err := e.Events.Range(ctx, prior.EventsCommitStart, prior.EventsCommitLoc)
	if err != nil {
		return StepResult{}, fmt.Errorf("executor: recovery read committed events: %w", err)
	}
	if len(committed) != len(regenerated) {
		return StepResult{}, fmt.Errorf("executor: recovery fatal: committed output count %d does not match regenerated %d", len(committed), len(regenerated))
	}
	for i := range regenerated {
		if !bytes.Equal(codec.EncodeOutput(regenerated[i]), codec.EncodeOutput(committed[i])) {
			return StepResult{}, fmt.Errorf("executor: recovery fatal: output %d diverges from committed log", i)
		}
	}

	stateRoot, err := e.commitStateWithMarker(ctx, height, prior.EventsCommitStart, prior.EventsCommitLoc)
	if err != nil {
		return StepResult{}, err
	}

	return StepResult{
		StateRoot:   stateRoot,
		StateStart:  stateStart,
		StateEnd:    e.State.OpCount(),
		EventsRoot:  e.Events.Root(),
		EventsStart: prior.EventsCommitStart,
		EventsEnd:   prior.EventsCommitLoc,
		Processed:   result.Processed,
		Skipped:     result.Skipped,
	}, nil
}

func (e *Executor) appendOutputs(ctx context.Context, height int64, start uint64, events []core.Event) error {
	for _, out := range buildOutputs(height, start, events) {
		if _, err := e.Events.Append(ctx, out); err != nil {
			return fmt.Errorf("executor: append output: %w", err)
		}
	}
	return nil
}

// buildOutputs renders a block's events plus its trailing commit marker in
// the exact order normalStep appends them, so recoverStep can regenerate
// the same sequence for comparison.
func buildOutputs(height int64, start uint64, events []core.Event) []core.Output {
	outs := make([]core.Output, 0, len(events)+1)
	for _, evt := range events {
		outs = append(outs, core.Output{Kind: core.OutputEvent, Event: evt, Height: height, Start: start})
	}
	outs = append(outs, core.Output{Kind: core.OutputCommitMarker, Height: height, Start: start})
	return outs
}

func (e *Executor) commitStateWithMarker(ctx context.Context, height int64, eventsStart, eventsEnd uint64) (xhash.Digest, error) {
	marker := core.CommitMarker{
		StateHeight:       height,
		EventsHeight:      height,
		EventsCommitStart: eventsStart,
		EventsCommitLoc:   eventsEnd,
	}
	metaKey := core.CommitKey(height, eventsStart)
	if err := e.State.Update(ctx, metaKey, core.Value{Tag: core.KeyCommit, Commit: &marker}); err != nil {
		return xhash.Digest{}, fmt.Errorf("executor: stage commit marker: %w", err)
	}
	stateRoot, err := e.State.Commit(ctx, metaKey)
	if err != nil {
		return xhash.Digest{}, fmt.Errorf("executor: commit state: %w", err)
	}
	return stateRoot, nil
}
