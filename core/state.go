package core

import (
	"context"

	"github.com/tolelom/casinochain/internal/xhash"
)

// Proof is an opaque membership/range proof produced by a State
// implementation's HistoricalProof (spec.md §4.2). Its shape is owned by the
// storage package; core only moves it around.
type Proof []byte

// Operation is one historical state mutation as replayed from the
// authenticated map's operation log, keyed by its monotonically increasing
// sequence number (spec.md §4.2).
type Operation struct {
	Seq    uint64
	Key    Key
	Value  Value // zero value with HasValue=false for a delete
	HasValue bool
}

// State is the authenticated key/value contract every block execution reads
// and writes through (spec.md §4.2). A single State is shared by a whole
// block: Update/Delete buffer into an in-memory write set until Commit
// flushes it and advances the root.
type State interface {
	// Get returns the current value for key, or ok=false if absent.
	Get(ctx context.Context, key Key) (value Value, ok bool, err error)

	// Update sets key to value in the pending write set.
	Update(ctx context.Context, key Key, value Value) error

	// Delete removes key from the pending write set.
	Delete(ctx context.Context, key Key) error

	// Commit flushes the pending write set, advances the operation counter,
	// and records metadata (typically a Commit marker key) alongside it.
	// Returns the new root digest.
	Commit(ctx context.Context, metadata Key) (xhash.Digest, error)

	// Root returns the current authenticated root without committing.
	Root() xhash.Digest

	// OpCount returns the total number of operations committed so far.
	OpCount() uint64

	// HistoricalProof returns a proof covering operations in [startOp, endOp)
	// up to maxOps entries, along with the operations themselves, so a
	// verifier can recompute intermediate roots (spec.md §4.2).
	HistoricalProof(ctx context.Context, startOp, endOp, maxOps uint64) (Proof, []Operation, error)

	// GetMetadata returns the most recently committed metadata value, if any.
	GetMetadata(ctx context.Context) (value Value, ok bool, err error)
}

// EventLog is the append-only, authenticated output log a block's execution
// writes to (spec.md §4.3). It shares the same operation-counter and proof
// shape as State but never supports Delete: outputs are immutable history.
type EventLog interface {
	// Append records out as the next entry and returns its sequence number.
	Append(ctx context.Context, out Output) (seq uint64, err error)

	// Commit flushes pending appends and returns the new root digest.
	Commit(ctx context.Context) (xhash.Digest, error)

	// Root returns the current authenticated root without committing.
	Root() xhash.Digest

	// OpCount returns the total number of entries committed so far.
	OpCount() uint64

	// Range returns the outputs in [start, end) along with a proof of their
	// inclusion (spec.md §4.3, used by summary verification).
	Range(ctx context.Context, start, end uint64) (Proof, []Output, error)

	// CommitMarker returns the height and events-start offset recorded by
	// the most recently committed block's trailing OutputCommitMarker, read
	// back from the log's own storage rather than from State's metadata.
	// This lets the executor tell whether events committed for a height the
	// state store has not yet committed, independent of State.GetMetadata
	// (spec.md §4.3, §4.10).
	CommitMarker(ctx context.Context) (height int64, start uint64, ok bool, err error)
}
