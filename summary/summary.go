// Package summary verifies a core.Summary against a network identity,
// letting a non-validator trust a round's outcome without replaying it
// (spec.md §4.11).
package summary

import (
	"fmt"

	"github.com/tolelom/casinochain/codec"
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/crypto/bls"
	"github.com/tolelom/casinochain/internal/xhash"
	"github.com/tolelom/casinochain/storage"
)

// ProofResult carries the per-operation (position, digest) pairs a verified
// Summary yields, for the gateway to index against later point queries
// (spec.md §4.11 step 4).
type ProofResult struct {
	StatePositions  []uint64
	StateDigests    []xhash.Digest
	EventsPositions []uint64
	EventsDigests   []xhash.Digest
}

// Verify checks s against identity in the four steps spec.md §4.11
// requires: the certificate, the state proof, the events proof, then
// returns the position/digest pairs for both windows.
func Verify(identity bls.NetworkIdentity, s core.Summary) (ProofResult, error) {
	digest := s.Progress.Digest()
	if err := bls.Verify(identity, s.Certificate, digest); err != nil {
		return ProofResult{}, fmt.Errorf("summary: certificate verification: %w", err)
	}

	stateRoot, statePositions, stateDigests, err := replay(s.StateProof, s.Progress.StateStart, operationLeaves(s.StateOps))
	if err != nil {
		return ProofResult{}, fmt.Errorf("summary: state proof: %w", err)
	}
	if stateRoot != s.Progress.StateRoot {
		return ProofResult{}, fmt.Errorf("summary: state root mismatch: got %x want %x", stateRoot, s.Progress.StateRoot)
	}

	eventsRoot, eventsPositions, eventsDigests, err := replay(s.EventsProof, s.Progress.EventsStart, outputLeaves(s.EventsOps))
	if err != nil {
		return ProofResult{}, fmt.Errorf("summary: events proof: %w", err)
	}
	if eventsRoot != s.Progress.EventsRoot {
		return ProofResult{}, fmt.Errorf("summary: events root mismatch: got %x want %x", eventsRoot, s.Progress.EventsRoot)
	}

	return ProofResult{
		StatePositions:  statePositions,
		StateDigests:    stateDigests,
		EventsPositions: eventsPositions,
		EventsDigests:   eventsDigests,
	}, nil
}

// replay resumes an MMR from proof's peak frontier at startOp and appends
// leaves in order, returning the resulting root plus each leaf's absolute
// position and digest.
func replay(proof core.Proof, startOp uint64, leaves []xhash.Digest) (xhash.Digest, []uint64, []xhash.Digest, error) {
	peaks, err := storage.DecodeProof(proof)
	if err != nil {
		return xhash.Digest{}, nil, nil, fmt.Errorf("decode proof: %w", err)
	}
	mmr := storage.RestoreMMR(peaks, startOp)

	positions := make([]uint64, len(leaves))
	digests := make([]xhash.Digest, len(leaves))
	for i, leaf := range leaves {
		mmr.Append(leaf)
		positions[i] = startOp + uint64(i)
		digests[i] = leaf
	}
	return mmr.Root(), positions, digests, nil
}

func operationLeaves(ops []core.Operation) []xhash.Digest {
	leaves := make([]xhash.Digest, len(ops))
	for i, op := range ops {
		leaves[i] = xhash.Sum(codec.EncodeOperation(op))
	}
	return leaves
}

func outputLeaves(outs []core.Output) []xhash.Digest {
	leaves := make([]xhash.Digest, len(outs))
	for i, out := range outs {
		leaves[i] = xhash.Sum(codec.EncodeOutput(out))
	}
	return leaves
}
