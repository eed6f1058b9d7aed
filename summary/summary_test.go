package summary

import (
	"context"
	"testing"

	herumibls "github.com/herumi/bls-eth-go-binary/bls"
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/crypto/bls"
	"github.com/tolelom/casinochain/internal/testutil"
	"github.com/tolelom/casinochain/storage"
)

// buildTestRound commits one state write and one event through a real
// StateStore/EventStore pair, then certifies the resulting Progress with a
// single self-signing validator, producing a Summary exactly as
// cmd/executor's block driver would for a single-node deployment.
func buildTestRound(t *testing.T) (core.Summary, bls.NetworkIdentity) {
	t.Helper()
	ctx := context.Background()

	state, err := storage.OpenStateStore(testutil.NewMemDB())
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	events, err := storage.OpenEventStore(testutil.NewMemDB())
	if err != nil {
		t.Fatalf("open event store: %v", err)
	}

	key := core.AccountKey([]byte("alice"))
	val := core.Value{Tag: core.KeyAccount, Account: &core.Account{PublicKey: []byte("alice"), Balance: 10}}
	if err := state.Update(ctx, key, val); err != nil {
		t.Fatalf("state update: %v", err)
	}
	stateRoot, err := state.Commit(ctx, core.Key{Tag: core.KeyAccount})
	if err != nil {
		t.Fatalf("state commit: %v", err)
	}

	if _, err := events.Append(ctx, core.Output{Kind: core.OutputEvent, Event: core.Event{
		Type: core.EventChipsDeposited, Player: []byte("alice"), Amount: 10,
	}}); err != nil {
		t.Fatalf("event append: %v", err)
	}
	eventsRoot, err := events.Commit(ctx)
	if err != nil {
		t.Fatalf("event commit: %v", err)
	}

	progress := core.Progress{
		View:        1,
		Height:      1,
		StateRoot:   stateRoot,
		StateStart:  0,
		StateEnd:    state.OpCount(),
		EventsRoot:  eventsRoot,
		EventsStart: 0,
		EventsEnd:   events.OpCount(),
	}

	sk, pk := bls.GenerateKeyPair()
	identity := bls.NetworkIdentity{Validators: []herumibls.PublicKey{pk}, Threshold: 1}
	sig := bls.Sign(sk, progress.Digest())
	cert := core.Certificate{Signers: []byte{0x01}, Signature: sig}

	stateProof, stateOps, err := state.HistoricalProof(ctx, progress.StateStart, progress.StateEnd, progress.StateEnd-progress.StateStart)
	if err != nil {
		t.Fatalf("state historical proof: %v", err)
	}
	eventsProof, eventsOps, err := events.Range(ctx, progress.EventsStart, progress.EventsEnd)
	if err != nil {
		t.Fatalf("events range: %v", err)
	}

	return core.Summary{
		Progress:    progress,
		Certificate: cert,
		StateProof:  stateProof,
		StateOps:    stateOps,
		EventsProof: eventsProof,
		EventsOps:   eventsOps,
	}, identity
}

func TestVerifyAcceptsAGenuineSummary(t *testing.T) {
	s, identity := buildTestRound(t)
	result, err := Verify(identity, s)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(result.StatePositions) != 1 || result.StatePositions[0] != 0 {
		t.Fatalf("unexpected state positions: %v", result.StatePositions)
	}
	if len(result.EventsPositions) != 1 || result.EventsPositions[0] != 0 {
		t.Fatalf("unexpected events positions: %v", result.EventsPositions)
	}
}

func TestVerifyRejectsTamperedStateRoot(t *testing.T) {
	s, identity := buildTestRound(t)
	s.Progress.StateRoot[0] ^= 0xFF
	if _, err := Verify(identity, s); err == nil {
		t.Fatalf("expected verification to fail against a tampered state root")
	}
}

func TestVerifyRejectsBelowThresholdCertificate(t *testing.T) {
	s, identity := buildTestRound(t)
	identity.Threshold = 2 // only one signer ever contributed
	if _, err := Verify(identity, s); err == nil {
		t.Fatalf("expected verification to fail below threshold")
	}
}
