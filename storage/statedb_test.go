package storage

import (
	"context"
	"testing"

	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/internal/testutil"
)

func TestStateStoreGetByAddrAndLocation(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewMemDB()
	s, err := OpenStateStore(db)
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}

	key := core.AccountKey([]byte("alice"))
	val := core.Value{Tag: core.KeyAccount, Account: &core.Account{PublicKey: []byte("alice"), Balance: 100}}

	if err := s.Update(ctx, key, val); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Commit(ctx, core.Key{Tag: core.KeyAccount}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	addr := key.Addr()
	got, ok, err := s.GetByAddr(addr)
	if err != nil || !ok {
		t.Fatalf("GetByAddr: ok=%v err=%v", ok, err)
	}
	if got.Account == nil || got.Account.Balance != 100 {
		t.Fatalf("GetByAddr returned wrong value: %+v", got)
	}

	// Get(ctx, key) must agree with GetByAddr(key.Addr()).
	viaKey, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if viaKey.Account.Balance != got.Account.Balance {
		t.Fatalf("Get/GetByAddr disagree: %+v vs %+v", viaKey, got)
	}

	loc, ok, err := s.LocationByAddr(addr)
	if err != nil || !ok {
		t.Fatalf("LocationByAddr: ok=%v err=%v", ok, err)
	}
	locViaKey, ok, err := s.Location(ctx, key)
	if err != nil || !ok || locViaKey != loc {
		t.Fatalf("Location/LocationByAddr disagree: %d vs %d (ok=%v err=%v)", locViaKey, loc, ok, err)
	}
}

func TestStateStoreGetByAddrMissing(t *testing.T) {
	db := testutil.NewMemDB()
	s, err := OpenStateStore(db)
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	key := core.AccountKey([]byte("nobody"))
	_, ok, err := s.GetByAddr(key.Addr())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no value for an address never written")
	}
}

func TestHistoricalProofGenesis(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewMemDB()
	s, err := OpenStateStore(db)
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}

	key := core.AccountKey([]byte("bob"))
	val := core.Value{Tag: core.KeyAccount, Account: &core.Account{PublicKey: []byte("bob"), Balance: 50}}
	if err := s.Update(ctx, key, val); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Commit(ctx, core.Key{Tag: core.KeyAccount}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// startOp == 0 is the genesis case: no snapshot was ever persisted at op
	// count 0, HistoricalProof must still succeed by synthesizing an empty
	// peak list rather than erroring out on a missing DB key.
	proof, ops, err := s.HistoricalProof(ctx, 0, 1, 1)
	if err != nil {
		t.Fatalf("HistoricalProof from genesis: %v", err)
	}
	if proof == nil {
		t.Fatalf("expected a non-nil genesis proof (empty peak list)")
	}
	if len(ops) != 1 || ops[0].Seq != 0 {
		t.Fatalf("unexpected ops: %+v", ops)
	}
	if !ops[0].HasValue || ops[0].Value.Account == nil || ops[0].Value.Account.Balance != 50 {
		t.Fatalf("replayed op has wrong value: %+v", ops[0])
	}
}
