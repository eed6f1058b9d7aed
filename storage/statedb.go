package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tolelom/casinochain/codec"
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/internal/xhash"
)

const (
	prefixCurrent  = "cur:" // addr -> encoded current Value
	prefixOp       = "op:"  // 8-byte BE seq -> encoded Operation
	prefixSnapshot = "snp:" // 8-byte BE op-count -> encoded peak list
	prefixLocation = "loc:" // addr -> 8-byte BE seq of its most recent op ("locations_journal", spec.md §6)
	keyMMRSize     = "mmr:size"
	keyMMRPeaks    = "mmr:peaks"
	keyMetadata    = "meta:key"
)

// StateStore implements core.State on top of a DB, keeping an authenticated
// operation log (an MMR over each Update/Delete) alongside a flat current-
// value index for O(1) Get, mirroring the write-buffer-then-flush idiom the
// rest of this codebase uses for commits.
type StateStore struct {
	db      DB
	mmr     *MMR
	dirty   map[xhash.Digest]core.Value
	dirtyKeys map[xhash.Digest]core.Key
	deleted map[xhash.Digest]bool
}

// OpenStateStore opens (or creates) a StateStore backed by db, restoring the
// MMR frontier from a prior run if present.
func OpenStateStore(db DB) (*StateStore, error) {
	s := &StateStore{
		db:        db,
		dirty:     make(map[xhash.Digest]core.Value),
		dirtyKeys: make(map[xhash.Digest]core.Key),
		deleted:   make(map[xhash.Digest]bool),
	}
	sizeBytes, err := db.Get([]byte(keyMMRSize))
	if errors.Is(err, core.ErrNotFound) {
		s.mmr = NewMMR()
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mmr size: %w", err)
	}
	size := binary.BigEndian.Uint64(sizeBytes)
	peaksBytes, err := db.Get([]byte(keyMMRPeaks))
	if err != nil {
		return nil, fmt.Errorf("read mmr peaks: %w", err)
	}
	peaks, err := decodeDigests(peaksBytes)
	if err != nil {
		return nil, fmt.Errorf("decode mmr peaks: %w", err)
	}
	s.mmr = RestoreMMR(peaks, size)
	return s, nil
}

func (s *StateStore) Get(_ context.Context, key core.Key) (core.Value, bool, error) {
	return s.GetByAddr(key.Addr())
}

// GetByAddr looks up a value by its raw store address, bypassing the Key
// reconstruction Get requires: the gateway's GET /state/{hex(Digest)}
// handler only ever has the address a client asked about, never the Key
// that produced it.
func (s *StateStore) GetByAddr(addr xhash.Digest) (core.Value, bool, error) {
	if s.deleted[addr] {
		return core.Value{}, false, nil
	}
	if v, ok := s.dirty[addr]; ok {
		return v, true, nil
	}
	data, err := s.db.Get([]byte(prefixCurrent + string(addr[:])))
	if errors.Is(err, core.ErrNotFound) {
		return core.Value{}, false, nil
	}
	if err != nil {
		return core.Value{}, false, err
	}
	v, err := codec.DecodeValue(data)
	if err != nil {
		return core.Value{}, false, fmt.Errorf("decode value at %x: %w", addr, err)
	}
	return v, true, nil
}

func (s *StateStore) Update(_ context.Context, key core.Key, value core.Value) error {
	addr := key.Addr()
	delete(s.deleted, addr)
	s.dirty[addr] = value
	s.dirtyKeys[addr] = key
	return nil
}

func (s *StateStore) Delete(_ context.Context, key core.Key) error {
	addr := key.Addr()
	delete(s.dirty, addr)
	s.dirtyKeys[addr] = key
	s.deleted[addr] = true
	return nil
}

// Commit flushes the pending write set in a stable order (ascending by
// address) so the operation log and resulting root are deterministic
// regardless of map iteration order, appends a metadata marker, then writes
// everything to the DB in one batch (spec.md §4.2, §2 crash-consistency).
func (s *StateStore) Commit(_ context.Context, metadata core.Key) (xhash.Digest, error) {
	addrs := make([]xhash.Digest, 0, len(s.dirty)+len(s.deleted))
	seen := make(map[xhash.Digest]bool)
	for a := range s.dirty {
		if !seen[a] {
			addrs = append(addrs, a)
			seen[a] = true
		}
	}
	for a := range s.deleted {
		if !seen[a] {
			addrs = append(addrs, a)
			seen[a] = true
		}
	}
	sortDigests(addrs)

	batch := s.db.NewBatch()
	for _, addr := range addrs {
		key := s.dirtyKeys[addr]
		op := core.Operation{Seq: s.mmr.Size(), Key: key}
		if v, ok := s.dirty[addr]; ok {
			op.Value = v
			op.HasValue = true
			batch.Set([]byte(prefixCurrent+string(addr[:])), codec.EncodeValue(v))
		} else {
			batch.Delete([]byte(prefixCurrent + string(addr[:])))
		}
		opBytes := codec.EncodeOperation(op)
		batch.Set([]byte(fmt.Sprintf("%s%020d", prefixOp, op.Seq)), opBytes)
		s.mmr.Append(xhash.Sum(opBytes))

		locBuf := make([]byte, 8)
		binary.BigEndian.PutUint64(locBuf, op.Seq)
		batch.Set([]byte(prefixLocation+string(addr[:])), locBuf)
	}

	metaBytes := codec.EncodeKey(metadata)
	batch.Set([]byte(keyMetadata), metaBytes)

	sizeBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(sizeBuf, s.mmr.Size())
	batch.Set([]byte(keyMMRSize), sizeBuf)
	peaksBytes := encodeDigests(s.mmr.Peaks())
	batch.Set([]byte(keyMMRPeaks), peaksBytes)
	batch.Set([]byte(fmt.Sprintf("%s%020d", prefixSnapshot, s.mmr.Size())), peaksBytes)

	if err := batch.Write(); err != nil {
		return xhash.Digest{}, fmt.Errorf("commit state batch: %w", err)
	}

	s.dirty = make(map[xhash.Digest]core.Value)
	s.dirtyKeys = make(map[xhash.Digest]core.Key)
	s.deleted = make(map[xhash.Digest]bool)
	return s.mmr.Root(), nil
}

func (s *StateStore) Root() xhash.Digest { return s.mmr.Root() }

func (s *StateStore) OpCount() uint64 { return s.mmr.Size() }

// HistoricalProof returns the committed operations in [startOp, endOp),
// capped at maxOps, along with the peak snapshot as of startOp so a verifier
// can resume the MMR from a root they already trust and replay forward
// (spec.md §4.2). startOp must be a previously committed op count.
func (s *StateStore) HistoricalProof(_ context.Context, startOp, endOp, maxOps uint64) (core.Proof, []core.Operation, error) {
	if endOp <= startOp {
		return nil, nil, fmt.Errorf("storage: endOp %d must exceed startOp %d", endOp, startOp)
	}
	if endOp-startOp > maxOps {
		endOp = startOp + maxOps
	}
	var snapBytes []byte
	var err error
	if startOp == 0 {
		snapBytes = encodeDigests(nil) // genesis: empty MMR, no peaks, nothing to load
	} else {
		snapBytes, err = s.db.Get([]byte(fmt.Sprintf("%s%020d", prefixSnapshot, startOp)))
		if err != nil {
			return nil, nil, fmt.Errorf("storage: no snapshot at op %d: %w", startOp, err)
		}
	}
	ops := make([]core.Operation, 0, endOp-startOp)
	for seq := startOp; seq < endOp; seq++ {
		opBytes, err := s.db.Get([]byte(fmt.Sprintf("%s%020d", prefixOp, seq)))
		if err != nil {
			return nil, nil, fmt.Errorf("storage: read op %d: %w", seq, err)
		}
		op, err := codec.DecodeOperation(opBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: decode op %d: %w", seq, err)
		}
		ops = append(ops, op)
	}
	return core.Proof(snapBytes), ops, nil
}

// Location returns the op sequence of key's most recent committed write, so
// the gateway's GET /state/{digest} handler can build a Lookup's proof
// around it without a linear scan (spec.md §6 locations_journal).
func (s *StateStore) Location(_ context.Context, key core.Key) (uint64, bool, error) {
	return s.LocationByAddr(key.Addr())
}

// LocationByAddr is Location's address-keyed counterpart, used wherever only
// the raw store address is available (spec.md §6 locations_journal).
func (s *StateStore) LocationByAddr(addr xhash.Digest) (uint64, bool, error) {
	data, err := s.db.Get([]byte(prefixLocation + string(addr[:])))
	if errors.Is(err, core.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return binary.BigEndian.Uint64(data), true, nil
}

func (s *StateStore) GetMetadata(ctx context.Context) (core.Value, bool, error) {
	metaBytes, err := s.db.Get([]byte(keyMetadata))
	if errors.Is(err, core.ErrNotFound) {
		return core.Value{}, false, nil
	}
	if err != nil {
		return core.Value{}, false, err
	}
	key, err := codec.DecodeKey(metaBytes)
	if err != nil {
		return core.Value{}, false, fmt.Errorf("decode metadata key: %w", err)
	}
	return s.Get(ctx, key)
}

func encodeDigests(ds []xhash.Digest) []byte {
	buf := make([]byte, 4, 4+len(ds)*xhash.Size)
	binary.BigEndian.PutUint32(buf, uint32(len(ds)))
	for _, d := range ds {
		buf = append(buf, d[:]...)
	}
	return buf
}

func decodeDigests(data []byte) ([]xhash.Digest, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("storage: truncated digest list")
	}
	n := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	if uint64(len(data)) != uint64(n)*xhash.Size {
		return nil, fmt.Errorf("storage: digest list length mismatch")
	}
	out := make([]xhash.Digest, n)
	for i := range out {
		copy(out[i][:], data[i*xhash.Size:(i+1)*xhash.Size])
	}
	return out, nil
}

func sortDigests(ds []xhash.Digest) {
	// insertion sort: commit batches are small (one block's write set)
	for i := 1; i < len(ds); i++ {
		for j := i; j > 0 && lessDigest(ds[j], ds[j-1]); j-- {
			ds[j], ds[j-1] = ds[j-1], ds[j]
		}
	}
}

func lessDigest(a, b xhash.Digest) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
