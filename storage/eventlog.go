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
	eventPrefixEntry    = "evt:"  // 8-byte BE seq -> encoded Output
	eventPrefixSnapshot = "evsn:" // 8-byte BE op-count -> encoded peak list
	eventKeyMMRSize     = "evmmr:size"
	eventKeyMMRPeaks    = "evmmr:peaks"
	eventKeyCommitHeight = "evcommit:height" // 8-byte BE int64 bit pattern
	eventKeyCommitStart  = "evcommit:start"  // 8-byte BE uint64
)

// EventStore implements core.EventLog: an append-only, MMR-authenticated
// record of every Output a block's execution produces (spec.md §4.3).
// Appends are buffered until Commit, matching StateStore's flush idiom so
// the executor can guarantee events commit strictly before state.
//
// Alongside the MMR, EventStore persists its own trailing-commit-marker
// bookkeeping (commitHeight/commitStart/hasCommit) independent of anything
// State records, so the executor can detect events that committed for a
// height State never got to commit (spec.md §4.3, §4.10).
type EventStore struct {
	db      DB
	mmr     *MMR
	pending []core.Output

	commitHeight int64
	commitStart  uint64
	hasCommit    bool
}

// OpenEventStore opens (or creates) an EventStore backed by db.
func OpenEventStore(db DB) (*EventStore, error) {
	s := &EventStore{db: db}
	sizeBytes, err := db.Get([]byte(eventKeyMMRSize))
	if errors.Is(err, core.ErrNotFound) {
		s.mmr = NewMMR()
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read event mmr size: %w", err)
	}
	size := binary.BigEndian.Uint64(sizeBytes)
	peaksBytes, err := db.Get([]byte(eventKeyMMRPeaks))
	if err != nil {
		return nil, fmt.Errorf("read event mmr peaks: %w", err)
	}
	peaks, err := decodeDigests(peaksBytes)
	if err != nil {
		return nil, fmt.Errorf("decode event mmr peaks: %w", err)
	}
	s.mmr = RestoreMMR(peaks, size)

	heightBytes, err := db.Get([]byte(eventKeyCommitHeight))
	if errors.Is(err, core.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read event commit height: %w", err)
	}
	startBytes, err := db.Get([]byte(eventKeyCommitStart))
	if err != nil {
		return nil, fmt.Errorf("read event commit start: %w", err)
	}
	s.commitHeight = int64(binary.BigEndian.Uint64(heightBytes))
	s.commitStart = binary.BigEndian.Uint64(startBytes)
	s.hasCommit = true
	return s, nil
}

func (s *EventStore) Append(_ context.Context, out core.Output) (uint64, error) {
	seq := s.mmr.Size() + uint64(len(s.pending))
	s.pending = append(s.pending, out)
	return seq, nil
}

// Commit flushes every pending append into the DB and the MMR in order,
// returning the new root. If the batch includes a trailing commit-marker
// output (every block appends exactly one via buildOutputs), its
// height/start are persisted in the same atomic batch so CommitMarker can
// recover them independently of State (spec.md §4.3, §4.10).
func (s *EventStore) Commit(_ context.Context) (xhash.Digest, error) {
	batch := s.db.NewBatch()
	var markerHeight int64
	var markerStart uint64
	haveMarker := false
	for _, out := range s.pending {
		seq := s.mmr.Size()
		outBytes := codec.EncodeOutput(out)
		batch.Set([]byte(fmt.Sprintf("%s%020d", eventPrefixEntry, seq)), outBytes)
		s.mmr.Append(xhash.Sum(outBytes))
		if out.Kind == core.OutputCommitMarker {
			markerHeight = out.Height
			markerStart = out.Start
			haveMarker = true
		}
	}
	sizeBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(sizeBuf, s.mmr.Size())
	batch.Set([]byte(eventKeyMMRSize), sizeBuf)
	peaksBytes := encodeDigests(s.mmr.Peaks())
	batch.Set([]byte(eventKeyMMRPeaks), peaksBytes)
	batch.Set([]byte(fmt.Sprintf("%s%020d", eventPrefixSnapshot, s.mmr.Size())), peaksBytes)

	if haveMarker {
		heightBuf := make([]byte, 8)
		binary.BigEndian.PutUint64(heightBuf, uint64(markerHeight))
		batch.Set([]byte(eventKeyCommitHeight), heightBuf)
		startBuf := make([]byte, 8)
		binary.BigEndian.PutUint64(startBuf, markerStart)
		batch.Set([]byte(eventKeyCommitStart), startBuf)
	}

	if err := batch.Write(); err != nil {
		return xhash.Digest{}, fmt.Errorf("commit event batch: %w", err)
	}
	s.pending = nil
	if haveMarker {
		s.commitHeight = markerHeight
		s.commitStart = markerStart
		s.hasCommit = true
	}
	return s.mmr.Root(), nil
}

func (s *EventStore) Root() xhash.Digest { return s.mmr.Root() }

func (s *EventStore) OpCount() uint64 { return s.mmr.Size() }

// CommitMarker returns the height/start of the most recently committed
// block's trailing commit-marker output, as persisted by Commit above.
func (s *EventStore) CommitMarker(_ context.Context) (height int64, start uint64, ok bool, err error) {
	return s.commitHeight, s.commitStart, s.hasCommit, nil
}

// Range returns the committed outputs in [start, end) along with the peak
// snapshot as of start, mirroring StateStore.HistoricalProof's incremental
// proof shape (spec.md §4.3).
func (s *EventStore) Range(_ context.Context, start, end uint64) (core.Proof, []core.Output, error) {
	if end <= start {
		return nil, nil, fmt.Errorf("storage: end %d must exceed start %d", end, start)
	}
	var snapBytes []byte
	var err error
	if start == 0 {
		snapBytes = encodeDigests(nil) // genesis: empty MMR, no peaks, nothing to load
	} else {
		snapBytes, err = s.db.Get([]byte(fmt.Sprintf("%s%020d", eventPrefixSnapshot, start)))
		if err != nil {
			return nil, nil, fmt.Errorf("storage: no event snapshot at %d: %w", start, err)
		}
	}
	outs := make([]core.Output, 0, end-start)
	for seq := start; seq < end; seq++ {
		outBytes, err := s.db.Get([]byte(fmt.Sprintf("%s%020d", eventPrefixEntry, seq)))
		if err != nil {
			return nil, nil, fmt.Errorf("storage: read event %d: %w", seq, err)
		}
		out, err := codec.DecodeOutput(outBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: decode event %d: %w", seq, err)
		}
		outs = append(outs, out)
	}
	return core.Proof(snapBytes), outs, nil
}
