package core

import "github.com/tolelom/casinochain/internal/xhash"

// Progress is the STF's per-round input/output tuple (spec.md §4.9, §4.11).
// Consensus (external to this module) is responsible for ordering rounds and
// agreeing on ParentDigest, View, and Height; the layer only ever consumes
// an already-ordered Progress plus its transactions and seed.
type Progress struct {
	View         uint64
	Height       int64
	ParentDigest xhash.Digest

	StateRoot    xhash.Digest
	StateStart   uint64
	StateEnd     uint64

	EventsRoot  xhash.Digest
	EventsStart uint64
	EventsEnd   uint64
}

// Digest returns the canonical hash of p's fields, used as the next round's
// ParentDigest and as the value certified by a Summary.
func (p Progress) Digest() xhash.Digest {
	buf := make([]byte, 0, 128)
	buf = appendUint64(buf, p.View)
	buf = appendInt64(buf, p.Height)
	buf = append(buf, p.ParentDigest[:]...)
	buf = append(buf, p.StateRoot[:]...)
	buf = appendUint64(buf, p.StateStart)
	buf = appendUint64(buf, p.StateEnd)
	buf = append(buf, p.EventsRoot[:]...)
	buf = appendUint64(buf, p.EventsStart)
	buf = appendUint64(buf, p.EventsEnd)
	return xhash.Sum(buf)
}

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return append(buf, b[:]...)
}

func appendInt64(buf []byte, v int64) []byte {
	return appendUint64(buf, uint64(v))
}
