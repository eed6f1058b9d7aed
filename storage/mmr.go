package storage

import (
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/internal/xhash"
)

// peak is one node of the current Merkle Mountain Range frontier: a
// complete binary subtree of the given height whose root is Hash.
type peak struct {
	Height int
	Hash   xhash.Digest
}

// MMR is an append-only Merkle Mountain Range: leaves are pushed one at a
// time, same-height peaks are merged, and the root is the bagged hash of
// the remaining peaks. This is the authenticated structure backing both the
// state store's operation log and the event log (spec.md §4.2, §4.3),
// mirroring the accumulator shape used by the original implementation's
// commonware-storage adb.
type MMR struct {
	peaks []peak
	size  uint64 // number of leaves appended
}

// NewMMR returns an empty MMR.
func NewMMR() *MMR { return &MMR{} }

// Size returns the number of leaves appended so far.
func (m *MMR) Size() uint64 { return m.size }

// Peaks returns a copy of the current peak frontier, oldest-height-first.
func (m *MMR) Peaks() []xhash.Digest {
	out := make([]xhash.Digest, len(m.peaks))
	for i, p := range m.peaks {
		out[i] = p.Hash
	}
	return out
}

// Append adds leafHash as the next leaf and merges equal-height peaks.
func (m *MMR) Append(leafHash xhash.Digest) {
	p := peak{Height: 0, Hash: leafHash}
	for len(m.peaks) > 0 && m.peaks[len(m.peaks)-1].Height == p.Height {
		top := m.peaks[len(m.peaks)-1]
		m.peaks = m.peaks[:len(m.peaks)-1]
		p = peak{Height: p.Height + 1, Hash: xhash.SumPair(top.Hash, p.Hash)}
	}
	m.peaks = append(m.peaks, p)
	m.size++
}

// Root bags the current peaks (right to left) into a single digest, salted
// with the leaf count so two different-sized MMRs with coincidentally equal
// peak sets never collide.
func (m *MMR) Root() xhash.Digest {
	if len(m.peaks) == 0 {
		return xhash.Sum([]byte("empty-mmr"))
	}
	acc := m.peaks[len(m.peaks)-1].Hash
	for i := len(m.peaks) - 2; i >= 0; i-- {
		acc = xhash.SumPair(m.peaks[i].Hash, acc)
	}
	sizeBuf := make([]byte, 8)
	sz := m.size
	for i := 7; i >= 0; i-- {
		sizeBuf[i] = byte(sz)
		sz >>= 8
	}
	return xhash.SumPair(acc, xhash.Sum(sizeBuf))
}

// RestoreMMR rebuilds an MMR from a previously persisted peak frontier and
// leaf count, used when reopening a store (spec.md §2 crash-consistency).
func RestoreMMR(peaks []xhash.Digest, size uint64) *MMR {
	m := &MMR{size: size}
	// Peak heights are recoverable from size: the MMR peak decomposition of
	// size leaves is exactly the binary representation of size, most
	// significant bit first producing the largest (leftmost) peak.
	heights := peakHeights(size)
	for i, h := range heights {
		m.peaks = append(m.peaks, peak{Height: h, Hash: peaks[i]})
	}
	return m
}

// DecodeProof parses a core.Proof produced by Commit/HistoricalProof/Range
// (a peak-frontier snapshot) back into its digest list, so a verifier can
// resume an MMR from it via RestoreMMR without depending on this package's
// on-disk key layout (spec.md §4.11).
func DecodeProof(p core.Proof) ([]xhash.Digest, error) {
	return decodeDigests([]byte(p))
}

// peakHeights returns the height of each peak, left to right, for an MMR
// holding n leaves: one peak per set bit of n, from most to least significant.
func peakHeights(n uint64) []int {
	var heights []int
	for bit := 63; bit >= 0; bit-- {
		if n&(1<<uint(bit)) != 0 {
			heights = append(heights, bit)
		}
	}
	return heights
}
