// Package rng derives a per-move pseudorandom stream for casino game logic
// from the block's consensus seed, so every validator and every replaying
// verifier produces the exact same sequence of outcomes (spec.md §4.4).
package rng

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/crypto/blake2b"
)

// GameRng is a counter-mode pseudorandom function seeded from
// (consensus seed, session ID, move index). Each NextU64 call advances an
// internal counter, so a session replayed from the same inputs always
// produces the same moves regardless of how many values a prior move drew.
type GameRng struct {
	seed      [32]byte
	sessionID uint64
	moveIndex uint64
	counter   uint64
}

// NewGameRng derives a fresh stream for one (seed, session, move).
func NewGameRng(seed [32]byte, sessionID, moveIndex uint64) *GameRng {
	return &GameRng{seed: seed, sessionID: sessionID, moveIndex: moveIndex}
}

// NextU64 returns the next pseudorandom 64-bit value in the stream.
func (g *GameRng) NextU64() uint64 {
	var in [40]byte
	copy(in[:32], g.seed[:])
	binary.BigEndian.PutUint64(in[32:], g.counter)
	g.counter++

	h := blake2b.Sum256(appendDomain(in[:], g.sessionID, g.moveIndex))
	return binary.BigEndian.Uint64(h[:8])
}

func appendDomain(in []byte, sessionID, moveIndex uint64) []byte {
	var tail [16]byte
	binary.BigEndian.PutUint64(tail[:8], sessionID)
	binary.BigEndian.PutUint64(tail[8:], moveIndex)
	return append(in, tail[:]...)
}

// Range returns a uniform value in [0, n) via rejection sampling against the
// 64-bit output space, avoiding modulo bias (spec.md §4.4).
func (g *GameRng) Range(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	// Largest multiple of n that fits in 64 bits; draws landing above it are
	// rejected and redrawn so every remainder class in [0,n) is equally likely.
	limit := (^uint64(0) / n) * n
	for {
		v := g.NextU64()
		if v < limit || limit == 0 {
			return v % n
		}
	}
}

// RollDie returns a value in [1, 6], the primitive behind every Sic Bo die.
func (g *GameRng) RollDie() uint8 {
	return uint8(g.Range(6)) + 1
}

// DrawCard draws a uniform card index in [0, 52) excluding any index already
// present in used, appending the drawn index to used before returning it.
// This mirrors original_source's execution/src/casino/cards.rs draw-without-
// replacement helper shared by every card game (SPEC_FULL.md §8).
func DrawCard(g *GameRng, used []uint8) (uint8, []uint8) {
	remaining := 52 - len(used)
	if remaining <= 0 {
		return 0, used
	}
	pick := uint8(g.Range(uint64(remaining)))
	card := nthUnused(pick, used)
	return card, append(used, card)
}

func nthUnused(n uint8, used []uint8) uint8 {
	mask := uint64(0)
	for _, c := range used {
		mask |= 1 << uint(c)
	}
	var card uint8
	for count := 0; card < 52; card++ {
		if mask&(1<<uint(card)) != 0 {
			continue
		}
		if uint8(count) == n {
			return card
		}
		count++
	}
	return card
}

// PopCount is exported for tests that verify DrawCard never returns a
// duplicate by checking the used-mask cardinality against draw count.
func PopCount(used []uint8) int {
	mask := uint64(0)
	for _, c := range used {
		mask |= 1 << uint(c)
	}
	return bits.OnesCount64(mask)
}
