package core

import (
	"bytes"
	"sort"
)

// LeaderboardSize is the maximum number of entries kept (spec.md §3).
const LeaderboardSize = 10

// LeaderboardEntry is one ranked player on the global leaderboard.
type LeaderboardEntry struct {
	Player []byte
	Name   string
	Chips  uint64
	Rank   int // 1-based position
}

// Leaderboard is the bounded, ranked top-chips board.
type Leaderboard struct {
	Entries []LeaderboardEntry
}

// Update inserts or replaces player's standing and re-sorts, truncating to
// LeaderboardSize and renumbering ranks. Ties are broken by ascending
// public-key bytes (spec.md §3, §8 testable property).
func (l *Leaderboard) Update(player []byte, name string, chips uint64) {
	found := false
	for i := range l.Entries {
		if bytes.Equal(l.Entries[i].Player, player) {
			l.Entries[i].Name = name
			l.Entries[i].Chips = chips
			found = true
			break
		}
	}
	if !found {
		l.Entries = append(l.Entries, LeaderboardEntry{Player: player, Name: name, Chips: chips})
	}

	sort.SliceStable(l.Entries, func(i, j int) bool {
		a, b := l.Entries[i], l.Entries[j]
		if a.Chips != b.Chips {
			return a.Chips > b.Chips
		}
		return bytes.Compare(a.Player, b.Player) < 0
	})
	if len(l.Entries) > LeaderboardSize {
		l.Entries = l.Entries[:LeaderboardSize]
	}
	for i := range l.Entries {
		l.Entries[i].Rank = i + 1
	}
}
