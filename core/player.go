package core

// MaxAuraMeter is the inclusive upper bound of CasinoPlayer.AuraMeter (§3).
const MaxAuraMeter = 5

// MembershipTier gates the daily tournament-join cap (spec.md §4.6).
type MembershipTier uint8

const (
	TierFree MembershipTier = iota
	TierTrial
	TierMember
)

// DailyTournamentJoinCap returns the per-tier daily join allowance.
func (t MembershipTier) DailyTournamentJoinCap() uint32 {
	switch t {
	case TierTrial:
		return 3
	case TierMember:
		return 10
	default:
		return 1
	}
}

// VestingEntry is one tranche of freeroll credits unlocking over time.
type VestingEntry struct {
	Amount    uint64
	UnlocksAt int64 // unix ms
}

// TournamentStats tracks a player's aggregate tournament participation,
// including the ELO-style rating carried over from original_source's
// execution/src/elo.rs (supplemented per SPEC_FULL.md §8).
type TournamentStats struct {
	Played int64
	Won    int64
	Rating int64 // ELO-style rating, default 1000 for a fresh player
}

// CasinoPlayer is a registered casino account: chips, freeroll credit
// balances with vesting, tournament stats, and the cosmetic aura meter.
type CasinoPlayer struct {
	PublicKey            []byte
	Name                 string
	Chips                uint64
	FreerollCredits       uint64 // unlocked
	FreerollCreditsLocked uint64
	Vesting              []VestingEntry
	Stats                TournamentStats
	AuraMeter            uint8 // range [0, MaxAuraMeter]
	RegisteredAt         int64
	LastDepositAt        int64
	LastDepositHeight    int64
	CompletedSessions    uint64

	// Membership and tournament rate-limit state: appended fields, defaulted
	// to zero (TierFree, never joined) by the codec's additive-evolution
	// rule when decoding an older-version blob.
	MembershipTier          MembershipTier
	LastTournamentJoinAt    int64 // unix ms
	DailyTournamentJoins    uint32
	DailyTournamentWindowAt int64 // unix ms marking the start of the current 24h window

	// VusdtBalance is a player's off-pool vUSDT holding, the counterpart
	// asset AddLiquidity/RemoveLiquidity and the swap instructions move
	// chips against (spec.md §4.7 names vUSDT as the AMM's quote asset but
	// does not otherwise type a player-facing balance for it).
	VusdtBalance uint64
}

// ClampAura range-checks and clamps v into [0, MaxAuraMeter].
func ClampAura(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > MaxAuraMeter {
		return MaxAuraMeter
	}
	return uint8(v)
}
