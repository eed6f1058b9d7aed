package core

// GlobalTablePhase is the time-driven lifecycle stage of one round
// (spec.md §3, §4.8).
type GlobalTablePhase byte

const (
	PhaseBetting GlobalTablePhase = iota
	PhaseLocked
	PhaseRolling
	PhasePayout
	PhaseCooldown
)

// GlobalTableConfig holds the per-game phase durations and bet limits
// (spec.md §4.8).
type GlobalTableConfig struct {
	GameType        GameType
	BettingMs       int64
	LockMs          int64
	PayoutMs        int64
	CooldownMs      int64
	MinBet          uint64
	MaxBet          uint64
	MaxBetsPerRound uint32
}

// BetEntry is one aggregate bet recorded against a round's totals vector.
type BetEntry struct {
	Player  []byte
	BetType uint8
	Number  uint8
	Amount  uint64
}

// GlobalTableRound is the single active round for one game (spec.md §3).
type GlobalTableRound struct {
	GameType     GameType
	RoundID      uint64
	Phase        GlobalTablePhase
	PhaseEndsAt  int64 // unix ms
	RNGCommit    [32]byte
	HasCommit    bool
	RollSeed     [32]byte
	HasRollSeed  bool
	Totals       []BetEntry
	OutcomeValid bool
	Outcome      []byte // opaque per-game outcome encoding
}

// GlobalTablePlayerSession tracks at-most-once payout state per (game, player)
// (spec.md §4.8).
type GlobalTablePlayerSession struct {
	GameType         GameType
	Player           []byte
	LastSettledRound uint64
}
