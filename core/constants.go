package core

// Protocol-wide constants named by spec.md §4.6 but not otherwise typed.
const (
	// InitialChips is the starting balance credited by CasinoRegister.
	InitialChips = 1_000

	// MaxPlayerNameLen is CasinoRegister's name length ceiling.
	MaxPlayerNameLen = 32

	// FaucetCap bounds a single CasinoDeposit's credited amount.
	FaucetCap = 5_000

	// FaucetMinAccountAgeMs is the minimum age (RegisteredAt vs now) a
	// player's account must have before the faucet will pay out.
	FaucetMinAccountAgeMs = 24 * 3600 * 1000

	// FaucetMinCompletedSessions is the minimum CompletedSessions count
	// required before the faucet will pay out.
	FaucetMinCompletedSessions = 3

	// FaucetCooldownBlocks is the minimum number of blocks that must elapse
	// between successful faucet deposits for one player.
	FaucetCooldownBlocks = 100

	// TournamentJoinCooldownMs is the minimum interval between a player's
	// successive CasinoJoinTournament instructions.
	TournamentJoinCooldownMs = 5 * 60 * 1000

	// DailyWindowMs is the rolling window DailyTournamentJoins is counted
	// against before it resets.
	DailyWindowMs = 24 * 3600 * 1000
)
