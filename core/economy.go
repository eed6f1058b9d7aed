package core

// StakingRewardScale is the fixed-point scale for the staking reward
// accumulator (spec.md §4.7).
const StakingRewardScale = 1_000_000_000_000_000_000 // 10^18

// HouseState is the global economy ledger (spec.md §4.7).
type HouseState struct {
	CurrentEpoch      uint64
	EpochStartTs       int64
	NetPnl             int64 // may be negative; denominated in chips. NOTE: kept as int64 rather than
	// a 128-bit type: Go has no native i128 and no example in the retrieval
	// pack imports a big-int-backed fixed-width type for this; big.Int would
	// lose the fixed-width codec guarantee spec.md §4.1 requires, so the
	// practical range of int64 is accepted here.
	TotalStakedAmount  uint64
	TotalVotingPower   uint64
	AccumulatedFees    uint64
	TotalBurned        uint64
	TotalIssuance      uint64

	StakingRewardPerVotingPowerX18 uint64
	StakingRewardPool              uint64
	StakingRewardCarry             uint64

	ThreeCardProgressiveJackpot uint64
	UthProgressiveJackpot       uint64
}

// Staker is one participant's staking position (spec.md §4.7).
type Staker struct {
	PublicKey   []byte
	Balance     uint64 // also the voting power for this staker
	RewardDebt  uint64
	UnlockTs    int64 // unix ms; withdrawal before this is rejected
}

// Vault is a collateralized-debt position against the RNG/vUSDT pair
// (spec.md §4.7).
type Vault struct {
	Owner          []byte
	CollateralRng  uint64
	DebtVusdt      uint64
	MaxLtvBps      uint32 // basis points, e.g. 6000 = 60%
}

// AmmPool is the constant-product RNG/vUSDT liquidity pool (spec.md §4.7).
type AmmPool struct {
	ReserveRng   uint64
	ReserveVusdt uint64
	TotalShares  uint64
}

// AmmLpPosition is one liquidity provider's share balance in the pool.
type AmmLpPosition struct {
	Owner  []byte
	Shares uint64
}
