package core

// InstructionTag is the single-byte discriminant for an Instruction
// (spec.md §4.6).
type InstructionTag byte

const (
	InstrCasinoRegister InstructionTag = iota
	InstrCasinoDeposit
	InstrCasinoStartGame
	InstrCasinoGameMove
	InstrCasinoStartTournament
	InstrCasinoEndTournament
	InstrCasinoJoinTournament
	InstrFundRecoveryPool
	InstrRetireVaultDebt
	InstrRetireWorstVaultDebt
	InstrGlobalTableInit
	InstrGlobalTableOpenRound
	InstrGlobalTablePlaceBet
	InstrGlobalTableSettle
	InstrStake
	InstrUnstake
	InstrClaim
	InstrCreateVault
	InstrDepositCollateral
	InstrWithdrawCollateral
	InstrBorrow
	InstrRepay
	InstrLiquidate
	InstrAddLiquidity
	InstrRemoveLiquidity
	InstrSwapRngForUsdt
	InstrSwapUsdtForRng
)

// Instruction is the tagged union of every transaction payload body
// (spec.md §4.6). Exactly one typed field is populated for a given Tag.
type Instruction struct {
	Tag InstructionTag

	CasinoRegister         *CasinoRegister
	CasinoDeposit          *CasinoDeposit
	CasinoStartGame        *CasinoStartGame
	CasinoGameMove         *CasinoGameMove
	CasinoStartTournament  *CasinoStartTournament
	CasinoEndTournament    *CasinoEndTournament
	CasinoJoinTournament   *CasinoJoinTournament
	FundRecoveryPool       *FundRecoveryPool
	RetireVaultDebt        *RetireVaultDebt
	RetireWorstVaultDebt   *RetireWorstVaultDebt
	GlobalTableInit        *GlobalTableInit
	GlobalTableOpenRound   *GlobalTableOpenRound
	GlobalTablePlaceBet    *GlobalTablePlaceBet
	GlobalTableSettle      *GlobalTableSettle
	Stake                  *Stake
	Unstake                *Unstake
	Claim                  *Claim
	CreateVault            *CreateVault
	DepositCollateral      *DepositCollateral
	WithdrawCollateral     *WithdrawCollateral
	Borrow                 *Borrow
	Repay                  *Repay
	Liquidate              *Liquidate
	AddLiquidity           *AddLiquidity
	RemoveLiquidity        *RemoveLiquidity
	SwapRngForUsdt         *SwapRngForUsdt
	SwapUsdtForRng         *SwapUsdtForRng
}

type CasinoRegister struct{ Name string }
type CasinoDeposit struct{ Amount uint64 }
type CasinoStartGame struct {
	GameType  GameType
	Bet       uint64
	SessionID uint64
}
type CasinoGameMove struct {
	SessionID uint64
	Payload   []byte
}
type CasinoStartTournament struct{ TournamentID uint64 }
type CasinoEndTournament struct{ TournamentID uint64 }
type CasinoJoinTournament struct{ TournamentID uint64 }
type FundRecoveryPool struct{ Amount uint64 }
type RetireVaultDebt struct {
	Vault  []byte
	Amount uint64
}
type RetireWorstVaultDebt struct{}

type GlobalTableInit struct {
	GameType GameType
	Config   GlobalTableConfig
}
type GlobalTableOpenRound struct{ GameType GameType }
type GlobalTablePlaceBet struct {
	GameType GameType
	BetType  uint8
	Number   uint8
	Amount   uint64
}
type GlobalTableSettle struct{ GameType GameType }

type Stake struct {
	Amount   uint64
	LockDays uint32
}
type Unstake struct{ Amount uint64 }
type Claim struct{}
type CreateVault struct{ MaxLtvBps uint32 }
type DepositCollateral struct{ Amount uint64 }
type WithdrawCollateral struct{ Amount uint64 }
type Borrow struct{ Amount uint64 }
type Repay struct{ Amount uint64 }
type Liquidate struct{ Target []byte }
type AddLiquidity struct {
	RngAmount   uint64
	UsdtAmount  uint64
}
type RemoveLiquidity struct{ Shares uint64 }
type SwapRngForUsdt struct{ AmountIn uint64 }
type SwapUsdtForRng struct{ AmountIn uint64 }
