package codec

import "github.com/tolelom/casinochain/core"

// EncodeInstruction writes the canonical encoding of ins (spec.md §4.1, §4.6).
func EncodeInstruction(w *Writer, ins core.Instruction) {
	w.WriteByte(byte(ins.Tag))
	switch ins.Tag {
	case core.InstrCasinoRegister:
		w.WriteString(ins.CasinoRegister.Name)
	case core.InstrCasinoDeposit:
		w.WriteU64(ins.CasinoDeposit.Amount)
	case core.InstrCasinoStartGame:
		g := ins.CasinoStartGame
		w.WriteString(string(g.GameType))
		w.WriteU64(g.Bet)
		w.WriteU64(g.SessionID)
	case core.InstrCasinoGameMove:
		m := ins.CasinoGameMove
		w.WriteU64(m.SessionID)
		w.WriteBytes(m.Payload)
	case core.InstrCasinoStartTournament:
		w.WriteU64(ins.CasinoStartTournament.TournamentID)
	case core.InstrCasinoEndTournament:
		w.WriteU64(ins.CasinoEndTournament.TournamentID)
	case core.InstrCasinoJoinTournament:
		w.WriteU64(ins.CasinoJoinTournament.TournamentID)
	case core.InstrFundRecoveryPool:
		w.WriteU64(ins.FundRecoveryPool.Amount)
	case core.InstrRetireVaultDebt:
		r := ins.RetireVaultDebt
		w.WriteBytes(r.Vault)
		w.WriteU64(r.Amount)
	case core.InstrRetireWorstVaultDebt:
	case core.InstrGlobalTableInit:
		g := ins.GlobalTableInit
		w.WriteString(string(g.GameType))
		writeGlobalTableConfig(w, &g.Config)
	case core.InstrGlobalTableOpenRound:
		w.WriteString(string(ins.GlobalTableOpenRound.GameType))
	case core.InstrGlobalTablePlaceBet:
		b := ins.GlobalTablePlaceBet
		w.WriteString(string(b.GameType))
		w.WriteU8(b.BetType)
		w.WriteU8(b.Number)
		w.WriteU64(b.Amount)
	case core.InstrGlobalTableSettle:
		w.WriteString(string(ins.GlobalTableSettle.GameType))
	case core.InstrStake:
		s := ins.Stake
		w.WriteU64(s.Amount)
		w.WriteU32(s.LockDays)
	case core.InstrUnstake:
		w.WriteU64(ins.Unstake.Amount)
	case core.InstrClaim:
	case core.InstrCreateVault:
		w.WriteU32(ins.CreateVault.MaxLtvBps)
	case core.InstrDepositCollateral:
		w.WriteU64(ins.DepositCollateral.Amount)
	case core.InstrWithdrawCollateral:
		w.WriteU64(ins.WithdrawCollateral.Amount)
	case core.InstrBorrow:
		w.WriteU64(ins.Borrow.Amount)
	case core.InstrRepay:
		w.WriteU64(ins.Repay.Amount)
	case core.InstrLiquidate:
		w.WriteBytes(ins.Liquidate.Target)
	case core.InstrAddLiquidity:
		a := ins.AddLiquidity
		w.WriteU64(a.RngAmount)
		w.WriteU64(a.UsdtAmount)
	case core.InstrRemoveLiquidity:
		w.WriteU64(ins.RemoveLiquidity.Shares)
	case core.InstrSwapRngForUsdt:
		w.WriteU64(ins.SwapRngForUsdt.AmountIn)
	case core.InstrSwapUsdtForRng:
		w.WriteU64(ins.SwapUsdtForRng.AmountIn)
	}
}

// DecodeInstruction parses the encoding written by EncodeInstruction.
func DecodeInstruction(r *Reader) (core.Instruction, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return core.Instruction{}, err
	}
	tag := core.InstructionTag(tagByte)
	ins := core.Instruction{Tag: tag}
	switch tag {
	case core.InstrCasinoRegister:
		name, err := r.ReadString()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.CasinoRegister = &core.CasinoRegister{Name: name}
	case core.InstrCasinoDeposit:
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.CasinoDeposit = &core.CasinoDeposit{Amount: amt}
	case core.InstrCasinoStartGame:
		gt, err := r.ReadString()
		if err != nil {
			return core.Instruction{}, err
		}
		bet, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		sid, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.CasinoStartGame = &core.CasinoStartGame{GameType: core.GameType(gt), Bet: bet, SessionID: sid}
	case core.InstrCasinoGameMove:
		sid, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		payload, err := r.ReadBytes()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.CasinoGameMove = &core.CasinoGameMove{SessionID: sid, Payload: payload}
	case core.InstrCasinoStartTournament:
		id, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.CasinoStartTournament = &core.CasinoStartTournament{TournamentID: id}
	case core.InstrCasinoEndTournament:
		id, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.CasinoEndTournament = &core.CasinoEndTournament{TournamentID: id}
	case core.InstrCasinoJoinTournament:
		id, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.CasinoJoinTournament = &core.CasinoJoinTournament{TournamentID: id}
	case core.InstrFundRecoveryPool:
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.FundRecoveryPool = &core.FundRecoveryPool{Amount: amt}
	case core.InstrRetireVaultDebt:
		vault, err := r.ReadBytes()
		if err != nil {
			return core.Instruction{}, err
		}
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.RetireVaultDebt = &core.RetireVaultDebt{Vault: vault, Amount: amt}
	case core.InstrRetireWorstVaultDebt:
		ins.RetireWorstVaultDebt = &core.RetireWorstVaultDebt{}
	case core.InstrGlobalTableInit:
		gt, err := r.ReadString()
		if err != nil {
			return core.Instruction{}, err
		}
		cfg, err := readGlobalTableConfig(r)
		if err != nil {
			return core.Instruction{}, err
		}
		ins.GlobalTableInit = &core.GlobalTableInit{GameType: core.GameType(gt), Config: *cfg}
	case core.InstrGlobalTableOpenRound:
		gt, err := r.ReadString()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.GlobalTableOpenRound = &core.GlobalTableOpenRound{GameType: core.GameType(gt)}
	case core.InstrGlobalTablePlaceBet:
		gt, err := r.ReadString()
		if err != nil {
			return core.Instruction{}, err
		}
		bt, err := r.ReadU8()
		if err != nil {
			return core.Instruction{}, err
		}
		num, err := r.ReadU8()
		if err != nil {
			return core.Instruction{}, err
		}
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.GlobalTablePlaceBet = &core.GlobalTablePlaceBet{GameType: core.GameType(gt), BetType: bt, Number: num, Amount: amt}
	case core.InstrGlobalTableSettle:
		gt, err := r.ReadString()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.GlobalTableSettle = &core.GlobalTableSettle{GameType: core.GameType(gt)}
	case core.InstrStake:
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		days, err := r.ReadU32()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.Stake = &core.Stake{Amount: amt, LockDays: days}
	case core.InstrUnstake:
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.Unstake = &core.Unstake{Amount: amt}
	case core.InstrClaim:
		ins.Claim = &core.Claim{}
	case core.InstrCreateVault:
		ltv, err := r.ReadU32()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.CreateVault = &core.CreateVault{MaxLtvBps: ltv}
	case core.InstrDepositCollateral:
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.DepositCollateral = &core.DepositCollateral{Amount: amt}
	case core.InstrWithdrawCollateral:
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.WithdrawCollateral = &core.WithdrawCollateral{Amount: amt}
	case core.InstrBorrow:
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.Borrow = &core.Borrow{Amount: amt}
	case core.InstrRepay:
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.Repay = &core.Repay{Amount: amt}
	case core.InstrLiquidate:
		target, err := r.ReadBytes()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.Liquidate = &core.Liquidate{Target: target}
	case core.InstrAddLiquidity:
		rng, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		usdt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.AddLiquidity = &core.AddLiquidity{RngAmount: rng, UsdtAmount: usdt}
	case core.InstrRemoveLiquidity:
		shares, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.RemoveLiquidity = &core.RemoveLiquidity{Shares: shares}
	case core.InstrSwapRngForUsdt:
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.SwapRngForUsdt = &core.SwapRngForUsdt{AmountIn: amt}
	case core.InstrSwapUsdtForRng:
		amt, err := r.ReadU64()
		if err != nil {
			return core.Instruction{}, err
		}
		ins.SwapUsdtForRng = &core.SwapUsdtForRng{AmountIn: amt}
	default:
		return core.Instruction{}, ErrInvalidEnum
	}
	return ins, nil
}
