package handlers

import (
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/economy"
	"github.com/tolelom/casinochain/layer"
)

func init() {
	layer.Register(core.InstrFundRecoveryPool, handleFundRecoveryPool)
	layer.Register(core.InstrRetireVaultDebt, handleRetireVaultDebt)
	layer.Register(core.InstrRetireWorstVaultDebt, handleRetireWorstVaultDebt)
}

// handleFundRecoveryPool is admin-gated: it injects amount chips into the
// house ledger, offsetting accumulated losses (spec.md §4.6, §4.7).
func handleFundRecoveryPool(ctx *layer.Context, ins core.Instruction) error {
	if !ctx.IsAdmin() {
		return core.NewCasinoError(ctx.Player, core.ErrUnauthorized, "fund recovery pool requires admin authorization")
	}
	req := ins.FundRecoveryPool
	if req.Amount == 0 {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "amount must be positive")
	}
	house, err := getHouse(ctx)
	if err != nil {
		return err
	}
	house.NetPnl += int64(req.Amount)
	house.TotalIssuance += req.Amount
	if err := saveHouse(ctx, house); err != nil {
		return err
	}
	ctx.Emit(core.Event{Type: core.EventChipsDeposited, Player: ctx.Player, Amount: req.Amount})
	return nil
}

// handleRetireVaultDebt is admin-gated: it writes off up to amount of a
// named vault's outstanding debt, recognizing the shortfall against the
// house ledger (spec.md §4.6, §4.7).
func handleRetireVaultDebt(ctx *layer.Context, ins core.Instruction) error {
	if !ctx.IsAdmin() {
		return core.NewCasinoError(ctx.Player, core.ErrUnauthorized, "retire vault debt requires admin authorization")
	}
	req := ins.RetireVaultDebt
	vault, err := getVault(ctx, req.Vault)
	if err != nil {
		return err
	}
	retired := economy.Repay(vault, req.Amount)
	if err := saveVault(ctx, vault); err != nil {
		return err
	}
	house, err := getHouse(ctx)
	if err != nil {
		return err
	}
	house.NetPnl -= int64(retired)
	if err := saveHouse(ctx, house); err != nil {
		return err
	}
	ctx.Emit(core.Event{Type: core.EventChipsDeposited, Player: req.Vault, Amount: retired, Data: map[string]string{"action": "retire_vault_debt"}})
	return nil
}

// handleRetireWorstVaultDebt is admin-gated: it scans every registered
// vault, picks the one with the highest current LTV, and writes off its
// entire outstanding debt against the house ledger (spec.md §4.6, §4.7).
func handleRetireWorstVaultDebt(ctx *layer.Context, ins core.Instruction) error {
	if !ctx.IsAdmin() {
		return core.NewCasinoError(ctx.Player, core.ErrUnauthorized, "retire worst vault debt requires admin authorization")
	}
	reg, err := getVaultRegistry(ctx)
	if err != nil {
		return err
	}
	pool, err := getAmmPool(ctx)
	if err != nil {
		return err
	}

	var worst *core.Vault
	var worstLtv uint64
	for _, owner := range reg.Owners {
		v, err := getVault(ctx, owner)
		if err != nil {
			continue
		}
		if v.DebtVusdt == 0 {
			continue
		}
		ltv := economy.CurrentLtvBps(v, pool)
		if worst == nil || ltv > worstLtv {
			worst, worstLtv = v, ltv
		}
	}
	if worst == nil {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "no vault carries outstanding debt")
	}

	retired := economy.Repay(worst, worst.DebtVusdt)
	if err := saveVault(ctx, worst); err != nil {
		return err
	}
	house, err := getHouse(ctx)
	if err != nil {
		return err
	}
	house.NetPnl -= int64(retired)
	if err := saveHouse(ctx, house); err != nil {
		return err
	}
	ctx.Emit(core.Event{Type: core.EventChipsDeposited, Player: worst.Owner, Amount: retired, Data: map[string]string{"action": "retire_worst_vault_debt"}})
	return nil
}
