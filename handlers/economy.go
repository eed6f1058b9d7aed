package handlers

import (
	"errors"

	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/economy"
	"github.com/tolelom/casinochain/layer"
)

func init() {
	layer.Register(core.InstrStake, handleStake)
	layer.Register(core.InstrUnstake, handleUnstake)
	layer.Register(core.InstrClaim, handleClaim)
	layer.Register(core.InstrCreateVault, handleCreateVault)
	layer.Register(core.InstrDepositCollateral, handleDepositCollateral)
	layer.Register(core.InstrWithdrawCollateral, handleWithdrawCollateral)
	layer.Register(core.InstrBorrow, handleBorrow)
	layer.Register(core.InstrRepay, handleRepay)
	layer.Register(core.InstrLiquidate, handleLiquidate)
	layer.Register(core.InstrAddLiquidity, handleAddLiquidity)
	layer.Register(core.InstrRemoveLiquidity, handleRemoveLiquidity)
	layer.Register(core.InstrSwapRngForUsdt, handleSwapRngForUsdt)
	layer.Register(core.InstrSwapUsdtForRng, handleSwapUsdtForRng)
}

func debitChips(ctx *layer.Context, player *core.CasinoPlayer, amount uint64) error {
	if amount > player.Chips {
		return core.NewCasinoError(ctx.Player, core.ErrInsufficientFunds, "insufficient chips")
	}
	player.Chips -= amount
	return nil
}

func handleStake(ctx *layer.Context, ins core.Instruction) error {
	req := ins.Stake
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	if err := debitChips(ctx, player, req.Amount); err != nil {
		return err
	}
	staker, err := getStaker(ctx, ctx.Player)
	if err != nil {
		return err
	}
	house, err := getHouse(ctx)
	if err != nil {
		return err
	}
	pending := economy.Stake(staker, house, req.Amount, req.LockDays, ctx.NowMs)
	player.Chips += pending

	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	if err := saveStaker(ctx, staker); err != nil {
		return err
	}
	return saveHouse(ctx, house)
}

func handleUnstake(ctx *layer.Context, ins core.Instruction) error {
	req := ins.Unstake
	staker, err := getStaker(ctx, ctx.Player)
	if err != nil {
		return err
	}
	house, err := getHouse(ctx)
	if err != nil {
		return err
	}
	pending, err := economy.Unstake(staker, house, req.Amount, ctx.NowMs)
	if err != nil {
		if errors.Is(err, economy.ErrStakeLocked) {
			return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, err.Error())
		}
		return core.NewCasinoError(ctx.Player, core.ErrInsufficientFunds, err.Error())
	}
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	player.Chips += req.Amount + pending

	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	if err := saveStaker(ctx, staker); err != nil {
		return err
	}
	return saveHouse(ctx, house)
}

func handleClaim(ctx *layer.Context, ins core.Instruction) error {
	staker, err := getStaker(ctx, ctx.Player)
	if err != nil {
		return err
	}
	house, err := getHouse(ctx)
	if err != nil {
		return err
	}
	pending := economy.Claim(staker, house)
	if pending == 0 {
		return nil
	}
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	player.Chips += pending

	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	if err := saveStaker(ctx, staker); err != nil {
		return err
	}
	return saveHouse(ctx, house)
}

func handleCreateVault(ctx *layer.Context, ins core.Instruction) error {
	req := ins.CreateVault
	if _, ok, err := ctx.State.Get(ctx.Go(), core.VaultKey(ctx.Player)); err != nil {
		return err
	} else if ok {
		return core.NewCasinoError(ctx.Player, core.ErrSessionAlreadyExists, "vault already exists")
	}
	vault := &core.Vault{Owner: ctx.Player, MaxLtvBps: req.MaxLtvBps}
	if err := saveVault(ctx, vault); err != nil {
		return err
	}
	return addToVaultRegistry(ctx, ctx.Player)
}

func handleDepositCollateral(ctx *layer.Context, ins core.Instruction) error {
	req := ins.DepositCollateral
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	vault, err := getVault(ctx, ctx.Player)
	if err != nil {
		return err
	}
	if err := debitChips(ctx, player, req.Amount); err != nil {
		return err
	}
	economy.DepositCollateral(vault, req.Amount)
	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	return saveVault(ctx, vault)
}

func handleWithdrawCollateral(ctx *layer.Context, ins core.Instruction) error {
	req := ins.WithdrawCollateral
	vault, err := getVault(ctx, ctx.Player)
	if err != nil {
		return err
	}
	pool, err := getAmmPool(ctx)
	if err != nil {
		return err
	}
	if err := economy.WithdrawCollateral(vault, pool, req.Amount); err != nil {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, err.Error())
	}
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	player.Chips += req.Amount
	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	return saveVault(ctx, vault)
}

func handleBorrow(ctx *layer.Context, ins core.Instruction) error {
	req := ins.Borrow
	vault, err := getVault(ctx, ctx.Player)
	if err != nil {
		return err
	}
	pool, err := getAmmPool(ctx)
	if err != nil {
		return err
	}
	if err := economy.Borrow(vault, pool, req.Amount); err != nil {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, err.Error())
	}
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	player.Chips += req.Amount
	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	return saveVault(ctx, vault)
}

func handleRepay(ctx *layer.Context, ins core.Instruction) error {
	req := ins.Repay
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	vault, err := getVault(ctx, ctx.Player)
	if err != nil {
		return err
	}
	applied := economy.Repay(vault, req.Amount)
	if err := debitChips(ctx, player, applied); err != nil {
		return err
	}
	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	return saveVault(ctx, vault)
}

// handleLiquidate lets anyone trigger liquidation of target's vault once
// its LTV has crossed the configured maximum, routing the penalty into the
// staking reward pool (spec.md §4.7).
func handleLiquidate(ctx *layer.Context, ins core.Instruction) error {
	req := ins.Liquidate
	vault, err := getVault(ctx, req.Target)
	if err != nil {
		return err
	}
	pool, err := getAmmPool(ctx)
	if err != nil {
		return err
	}
	seizedRng, debtRetired, refundRng, err := economy.Liquidate(vault, pool)
	if err != nil {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, err.Error())
	}

	house, err := getHouse(ctx)
	if err != nil {
		return err
	}
	penalty := seizedRng
	if penalty > debtRetired {
		penalty -= debtRetired
	} else {
		penalty = 0
	}
	house.StakingRewardPool += penalty

	if refundRng > 0 {
		owner, err := getPlayer(ctx, req.Target)
		if err == nil {
			owner.Chips += refundRng
			if err := savePlayer(ctx, owner); err != nil {
				return err
			}
		}
	}

	if err := saveVault(ctx, vault); err != nil {
		return err
	}
	return saveHouse(ctx, house)
}

func handleAddLiquidity(ctx *layer.Context, ins core.Instruction) error {
	req := ins.AddLiquidity
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	if req.RngAmount > player.Chips {
		return core.NewCasinoError(ctx.Player, core.ErrInsufficientFunds, "insufficient chips for rng side of deposit")
	}
	if req.UsdtAmount > player.VusdtBalance {
		return core.NewCasinoError(ctx.Player, core.ErrInsufficientFunds, "insufficient vusdt for usdt side of deposit")
	}
	pool, err := getAmmPool(ctx)
	if err != nil {
		return err
	}
	shares, err := economy.AddLiquidity(pool, req.RngAmount, req.UsdtAmount)
	if err != nil {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, err.Error())
	}

	lp, err := getAmmLp(ctx, ctx.Player)
	if err != nil {
		return err
	}
	lp.Shares += shares
	player.Chips -= req.RngAmount
	player.VusdtBalance -= req.UsdtAmount

	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	if err := saveAmmLp(ctx, lp); err != nil {
		return err
	}
	return saveAmmPool(ctx, pool)
}

func handleRemoveLiquidity(ctx *layer.Context, ins core.Instruction) error {
	req := ins.RemoveLiquidity
	lp, err := getAmmLp(ctx, ctx.Player)
	if err != nil {
		return err
	}
	if req.Shares > lp.Shares {
		return core.NewCasinoError(ctx.Player, core.ErrInsufficientFunds, "insufficient lp shares")
	}
	pool, err := getAmmPool(ctx)
	if err != nil {
		return err
	}
	rngOut, usdtOut, err := economy.RemoveLiquidity(pool, req.Shares)
	if err != nil {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, err.Error())
	}
	lp.Shares -= req.Shares

	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	player.Chips += rngOut
	player.VusdtBalance += usdtOut

	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	if err := saveAmmLp(ctx, lp); err != nil {
		return err
	}
	return saveAmmPool(ctx, pool)
}

func handleSwapRngForUsdt(ctx *layer.Context, ins core.Instruction) error {
	req := ins.SwapRngForUsdt
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	if err := debitChips(ctx, player, req.AmountIn); err != nil {
		return err
	}
	pool, err := getAmmPool(ctx)
	if err != nil {
		return err
	}
	amountOut, err := economy.SwapRngForUsdt(pool, req.AmountIn)
	if err != nil {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, err.Error())
	}
	player.VusdtBalance += amountOut
	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	return saveAmmPool(ctx, pool)
}

func handleSwapUsdtForRng(ctx *layer.Context, ins core.Instruction) error {
	req := ins.SwapUsdtForRng
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	if req.AmountIn > player.VusdtBalance {
		return core.NewCasinoError(ctx.Player, core.ErrInsufficientFunds, "insufficient vusdt")
	}
	pool, err := getAmmPool(ctx)
	if err != nil {
		return err
	}
	amountOut, err := economy.SwapUsdtForRng(pool, req.AmountIn)
	if err != nil {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, err.Error())
	}
	player.VusdtBalance -= req.AmountIn
	player.Chips += amountOut
	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	return saveAmmPool(ctx, pool)
}
