package economy

import (
	"errors"
	"fmt"

	"github.com/tolelom/casinochain/core"
)

var (
	ErrExceedsLtv    = errors.New("economy: action would exceed vault's max LTV")
	ErrNotLiquidatable = errors.New("economy: vault is within its max LTV")
)

// CollateralValueUsdtX18 returns a vault's collateral value in vUSDT,
// scaled by 10^18, priced off pool's current reserves.
func CollateralValueUsdtX18(vault *core.Vault, pool *core.AmmPool) uint64 {
	return mulDiv(vault.CollateralRng, PriceRngInUsdtX18(pool), 1)
}

// ltvBps returns a vault's current loan-to-value ratio in basis points
// given a hypothetical debt and collateral (used both to validate and to
// report current standing).
func ltvBps(debtX18, collateralValueX18 uint64) uint64 {
	if collateralValueX18 == 0 {
		if debtX18 == 0 {
			return 0
		}
		return bpsDenominator // fully underwater, can't divide by zero
	}
	return mulDiv(debtX18, bpsDenominator, collateralValueX18)
}

// CurrentLtvBps reports vault's present loan-to-value ratio in basis
// points against pool's current pricing, used by admin tooling to rank
// vaults by risk without needing to attempt a Liquidate (spec.md §4.7).
func CurrentLtvBps(vault *core.Vault, pool *core.AmmPool) uint64 {
	value := CollateralValueUsdtX18(vault, pool)
	debtX18 := vault.DebtVusdt * core.StakingRewardScale
	return ltvBps(debtX18, value)
}

// DepositCollateral adds amount RNG chips as collateral.
func DepositCollateral(vault *core.Vault, amount uint64) {
	vault.CollateralRng += amount
}

// WithdrawCollateral removes amount RNG chips, rejecting the withdrawal if
// the resulting LTV would exceed vault.MaxLtvBps.
func WithdrawCollateral(vault *core.Vault, pool *core.AmmPool, amount uint64) error {
	if amount > vault.CollateralRng {
		return fmt.Errorf("economy: withdraw %d exceeds collateral %d", amount, vault.CollateralRng)
	}
	remaining := vault.CollateralRng - amount
	value := mulDiv(remaining, PriceRngInUsdtX18(pool), 1)
	debtX18 := vault.DebtVusdt * core.StakingRewardScale
	if ltvBps(debtX18, value) > uint64(vault.MaxLtvBps) {
		return ErrExceedsLtv
	}
	vault.CollateralRng = remaining
	return nil
}

// Borrow draws amount vUSDT against vault's collateral, rejecting the draw
// if the resulting LTV would exceed vault.MaxLtvBps.
func Borrow(vault *core.Vault, pool *core.AmmPool, amount uint64) error {
	value := CollateralValueUsdtX18(vault, pool)
	newDebtX18 := (vault.DebtVusdt + amount) * core.StakingRewardScale
	if ltvBps(newDebtX18, value) > uint64(vault.MaxLtvBps) {
		return ErrExceedsLtv
	}
	vault.DebtVusdt += amount
	return nil
}

// Repay reduces vault's debt by amount, capped at the outstanding balance.
func Repay(vault *core.Vault, amount uint64) (applied uint64) {
	applied = min64(amount, vault.DebtVusdt)
	vault.DebtVusdt -= applied
	return applied
}

// LiquidationPenaltyBps is the haircut applied to seized collateral beyond
// covering the outstanding debt, paid to the house per spec.md §4.7.
const LiquidationPenaltyBps = 1000

// Liquidate seizes vault's collateral to cover its debt once its LTV has
// crossed MaxLtvBps, returning the RNG collateral seized, the debt retired,
// and any RNG surplus returned to the owner after the penalty.
func Liquidate(vault *core.Vault, pool *core.AmmPool) (seizedRng, debtRetired, refundRng uint64, err error) {
	value := CollateralValueUsdtX18(vault, pool)
	debtX18 := vault.DebtVusdt * core.StakingRewardScale
	if ltvBps(debtX18, value) <= uint64(vault.MaxLtvBps) {
		return 0, 0, 0, ErrNotLiquidatable
	}
	price := PriceRngInUsdtX18(pool)
	debtInRng := uint64(0)
	if price > 0 {
		debtInRng = mulDiv(vault.DebtVusdt, core.StakingRewardScale, price)
	}
	penalty := mulDiv(debtInRng, LiquidationPenaltyBps, bpsDenominator)
	seizedRng = min64(vault.CollateralRng, debtInRng+penalty)
	debtRetired = vault.DebtVusdt
	refundRng = vault.CollateralRng - seizedRng

	vault.CollateralRng = 0
	vault.DebtVusdt = 0
	return seizedRng, debtRetired, refundRng, nil
}
