// Package economy implements the staking reward accumulator, collateralized
// vault, and constant-product AMM pool named in spec.md §4.7. Every function
// here is a pure state transition over the core economy types; callers
// (the economy instruction handlers) own persistence.
package economy

import (
	"errors"
	"fmt"

	"github.com/tolelom/casinochain/core"
)

// AmmFeeBps is the constant-product pool's swap fee, in basis points.
const AmmFeeBps = 30

// AmmSellTaxBps is the additional tax applied only to RNG->vUSDT swaps.
const AmmSellTaxBps = 500

const bpsDenominator = 10_000

var (
	ErrPoolEmpty       = errors.New("economy: pool has no liquidity")
	ErrInsufficientOut = errors.New("economy: swap output below reserves")
	ErrZeroAmount      = errors.New("economy: amount must be positive")
)

// AddLiquidity deposits rngAmount/usdtAmount into pool and returns the
// shares minted. The first deposit into an empty pool sets the reserves to
// the two amounts, so its ratio becomes the pool's price, and mints shares
// equal to the deposited RNG amount; later deposits mint the smaller of the
// two sides' proportional shares, whatever ratio they are quoted at,
// preserving
// total_shares > 0 <-> reserves > 0 (spec.md §4.7 invariant).
func AddLiquidity(pool *core.AmmPool, rngAmount, usdtAmount uint64) (shares uint64, err error) {
	if rngAmount == 0 || usdtAmount == 0 {
		return 0, ErrZeroAmount
	}
	if pool.TotalShares == 0 {
		shares = rngAmount
	} else {
		// Mint proportional to the smaller of the two sides' contribution so a
		// mis-quoted deposit never dilutes existing holders.
		shareFromRng := mulDiv(rngAmount, pool.TotalShares, pool.ReserveRng)
		shareFromUsdt := mulDiv(usdtAmount, pool.TotalShares, pool.ReserveVusdt)
		shares = min64(shareFromRng, shareFromUsdt)
	}
	if shares == 0 {
		return 0, fmt.Errorf("economy: deposit too small to mint shares")
	}
	pool.ReserveRng += rngAmount
	pool.ReserveVusdt += usdtAmount
	pool.TotalShares += shares
	return shares, nil
}

// RemoveLiquidity burns shares and returns the RNG/vUSDT owed.
func RemoveLiquidity(pool *core.AmmPool, shares uint64) (rngOut, usdtOut uint64, err error) {
	if shares == 0 {
		return 0, 0, ErrZeroAmount
	}
	if pool.TotalShares == 0 || shares > pool.TotalShares {
		return 0, 0, fmt.Errorf("economy: burning %d shares exceeds supply %d", shares, pool.TotalShares)
	}
	rngOut = mulDiv(shares, pool.ReserveRng, pool.TotalShares)
	usdtOut = mulDiv(shares, pool.ReserveVusdt, pool.TotalShares)
	pool.ReserveRng -= rngOut
	pool.ReserveVusdt -= usdtOut
	pool.TotalShares -= shares
	return rngOut, usdtOut, nil
}

// SwapRngForUsdt sells amountIn RNG chips into the pool, applying the swap
// fee and the additional sell tax, and returns the vUSDT received.
func SwapRngForUsdt(pool *core.AmmPool, amountIn uint64) (amountOut uint64, err error) {
	if pool.ReserveRng == 0 || pool.ReserveVusdt == 0 {
		return 0, ErrPoolEmpty
	}
	if amountIn == 0 {
		return 0, ErrZeroAmount
	}
	net := applyBps(amountIn, AmmFeeBps+AmmSellTaxBps)
	amountOut = constantProductOut(pool.ReserveRng, pool.ReserveVusdt, net)
	if amountOut >= pool.ReserveVusdt {
		return 0, ErrInsufficientOut
	}
	pool.ReserveRng += amountIn
	pool.ReserveVusdt -= amountOut
	return amountOut, nil
}

// SwapUsdtForRng buys RNG chips with amountIn vUSDT, applying only the base
// swap fee (the sell tax applies to the opposite direction only).
func SwapUsdtForRng(pool *core.AmmPool, amountIn uint64) (amountOut uint64, err error) {
	if pool.ReserveRng == 0 || pool.ReserveVusdt == 0 {
		return 0, ErrPoolEmpty
	}
	if amountIn == 0 {
		return 0, ErrZeroAmount
	}
	net := applyBps(amountIn, AmmFeeBps)
	amountOut = constantProductOut(pool.ReserveVusdt, pool.ReserveRng, net)
	if amountOut >= pool.ReserveRng {
		return 0, ErrInsufficientOut
	}
	pool.ReserveVusdt += amountIn
	pool.ReserveRng -= amountOut
	return amountOut, nil
}

// PriceRngInUsdtX18 returns the current pool price of one RNG chip in
// vUSDT, scaled by 10^18, used by the vault module's LTV calculation. An
// empty pool prices 1:1 per the bootstrap convention above.
func PriceRngInUsdtX18(pool *core.AmmPool) uint64 {
	if pool.ReserveRng == 0 {
		return core.StakingRewardScale
	}
	return mulDiv(pool.ReserveVusdt, core.StakingRewardScale, pool.ReserveRng)
}

// constantProductOut computes dy for the constant-product invariant
// (x + dx)(y - dy) = x*y, given net input dx (fees already deducted).
func constantProductOut(reserveIn, reserveOut, netIn uint64) uint64 {
	numerator := mulDiv(netIn, reserveOut, 1)
	denominator := reserveIn + netIn
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func applyBps(amount uint64, bps uint64) uint64 {
	return mulDiv(amount, bpsDenominator-bps, bpsDenominator)
}

// mulDiv computes a*b/c using a widening 128-bit intermediate (via
// math/bits.Mul64/Div64) so large reserve products never overflow 64 bits.
func mulDiv(a, b, c uint64) uint64 {
	hi, lo := mul64(a, b)
	if hi == 0 {
		return lo / c
	}
	q, _ := div128(hi, lo, c)
	return q
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
