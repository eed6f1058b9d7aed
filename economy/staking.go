package economy

import (
	"errors"
	"fmt"

	"github.com/tolelom/casinochain/core"
)

// ErrStakeLocked is returned when an unstake is attempted before UnlockTs.
var ErrStakeLocked = errors.New("economy: stake is still locked")

const msPerDay = int64(86_400_000)

// DistributeReward folds amount into the global O(1) reward accumulator
// (spec.md §4.7). When nobody is staked the amount is held in
// StakingRewardCarry until the next distribution that finds voting power.
func DistributeReward(house *core.HouseState, amount uint64) {
	total := amount + house.StakingRewardCarry
	if house.TotalVotingPower == 0 {
		house.StakingRewardCarry = total
		return
	}
	perPower := mulDiv(total, core.StakingRewardScale, house.TotalVotingPower)
	house.StakingRewardPerVotingPowerX18 += perPower
	consumed := mulDiv(perPower, house.TotalVotingPower, core.StakingRewardScale)
	house.StakingRewardCarry = total - consumed
	house.StakingRewardPool += amount
}

// pendingReward returns the reward accrued to staker since its RewardDebt
// was last set, without mutating anything.
func pendingReward(staker *core.Staker, house *core.HouseState) uint64 {
	accrued := mulDiv(staker.Balance, house.StakingRewardPerVotingPowerX18, core.StakingRewardScale)
	if accrued < staker.RewardDebt {
		return 0
	}
	return accrued - staker.RewardDebt
}

func settleDebt(staker *core.Staker, house *core.HouseState) {
	staker.RewardDebt = mulDiv(staker.Balance, house.StakingRewardPerVotingPowerX18, core.StakingRewardScale)
}

// Stake deposits amount into staker's position, locking it until nowMs +
// lockDays, and returns any reward that accrued on the pre-existing balance
// (which the caller is responsible for crediting before the deposit
// changes RewardDebt's baseline).
func Stake(staker *core.Staker, house *core.HouseState, amount uint64, lockDays uint32, nowMs int64) (pending uint64) {
	pending = pendingReward(staker, house)
	staker.Balance += amount
	house.TotalVotingPower += amount
	house.TotalStakedAmount += amount
	unlock := nowMs + int64(lockDays)*msPerDay
	if unlock > staker.UnlockTs {
		staker.UnlockTs = unlock
	}
	settleDebt(staker, house)
	return pending
}

// Unstake withdraws amount from staker's position once UnlockTs has
// passed, returning any pending reward alongside it.
func Unstake(staker *core.Staker, house *core.HouseState, amount uint64, nowMs int64) (pending uint64, err error) {
	if nowMs < staker.UnlockTs {
		return 0, fmt.Errorf("%w: unlocks at %d, now %d", ErrStakeLocked, staker.UnlockTs, nowMs)
	}
	if amount > staker.Balance {
		return 0, fmt.Errorf("economy: unstake %d exceeds balance %d", amount, staker.Balance)
	}
	pending = pendingReward(staker, house)
	staker.Balance -= amount
	house.TotalVotingPower -= amount
	house.TotalStakedAmount -= amount
	settleDebt(staker, house)
	return pending, nil
}

// Claim returns staker's pending reward and resets its accrual baseline.
func Claim(staker *core.Staker, house *core.HouseState) uint64 {
	pending := pendingReward(staker, house)
	settleDebt(staker, house)
	return pending
}
