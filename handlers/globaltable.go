package handlers

import (
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/games/sicbo"
	"github.com/tolelom/casinochain/internal/xhash"
	"github.com/tolelom/casinochain/layer"
	"github.com/tolelom/casinochain/rng"
)

func init() {
	layer.Register(core.InstrGlobalTableInit, handleGlobalTableInit)
	layer.Register(core.InstrGlobalTableOpenRound, handleGlobalTableOpenRound)
	layer.Register(core.InstrGlobalTablePlaceBet, handleGlobalTablePlaceBet)
	layer.Register(core.InstrGlobalTableSettle, handleGlobalTableSettle)
}

// handleGlobalTableInit is admin-gated: it (re)configures phase durations
// and bet limits for a game and, if no round yet exists, opens the first
// one in the Betting phase (spec.md §4.8).
func handleGlobalTableInit(ctx *layer.Context, ins core.Instruction) error {
	if !ctx.IsAdmin() {
		return core.NewCasinoError(ctx.Player, core.ErrUnauthorized, "global table init requires admin authorization")
	}
	cfg := ins.GlobalTableInit.Config
	cfg.GameType = ins.GlobalTableInit.GameType
	if err := saveGlobalTableConfig(ctx, &cfg); err != nil {
		return err
	}

	if _, ok, err := getGlobalTableRound(ctx, cfg.GameType); err != nil {
		return err
	} else if !ok {
		round := &core.GlobalTableRound{
			GameType:    cfg.GameType,
			RoundID:     1,
			Phase:       core.PhaseBetting,
			PhaseEndsAt: ctx.NowMs + cfg.BettingMs,
		}
		if err := saveGlobalTableRound(ctx, round); err != nil {
			return err
		}
	}
	return nil
}

// handleGlobalTableOpenRound opens the next round once the prior round's
// Cooldown has elapsed (spec.md §4.8).
func handleGlobalTableOpenRound(ctx *layer.Context, ins core.Instruction) error {
	gt := ins.GlobalTableOpenRound.GameType
	cfg, err := getGlobalTableConfig(ctx, gt)
	if err != nil {
		return err
	}
	round, ok, err := getGlobalTableRound(ctx, gt)
	if err != nil {
		return err
	}
	if !ok {
		round = &core.GlobalTableRound{GameType: gt, Phase: core.PhaseCooldown, PhaseEndsAt: ctx.NowMs}
	}
	advanceGlobalTablePhase(round, cfg, ctx.NowMs, ctx.Rng)

	if round.Phase != core.PhaseCooldown || ctx.NowMs < round.PhaseEndsAt {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "round not ready to open")
	}
	round.RoundID++
	round.Phase = core.PhaseBetting
	round.PhaseEndsAt = ctx.NowMs + cfg.BettingMs
	round.Totals = nil
	round.HasCommit = false
	round.HasRollSeed = false
	round.OutcomeValid = false
	round.Outcome = nil
	return saveGlobalTableRound(ctx, round)
}

// handleGlobalTablePlaceBet records a bet against the active round's
// Betting phase, first advancing any phase whose window has already
// elapsed (spec.md §4.8).
func handleGlobalTablePlaceBet(ctx *layer.Context, ins core.Instruction) error {
	req := ins.GlobalTablePlaceBet
	if !sicbo.ValidBet(sicbo.BetType(req.BetType), req.Number) {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "invalid bet type/number combination")
	}
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	cfg, err := getGlobalTableConfig(ctx, req.GameType)
	if err != nil {
		return err
	}
	round, ok, err := getGlobalTableRound(ctx, req.GameType)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "global table has no active round")
	}
	advanceGlobalTablePhase(round, cfg, ctx.NowMs, ctx.Rng)

	if round.Phase != core.PhaseBetting {
		if err := saveGlobalTableRound(ctx, round); err != nil {
			return err
		}
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "round is not accepting bets")
	}
	if req.Amount < cfg.MinBet || req.Amount > cfg.MaxBet {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "bet amount outside configured limits")
	}
	if uint32(len(round.Totals)) >= cfg.MaxBetsPerRound {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "round has reached max bets")
	}
	if req.Amount > player.Chips {
		return core.NewCasinoError(ctx.Player, core.ErrInsufficientFunds, "insufficient chips for bet")
	}

	player.Chips -= req.Amount
	round.Totals = append(round.Totals, core.BetEntry{Player: ctx.Player, BetType: req.BetType, Number: req.Number, Amount: req.Amount})

	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	if err := saveGlobalTableRound(ctx, round); err != nil {
		return err
	}
	return updateLeaderboard(ctx, player)
}

// handleGlobalTableSettle resolves the Payout phase, crediting every
// matching bet exactly once per round via GlobalTablePlayerSession's
// last-settled-round guard (spec.md §4.8).
func handleGlobalTableSettle(ctx *layer.Context, ins core.Instruction) error {
	gt := ins.GlobalTableSettle.GameType
	cfg, err := getGlobalTableConfig(ctx, gt)
	if err != nil {
		return err
	}
	round, ok, err := getGlobalTableRound(ctx, gt)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "global table has no active round")
	}
	advanceGlobalTablePhase(round, cfg, ctx.NowMs, ctx.Rng)
	if round.Phase != core.PhasePayout {
		if err := saveGlobalTableRound(ctx, round); err != nil {
			return err
		}
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "round is not in payout phase")
	}

	paid := map[string]bool{}
	for _, bet := range round.Totals {
		pkHex := string(bet.Player)
		sess, err := getGlobalTablePlayerSession(ctx, gt, bet.Player)
		if err != nil {
			return err
		}
		if !paid[pkHex] && sess.LastSettledRound == round.RoundID {
			continue // already settled this round by an earlier settlement
		}

		mult := outcomeMultiplier(round.Outcome, bet.BetType, bet.Number)
		payout := bet.Amount * mult
		if payout > 0 {
			player, err := getPlayer(ctx, bet.Player)
			if err != nil {
				return err
			}
			player.Chips += payout
			if err := savePlayer(ctx, player); err != nil {
				return err
			}
			if err := updateLeaderboard(ctx, player); err != nil {
				return err
			}
		}

		ctx.Emit(core.Event{Type: core.EventGlobalTableResult, Player: bet.Player, Amount: payout, Data: map[string]string{"game_type": string(gt), "round_id": fmtU64(round.RoundID)}})
		if !paid[pkHex] {
			sess.LastSettledRound = round.RoundID
			if err := saveGlobalTablePlayerSession(ctx, sess); err != nil {
				return err
			}
			paid[pkHex] = true
		}
	}

	round.Phase = core.PhaseCooldown
	round.PhaseEndsAt = ctx.NowMs + cfg.CooldownMs
	return saveGlobalTableRound(ctx, round)
}

// advanceGlobalTablePhase rolls round forward through every phase boundary
// already crossed by nowMs, resolving the outcome on entry to Rolling
// (spec.md §4.8).
func advanceGlobalTablePhase(round *core.GlobalTableRound, cfg *core.GlobalTableConfig, nowMs int64, rngFor func(sessionID, moveIndex uint64) *rng.GameRng) {
	for nowMs >= round.PhaseEndsAt {
		switch round.Phase {
		case core.PhaseBetting:
			round.Phase = core.PhaseLocked
			round.PhaseEndsAt = round.PhaseEndsAt + cfg.LockMs
			round.RNGCommit = xhash.Sum([]byte(round.GameType))
			round.HasCommit = true
		case core.PhaseLocked:
			round.Phase = core.PhaseRolling
			r := rngFor(round.RoundID, 0)
			d1, d2, d3 := r.RollDie(), r.RollDie(), r.RollDie()
			round.Outcome = []byte{d1, d2, d3}
			round.OutcomeValid = true
			round.RollSeed = xhash.SumPair(xhash.Digest(round.RNGCommit), xhash.Sum(round.Outcome))
			round.HasRollSeed = true
			round.PhaseEndsAt = nowMs
		case core.PhaseRolling:
			round.Phase = core.PhasePayout
			round.PhaseEndsAt = round.PhaseEndsAt + cfg.PayoutMs
		case core.PhasePayout:
			return // settlement is a distinct instruction; stop advancing here
		case core.PhaseCooldown:
			return // next Betting round is opened explicitly by GlobalTableOpenRound
		}
	}
}

func outcomeMultiplier(outcome []byte, betType, number uint8) uint64 {
	if len(outcome) != 3 {
		return 0
	}
	return sicbo.PayoutMultiplier(sicbo.BetType(betType), number, outcome[0], outcome[1], outcome[2])
}
