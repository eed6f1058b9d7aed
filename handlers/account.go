package handlers

import (
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/layer"
)

func init() {
	layer.Register(core.InstrCasinoRegister, handleCasinoRegister)
	layer.Register(core.InstrCasinoDeposit, handleCasinoDeposit)
}

// handleCasinoRegister creates a fresh CasinoPlayer for ctx.Player, crediting
// the initial chip balance (spec.md §4.6). Re-registration is rejected.
func handleCasinoRegister(ctx *layer.Context, ins core.Instruction) error {
	req := ins.CasinoRegister
	if len(req.Name) == 0 || len(req.Name) > core.MaxPlayerNameLen {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "player name must be 1-32 bytes")
	}

	_, ok, err := ctx.State.Get(ctx.Go(), core.CasinoPlayerKey(ctx.Player))
	if err != nil {
		return err
	}
	if ok {
		return core.NewCasinoError(ctx.Player, core.ErrPlayerAlreadyRegistered, "player already registered")
	}

	player := &core.CasinoPlayer{
		PublicKey:    ctx.Player,
		Name:         req.Name,
		Chips:        core.InitialChips,
		Stats:        core.TournamentStats{Rating: 1000},
		RegisteredAt: ctx.NowMs,
	}
	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	if err := addToRegistry(ctx, ctx.Player); err != nil {
		return err
	}
	if err := updateLeaderboard(ctx, player); err != nil {
		return err
	}

	ctx.Emit(core.Event{Type: core.EventChipsDeposited, Player: ctx.Player, Amount: core.InitialChips})
	return nil
}

// handleCasinoDeposit is the chip faucet: it requires an account at least
// FaucetMinAccountAgeMs old with at least FaucetMinCompletedSessions
// completed game sessions, rate-limited to once every FaucetCooldownBlocks
// blocks, and caps the credited amount at FaucetCap (spec.md §4.6).
func handleCasinoDeposit(ctx *layer.Context, ins core.Instruction) error {
	req := ins.CasinoDeposit
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}

	if ctx.NowMs-player.RegisteredAt < core.FaucetMinAccountAgeMs {
		return core.NewCasinoError(ctx.Player, core.ErrRateLimited, "account too new for faucet")
	}
	if player.CompletedSessions < core.FaucetMinCompletedSessions {
		return core.NewCasinoError(ctx.Player, core.ErrRateLimited, "not enough completed sessions for faucet")
	}
	if player.LastDepositHeight != 0 && ctx.Height-player.LastDepositHeight < core.FaucetCooldownBlocks {
		return core.NewCasinoError(ctx.Player, core.ErrRateLimited, "faucet still cooling down")
	}

	amount := req.Amount
	if amount == 0 || amount > core.FaucetCap {
		amount = core.FaucetCap
	}

	player.Chips += amount
	player.LastDepositAt = ctx.NowMs
	player.LastDepositHeight = ctx.Height
	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	if err := updateLeaderboard(ctx, player); err != nil {
		return err
	}

	ctx.Emit(core.Event{Type: core.EventChipsDeposited, Player: ctx.Player, Amount: amount})
	return nil
}
