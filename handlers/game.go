package handlers

import (
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/games"
	"github.com/tolelom/casinochain/layer"
)

func init() {
	layer.Register(core.InstrCasinoStartGame, handleCasinoStartGame)
	layer.Register(core.InstrCasinoGameMove, handleCasinoGameMove)
}

// handleCasinoStartGame opens a new session against bet chips debited up
// front, delegating the session's opaque StateBlob setup to the game
// module registered for ins.GameType (spec.md §4.5, §4.6).
func handleCasinoStartGame(ctx *layer.Context, ins core.Instruction) error {
	req := ins.CasinoStartGame
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	if req.Bet == 0 || req.Bet > player.Chips {
		return core.NewCasinoError(ctx.Player, core.ErrInsufficientFunds, "insufficient chips for bet")
	}
	mod := games.Lookup(req.GameType)
	if mod == nil {
		return core.NewCasinoError(ctx.Player, core.ErrInvalidBet, "unknown game type")
	}

	if _, ok, err := ctx.State.Get(ctx.Go(), core.CasinoSessionKey(req.SessionID)); err != nil {
		return err
	} else if ok {
		return core.NewCasinoError(ctx.Player, core.ErrSessionAlreadyExists, "session id already in use")
	}

	session := &core.GameSession{
		ID:        req.SessionID,
		Player:    ctx.Player,
		GameType:  req.GameType,
		Bet:       req.Bet,
		CreatedAt: ctx.NowMs,
	}
	r := ctx.Rng(session.ID, 0)
	if err := mod.Init(session, r); err != nil {
		return core.NewCasinoSessionError(ctx.Player, session.ID, core.ErrInvalidMovePayload, err.Error())
	}

	player.Chips -= req.Bet
	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	if err := saveSession(ctx, session); err != nil {
		return err
	}
	if err := updateLeaderboard(ctx, player); err != nil {
		return err
	}

	ctx.Emit(core.Event{Type: core.EventGameStarted, Player: ctx.Player, SessionID: session.ID, HasSession: true, Amount: req.Bet})
	return nil
}

// handleCasinoGameMove advances an existing session one move, settling any
// payout against the player's chip balance and crediting CompletedSessions
// once the session resolves (spec.md §4.5, §4.6).
func handleCasinoGameMove(ctx *layer.Context, ins core.Instruction) error {
	req := ins.CasinoGameMove
	session, err := getSession(ctx, req.SessionID)
	if err != nil {
		return err
	}
	if string(session.Player) != string(ctx.Player) {
		return core.NewCasinoSessionError(ctx.Player, session.ID, core.ErrSessionNotOwned, "session not owned by sender")
	}
	if session.IsComplete {
		return core.NewCasinoSessionError(ctx.Player, session.ID, core.ErrSessionAlreadyComplete, "session already complete")
	}
	mod := games.Lookup(session.GameType)
	if mod == nil {
		return core.NewCasinoSessionError(ctx.Player, session.ID, core.ErrInvalidBet, "unknown game type")
	}

	r := ctx.Rng(session.ID, session.MoveCount+1)
	events, err := mod.ProcessMove(session, req.Payload, r)
	if err != nil {
		return core.NewCasinoSessionError(ctx.Player, session.ID, core.ErrInvalidMovePayload, err.Error())
	}

	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}
	wasComplete := session.IsComplete
	for _, evt := range events {
		if evt.Type == core.EventGameResult && evt.Amount > 0 {
			player.Chips += evt.Amount
		}
		ctx.Emit(evt)
	}
	if wasComplete {
		player.CompletedSessions++
	}

	if err := saveSession(ctx, session); err != nil {
		return err
	}
	if err := savePlayer(ctx, player); err != nil {
		return err
	}
	return updateLeaderboard(ctx, player)
}
