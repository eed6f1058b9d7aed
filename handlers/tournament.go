package handlers

import (
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/layer"
)

func init() {
	layer.Register(core.InstrCasinoStartTournament, handleCasinoStartTournament)
	layer.Register(core.InstrCasinoEndTournament, handleCasinoEndTournament)
	layer.Register(core.InstrCasinoJoinTournament, handleCasinoJoinTournament)
}

// handleCasinoStartTournament is admin-only: it transitions an existing
// tournament out of Registration into Active, closing further joins
// (spec.md §3, §4.6).
func handleCasinoStartTournament(ctx *layer.Context, ins core.Instruction) error {
	if !ctx.IsAdmin() {
		return core.NewCasinoError(ctx.Player, core.ErrUnauthorized, "start tournament requires admin authorization")
	}
	t, err := getTournament(ctx, ins.CasinoStartTournament.TournamentID)
	if err != nil {
		return err
	}
	if t.Phase != core.TournamentRegistration {
		return core.NewCasinoError(ctx.Player, core.ErrTournamentNotRegistration, "tournament not in registration phase")
	}
	t.Phase = core.TournamentActive
	t.StartTime = ctx.NowMs
	if err := saveTournament(ctx, t); err != nil {
		return err
	}
	ctx.Emit(core.Event{Type: core.EventTournamentPhase, Data: map[string]string{"tournament_id": fmtU64(t.ID), "phase": "active"}})
	return nil
}

// handleCasinoEndTournament is admin-only: it closes an Active tournament,
// crediting the final ELO-style rating to every participant's
// TournamentStats (spec.md §3, SPEC_FULL.md §8).
func handleCasinoEndTournament(ctx *layer.Context, ins core.Instruction) error {
	if !ctx.IsAdmin() {
		return core.NewCasinoError(ctx.Player, core.ErrUnauthorized, "end tournament requires admin authorization")
	}
	t, err := getTournament(ctx, ins.CasinoEndTournament.TournamentID)
	if err != nil {
		return err
	}
	if t.Phase != core.TournamentActive {
		return core.NewCasinoError(ctx.Player, core.ErrTournamentNotRegistration, "tournament not active")
	}

	ranked := rankScores(t.Scores)
	for i, sc := range ranked {
		p, err := getPlayer(ctx, sc.Player)
		if err != nil {
			continue
		}
		p.Stats.Played++
		delta := eloDelta(len(ranked), i)
		p.Stats.Rating += delta
		if i == 0 {
			p.Stats.Won++
		}
		if err := savePlayer(ctx, p); err != nil {
			return err
		}
	}

	t.Phase = core.TournamentComplete
	t.EndTime = ctx.NowMs
	if err := saveTournament(ctx, t); err != nil {
		return err
	}
	ctx.Emit(core.Event{Type: core.EventTournamentPhase, Data: map[string]string{"tournament_id": fmtU64(t.ID), "phase": "complete"}})
	return nil
}

// handleCasinoJoinTournament registers ctx.Player into a tournament,
// auto-creating it in the Registration phase on first join, and enforcing
// the per-tier daily join cap and the 5-minute join cooldown (spec.md §4.6).
func handleCasinoJoinTournament(ctx *layer.Context, ins core.Instruction) error {
	id := ins.CasinoJoinTournament.TournamentID
	player, err := getPlayer(ctx, ctx.Player)
	if err != nil {
		return err
	}

	t, ok, err := loadOrCreateTournament(ctx, id)
	if err != nil {
		return err
	}
	if t.Phase != core.TournamentRegistration {
		return core.NewCasinoError(ctx.Player, core.ErrTournamentNotRegistration, "tournament not in registration phase")
	}
	if t.ContainsPlayer(ctx.Player) {
		return core.NewCasinoError(ctx.Player, core.ErrAlreadyRegisteredTournament, "already registered in tournament")
	}
	if ctx.NowMs-player.LastTournamentJoinAt < core.TournamentJoinCooldownMs {
		return core.NewCasinoError(ctx.Player, core.ErrRateLimited, "tournament join on cooldown")
	}

	if ctx.NowMs-player.DailyTournamentWindowAt >= core.DailyWindowMs {
		player.DailyTournamentWindowAt = ctx.NowMs
		player.DailyTournamentJoins = 0
	}
	if player.DailyTournamentJoins >= player.MembershipTier.DailyTournamentJoinCap() {
		return core.NewCasinoError(ctx.Player, core.ErrDailyTournamentCapReached, "daily tournament join cap reached")
	}

	t.AddPlayer(ctx.Player)
	t.Scores = append(t.Scores, core.TournamentScore{Player: ctx.Player, Rating: player.Stats.Rating})
	if !ok {
		t.ID = id
		t.Phase = core.TournamentRegistration
		t.StartTime = ctx.NowMs
	}
	if err := saveTournament(ctx, t); err != nil {
		return err
	}

	player.LastTournamentJoinAt = ctx.NowMs
	player.DailyTournamentJoins++
	if err := savePlayer(ctx, player); err != nil {
		return err
	}

	ctx.Emit(core.Event{Type: core.EventTournamentPhase, Player: ctx.Player, Data: map[string]string{"tournament_id": fmtU64(id), "phase": "joined"}})
	return nil
}

func loadOrCreateTournament(ctx *layer.Context, id uint64) (*core.Tournament, bool, error) {
	val, ok, err := ctx.State.Get(ctx.Go(), core.TournamentKey(id))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &core.Tournament{ID: id, Phase: core.TournamentRegistration, StartTime: ctx.NowMs}, false, nil
	}
	return val.Tournament, true, nil
}

// rankScores returns scores sorted descending by Chips, the tiebreak the
// leaderboard uses, since the tournament bracket state tracks score the
// same way (spec.md §3).
func rankScores(scores []core.TournamentScore) []core.TournamentScore {
	out := make([]core.TournamentScore, len(scores))
	copy(out, scores)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Chips > out[j-1].Chips; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// eloDelta is a simplified placement-based rating adjustment: the winner
// gains, the field loses proportionally to the number of entrants, grounded
// on original_source's execution/src/elo.rs K-factor convention
// (SPEC_FULL.md §8).
const eloKFactor = 32

func eloDelta(field, place int) int64 {
	if field <= 1 {
		return 0
	}
	if place == 0 {
		return int64(eloKFactor)
	}
	return -int64(eloKFactor) / int64(field-1)
}

func fmtU64(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
