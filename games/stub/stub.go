// Package stub registers the remaining nine game types named in spec.md
// §4.5 with a minimal even-money module so every GameType the core domain
// model names is dispatchable end to end. Sic Bo (games/sicbo) is the one
// game type specified in full detail; these share its envelope but resolve
// a single coin-flip draw rather than a full per-game paytable.
package stub

import (
	"fmt"

	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/games"
	"github.com/tolelom/casinochain/rng"
)

func init() {
	for _, gt := range []core.GameType{
		core.GameBlackjack,
		core.GameBaccarat,
		core.GameCraps,
		core.GameRoulette,
		core.GameHiLo,
		core.GameVideoPoker,
		core.GameCasinoWar,
		core.GameThreeCardPoker,
		core.GameUltimateHoldem,
	} {
		games.Register(gt, Module{})
	}
}

const stateVersion = 1

// Module is a single-move, even-money game: a CasinoGameMove with any
// payload draws one coin-flip outcome from the session's RNG stream.
type Module struct{}

func (Module) Init(session *core.GameSession, _ *rng.GameRng) error {
	session.StateBlob = []byte{stateVersion, 0}
	return nil
}

func (Module) ProcessMove(session *core.GameSession, _ []byte, r *rng.GameRng) ([]core.Event, error) {
	if len(session.StateBlob) >= 2 && session.StateBlob[1] != 0 {
		return nil, core.NewCasinoSessionError(session.Player, session.ID, core.ErrSessionAlreadyComplete, "session already resolved")
	}
	win := r.Range(2) == 1
	payout := uint64(0)
	if win {
		payout = session.Bet * 2
	}

	session.MoveCount++
	session.IsComplete = true
	session.StateBlob = []byte{stateVersion, 1}

	evt := core.Event{
		Type:       core.EventGameResult,
		Player:     session.Player,
		SessionID:  session.ID,
		HasSession: true,
		Amount:     payout,
		Data:       map[string]string{"won": fmt.Sprint(win)},
	}
	return []core.Event{evt}, nil
}
