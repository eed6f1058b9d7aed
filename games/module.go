// Package games defines the envelope every casino game module implements
// and the registry the layer dispatches through (spec.md §4.5).
package games

import (
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/rng"
)

// Module is the contract every game type implements: set up a fresh
// session's opaque state, then advance it one move at a time. Both methods
// mutate session.StateBlob; ProcessMove also returns the events the move
// produced, while Init returns only an error. Neither
// ever touches chip balances directly, that is the caller's job once the
// move resolves.
type Module interface {
	// Init prepares a freshly created session's StateBlob.
	Init(session *core.GameSession, r *rng.GameRng) error

	// ProcessMove applies payload to session, advancing MoveCount and
	// StateBlob, and returns the events this move produced (e.g. a result).
	// Setting session.IsComplete ends the session.
	ProcessMove(session *core.GameSession, payload []byte, r *rng.GameRng) ([]core.Event, error)
}

// registry maps a GameType to its Module implementation. Populated by each
// game package's init() via Register, so importing the games you intend to
// support is enough to wire them into the layer.
var registry = map[core.GameType]Module{}

// Register adds m as the handler for gt. Called from each game submodule's
// init(); a second call for the same gt replaces the prior registration.
func Register(gt core.GameType, m Module) { registry[gt] = m }

// Lookup returns the Module registered for gt, or nil if none was.
func Lookup(gt core.GameType) Module { return registry[gt] }
