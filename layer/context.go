// Package layer implements the block state-transition function: given an
// ordered batch of transactions and the round's consensus seed, it applies
// each to core.State, collects the resulting core.Event stream, and
// enforces the nonce and error-propagation rules in spec.md §4.6, §4.9, §7.
package layer

import (
	"context"

	"github.com/tolelom/casinochain/config"
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/rng"
)

// Context is passed to every Handler. Emit appends an event to the round's
// output stream; Rng derives this transaction's deterministic RNG stream,
// scoped by sessionID and moveIndex so a session's moves never reuse draws.
type Context struct {
	ctx    context.Context
	State  core.State
	Player []byte
	Height int64
	NowMs  int64
	Admin  *config.AdminSet
	seed   [32]byte
	events []core.Event
}

// IsAdmin reports whether the transaction's signer is in the configured
// admin set (spec.md §4.6, §5).
func (c *Context) IsAdmin() bool { return c.Admin.IsAdmin(c.Player) }

// Emit appends evt to the transaction's pending event list. Handlers should
// always set Player (and SessionID/HasSession where relevant) on evt
// themselves; Context does not default it.
func (c *Context) Emit(evt core.Event) { c.events = append(c.events, evt) }

// Go returns the context.Context blocking state operations should use.
func (c *Context) Go() context.Context { return c.ctx }

// Rng derives the deterministic per-move RNG stream for this round's seed.
func (c *Context) Rng(sessionID, moveIndex uint64) *rng.GameRng {
	return rng.NewGameRng(c.seed, sessionID, moveIndex)
}
