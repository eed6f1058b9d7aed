package layer

import (
	"context"
	"errors"
	"fmt"

	"github.com/tolelom/casinochain/codec"
	"github.com/tolelom/casinochain/config"
	"github.com/tolelom/casinochain/core"
)

// Result is everything one round's transaction batch produced.
type Result struct {
	Events    []core.Event
	Processed int
	Skipped   int
}

// Run applies txs in order against state: per spec.md §7, a nonce mismatch
// silently drops the transaction (no event, no state change), an invalid
// signature is treated the same way, and a handler-level domain error still
// consumes the nonce and is reported as an EventCasinoError rather than
// aborting the round.
func Run(goCtx context.Context, state core.State, admin *config.AdminSet, height int64, nowMs int64, seed [32]byte, txs []core.Transaction) (Result, error) {
	var result Result
	for i := range txs {
		tx := txs[i]
		applied, events, err := applyOne(goCtx, state, admin, height, nowMs, seed, tx)
		if err != nil {
			return result, fmt.Errorf("layer: tx %d: %w", i, err)
		}
		if !applied {
			result.Skipped++
			continue
		}
		result.Processed++
		result.Events = append(result.Events, events...)
	}
	return result, nil
}

// applyOne processes a single transaction, returning applied=false for a
// silent drop (bad nonce or bad signature) or applied=true with every event
// the handler (and the nonce-consumption error path, if any) produced.
//
// Handlers write directly against state: there is no per-transaction
// staging overlay to roll back, so a handler MUST validate every precondition
// before its first Update/Delete call and return a *core.CasinoError before
// writing anything it isn't prepared to keep. The global-table place-bet and
// settle handlers are the exception to the first part: they persist an
// elapsed phase advance, which they keep, before returning a CasinoError.
func applyOne(goCtx context.Context, state core.State, admin *config.AdminSet, height, nowMs int64, seed [32]byte, tx core.Transaction) (bool, []core.Event, error) {
	accKey := core.AccountKey(tx.PublicKey)
	accVal, ok, err := state.Get(goCtx, accKey)
	if err != nil {
		return false, nil, fmt.Errorf("get account: %w", err)
	}
	var account core.Account
	if ok {
		account = *accVal.Account
	} else {
		account = core.Account{PublicKey: tx.PublicKey}
	}

	if tx.Nonce != account.Nonce {
		return false, nil, nil
	}

	preimage := codec.TransactionSigningPreimage(tx.PublicKey, tx.Nonce, tx.Instruction)
	if err := tx.Verify(preimage); err != nil {
		return false, nil, nil
	}

	account.Nonce++
	if err := state.Update(goCtx, accKey, core.Value{Tag: core.KeyAccount, Account: &account}); err != nil {
		return false, nil, fmt.Errorf("bump nonce: %w", err)
	}

	ctx := &Context{ctx: goCtx, State: state, Player: tx.PublicKey, Height: height, NowMs: nowMs, Admin: admin, seed: seed}
	handlerErr := globalRegistry.Execute(ctx, tx.Instruction)
	if handlerErr == nil {
		return true, ctx.events, nil
	}

	var domainErr *core.CasinoError
	if errors.As(handlerErr, &domainErr) {
		ctx.Emit(core.Event{
			Type:       core.EventCasinoError,
			Player:     domainErr.Player,
			SessionID:  domainErr.SessionID,
			HasSession: domainErr.HasSession,
			ErrorCode:  domainErr.Code,
			Message:    domainErr.Message,
		})
		return true, ctx.events, nil
	}

	// Anything that isn't a *core.CasinoError is a store or handler-wiring
	// failure, not a domain outcome: propagate it so the executor treats the
	// whole step as fatal rather than silently corrupting state (spec.md §4.10).
	return false, nil, fmt.Errorf("instruction tag %d: %w", tx.Instruction.Tag, handlerErr)
}
