// Package sicbo implements the Sic Bo table: three dice rolled from the
// block's seeded RNG, resolved against one of nine bet types in a single
// move (spec.md §4.5 exemplar; the remaining game types share this envelope
// via their own stub packages registered alongside it).
package sicbo

import (
	"fmt"

	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/games"
	"github.com/tolelom/casinochain/rng"
)

func init() {
	games.Register(core.GameSicBo, Module{})
}

// BetType selects which of the nine Sic Bo wagers a move resolves.
type BetType uint8

const (
	BetSmall BetType = iota
	BetBig
	BetOdd
	BetEven
	BetSpecificTriple // Number in [1,6]
	BetAnyTriple
	BetSpecificDouble // Number in [1,6]
	BetTotal          // Number in [4,17]
	BetSingle         // Number in [1,6]
)

const stateVersion = 1

// Module implements games.Module for Sic Bo.
type Module struct{}

// Init marks a fresh session as not yet rolled.
func (Module) Init(session *core.GameSession, _ *rng.GameRng) error {
	session.StateBlob = []byte{stateVersion, 0}
	return nil
}

// movePayload is the wire shape of a CasinoGameMove.Payload for Sic Bo.
type movePayload struct {
	Bet    BetType
	Number uint8
}

func decodeMovePayload(payload []byte) (movePayload, error) {
	if len(payload) != 2 {
		return movePayload{}, fmt.Errorf("sicbo: move payload must be 2 bytes, got %d", len(payload))
	}
	return movePayload{Bet: BetType(payload[0]), Number: payload[1]}, nil
}

// ProcessMove rolls three dice and resolves the single bet named in payload.
func (Module) ProcessMove(session *core.GameSession, payload []byte, r *rng.GameRng) ([]core.Event, error) {
	if len(session.StateBlob) >= 2 && session.StateBlob[1] != 0 {
		return nil, core.NewCasinoSessionError(session.Player, session.ID, core.ErrSessionAlreadyComplete, "sic bo session already rolled")
	}
	mv, err := decodeMovePayload(payload)
	if err != nil {
		return nil, core.NewCasinoSessionError(session.Player, session.ID, core.ErrInvalidMovePayload, err.Error())
	}
	if !validBet(mv) {
		return nil, core.NewCasinoSessionError(session.Player, session.ID, core.ErrInvalidBet, "sic bo: invalid bet type/number combination")
	}

	d1, d2, d3 := r.RollDie(), r.RollDie(), r.RollDie()
	mult := payoutMultiplier(mv, d1, d2, d3)
	payout := saturatingMul(session.Bet, uint64(mult))

	session.MoveCount++
	session.IsComplete = true
	session.StateBlob = []byte{stateVersion, 1, d1, d2, d3, byte(mv.Bet), mv.Number}

	evt := core.Event{
		Type:       core.EventGameResult,
		Player:     session.Player,
		SessionID:  session.ID,
		HasSession: true,
		Amount:     payout,
		Data: map[string]string{
			"die1": fmt.Sprint(d1),
			"die2": fmt.Sprint(d2),
			"die3": fmt.Sprint(d3),
		},
	}
	return []core.Event{evt}, nil
}

// ValidBet reports whether bet/number is a well-formed wager, exported so
// the global-table handler can validate a GlobalTablePlaceBet against the
// same rules without duplicating them (spec.md §4.8).
func ValidBet(bet BetType, number uint8) bool {
	return validBet(movePayload{Bet: bet, Number: number})
}

// PayoutMultiplier exposes payoutMultiplier for the global-table handler,
// which resolves its round outcome against the same Sic Bo paytable
// (spec.md §4.8; the per-player session variant lives above).
func PayoutMultiplier(bet BetType, number, d1, d2, d3 uint8) uint64 {
	return payoutMultiplier(movePayload{Bet: bet, Number: number}, d1, d2, d3)
}

func validBet(mv movePayload) bool {
	switch mv.Bet {
	case BetSmall, BetBig, BetOdd, BetEven, BetAnyTriple:
		return true
	case BetSpecificTriple, BetSpecificDouble, BetSingle:
		return mv.Number >= 1 && mv.Number <= 6
	case BetTotal:
		return mv.Number >= 4 && mv.Number <= 17
	default:
		return false
	}
}

// totalPayoutBase maps a Total bet's target sum to total_payout(n); the
// Total bet's own multiplier is this value plus one.
var totalPayoutBase = map[uint8]uint64{
	4: 50, 17: 50,
	5: 18, 16: 18,
	6: 14, 15: 14,
	7: 12, 14: 12,
	8: 8, 13: 8,
	9: 6, 10: 6, 11: 6, 12: 6,
}

// payoutMultiplier returns the bet's payout multiplier k (0 means the bet
// lost), already inclusive of the returned stake for k >= 2, given the
// three rolled dice.
func payoutMultiplier(mv movePayload, d1, d2, d3 uint8) uint64 {
	isTriple := d1 == d2 && d2 == d3
	total := int(d1) + int(d2) + int(d3)

	switch mv.Bet {
	case BetSmall:
		if !isTriple && total >= 4 && total <= 10 {
			return 2
		}
	case BetBig:
		if !isTriple && total >= 11 && total <= 17 {
			return 2
		}
	case BetOdd:
		if !isTriple && total%2 == 1 {
			return 2
		}
	case BetEven:
		if !isTriple && total%2 == 0 {
			return 2
		}
	case BetSpecificTriple:
		if isTriple && d1 == mv.Number {
			return 151
		}
	case BetAnyTriple:
		if isTriple {
			return 25
		}
	case BetSpecificDouble:
		if countDie(mv.Number, d1, d2, d3) >= 2 {
			return 9
		}
	case BetTotal:
		if uint8(total) == mv.Number {
			return totalPayoutBase[mv.Number] + 1
		}
	case BetSingle:
		if count := countDie(mv.Number, d1, d2, d3); count > 0 {
			return uint64(count) + 1
		}
	}
	return 0
}

func countDie(want, d1, d2, d3 uint8) int {
	n := 0
	if d1 == want {
		n++
	}
	if d2 == want {
		n++
	}
	if d3 == want {
		n++
	}
	return n
}

// saturatingMul multiplies without wrapping past the uint64 range, needed
// because a 151x specific-triple payout on a large bet could otherwise overflow.
func saturatingMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	product := a * b
	if product/b != a {
		return ^uint64(0)
	}
	return product
}
