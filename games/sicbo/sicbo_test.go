package sicbo

import (
	"testing"

	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/rng"
)

func TestValidBet(t *testing.T) {
	cases := []struct {
		bet    BetType
		number uint8
		want   bool
	}{
		{BetSmall, 0, true},
		{BetBig, 0, true},
		{BetSpecificTriple, 0, false},
		{BetSpecificTriple, 1, true},
		{BetSpecificTriple, 7, false},
		{BetTotal, 3, false},
		{BetTotal, 4, true},
		{BetTotal, 17, true},
		{BetTotal, 18, false},
	}
	for _, c := range cases {
		if got := ValidBet(c.bet, c.number); got != c.want {
			t.Errorf("ValidBet(%v, %d) = %v, want %v", c.bet, c.number, got, c.want)
		}
	}
}

func TestPayoutMultiplierKnownOutcomes(t *testing.T) {
	if m := PayoutMultiplier(BetSmall, 0, 2, 3, 4); m != 2 {
		t.Errorf("small 2-3-4 (sum 9): got %d want 2", m)
	}
	if m := PayoutMultiplier(BetBig, 0, 5, 6, 6); m != 2 {
		t.Errorf("big 5-6-6 (sum 17): got %d want 2", m)
	}
	// A triple voids every Small/Big bet, win or lose on the raw sum.
	if m := PayoutMultiplier(BetSmall, 0, 3, 3, 3); m != 0 {
		t.Errorf("small on a triple must lose: got %d", m)
	}
	if m := PayoutMultiplier(BetAnyTriple, 0, 3, 3, 3); m != 25 {
		t.Errorf("any triple 3-3-3: got %d want 25", m)
	}
	if m := PayoutMultiplier(BetSpecificTriple, 4, 4, 4, 4); m != 151 {
		t.Errorf("specific triple on 4-4-4 betting 4: got %d want 151", m)
	}
	if m := PayoutMultiplier(BetSpecificTriple, 4, 3, 3, 3); m != 0 {
		t.Errorf("specific triple 3-3-3 betting 4 must lose: got %d", m)
	}
	if m := PayoutMultiplier(BetSingle, 5, 5, 5, 1); m != 3 {
		t.Errorf("single 5 showing twice: got %d want 3", m)
	}
	if m := PayoutMultiplier(BetTotal, 10, 3, 3, 4); m != 7 {
		t.Errorf("total 10 (base 6 + 1): got %d want 7", m)
	}
}

func TestProcessMoveRejectsASecondRoll(t *testing.T) {
	session := &core.GameSession{ID: 1, Player: []byte("p"), Bet: 100}
	r := rng.NewGameRng([32]byte{1}, session.ID, 0)
	if err := (Module{}).Init(session, r); err != nil {
		t.Fatalf("Init: %v", err)
	}
	payload := []byte{byte(BetBig), 0}
	if _, err := (Module{}).ProcessMove(session, payload, r); err != nil {
		t.Fatalf("first ProcessMove: %v", err)
	}
	if !session.IsComplete {
		t.Fatalf("session should be complete after one move")
	}
	if _, err := (Module{}).ProcessMove(session, payload, r); err == nil {
		t.Fatalf("expected an error rolling an already-resolved session")
	}
}

func TestProcessMoveRejectsInvalidPayload(t *testing.T) {
	session := &core.GameSession{ID: 2, Player: []byte("p"), Bet: 100}
	r := rng.NewGameRng([32]byte{1}, session.ID, 0)
	if err := (Module{}).Init(session, r); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := (Module{}).ProcessMove(session, []byte{1}, r); err == nil {
		t.Fatalf("expected an error for a malformed payload")
	}
}

func TestProcessMoveDeterministicGivenSameSeed(t *testing.T) {
	newSession := func() *core.GameSession { return &core.GameSession{ID: 9, Player: []byte("p"), Bet: 100} }
	payload := []byte{byte(BetBig), 0}

	s1 := newSession()
	r1 := rng.NewGameRng([32]byte{7}, s1.ID, 0)
	_ = (Module{}).Init(s1, r1)
	evts1, err := (Module{}).ProcessMove(s1, payload, r1)
	if err != nil {
		t.Fatalf("ProcessMove: %v", err)
	}

	s2 := newSession()
	r2 := rng.NewGameRng([32]byte{7}, s2.ID, 0)
	_ = (Module{}).Init(s2, r2)
	evts2, err := (Module{}).ProcessMove(s2, payload, r2)
	if err != nil {
		t.Fatalf("ProcessMove: %v", err)
	}

	if evts1[0].Data["die1"] != evts2[0].Data["die1"] ||
		evts1[0].Data["die2"] != evts2[0].Data["die2"] ||
		evts1[0].Data["die3"] != evts2[0].Data["die3"] {
		t.Fatalf("same seed/session/move must roll identical dice: %v vs %v", evts1[0].Data, evts2[0].Data)
	}
}
