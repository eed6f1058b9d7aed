package codec

import (
	"bytes"
	"testing"

	"github.com/tolelom/casinochain/core"
)

func TestEncodeOutputEventDataDeterministic(t *testing.T) {
	out := core.Output{
		Kind: core.OutputEvent,
		Event: core.Event{
			Type:   core.EventGameResult,
			Player: []byte("alice"),
			Amount: 42,
			Data: map[string]string{
				"zebra": "1",
				"alpha": "2",
				"mango": "3",
				"kiwi":  "4",
			},
		},
	}

	first := EncodeOutput(out)
	for i := 0; i < 20; i++ {
		again := EncodeOutput(out)
		if !bytes.Equal(first, again) {
			t.Fatalf("EncodeOutput is not deterministic across runs (map iteration order leaking through)")
		}
	}
}

func TestEncodeDecodeOutputRoundTrip(t *testing.T) {
	out := core.Output{
		Kind: core.OutputEvent,
		Event: core.Event{
			Type:       core.EventChipsDeposited,
			Player:     []byte("bob"),
			SessionID:  7,
			HasSession: true,
			Amount:     1000,
			Data:       map[string]string{"currency": "VUSDT"},
		},
	}
	got, err := DecodeOutput(EncodeOutput(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Event.SessionID != 7 || !got.Event.HasSession || got.Event.Amount != 1000 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Event.Data["currency"] != "VUSDT" {
		t.Fatalf("event data not preserved: %+v", got.Event.Data)
	}
}

func TestEncodeDecodeOutputCommitMarker(t *testing.T) {
	out := core.Output{Kind: core.OutputCommitMarker, Height: 9, Start: 3}
	got, err := DecodeOutput(EncodeOutput(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != core.OutputCommitMarker || got.Height != 9 || got.Start != 3 {
		t.Fatalf("commit marker round trip mismatch: %+v", got)
	}
}
