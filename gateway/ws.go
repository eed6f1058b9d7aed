package gateway

import (
	"encoding/hex"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/tolelom/casinochain/codec"
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/events"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleUpdatesWS implements GET /updates/{filter} (spec.md §6): a
// WebSocket stream of Seed/Events/FilteredEvents frames. filter is either
// the literal "all" or a comma-separated list of event positions to
// restrict delivery to (FilteredEvents).
func (g *Gateway) handleUpdatesWS(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(chi.URLParam(r, "filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed filter")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] updates ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	out := make(chan []byte, 64)
	id := g.updates.Subscribe(func(u events.Update) {
		if filter != nil {
			u = restrictToFilter(u, filter)
			if u.Kind == events.UpdateFilteredEvents && len(u.Events) == 0 {
				return
			}
		}
		frame := encodeWSUpdate(u)
		select {
		case out <- frame:
		default: // slow reader: drop rather than block the broker
		}
	})
	defer g.updates.Unsubscribe(id)

	serveWS(conn, out)
}

// handleMempoolWS implements GET /mempool (spec.md §6): a best-effort
// stream of Pending{transactions} frames.
func (g *Gateway) handleMempoolWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] mempool ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	out := make(chan []byte, 16)
	id := g.mempoolBroker.Subscribe(func(u events.Update) {
		frame := encodeWSUpdate(u)
		select {
		case out <- frame:
		default:
		}
	})
	defer g.mempoolBroker.Unsubscribe(id)

	serveWS(conn, out)
}

// serveWS pumps frames from out to conn until either the connection drops
// or a read arrives (this protocol is server-push only, so any client
// message or read error ends the session).
func serveWS(conn *websocket.Conn, out chan []byte) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	for {
		select {
		case <-done:
			return
		case frame := <-out:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		}
	}
}

// encodeWSUpdate writes the canonical encoding of one update frame, reusing
// the same tagged-union convention every other gateway body uses.
func encodeWSUpdate(u events.Update) []byte {
	w := codec.NewWriter()
	w.WriteByte(byte(u.Kind))
	switch u.Kind {
	case events.UpdateSeed:
		w.WriteBytes(codec.EncodeSeed(*u.Seed))
	case events.UpdateEvents, events.UpdateFilteredEvents:
		w.WriteU32(uint32(len(u.Positions)))
		for _, p := range u.Positions {
			w.WriteU64(p)
		}
		w.WriteU32(uint32(len(u.Events)))
		for _, out := range u.Events {
			w.WriteBytes(codec.EncodeOutput(out))
		}
	case events.UpdatePending:
		w.WriteU32(uint32(len(u.Transactions)))
		for _, tx := range u.Transactions {
			w.WriteBytes(codec.EncodeTransaction(tx))
		}
	}
	return w.Bytes()
}

// restrictToFilter narrows an Events update down to the caller's requested
// positions, reclassifying it as FilteredEvents (spec.md §6); non-Events
// updates (Seed, Pending) pass through unchanged since filter only applies
// to the events window.
func restrictToFilter(u events.Update, filter map[uint64]bool) events.Update {
	if u.Kind != events.UpdateEvents {
		return u
	}
	var positions []uint64
	var outs []core.Output
	for i, out := range u.Events {
		// positionless events (a brand-new round not yet assigned store
		// sequence numbers) pass every filter; otherwise match explicitly.
		if len(u.Positions) == 0 {
			outs = append(outs, out)
			continue
		}
		pos := u.Positions[i]
		if filter[pos] {
			positions = append(positions, pos)
			outs = append(outs, out)
		}
	}
	return events.Update{Kind: events.UpdateFilteredEvents, Events: outs, Positions: positions}
}

// parseFilter parses the {filter} path segment: "all" disables filtering
// (nil map), otherwise a comma-separated list of decimal or hex-prefixed
// event positions.
func parseFilter(raw string) (map[uint64]bool, error) {
	if raw == "" || raw == "all" {
		return nil, nil
	}
	out := make(map[uint64]bool)
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		var v uint64
		var err error
		if strings.HasPrefix(tok, "0x") {
			var b []byte
			if b, err = hex.DecodeString(tok[2:]); err == nil {
				for _, by := range b {
					v = v<<8 | uint64(by)
				}
			}
		} else {
			v, err = strconv.ParseUint(tok, 10, 64)
		}
		if err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, nil
}
