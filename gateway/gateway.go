// Package gateway implements the simulator's external surface described in
// spec.md §6: HTTP submission/lookup endpoints plus WebSocket update/mempool
// streams, grounded on the teacher's rpc package (request dispatch,
// Start/Stop lifecycle) adapted from JSON-RPC-over-plain-mux onto the
// canonical codec over chi + gorilla/websocket.
package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tolelom/casinochain/config"
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/crypto/bls"
	"github.com/tolelom/casinochain/events"
	"github.com/tolelom/casinochain/storage"
)

const maxMempoolTxs = 2000

// Gateway is the process-wide HTTP+WS server sitting in front of a chain's
// executor: it admits transactions and seeds to the mempool, serves
// authenticated point lookups, and broadcasts committed output windows to
// subscribers. It never runs the STF itself; cmd/executor's block-proposal
// loop drains its mempool and calls back into PublishRound/PublishSeed once
// a round commits.
type Gateway struct {
	cfg      *config.Config
	state    *storage.StateStore
	identity bls.NetworkIdentity
	summary  *SummaryStore

	updates       *events.Broker
	mempoolBroker *events.Broker

	mu      sync.Mutex
	mempool []core.Transaction
	seeds   []core.SeedSubmission

	srv *http.Server
	ln  net.Listener
}

// New builds a Gateway over an already-opened state store plus a SQLite
// summary cache (spec.md §6 Persistence layout: summaries(height PRIMARY
// KEY, summary_bytes BLOB)).
func New(cfg *config.Config, state *storage.StateStore, identity bls.NetworkIdentity, sqlDB *sql.DB) (*Gateway, error) {
	summary, err := OpenSummaryStore(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("gateway: open summary store: %w", err)
	}
	g := &Gateway{
		cfg:           cfg,
		state:         state,
		identity:      identity,
		summary:       summary,
		updates:       events.NewBroker(),
		mempoolBroker: events.NewBroker(),
	}
	return g, nil
}

func (g *Gateway) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/submit", g.handleSubmit)
	r.Get("/state/{digest}", g.handleState)
	r.Get("/seed/{query}", g.handleSeed)
	r.Get("/updates/{filter}", g.handleUpdatesWS)
	r.Get("/mempool", g.handleMempoolWS)
	return r
}

// Start binds cfg.GatewayAddr synchronously, then serves in the background,
// mirroring the teacher's rpc.Server.Start contract.
func (g *Gateway) Start() error {
	ln, err := net.Listen("tcp", g.cfg.GatewayAddr)
	if err != nil {
		return fmt.Errorf("gateway: listen %s: %w", g.cfg.GatewayAddr, err)
	}
	g.ln = ln
	g.srv = &http.Server{
		Handler:           g.router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := g.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[gateway] server error: %v", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the gateway down, waiting up to 5 seconds for
// in-flight requests.
func (g *Gateway) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.srv.Shutdown(ctx)
}

// Addr returns the bound listener address, useful when started on ":0".
func (g *Gateway) Addr() net.Addr {
	if g.ln != nil {
		return g.ln.Addr()
	}
	return nil
}

// PublishRound broadcasts a freshly committed round's events and, once a
// Summary has been built for it, persists that summary: called by the
// executor's driver loop strictly after both the events and state commits
// return, per spec.md §5's "broadcast after commit" ordering guarantee.
func (g *Gateway) PublishRound(height int64, outputs []core.Output, s *core.Summary) {
	g.updates.Publish(events.Update{Kind: events.UpdateEvents, Events: outputs})
	if s != nil {
		if err := g.summary.Save(*s); err != nil {
			log.Printf("[gateway] persist summary for height %d: %v", height, err)
		}
	}
}

// PublishSeed broadcasts a revealed per-round seed, bounding the in-memory
// seed history the same way the mempool is capped.
func (g *Gateway) PublishSeed(seed core.SeedSubmission) {
	g.mu.Lock()
	g.seeds = append(g.seeds, seed)
	if len(g.seeds) > maxMempoolTxs {
		g.seeds = g.seeds[len(g.seeds)-maxMempoolTxs:]
	}
	g.mu.Unlock()
	g.updates.Publish(events.Update{Kind: events.UpdateSeed, Seed: &seed})
	g.mempoolBroker.Publish(events.Update{Kind: events.UpdatePending, Transactions: g.pendingSnapshot()})
}

func (g *Gateway) pendingSnapshot() []core.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]core.Transaction, len(g.mempool))
	copy(out, g.mempool)
	return out
}

// LatestSeed returns the most recently admitted seed submission, or
// ok=false if none has arrived yet.
func (g *Gateway) LatestSeed() (core.SeedSubmission, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.seeds) == 0 {
		return core.SeedSubmission{}, false
	}
	return g.seeds[len(g.seeds)-1], true
}

// DrainMempool removes and returns up to maxTxs pending transactions, in
// admission order, for the block-proposal loop to hand to executor.Step.
func (g *Gateway) DrainMempool(maxTxs int) []core.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	if maxTxs > len(g.mempool) {
		maxTxs = len(g.mempool)
	}
	out := make([]core.Transaction, maxTxs)
	copy(out, g.mempool[:maxTxs])
	g.mempool = g.mempool[maxTxs:]
	return out
}

func writeCodecResponse(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Printf("[gateway] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, msg, status)
}
