package gateway

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tolelom/casinochain/codec"
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/events"
	"github.com/tolelom/casinochain/internal/xhash"
	"github.com/tolelom/casinochain/summary"
)

const maxSubmissionBytes = 1 << 20 // 1 MiB, mirrors the teacher's per-request body cap

// handleSubmit implements POST /submit (spec.md §6, §9): decode the tagged
// Submission envelope and dispatch on its discriminant.
func (g *Gateway) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSubmissionBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "body too large or unreadable")
		return
	}
	sub, err := codec.DecodeSubmission(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed submission: "+err.Error())
		return
	}
	switch sub.Tag {
	case core.SubmissionSeed:
		g.admitSeed(w, *sub.Seed)
	case core.SubmissionTransactions:
		g.admitTransactions(w, sub.Transactions.Transactions)
	case core.SubmissionSummary:
		g.admitSummary(w, *sub.Summary)
	default:
		writeError(w, http.StatusBadRequest, "unknown submission tag")
	}
}

// admitSeed accepts a revealed per-round seed once its view is not stale
// relative to the last seed this gateway has already seen, then fans it out
// to /updates subscribers.
func (g *Gateway) admitSeed(w http.ResponseWriter, seed core.SeedSubmission) {
	g.mu.Lock()
	if len(g.seeds) > 0 && seed.View < g.seeds[len(g.seeds)-1].View {
		g.mu.Unlock()
		writeError(w, http.StatusBadRequest, "stale seed view")
		return
	}
	g.mu.Unlock()
	g.PublishSeed(seed)
	w.WriteHeader(http.StatusOK)
}

// admitTransactions appends txs to the mempool for the next block, applying
// no nonce or signature checks here: those belong to the block STF at
// execution time (spec.md §4.6). The mempool is only ever a hint to block
// proposers.
func (g *Gateway) admitTransactions(w http.ResponseWriter, txs []core.Transaction) {
	g.mu.Lock()
	g.mempool = append(g.mempool, txs...)
	if len(g.mempool) > maxMempoolTxs {
		g.mempool = g.mempool[len(g.mempool)-maxMempoolTxs:]
	}
	pending := make([]core.Transaction, len(g.mempool))
	copy(pending, g.mempool)
	g.mu.Unlock()
	g.mempoolBroker.Publish(events.Update{Kind: events.UpdatePending, Transactions: pending})
	w.WriteHeader(http.StatusOK)
}

// admitSummary fully verifies a relayed Summary (spec.md §4.11) before
// persisting and broadcasting it, letting non-validator gateways forward
// trust without ever running the STF themselves.
func (g *Gateway) admitSummary(w http.ResponseWriter, s core.Summary) {
	if _, err := summary.Verify(g.identity, s); err != nil {
		writeError(w, http.StatusBadRequest, "summary verification failed: "+err.Error())
		return
	}
	if err := g.summary.Save(s); err != nil {
		writeError(w, http.StatusInternalServerError, "persist summary: "+err.Error())
		return
	}
	g.updates.Publish(events.Update{Kind: events.UpdateEvents, Events: s.EventsOps})
	w.WriteHeader(http.StatusOK)
}

// handleState implements GET /state/{hex(Digest)} (spec.md §6): authenticate
// a key's current value under the latest certified state root.
func (g *Gateway) handleState(w http.ResponseWriter, r *http.Request) {
	addr, err := parseDigest(chi.URLParam(r, "digest"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed digest")
		return
	}
	value, ok, err := g.state.GetByAddr(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "state lookup failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no current value for key")
		return
	}
	loc, ok, err := g.state.LocationByAddr(addr)
	if err != nil || !ok {
		writeError(w, http.StatusInternalServerError, "location lookup failed")
		return
	}

	progress, cert, ok := g.certifiedProgress()
	if !ok {
		writeError(w, http.StatusNotFound, "no certified round yet")
		return
	}
	if loc < progress.StateStart || loc >= progress.StateEnd {
		writeError(w, http.StatusConflict, "key's latest write falls outside the most recently certified window")
		return
	}
	proof, op, err := g.buildLookupProof(r.Context(), progress, loc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "build proof failed: "+err.Error())
		return
	}
	lookup := core.Lookup{Progress: progress, Certificate: cert, Proof: proof, Location: loc, Operation: op}
	writeCodecResponse(w, codec.EncodeLookup(lookup))
}

// buildLookupProof replays every op in the certified window
// [progress.StateStart, progress.StateEnd), letting a caller confirm both
// that the returned Operation (at Location) is the key's committed write
// and that the full window folds into progress.StateRoot (spec.md §6). A
// Lookup can only be served for keys whose most recent write falls inside
// the most recently certified summary's window; handleState enforces that
// before calling this.
func (g *Gateway) buildLookupProof(ctx context.Context, progress core.Progress, loc uint64) (core.Proof, core.Operation, error) {
	start, end := progress.StateStart, progress.StateEnd
	snap, ops, err := g.state.HistoricalProof(ctx, start, end, end-start)
	if err != nil {
		return nil, core.Operation{}, err
	}
	var target core.Operation
	found := false
	for _, op := range ops {
		if op.Seq == loc {
			target = op
			found = true
			break
		}
	}
	if !found {
		return nil, core.Operation{}, errors.New("gateway: location not present in replay window")
	}

	w := codec.NewWriter()
	w.WriteBytes([]byte(snap))
	w.WriteU32(uint32(len(ops)))
	for _, op := range ops {
		w.WriteBytes(codec.EncodeOperation(op))
	}
	return core.Proof(w.Bytes()), target, nil
}

// certifiedProgress returns the Progress/Certificate of the most recently
// persisted Summary, the authenticated root every Lookup is proven under.
func (g *Gateway) certifiedProgress() (core.Progress, core.Certificate, bool) {
	s, ok, err := g.summary.Latest()
	if err != nil || !ok {
		return core.Progress{}, core.Certificate{}, false
	}
	return s.Progress, s.Certificate, true
}

// handleSeed implements GET /seed/{hex(Query)} (spec.md §6, §9).
func (g *Gateway) handleSeed(w http.ResponseWriter, r *http.Request) {
	raw, err := hex.DecodeString(chi.URLParam(r, "query"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed query")
		return
	}
	q, err := codec.DecodeQuery(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed query")
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.seeds) == 0 {
		writeError(w, http.StatusNotFound, "no seed yet")
		return
	}
	var seed core.SeedSubmission
	switch q.Tag {
	case core.QueryLatest:
		seed = g.seeds[len(g.seeds)-1]
	case core.QueryIndex:
		idx := -1
		for i, s := range g.seeds {
			if s.View == q.Index {
				idx = i
				break
			}
		}
		if idx < 0 {
			writeError(w, http.StatusNotFound, "seed not found")
			return
		}
		seed = g.seeds[idx]
	default:
		writeError(w, http.StatusBadRequest, "unknown query tag")
		return
	}
	writeCodecResponse(w, codec.EncodeSeed(seed))
}

func parseDigest(hexStr string) (xhash.Digest, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return xhash.Digest{}, err
	}
	if len(b) != xhash.Size {
		return xhash.Digest{}, errors.New("gateway: digest must be 32 bytes")
	}
	var d xhash.Digest
	copy(d[:], b)
	return d, nil
}

