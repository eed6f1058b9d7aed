// Package client is a thin Go SDK over the gateway's HTTP surface: it signs
// and submits transactions and seeds, and fetches authenticated lookups and
// seeds, mirroring the retry/verify conventions of the retrieval pack's
// original client (see original_source/client/src/consensus.rs) adapted onto
// this repo's codec and transport.
package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tolelom/casinochain/codec"
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/crypto"
	"github.com/tolelom/casinochain/crypto/bls"
)

// Client talks to one gateway instance over HTTP.
type Client struct {
	baseURL  string
	http     *http.Client
	identity bls.NetworkIdentity // used to verify certificates on returned Lookups/Summaries
}

// New builds a Client against baseURL (e.g. "http://localhost:8080").
// identity is optional: pass a zero-value bls.NetworkIdentity to skip
// certificate verification on responses (e.g. talking to a devnet gateway
// whose validator set the caller does not track).
func New(baseURL string, identity bls.NetworkIdentity) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 15 * time.Second},
		identity: identity,
	}
}

// SubmitTransactions posts a batch of already-signed transactions to the
// mempool (spec.md §6, §9). The gateway performs no nonce/signature checks
// at this layer; it is purely an admission hint to block proposers.
func (c *Client) SubmitTransactions(ctx context.Context, view uint64, height int64, txs []core.Transaction) error {
	sub := core.Submission{
		Tag: core.SubmissionTransactions,
		Transactions: &core.TransactionsSubmission{
			View:         view,
			Height:       height,
			Transactions: txs,
		},
	}
	return c.submit(ctx, sub)
}

// SubmitSeed posts a revealed per-round seed.
func (c *Client) SubmitSeed(ctx context.Context, seed core.SeedSubmission) error {
	return c.submit(ctx, core.Submission{Tag: core.SubmissionSeed, Seed: &seed})
}

// SubmitSummary relays an already-certified Summary to a gateway that
// verifies rather than produces it (spec.md §4.11).
func (c *Client) SubmitSummary(ctx context.Context, s core.Summary) error {
	return c.submit(ctx, core.Submission{Tag: core.SubmissionSummary, Summary: &s})
}

func (c *Client) submit(ctx context.Context, sub core.Submission) error {
	body := codec.EncodeSubmission(sub)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: submit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("client: submit rejected (%d): %s", resp.StatusCode, msg)
	}
	return nil
}

// Lookup fetches and authenticates a single key's current value under the
// gateway's most recently certified root (spec.md §6 GET
// /state/{hex(Digest)}). ok is false on a 404 (no current value for the key,
// or no certified round yet) or a
// 409 (written more recently than the latest certified round has covered;
// the caller should retry after the next round commits).
func (c *Client) Lookup(ctx context.Context, key core.Key) (core.Lookup, bool, error) {
	addr := key.Addr()
	url := c.baseURL + "/state/" + hex.EncodeToString(addr[:])
	resp, err := c.getWithRetry(ctx, url)
	if err != nil {
		return core.Lookup{}, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusConflict {
		return core.Lookup{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return core.Lookup{}, false, fmt.Errorf("client: lookup failed (%d): %s", resp.StatusCode, msg)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Lookup{}, false, err
	}
	lookup, err := codec.DecodeLookup(data)
	if err != nil {
		return core.Lookup{}, false, fmt.Errorf("client: decode lookup: %w", err)
	}
	if err := c.verifyCertificate(lookup.Progress, lookup.Certificate); err != nil {
		return core.Lookup{}, false, err
	}
	return lookup, true, nil
}

// QuerySeed fetches the seed selected by q (Latest or a specific view).
func (c *Client) QuerySeed(ctx context.Context, q core.Query) (core.SeedSubmission, bool, error) {
	url := c.baseURL + "/seed/" + hex.EncodeToString(codec.EncodeQuery(q))
	resp, err := c.getWithRetry(ctx, url)
	if err != nil {
		return core.SeedSubmission{}, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return core.SeedSubmission{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return core.SeedSubmission{}, false, fmt.Errorf("client: query seed failed (%d): %s", resp.StatusCode, msg)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.SeedSubmission{}, false, err
	}
	seed, err := codec.DecodeSeed(data)
	if err != nil {
		return core.SeedSubmission{}, false, fmt.Errorf("client: decode seed: %w", err)
	}
	if q.Tag == core.QueryIndex && seed.View != q.Index {
		return core.SeedSubmission{}, false, fmt.Errorf("client: unexpected seed view: wanted %d, got %d", q.Index, seed.View)
	}
	return seed, true, nil
}

// WaitForSeedAtLeast polls QuerySeed(Latest) until its view reaches minView,
// for callers (bots, tournament schedulers) that need the chain to advance
// past a known view before proceeding.
func (c *Client) WaitForSeedAtLeast(ctx context.Context, minView uint64, pollInterval time.Duration) (core.SeedSubmission, error) {
	if pollInterval <= 0 {
		pollInterval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		seed, ok, err := c.QuerySeed(ctx, core.Query{Tag: core.QueryLatest})
		if err != nil {
			return core.SeedSubmission{}, err
		}
		if ok && seed.View >= minView {
			return seed, nil
		}
		select {
		case <-ctx.Done():
			return core.SeedSubmission{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) verifyCertificate(progress core.Progress, cert core.Certificate) error {
	if len(c.identity.Validators) == 0 {
		return nil
	}
	if err := bls.Verify(c.identity, cert, progress.Digest()); err != nil {
		return fmt.Errorf("client: certificate verification failed: %w", err)
	}
	return nil
}

// getWithRetry retries transient network failures a few times with a short
// backoff, the same resilience the original client applied to every GET.
func (c *Client) getWithRetry(ctx context.Context, url string) (*http.Response, error) {
	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("client: get %s: %w", url, lastErr)
}

// SignTransaction builds and signs a Transaction for instruction ins sent by
// priv at nonce, ready for SubmitTransactions.
func SignTransaction(priv crypto.PrivateKey, nonce uint64, ins core.Instruction) core.Transaction {
	pub := priv.Public()
	tx := core.Transaction{PublicKey: []byte(pub), Nonce: nonce, Instruction: ins}
	preimage := codec.TransactionSigningPreimage(tx.PublicKey, tx.Nonce, tx.Instruction)
	tx.Sign(priv, preimage)
	return tx
}
