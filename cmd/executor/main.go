// Command executor runs a single casino chain node: it opens the
// authenticated state map and event log, drives one block per round on a
// fixed interval, certifies and persists each round's summary, and serves
// the gateway's HTTP+WS surface.
package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	herumibls "github.com/herumi/bls-eth-go-binary/bls"

	"github.com/tolelom/casinochain/codec"
	"github.com/tolelom/casinochain/config"
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/crypto/bls"
	"github.com/tolelom/casinochain/executor"
	"github.com/tolelom/casinochain/gateway"
	"github.com/tolelom/casinochain/internal/xhash"
	"github.com/tolelom/casinochain/storage"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to config file")
	blsKeyPath := flag.String("bls-key", "validator.bls.key", "path to this node's BLS secret key file")
	genKey := flag.Bool("genkey", false, "generate a new BLS key pair and exit")
	roundInterval := flag.Duration("round-interval", 2*time.Second, "fixed interval between blocks")
	flag.Parse()

	if *genKey {
		sk, pk := bls.GenerateKeyPair()
		if err := bls.SaveSecretKeyHex(*blsKeyPath, sk); err != nil {
			log.Fatalf("save key: %v", err)
		}
		fmt.Printf("Generated BLS key. Public key (add to config validators): %x\n", pk.Serialize())
		fmt.Printf("Saved secret key to: %s\n", *blsKeyPath)
		return
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sk, err := bls.LoadSecretKeyHex(*blsKeyPath)
	if err != nil {
		log.Fatalf("load bls key: %v", err)
	}

	identity, err := bls.IdentityFromConfig(cfg.Validators, cfg.Threshold)
	if err != nil {
		log.Fatalf("network identity: %v", err)
	}
	signerIndex := -1
	selfPub := sk.GetPublicKey().Serialize()
	for i, v := range identity.Validators {
		pub := v
		if string(pub.Serialize()) == string(selfPub) {
			signerIndex = i
			break
		}
	}
	if signerIndex < 0 {
		log.Fatalf("this node's BLS public key is not present in config.validators")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("mkdir data dir: %v", err)
	}

	db, err := storage.NewLevelDB(cfg.DataDir + "/chain")
	if err != nil {
		log.Fatalf("open chain db: %v", err)
	}
	defer db.Close()

	state, err := storage.OpenStateStore(db)
	if err != nil {
		log.Fatalf("open state store: %v", err)
	}
	eventDB, err := storage.NewLevelDB(cfg.DataDir + "/events")
	if err != nil {
		log.Fatalf("open event db: %v", err)
	}
	defer eventDB.Close()
	eventLog, err := storage.OpenEventStore(eventDB)
	if err != nil {
		log.Fatalf("open event store: %v", err)
	}

	exec := executor.New(state, eventLog, cfg.Admin)

	sqlDB, err := sql.Open("sqlite3", cfg.DataDir+"/summaries.db?_journal_mode=WAL")
	if err != nil {
		log.Fatalf("open summary db: %v", err)
	}
	defer sqlDB.Close()

	gw, err := gateway.New(cfg, state, identity, sqlDB)
	if err != nil {
		log.Fatalf("gateway init: %v", err)
	}
	if err := gw.Start(); err != nil {
		log.Fatalf("gateway start: %v", err)
	}
	defer gw.Stop()
	log.Printf("Gateway listening on %s", gw.Addr())

	driver := &blockDriver{
		cfg:         cfg,
		state:       state,
		events:      eventLog,
		exec:        exec,
		gateway:     gw,
		sk:          sk,
		signerIndex: signerIndex,
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		driver.run(*roundInterval, done)
	}()
	log.Printf("Block driver running (validator index %d, interval %s)", signerIndex, *roundInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutting down...")
	close(done)
	wg.Wait()
	log.Println("Shutdown complete.")
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Config file not found at %s, using defaults.", path)
			return config.DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// blockDriver stands in for the external BFT consensus layer spec.md §1
// assumes: it proposes one block per tick, self-certifies it with this
// node's own BLS key (meaningful once cfg.Threshold signers run the same
// loop against the same seed schedule), and publishes the result.
type blockDriver struct {
	cfg         *config.Config
	state       *storage.StateStore
	events      *storage.EventStore
	exec        *executor.Executor
	gateway     *gateway.Gateway
	sk          herumibls.SecretKey
	signerIndex int

	height int64
	view   uint64
	parent xhash.Digest
}

func (d *blockDriver) run(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			if err := d.step(now); err != nil {
				log.Fatalf("block driver: %v", err) // spec.md §6: non-zero exit on invariant violation
			}
		}
	}
}

func (d *blockDriver) step(now time.Time) error {
	ctx := context.Background()
	d.height++
	d.view++

	seed := d.roundSeed()
	txs := d.gateway.DrainMempool(d.cfg.MaxBlockTxs)

	result, err := d.exec.Step(ctx, d.height, now.UnixMilli(), seed, txs)
	if err != nil {
		return fmt.Errorf("step height %d: %w", d.height, err)
	}

	progress := core.Progress{
		View:         d.view,
		Height:       d.height,
		ParentDigest: d.parent,
		StateRoot:    result.StateRoot,
		StateStart:   result.StateStart,
		StateEnd:     result.StateEnd,
		EventsRoot:   result.EventsRoot,
		EventsStart:  result.EventsStart,
		EventsEnd:    result.EventsEnd,
	}
	d.parent = progress.Digest()

	summary, outputs, err := d.buildSummary(ctx, progress)
	if err != nil {
		return fmt.Errorf("build summary height %d: %w", d.height, err)
	}
	d.gateway.PublishRound(d.height, outputs, summary)
	return nil
}

// roundSeed returns this round's RNG seed: the latest seed submission
// admitted through the gateway, used as-is when its View equals the current
// view, otherwise a fallback SHA-256 digest derived from the height, so a
// missed or stale submission never replays a prior round's entropy. A
// single-validator harness has no external randomness beacon to wait on;
// production deployments run Threshold validators each independently
// submitting (and cross-checking) a seed per view before this tick fires.
func (d *blockDriver) roundSeed() [32]byte {
	if sub, ok := d.gateway.LatestSeed(); ok && sub.View == d.view {
		return sub.Seed
	}
	return sha256.Sum256([]byte(fmt.Sprintf("casinochain-fallback-seed-%d", d.height)))
}

// buildSummary assembles and self-certifies a Summary for the round just
// committed (spec.md §4.11): a real deployment aggregates Threshold
// validators' signatures over the same Progress digest before persisting;
// this harness signs alone, which verifies only when cfg.threshold == 1.
func (d *blockDriver) buildSummary(ctx context.Context, progress core.Progress) (*core.Summary, []core.Output, error) {
	var stateProof core.Proof
	var stateOps []core.Operation
	var err error
	if progress.StateEnd > progress.StateStart {
		stateProof, stateOps, err = d.state.HistoricalProof(ctx, progress.StateStart, progress.StateEnd, progress.StateEnd-progress.StateStart)
		if err != nil {
			return nil, nil, fmt.Errorf("state historical proof: %w", err)
		}
	}

	eventsProof, eventsOps, err := d.events.Range(ctx, progress.EventsStart, progress.EventsEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("events range: %w", err)
	}

	digest := progress.Digest()
	sig := bls.Sign(d.sk, digest)
	bitmap := make([]byte, (d.signerIndex/8)+1)
	bitmap[d.signerIndex/8] |= 1 << uint(d.signerIndex%8)
	cert := core.Certificate{Signers: bitmap, Signature: sig}

	s := core.Summary{
		Progress:    progress,
		Certificate: cert,
		StateProof:  stateProof,
		StateOps:    stateOps,
		EventsProof: eventsProof,
		EventsOps:   eventsOps,
	}
	_ = codec.EncodeSummary // summary is published/persisted by the gateway, not re-encoded here
	return &s, eventsOps, nil
}
