// Package config loads the executor/gateway's process-wide configuration:
// data directories, network addresses, the validator identity list, and the
// admin public-key set (spec.md §5 "Admin public-key set", §6
// CASINO_ADMIN_PUBLIC_KEY_HEX), grounded on the teacher's
// Load/Validate/Save trio.
package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// TLSConfig holds paths to the PEM files needed for the gateway's mTLS
// listener. When nil or all paths empty, the gateway falls back to plain
// TCP, exactly the teacher's convention.
type TLSConfig struct {
	CACert   string `json:"ca_cert"`
	NodeCert string `json:"node_cert"`
	NodeKey  string `json:"node_key"`
}

// Config holds all executor/gateway process configuration.
type Config struct {
	NodeID       string     `json:"node_id"`
	DataDir      string     `json:"data_dir"`
	GatewayAddr  string     `json:"gateway_addr"`  // host:port for HTTP+WS
	MaxBlockTxs  int        `json:"max_block_txs"` // 0 -> 500
	Validators   []string   `json:"validators"`    // network identity: hex BLS public keys, ordered
	Threshold    int        `json:"threshold"`      // minimum signer count for a valid certificate
	RPCAuthToken string     `json:"rpc_auth_token,omitempty"`
	TLS          *TLSConfig `json:"tls,omitempty"`

	// Admin is populated from CASINO_ADMIN_PUBLIC_KEY_HEX at Load time, not
	// serialized: rotation is by restart, per spec.md §5.
	Admin *AdminSet `json:"-"`
}

// DefaultConfig returns a single-node development configuration.
func DefaultConfig() *Config {
	return &Config{
		NodeID:      "node0",
		DataDir:     "./data",
		GatewayAddr: ":8080",
		MaxBlockTxs: 500,
		Threshold:   1,
		Admin:       EmptyAdminSet(),
	}
}

const adminEnvVar = "CASINO_ADMIN_PUBLIC_KEY_HEX"

// Load reads a JSON config file from path, overlays the admin set from
// CASINO_ADMIN_PUBLIC_KEY_HEX, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	admin, err := LoadAdminSetFromEnv(adminEnvVar)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", adminEnvVar, err)
	}
	cfg.Admin = admin
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required fields are present and well-formed.
func (c *Config) Validate() error {
	if c.NodeID == "" {
		return fmt.Errorf("node_id must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.GatewayAddr == "" {
		return fmt.Errorf("gateway_addr must not be empty")
	}
	if c.MaxBlockTxs < 0 {
		return fmt.Errorf("max_block_txs must not be negative, got %d", c.MaxBlockTxs)
	}
	if c.MaxBlockTxs == 0 {
		c.MaxBlockTxs = 500
	}
	if len(c.Validators) == 0 {
		return fmt.Errorf("validators list must not be empty")
	}
	for i, v := range c.Validators {
		if _, err := hex.DecodeString(v); err != nil {
			return fmt.Errorf("validators[%d]: must be hex-encoded, got %q", i, v)
		}
	}
	if c.Threshold <= 0 || c.Threshold > len(c.Validators) {
		return fmt.Errorf("threshold must be in [1, %d], got %d", len(c.Validators), c.Threshold)
	}
	if c.TLS != nil {
		t := c.TLS
		allSet := t.CACert != "" && t.NodeCert != "" && t.NodeKey != ""
		allEmpty := t.CACert == "" && t.NodeCert == "" && t.NodeKey == ""
		if !allSet && !allEmpty {
			return fmt.Errorf("tls: all three paths (ca_cert, node_cert, node_key) must be set or all empty")
		}
	}
	return nil
}

// Save writes the config to path as formatted JSON. The admin set is never
// persisted: it is always resolved fresh from the environment at Load.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// AdminSet is the immutable snapshot of admin public keys resolved at
// startup; IsAdmin is pure over this snapshot (spec.md §5).
type AdminSet struct {
	keys map[[32]byte]bool
}

// EmptyAdminSet returns a set that rejects every public key.
func EmptyAdminSet() *AdminSet { return &AdminSet{keys: map[[32]byte]bool{}} }

// IsAdmin reports whether pk is a member of the admin set.
func (s *AdminSet) IsAdmin(pk []byte) bool {
	if s == nil || len(pk) != 32 {
		return false
	}
	var k [32]byte
	copy(k[:], pk)
	return s.keys[k]
}

// LoadAdminSetFromEnv parses envVar as a comma-or-whitespace-separated list
// of hex-encoded ed25519 public keys, each optionally "0x"-prefixed. An
// empty or missing value yields EmptyAdminSet, so admin instructions always
// fail Unauthorized (spec.md §6).
func LoadAdminSetFromEnv(envVar string) (*AdminSet, error) {
	raw := os.Getenv(envVar)
	set := EmptyAdminSet()
	if strings.TrimSpace(raw) == "" {
		return set, nil
	}
	for _, tok := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	}) {
		tok = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
		b, err := hex.DecodeString(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid admin key %q: %w", tok, err)
		}
		if len(b) != 32 {
			return nil, fmt.Errorf("admin key %q must decode to 32 bytes, got %d", tok, len(b))
		}
		var k [32]byte
		copy(k[:], b)
		set.keys[k] = true
	}
	return set, nil
}
