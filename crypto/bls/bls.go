// Package bls implements the threshold-aggregated BLS12-381 certificates
// that let a non-validator verify a round's Summary without replaying it
// (spec.md §4.11), grounded on the aggregate/verify pattern used elsewhere
// in the retrieval pack for validator signing.
package bls

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/herumi/bls-eth-go-binary/bls"
	"github.com/tolelom/casinochain/core"
)

func init() {
	if err := bls.Init(bls.BLS12_381); err != nil {
		panic(fmt.Errorf("bls: curve init: %w", err))
	}
	if err := bls.SetETHmode(bls.EthModeDraft07); err != nil {
		panic(fmt.Errorf("bls: eth mode: %w", err))
	}
}

// NetworkIdentity is the ordered set of validator BLS public keys a
// Certificate's Signers bitmap indexes into, plus the minimum number of
// signers required for the certificate to be considered valid.
type NetworkIdentity struct {
	Validators []bls.PublicKey
	Threshold  int
}

// ParsePublicKeyHex decodes a hex-encoded serialized BLS public key, the
// format config.Config.Validators stores the network identity in.
func ParsePublicKeyHex(s string) (bls.PublicKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return bls.PublicKey{}, fmt.Errorf("bls: decode public key hex: %w", err)
	}
	var pk bls.PublicKey
	if err := pk.Deserialize(raw); err != nil {
		return bls.PublicKey{}, fmt.Errorf("bls: deserialize public key: %w", err)
	}
	return pk, nil
}

// IdentityFromConfig builds a NetworkIdentity from the hex-encoded
// validator list and threshold a config.Config carries (spec.md §6).
func IdentityFromConfig(validatorsHex []string, threshold int) (NetworkIdentity, error) {
	validators := make([]bls.PublicKey, len(validatorsHex))
	for i, s := range validatorsHex {
		pk, err := ParsePublicKeyHex(s)
		if err != nil {
			return NetworkIdentity{}, fmt.Errorf("validator %d: %w", i, err)
		}
		validators[i] = pk
	}
	return NetworkIdentity{Validators: validators, Threshold: threshold}, nil
}

// GenerateKeyPair creates a fresh BLS12-381 key pair for a validator.
func GenerateKeyPair() (bls.SecretKey, bls.PublicKey) {
	var sk bls.SecretKey
	sk.SetByCSPRNG()
	return sk, *sk.GetPublicKey()
}

// LoadSecretKeyHex reads a hex-encoded serialized BLS secret key from path.
func LoadSecretKeyHex(path string) (bls.SecretKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bls.SecretKey{}, fmt.Errorf("bls: read key file: %w", err)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return bls.SecretKey{}, fmt.Errorf("bls: decode key file hex: %w", err)
	}
	var sk bls.SecretKey
	if err := sk.Deserialize(raw); err != nil {
		return bls.SecretKey{}, fmt.Errorf("bls: deserialize secret key: %w", err)
	}
	return sk, nil
}

// SaveSecretKeyHex writes sk's hex-encoded serialization to path.
func SaveSecretKeyHex(path string, sk bls.SecretKey) error {
	return os.WriteFile(path, []byte(hex.EncodeToString(sk.Serialize())), 0600)
}

// Sign produces this validator's signature over digest.
func Sign(sk bls.SecretKey, digest [32]byte) []byte {
	sig := sk.SignByte(digest[:])
	return sig.Serialize()
}

// Aggregate combines per-validator signatures into a single certificate
// signature. The returned Certificate's Signers bitmap is left empty; the
// caller sets it to mark which index into identity.Validators each element
// of sigs corresponds to, in order.
func Aggregate(sigs [][]byte) (core.Certificate, error) {
	if len(sigs) == 0 {
		return core.Certificate{}, fmt.Errorf("bls: no signatures to aggregate")
	}
	var agg bls.Sign
	for i, raw := range sigs {
		var s bls.Sign
		if err := s.Deserialize(raw); err != nil {
			return core.Certificate{}, fmt.Errorf("bls: deserialize sig %d: %w", i, err)
		}
		if i == 0 {
			agg = s
		} else {
			agg.Add(&s)
		}
	}
	return core.Certificate{Signature: agg.Serialize()}, nil
}

// Verify checks that cert was produced by at least identity.Threshold of
// identity.Validators, by aggregating the public keys its Signers bitmap
// selects and verifying once against the aggregate signature.
func Verify(identity NetworkIdentity, cert core.Certificate, digest [32]byte) error {
	signerCount := popcount(cert.Signers)
	if signerCount < identity.Threshold {
		return fmt.Errorf("bls: %d signers below threshold %d", signerCount, identity.Threshold)
	}

	var aggPub bls.PublicKey
	first := true
	for i, v := range identity.Validators {
		if !bitSet(cert.Signers, i) {
			continue
		}
		if first {
			aggPub = v
			first = false
		} else {
			aggPub.Add(&v)
		}
	}
	if first {
		return fmt.Errorf("bls: no signers selected")
	}

	var sig bls.Sign
	if err := sig.Deserialize(cert.Signature); err != nil {
		return fmt.Errorf("bls: deserialize certificate signature: %w", err)
	}
	if !sig.VerifyByte(&aggPub, digest[:]) {
		return fmt.Errorf("bls: certificate signature invalid")
	}
	return nil
}

func bitSet(bitmap []byte, i int) bool {
	byteIdx, bitIdx := i/8, i%8
	if byteIdx >= len(bitmap) {
		return false
	}
	return bitmap[byteIdx]&(1<<uint(bitIdx)) != 0
}

func popcount(bitmap []byte) int {
	n := 0
	for _, b := range bitmap {
		for b != 0 {
			n += int(b & 1)
			b >>= 1
		}
	}
	return n
}
