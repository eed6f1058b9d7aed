package core

import (
	"errors"
	"fmt"

	"github.com/tolelom/casinochain/crypto"
)

// ErrNonceMismatch names the case where a transaction's Nonce does not equal
// the sender's current on-chain nonce. The layer does not return it: per
// spec.md §7 that case is a silent drop, with no event, no state change, and
// the transaction simply excluded from the block's processed set.
var ErrNonceMismatch = errors.New("core: transaction nonce does not match account nonce")

// Transaction is the atomic unit of work submitted to the layer: a signed
// Instruction from a known public key at a specific replay-protection nonce
// (spec.md §4.6, §6).
type Transaction struct {
	PublicKey   []byte
	Nonce       uint64
	Instruction Instruction
	Signature   []byte
}

// Sign sets tx.Signature over preimage, the codec package's canonical
// domain-separated encoding of tx's public key, nonce, and instruction.
func (tx *Transaction) Sign(priv crypto.PrivateKey, preimage []byte) {
	tx.Signature = crypto.SignRaw(priv, preimage)
}

// Verify checks tx.Signature against preimage using tx.PublicKey.
func (tx *Transaction) Verify(preimage []byte) error {
	if len(tx.PublicKey) == 0 {
		return errors.New("core: transaction missing public key")
	}
	if err := crypto.VerifyRaw(crypto.PublicKey(tx.PublicKey), preimage, tx.Signature); err != nil {
		return fmt.Errorf("verify transaction signature: %w", err)
	}
	return nil
}
