package codec

import "github.com/tolelom/casinochain/core"

// TransactionNamespace domain-separates transaction signatures from every
// other thing an ed25519 key in this system ever signs (spec.md §6).
const TransactionNamespace = "casinochain.transaction.v1"

// TransactionSigningPreimage builds the bytes a sender signs: the namespace,
// public key, nonce, and instruction, in that order, so a signature can
// never be replayed as a signature over a different message shape.
func TransactionSigningPreimage(pubKey []byte, nonce uint64, ins core.Instruction) []byte {
	w := NewWriter()
	w.WriteString(TransactionNamespace)
	w.WriteBytes(pubKey)
	w.WriteU64(nonce)
	EncodeInstruction(w, ins)
	return w.Bytes()
}

// EncodeTransaction writes the full wire encoding of tx, including its
// signature (spec.md §6).
func EncodeTransaction(tx core.Transaction) []byte {
	w := NewWriter()
	w.WriteBytes(tx.PublicKey)
	w.WriteU64(tx.Nonce)
	EncodeInstruction(w, tx.Instruction)
	w.WriteBytes(tx.Signature)
	return w.Bytes()
}

// DecodeTransaction parses the encoding produced by EncodeTransaction.
func DecodeTransaction(data []byte) (core.Transaction, error) {
	r := NewReader(data)
	var tx core.Transaction
	var err error
	if tx.PublicKey, err = r.ReadBytes(); err != nil {
		return core.Transaction{}, err
	}
	if tx.Nonce, err = r.ReadU64(); err != nil {
		return core.Transaction{}, err
	}
	if tx.Instruction, err = DecodeInstruction(r); err != nil {
		return core.Transaction{}, err
	}
	if tx.Signature, err = r.ReadBytes(); err != nil {
		return core.Transaction{}, err
	}
	if err := r.Done(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}
