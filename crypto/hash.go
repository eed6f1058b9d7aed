package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/tolelom/casinochain/internal/xhash"
)

// Hash returns the SHA-256 hash of data as a lowercase hex string. Used for
// human-facing identifiers (session/listing IDs) where a string is handier
// than a fixed-width digest.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashBytes returns the raw SHA-256 bytes of data.
func HashBytes(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// Hash256 returns the 256-bit consensus digest (the same blake2b digest as
// xhash.Sum) used to address state keys and MMR nodes; transaction
// signatures are made over the raw preimage, not this digest. It is a
// different algorithm (blake2b) from Hash/HashBytes above, which remain for
// non-consensus, human-facing identifiers.
func Hash256(data []byte) xhash.Digest {
	return xhash.Sum(data)
}
