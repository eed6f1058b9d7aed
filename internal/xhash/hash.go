// Package xhash provides the 256-bit hash primitive used to address every
// authenticated structure in the chain: state keys, MMR nodes, and op
// digests. All consensus-critical hashing goes through this package so
// that a single algorithm choice is never duplicated.
package xhash

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Size is the width of a Digest in bytes.
const Size = 32

// Digest is a 256-bit hash output.
type Digest [Size]byte

// Sum returns the blake2b-256 digest of data.
func Sum(data []byte) Digest {
	return Digest(blake2b.Sum256(data))
}

// SumPair hashes the concatenation of a and b, used to combine MMR node
// digests without an intervening allocation for the common two-child case.
func SumPair(a, b Digest) Digest {
	buf := make([]byte, 0, Size*2)
	buf = append(buf, a[:]...)
	buf = append(buf, b[:]...)
	return Sum(buf)
}

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Bytes returns the digest as a byte slice.
func (d Digest) Bytes() []byte {
	return d[:]
}

// IsZero reports whether d is the all-zero digest.
func (d Digest) IsZero() bool {
	for _, b := range d {
		if b != 0 {
			return false
		}
	}
	return true
}

// FromHex parses a hex-encoded digest.
func FromHex(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, err
	}
	if len(b) != Size {
		return d, ErrBadLength
	}
	copy(d[:], b)
	return d, nil
}

// FromBytes copies b into a Digest, erroring if b is not exactly Size bytes.
func FromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != Size {
		return d, ErrBadLength
	}
	copy(d[:], b)
	return d, nil
}
