package economy

import "math/bits"

// mul64 returns the 128-bit product of a and b as (hi, lo).
func mul64(a, b uint64) (hi, lo uint64) { return bits.Mul64(a, b) }

// div128 divides the 128-bit (hi, lo) by c, returning quotient and
// remainder. Panics (via bits.Div64) if the quotient would overflow 64
// bits, which cannot happen here since c always exceeds hi for the
// amounts this module deals in.
func div128(hi, lo, c uint64) (quo, rem uint64) { return bits.Div64(hi, lo, c) }
