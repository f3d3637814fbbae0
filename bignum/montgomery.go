package bignum

import (
	"fmt"
	"math/bits"
)

// triple is a three-limb accumulator for the double-width intermediate
// products of the Montgomery inner loop, with one limb of headroom for the
// running carry.
type triple struct {
	w0, w1, w2 uint
}

func (t *triple) add(v triple) {
	w0, c0 := bits.Add(t.w0, v.w0, 0)
	w1, c1 := bits.Add(t.w1, v.w1, c0)
	w2, _ := bits.Add(t.w2, v.w2, c1)
	t.w0, t.w1, t.w2 = w0, w1, w2
}

func tripleFromMul(a, b uint) triple {
	hi, lo := bits.Mul(a, b)
	return triple{w0: lo, w1: hi}
}

// minusInverseModW computes -x⁻¹ mod 2^_W for odd x.
//
// Each Newton step doubles the number of correct low bits in y. The seed
// y = x is already correct to three bits (x² ≡ 1 mod 8 for odd x), so five
// doublings reach 96 bits, covering both 32-bit and 64-bit limbs.
func minusInverseModW(x uint) uint {
	y := x
	for i := 0; i < 5; i++ {
		y = y * (2 - x*y)
	}
	return -y
}

// MontgomeryConstants derives the two constants Montgomery arithmetic needs
// for the modulus n: the word-base inverse m0inv = -n[0]⁻¹ mod 2^_W used by
// the per-limb reduction step, and rr = R² mod n with R = 2^(_W·len(n)),
// computed by repeated constant-time doubling-and-reduction. The returned
// rr is freshly allocated and owned by the caller.
//
// The preconditions — n non-empty, odd, and at most maxLimbs/2 - 2 limbs —
// are guaranteed by the Modulus constructors. A violation here means the
// calling layer handed over a corrupted operand, so it is reported as
// ErrInternalInvariant rather than as a recoverable input error.
func MontgomeryConstants(n Limbs) (m0inv uint, rr Limbs, err error) {
	switch {
	case len(n) == 0:
		return 0, nil, fmt.Errorf("%w: montgomery setup on empty modulus", ErrInternalInvariant)
	case len(n) > maxMontLimbs:
		return 0, nil, fmt.Errorf("%w: montgomery setup on %d limbs, limit %d", ErrInternalInvariant, len(n), maxMontLimbs)
	case n[0]&1 == 0:
		return 0, nil, fmt.Errorf("%w: montgomery setup on even modulus", ErrInternalInvariant)
	}

	m0inv = minusInverseModW(n[0])

	// rr starts at 1 mod n (the conditional subtraction covers n == 1) and
	// is doubled 2·len(n)·_W times, ending at 2^(2·_W·len(n)) = R² mod n.
	// Each step is a constant-time AddMod, so setup cost depends only on
	// the limb count.
	rr = make(Limbs, len(n))
	rr[0] = 1
	rr.CondSub(not(rr.LessThan(n)), n)
	for i := 0; i < 2*len(n)*_W; i++ {
		AddMod(rr, rr, n)
	}
	return m0inv, rr, nil
}

// MontMul computes d = a · b · R⁻¹ mod m with R = 2^(_W·len(m)), the
// Montgomery multiplication at the core of every operation in this package.
//
// The loop interleaves multiplication and reduction: for each limb of a it
// derives the single-limb multiplier f that cancels the least-significant
// limb of the accumulator, folds a[i]·b and f·m into the three-limb
// accumulator, and shifts the result down one limb. After the last limb the
// result is below 2m, and one conditional subtraction — executed
// unconditionally, with the outcome chosen by constant-time select —
// completes the reduction.
//
// Preconditions (not checked): all sequences share the same announced
// length, a and b are reduced below m, m is odd with m0inv for it, and d
// does not alias a, b, or m. This is the fast path reserved for callers
// that maintain these invariants themselves.
func MontMul(d, a, b, m Limbs, m0inv uint) {
	countOp(opMontMul)
	n := len(m)
	dd, aa, bb, mm := d[:n], a[:n], b[:n], m[:n]

	clear(dd)
	var dh uint
	for i := 0; i < n; i++ {
		f := (dd[0] + aa[i]*bb[0]) * m0inv
		var c triple
		for j := 0; j < n; j++ {
			z := triple{w0: dd[j]}
			z.add(tripleFromMul(aa[i], bb[j]))
			z.add(tripleFromMul(f, mm[j]))
			z.add(c)
			if j > 0 {
				dd[j-1] = z.w0
			}
			c = triple{w0: z.w1, w1: z.w2}
		}
		z := triple{w0: dh}
		z.add(c)
		dd[n-1] = z.w0
		dh = z.w1
	}

	// dh is 0 or 1 here. Subtract m when the accumulator overflowed or the
	// low limbs are not yet reduced; the same three-case reasoning as
	// AddMod applies.
	lt := dd.LessThan(mm)
	dd.CondSub(ctEq(dh, uint(lt)), mm)
}
