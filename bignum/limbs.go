// Package bignum implements the limb-level modular arithmetic core that
// underlies public-key cryptography: fixed-width unsigned integers modulo an
// odd modulus, with conversion to and from Montgomery representation for
// fast repeated modular multiplication.
//
// The package exposes two tiers. The Modulus methods (Read, Write,
// ToMontgomery, FromMontgomery, Add, Sub, Mul, ExpMod) validate their
// arguments and report recoverable errors; they are the entry points for
// code that handles external data. The Limbs methods and the package-level
// kernels (AddMod, SubMod, MontMul, MontgomeryConstants) trust their
// documented preconditions and perform no validation; they are the fast
// path reserved for a higher-level facade that has already validated its
// operands.
//
// Every operation on secret values executes in time bounded only by the
// limb count involved, never by the numeric value of an operand: there are
// no data-dependent branches, early exits, or memory access patterns in the
// arithmetic. A Modulus leaks its exact bit length but not its value.
//
// A Modulus is immutable after construction and may be shared by any number
// of goroutines, provided each goroutine supplies its own operand buffers.
package bignum

import "math/bits"

const (
	// _W is the number of bits per limb. Limbs are saturated full machine
	// words.
	_W = bits.UintSize
	// _S is the number of bytes per limb.
	_S = _W / 8
)

// LimbBits and LimbSize expose the limb geometry: a limb is one full
// machine word. Callers need them to reason about announced widths, for
// example when sizing the byte capacity a Read accepts.
const (
	LimbBits = _W
	LimbSize = _S
)

// maxLimbs bounds the announced length of any limb sequence the package
// will accept. maxMontLimbs additionally bounds moduli used in Montgomery
// form: it stays below half the internal working width so double-width
// intermediate products always have headroom.
const (
	maxLimbs     = 10000
	maxMontLimbs = maxLimbs/2 - 2
)

// Choice is a constant-time boolean holding 0 or 1. Using an integer
// instead of bool lets decisions be turned into masks without branching.
// Any value other than 0 or 1 gives undefined results.
type Choice uint

const (
	// No is the false Choice.
	No Choice = 0
	// Yes is the true Choice.
	Yes Choice = 1
)

func not(c Choice) Choice { return 1 ^ c }

// ctSelect returns x when on is Yes and y when on is No, in constant time.
func ctSelect(on Choice, x, y uint) uint {
	mask := -uint(on)
	return y ^ (mask & (y ^ x))
}

// ctEq returns Yes if x == y, in constant time.
func ctEq(x, y uint) Choice {
	// If x != y, at least one of x - y and y - x generates a carry.
	_, c1 := bits.Sub(x, y, 0)
	_, c2 := bits.Sub(y, x, 0)
	return not(Choice(c1 | c2))
}

// Limbs is an unsigned multi-precision integer stored least-significant
// limb first in saturated machine words. The length of the slice is the
// announced length: operations may leak it, but never the limb values.
// Leading (most-significant) limbs may be zero; the length is fixed per
// modulus and is never inferred from the value.
type Limbs []uint

// Add computes x += y and returns the carry. Both sequences must have the
// same announced length. y may alias x.
func (x Limbs) Add(y Limbs) uint {
	countOp(opAdd)
	yy := y[:len(x)]
	var c uint
	for i := range x {
		x[i], c = bits.Add(x[i], yy[i], c)
	}
	return c
}

// Sub computes x -= y and returns the borrow. Both sequences must have the
// same announced length.
func (x Limbs) Sub(y Limbs) uint {
	countOp(opSub)
	yy := y[:len(x)]
	var b uint
	for i := range x {
		x[i], b = bits.Sub(x[i], yy[i], b)
	}
	return b
}

// MulAdd computes x += a * y and returns the carry limb. It is the
// multiply-accumulate building block of Montgomery reduction and of general
// multiplication. Both sequences must have the same announced length, and
// y must not alias x.
func (x Limbs) MulAdd(a uint, y Limbs) uint {
	countOp(opMulAdd)
	yy := y[:len(x)]
	var carry uint
	for i := range x {
		hi, lo := bits.Mul(a, yy[i])
		lo, c := bits.Add(lo, carry, 0)
		hi += c
		x[i], c = bits.Add(x[i], lo, 0)
		carry = hi + c
	}
	return carry
}

// CondAssign sets x = y when on is Yes and leaves x unchanged when on is
// No. The memory access pattern is identical in both cases.
func (x Limbs) CondAssign(on Choice, y Limbs) {
	countOp(opSelect)
	yy := y[:len(x)]
	for i := range x {
		x[i] = ctSelect(on, yy[i], x[i])
	}
}

// CondAdd computes x += y when on is Yes. The addition is performed and its
// carry returned regardless of on; only the write-back is masked.
func (x Limbs) CondAdd(on Choice, y Limbs) uint {
	countOp(opAdd)
	yy := y[:len(x)]
	var c uint
	for i := range x {
		res, cc := bits.Add(x[i], yy[i], c)
		x[i] = ctSelect(on, res, x[i])
		c = cc
	}
	return c
}

// CondSub computes x -= y when on is Yes. The subtraction is performed and
// its borrow returned regardless of on; only the write-back is masked.
func (x Limbs) CondSub(on Choice, y Limbs) uint {
	countOp(opSub)
	yy := y[:len(x)]
	var b uint
	for i := range x {
		res, bb := bits.Sub(x[i], yy[i], b)
		x[i] = ctSelect(on, res, x[i])
		b = bb
	}
	return b
}

// Equal returns Yes if x == y, comparing every limb without early exit.
// Both sequences must have the same announced length.
func (x Limbs) Equal(y Limbs) Choice {
	countOp(opCompare)
	yy := y[:len(x)]
	eq := Yes
	for i := range x {
		eq &= ctEq(x[i], yy[i])
	}
	return eq
}

// LessThan returns Yes if x < y, comparing every limb without early exit.
// Both sequences must have the same announced length.
func (x Limbs) LessThan(y Limbs) Choice {
	countOp(opCompare)
	yy := y[:len(x)]
	var b uint
	for i := range x {
		_, b = bits.Sub(x[i], yy[i], b)
	}
	// A final borrow means the subtraction underflowed, so x < y.
	return Choice(b)
}

// IsZero returns Yes if every limb of x is zero, without early exit.
func (x Limbs) IsZero() Choice {
	countOp(opCompare)
	var acc uint
	for i := range x {
		acc |= x[i]
	}
	return ctEq(acc, 0)
}

// Clone returns an independent copy of x with the same announced length.
func (x Limbs) Clone() Limbs {
	out := make(Limbs, len(x))
	copy(out, x)
	return out
}
