package bignum

import "fmt"

// Representation says which residue encoding the values associated with a
// Modulus use. The raw layer does not tag individual operands; the mode is
// a property of the descriptor, and the caller tracks which domain each
// buffer currently lives in.
type Representation uint8

const (
	// RepInvalid is the zero value; a descriptor never carries it after
	// successful construction.
	RepInvalid Representation = iota
	// RepPlain holds canonical residues in [0, n).
	RepPlain
	// RepMontgomery holds residues multiplied by R = 2^(_W·limbs) mod n,
	// with the reduction constants precomputed.
	RepMontgomery
)

// String returns the representation name for logs and error detail.
func (r Representation) String() string {
	switch r {
	case RepPlain:
		return "plain"
	case RepMontgomery:
		return "montgomery"
	default:
		return "invalid"
	}
}

// Modulus is the precomputed, immutable description of a modulus: its limb
// sequence, announced limb count, representation mode, and — in Montgomery
// mode — the reduction constants. Construction is the one mutation; after
// that a Modulus may be shared read-only across any number of goroutines.
//
// The exact bit length of the modulus is leakable, its value is not.
type Modulus struct {
	limbs Limbs // the modulus value, least-significant limb first
	bits  int   // exact bit length of the value
	rep   Representation

	// Montgomery constants, set only for RepMontgomery. rr is owned by the
	// descriptor and never aliases caller memory.
	m0inv uint  // -limbs[0]⁻¹ mod 2^_W
	rr    Limbs // R² mod n with R = 2^(_W·len(limbs))
}

// NewModulus builds a descriptor from the big-endian encoding of the
// modulus. The announced limb count is derived from len(b), so leading zero
// bytes widen the descriptor rather than being stripped. The modulus must
// be nonzero, and odd when rep is RepMontgomery; violations are reported as
// ErrInvalidInput without further detail.
func NewModulus(b []byte, rep Representation) (*Modulus, error) {
	if len(b) == 0 {
		return nil, ErrInvalidInput
	}
	limbs := make(Limbs, (len(b)+_S-1)/_S)
	decodeBE(limbs, b)
	return newModulus(limbs, rep)
}

// NewModulusFromLimbs builds a descriptor from a limb sequence, keeping the
// caller's announced length. The limbs are copied; the descriptor never
// aliases caller-retained buffers.
func NewModulusFromLimbs(l Limbs, rep Representation) (*Modulus, error) {
	if len(l) == 0 {
		return nil, ErrInvalidInput
	}
	return newModulus(l.Clone(), rep)
}

// newModulus validates and finishes a descriptor, taking ownership of
// limbs.
func newModulus(limbs Limbs, rep Representation) (*Modulus, error) {
	if len(limbs) > maxLimbs || limbs.IsZero() == Yes {
		return nil, ErrInvalidInput
	}
	m := &Modulus{limbs: limbs, rep: rep}
	m.bits = bitLen(limbs)

	switch rep {
	case RepPlain:
		// No constants needed.
	case RepMontgomery:
		if len(limbs) > maxMontLimbs || limbs[0]&1 == 0 {
			return nil, ErrInvalidInput
		}
		m0inv, rr, err := MontgomeryConstants(limbs)
		if err != nil {
			return nil, err
		}
		m.m0inv = m0inv
		m.rr = rr
	default:
		return nil, ErrInvalidInput
	}
	return m, nil
}

// structurallyValid reports whether the descriptor upholds its own
// invariants: a nonzero value of consistent announced length, a known
// representation, and constants present when the representation needs
// them. It is the backstop the validated entry points run before touching
// operands.
func (m *Modulus) structurallyValid() bool {
	if m == nil || len(m.limbs) == 0 || len(m.limbs) > maxLimbs {
		return false
	}
	if m.limbs.IsZero() == Yes {
		return false
	}
	switch m.rep {
	case RepPlain:
		return true
	case RepMontgomery:
		return len(m.rr) == len(m.limbs) && m.limbs[0]&1 == 1
	default:
		return false
	}
}

// LimbCount returns the announced limb count every operand for this
// modulus must share.
func (m *Modulus) LimbCount() int { return len(m.limbs) }

// BitLen returns the exact bit length of the modulus value.
func (m *Modulus) BitLen() int { return m.bits }

// Size returns the modulus width in bytes: the length Write requires of an
// output buffer, and the widest value Read accepts without zero padding.
func (m *Modulus) Size() int { return (m.bits + 7) / 8 }

// Rep returns the representation mode of the descriptor.
func (m *Modulus) Rep() Representation { return m.rep }

// MontInverse returns -n[0]⁻¹ mod 2^_W, or 0 for a plain descriptor. It is
// the m0inv argument a trusted caller passes to MontMul.
func (m *Modulus) MontInverse() uint { return m.m0inv }

// RR returns a copy of R² mod n, or nil for a plain descriptor. Returning
// a copy keeps the descriptor immutable no matter what the caller does
// with the result.
func (m *Modulus) RR() Limbs {
	if m.rr == nil {
		return nil
	}
	return m.rr.Clone()
}

// NewOperand allocates a zero operand of the announced limb count, ready
// for Read or the arithmetic methods.
func (m *Modulus) NewOperand() Limbs { return make(Limbs, len(m.limbs)) }

// checkOperands verifies that every operand has exactly the announced limb
// count. A mismatch is a defect in the calling layer, not bad input.
func (m *Modulus) checkOperands(ops ...Limbs) error {
	for _, x := range ops {
		if len(x) != len(m.limbs) {
			return fmt.Errorf("%w: operand of %d limbs against a %d limb modulus",
				ErrInternalInvariant, len(x), len(m.limbs))
		}
	}
	return nil
}

// bitLen returns the exact bit length of x. The scan visits every limb and
// counts bits one shift at a time rather than through bits.Len, whose
// lookup table may not be constant time, so nothing beyond the bit length
// itself leaks.
func bitLen(x Limbs) int {
	top := -1
	for i := range x {
		if x[i] != 0 {
			top = i
		}
	}
	if top < 0 {
		return 0
	}
	n := 0
	for limb := x[top]; limb != 0; limb >>= 1 {
		n++
	}
	return top*_W + n
}
