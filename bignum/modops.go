package bignum

import "fmt"

// montReady verifies that the descriptor is structurally sound and carries
// Montgomery constants. Anything else means the calling layer handed this
// modulus to an operation it was never prepared for.
func (m *Modulus) montReady() error {
	if !m.structurallyValid() {
		return fmt.Errorf("%w: modulus descriptor is not structurally valid",
			ErrInternalInvariant)
	}
	if m.rep != RepMontgomery {
		return fmt.Errorf("%w: modulus is in %s representation, montgomery required",
			ErrInternalInvariant, m.rep)
	}
	return nil
}

// ToMontgomery converts x in place from the canonical residue domain to
// the Montgomery domain, multiplying by R via a Montgomery multiplication
// with the precomputed R² constant. x must be reduced below the modulus.
func (m *Modulus) ToMontgomery(x Limbs) error {
	if err := m.montReady(); err != nil {
		return err
	}
	if err := m.checkOperands(x); err != nil {
		return err
	}
	t := make(Limbs, len(m.limbs))
	MontMul(t, x, m.rr, m.limbs, m.m0inv)
	copy(x, t)
	return nil
}

// FromMontgomery converts x in place back to the canonical residue
// domain: one Montgomery reduction with an implicit multiplier of one.
func (m *Modulus) FromMontgomery(x Limbs) error {
	if err := m.montReady(); err != nil {
		return err
	}
	if err := m.checkOperands(x); err != nil {
		return err
	}
	one := make(Limbs, len(m.limbs))
	one[0] = 1
	t := make(Limbs, len(m.limbs))
	MontMul(t, x, one, m.limbs, m.m0inv)
	copy(x, t)
	return nil
}

// Mul sets d to the Montgomery-domain product of a and b. Unlike the raw
// MontMul, the inputs are length-checked and d may alias a or b; the
// product is built in scratch space and copied out afterwards.
func (m *Modulus) Mul(d, a, b Limbs) error {
	if err := m.montReady(); err != nil {
		return err
	}
	if err := m.checkOperands(d, a, b); err != nil {
		return err
	}
	t := make(Limbs, len(m.limbs))
	MontMul(t, a, b, m.limbs, m.m0inv)
	copy(d, t)
	return nil
}

// Add sets x to x + y modulo the modulus, in place. Both operands must be
// reduced residues of the announced limb count; the representation domain
// carries through unchanged, so the method serves plain and Montgomery
// values alike.
func (m *Modulus) Add(x, y Limbs) error {
	if !m.structurallyValid() {
		return fmt.Errorf("%w: modulus descriptor is not structurally valid",
			ErrInternalInvariant)
	}
	if err := m.checkOperands(x, y); err != nil {
		return err
	}
	AddMod(x, y, m.limbs)
	return nil
}

// Sub sets x to x - y modulo the modulus, in place, under the same
// operand contract as Add.
func (m *Modulus) Sub(x, y Limbs) error {
	if !m.structurallyValid() {
		return fmt.Errorf("%w: modulus descriptor is not structurally valid",
			ErrInternalInvariant)
	}
	if err := m.checkOperands(x, y); err != nil {
		return err
	}
	SubMod(x, y, m.limbs)
	return nil
}
