package bignum

// ExpMod sets x to x^e modulo the modulus, in place. The exponent is a
// big-endian byte string of any length and is treated as secret: the work
// done depends only on len(e) and the limb count, and the multiplier for
// each exponent window is picked by scanning the whole precomputed table
// with constant-time selects.
//
// x must be a reduced canonical residue; the result is canonical as well.
// The modulus must carry Montgomery constants.
func (m *Modulus) ExpMod(x Limbs, e []byte) error {
	if err := m.montReady(); err != nil {
		return err
	}
	if err := m.checkOperands(x); err != nil {
		return err
	}
	n := len(m.limbs)

	// A 4 bit window: table[i] holds x^(i+1) in the Montgomery domain.
	var table [15]Limbs
	table[0] = make(Limbs, n)
	MontMul(table[0], x, m.rr, m.limbs, m.m0inv)
	for i := 1; i < len(table); i++ {
		table[i] = make(Limbs, n)
		MontMul(table[i], table[i-1], table[0], m.limbs, m.m0inv)
	}

	out := make(Limbs, n)
	out[0] = 1
	t0 := make(Limbs, n)
	t1 := make(Limbs, n)
	MontMul(t1, out, m.rr, m.limbs, m.m0inv)
	copy(out, t1)

	for _, b := range e {
		for _, j := range []int{4, 0} {
			// Square four times, ping-ponging between out and t1.
			MontMul(t1, out, out, m.limbs, m.m0inv)
			MontMul(out, t1, t1, m.limbs, m.m0inv)
			MontMul(t1, out, out, m.limbs, m.m0inv)
			MontMul(out, t1, t1, m.limbs, m.m0inv)

			// Select x^k from the table without indexing by k.
			k := uint((b >> j) & 0b1111)
			for i := range table {
				t0.CondAssign(ctEq(k, uint(i+1)), table[i])
			}

			// Multiply in x^k, keeping the previous value when k is zero.
			MontMul(t1, out, t0, m.limbs, m.m0inv)
			out.CondAssign(not(ctEq(k, 0)), t1)
		}
	}

	one := make(Limbs, n)
	one[0] = 1
	MontMul(t1, out, one, m.limbs, m.m0inv)
	copy(x, t1)
	return nil
}
