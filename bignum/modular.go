package bignum

// Modular addition and subtraction are built from the carry primitives plus
// exactly one conditional correction step, so their execution shape is
// fixed by the limb count alone.

// AddMod computes x = x + y mod m in place.
//
// Preconditions (not checked): all three sequences share the same announced
// length, and x and y are already reduced below m. y may alias x, which
// makes AddMod(x, x, m) a modular doubling.
func AddMod(x, y, m Limbs) {
	carry := x.Add(y)
	lt := x.LessThan(m)

	// Three cases are possible:
	//
	//   carry == 0 and x >= m: the sum fits in the limbs but is not yet
	//   reduced, so m must be subtracted.
	//
	//   carry == 0 and x < m: the sum is already reduced.
	//
	//   carry == 1 and x < m: the sum overflowed the limbs; subtracting m
	//   cancels the carry and reduces the result.
	//
	// carry == 1 with x >= m cannot happen: y is at most m - 1, and if
	// adding it overflowed then the low limbs must be below m.
	x.CondSub(ctEq(carry, uint(lt)), m)
}

// SubMod computes x = x - y mod m in place.
//
// Preconditions (not checked): all three sequences share the same announced
// length, and x and y are already reduced below m.
func SubMod(x, y, m Limbs) {
	borrow := x.Sub(y)
	// If the subtraction underflowed, adding m back restores the residue.
	// The addition runs either way; only the write-back is masked.
	x.CondAdd(Choice(borrow), m)
}
