package bignum

// Operation counting exists so the constant-time contract can be checked by
// counting primitive invocations instead of measuring wall-clock time: for
// a fixed modulus and fixed operand lengths, every count must come out
// identical no matter which operand values flow through.

// OpCounts is a snapshot of how many times each primitive ran while a
// collector was installed.
type OpCounts struct {
	Adds     uint64 // add-with-carry passes, conditional or not
	Subs     uint64 // subtract-with-borrow passes, conditional or not
	MulAdds  uint64 // multiply-accumulate passes
	MontMuls uint64 // full Montgomery multiplications
	Selects  uint64 // constant-time assignments
	Compares uint64 // constant-time comparisons (Equal, LessThan, IsZero)
}

type opKind int

const (
	opAdd opKind = iota
	opSub
	opMulAdd
	opMontMul
	opSelect
	opCompare
)

// collector is nil unless CountOps is active. The nil check in countOp
// depends only on whether instrumentation is enabled, never on operand
// data, so it does not perturb the constant-time shape being measured.
var collector *OpCounts

func countOp(k opKind) {
	c := collector
	if c == nil {
		return
	}
	switch k {
	case opAdd:
		c.Adds++
	case opSub:
		c.Subs++
	case opMulAdd:
		c.MulAdds++
	case opMontMul:
		c.MontMuls++
	case opSelect:
		c.Selects++
	case opCompare:
		c.Compares++
	}
}

// CountOps runs fn with operation counting enabled and returns the counts
// accumulated during the call. It is intended for tests and diagnostics
// only: installing a collector is not safe for concurrent use, and nested
// calls observe only their own window.
func CountOps(fn func()) OpCounts {
	prev := collector
	var counts OpCounts
	collector = &counts
	defer func() { collector = prev }()
	fn()
	return counts
}
