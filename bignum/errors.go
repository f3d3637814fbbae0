package bignum

import "errors"

// Errors reported by the validated tier. The taxonomy has three classes:
// capacity problems the caller can fix by resizing, invalid external data
// the caller should reject, and invariant violations that indicate a defect
// in the calling layer rather than bad input.
var (
	// ErrBufferTooSmall reports a destination too small for the modulus
	// width, or a source that cannot fit the destination. Recoverable by
	// reallocating.
	ErrBufferTooSmall = errors.New("bignum: buffer too small")

	// ErrInvalidInput reports semantically invalid external data: a value
	// not below its modulus, or a structurally invalid modulus. The reason
	// validation failed is deliberately not disclosed beyond this single
	// error, so rejection cannot be used as an oracle.
	ErrInvalidInput = errors.New("bignum: invalid modulus or value")

	// ErrInternalInvariant reports a precondition violated by the calling
	// layer itself: mismatched limb counts, a nil or empty operand, an
	// oversized or even modulus handed to the Montgomery engine, or a
	// conversion requested without Montgomery constants. It signals a
	// defect to surface immediately, not a condition to retry.
	ErrInternalInvariant = errors.New("bignum: internal invariant violated")
)
