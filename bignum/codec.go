package bignum

import "fmt"

// Read parses the big-endian unsigned encoding in b into x. The input may
// be any length up to the full limb capacity of the modulus; shorter
// inputs are zero-extended on the most-significant side, and every limb of
// x is overwritten so no residual memory reaches later arithmetic.
//
// A destination shorter than the modulus, or an input wider than the
// destination can hold, is ErrBufferTooSmall. A decoded value that is not
// strictly below the modulus is ErrInvalidInput, and x is left zeroed. The
// comparison against the modulus visits every limb regardless of where the
// values differ.
func (m *Modulus) Read(x Limbs, b []byte) error {
	if !m.structurallyValid() {
		return ErrInvalidInput
	}
	if len(x) < len(m.limbs) {
		return ErrBufferTooSmall
	}
	if len(x) > len(m.limbs) {
		return fmt.Errorf("%w: destination of %d limbs against a %d limb modulus",
			ErrInternalInvariant, len(x), len(m.limbs))
	}
	if len(b) > len(x)*_S {
		return ErrBufferTooSmall
	}
	decodeBE(x, b)
	if x.LessThan(m.limbs) == No {
		clear(x)
		return ErrInvalidInput
	}
	return nil
}

// Write serializes x into out as a big-endian unsigned value, padding with
// leading zeros to fill the whole buffer. out must cover the modulus's
// full byte width, m.Size(); anything shorter is ErrBufferTooSmall before
// a single byte is written.
//
// x is expected to be a reduced residue. If it carries a nonzero byte
// above what out can hold, the call reports ErrInternalInvariant instead
// of truncating; the scan that detects this visits every dropped byte
// position unconditionally.
func (m *Modulus) Write(x Limbs, out []byte) error {
	if !m.structurallyValid() {
		return ErrInvalidInput
	}
	if err := m.checkOperands(x); err != nil {
		return err
	}
	if len(out) < m.Size() {
		return ErrBufferTooSmall
	}
	var excess byte
	for i := len(out); i < len(x)*_S; i++ {
		excess |= byteOf(x, i)
	}
	if excess != 0 {
		return fmt.Errorf("%w: value exceeds the output width", ErrInternalInvariant)
	}
	encodeBE(out, x)
	return nil
}

// decodeBE fills x from the big-endian bytes in b, least-significant byte
// into the least-significant limb position. The caller guarantees
// len(b) <= len(x)*_S. x is cleared first, so unset positions end up zero.
func decodeBE(x Limbs, b []byte) {
	clear(x)
	for i := 0; i < len(b); i++ {
		x[i/_S] |= uint(b[len(b)-1-i]) << (8 * (i % _S))
	}
}

// encodeBE fills out with the big-endian encoding of x, zero-padding on
// the most-significant side when out is wider than x. Bytes of x beyond
// len(out) are not emitted; Write rejects them beforehand.
func encodeBE(out []byte, x Limbs) {
	for i := 0; i < len(out); i++ {
		var v byte
		if i < len(x)*_S {
			v = byteOf(x, i)
		}
		out[len(out)-1-i] = v
	}
}

// byteOf returns byte i of the limb sequence, counting from the
// least-significant end.
func byteOf(x Limbs, i int) byte {
	return byte(x[i/_S] >> (8 * (i % _S)))
}
