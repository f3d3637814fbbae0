// Package mbedtls hosts a constant-time, limb-level modular arithmetic
// core for public-key cryptography, together with its supporting tooling.
//
// The arithmetic itself lives in the bignum package: fixed-width operands
// over an immutable modulus descriptor, Montgomery representation for fast
// repeated multiplication, and a big-endian codec with strict range
// checking. The features package enumerates the build-time mechanism
// selection a deployment compiles in, the selftest package verifies the
// core against independent implementations at startup, and cmd/bignum is
// the command line tool over all of it.
//
// Nothing in this root package carries behavior; see the subdirectories.
package mbedtls
