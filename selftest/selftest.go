// Package selftest exercises the arithmetic core against known answers and
// independent implementations at startup. Deployments that compile in
// cryptographic mechanisms run it once before trusting the core: every
// enabled mechanism contributes moduli of the shapes it will later present,
// and each modulus is pushed through import, Montgomery conversion,
// multiplication, and export with results compared against math/big and,
// where the width allows, a second unrelated fixed-width implementation.
package selftest

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/minosgalanakis/mbedtls/bignum"
	"github.com/minosgalanakis/mbedtls/features"
	"github.com/minosgalanakis/mbedtls/log"
)

// ErrSelfTest is wrapped by every failure this package reports.
var ErrSelfTest = errors.New("selftest: check failed")

// rounds is how many derived operand pairs each modulus is exercised with.
const rounds = 8

// target is one modulus the self test drives through the core.
type target struct {
	name string
	n    *big.Int
}

// Run executes the self test for every mechanism enabled in set. A nil set
// means the default full selection; a nil logger falls back to the package
// default. The first failing check aborts the run.
func Run(set *features.Set, logger *log.Logger) error {
	if set == nil {
		set = features.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	lg := logger.Module("selftest")

	if err := knownAnswer(); err != nil {
		return err
	}
	lg.Debug("known answer checks passed")

	targets := targetModuli(set)
	for _, tm := range targets {
		lg.Debug("checking modulus", "name", tm.name, "bits", tm.n.BitLen())
		if err := checkModulus(tm); err != nil {
			return err
		}
	}

	lg.Info("self test passed", "moduli", len(targets), "rounds", rounds)
	return nil
}

// knownAnswer fixes the smallest interesting case: N = 97, v = 23. The
// expected Montgomery form is computed from the announced limb width, the
// recovered value and its export are fixed bytes.
func knownAnswer() error {
	m, err := bignum.NewModulus([]byte{97}, bignum.RepMontgomery)
	if err != nil {
		return fmt.Errorf("%w: modulus 97: %v", ErrSelfTest, err)
	}

	x := m.NewOperand()
	if err := m.Read(x, []byte{23}); err != nil {
		return fmt.Errorf("%w: import 23: %v", ErrSelfTest, err)
	}

	if err := m.ToMontgomery(x); err != nil {
		return fmt.Errorf("%w: to montgomery: %v", ErrSelfTest, err)
	}
	r := new(big.Int).Lsh(big.NewInt(1), uint(m.LimbCount()*bignum.LimbBits))
	want := new(big.Int).Mul(big.NewInt(23), r)
	want.Mod(want, big.NewInt(97))
	if got := toBig(m, x); got.Cmp(want) != 0 {
		return fmt.Errorf("%w: montgomery form of 23 mod 97: got %v want %v", ErrSelfTest, got, want)
	}

	if err := m.FromMontgomery(x); err != nil {
		return fmt.Errorf("%w: from montgomery: %v", ErrSelfTest, err)
	}
	out := make([]byte, m.Size())
	if err := m.Write(x, out); err != nil {
		return fmt.Errorf("%w: export 23: %v", ErrSelfTest, err)
	}
	if !bytes.Equal(out, []byte{0x17}) {
		return fmt.Errorf("%w: export of 23 mod 97: got %x want 17", ErrSelfTest, out)
	}

	// Importing the modulus itself must be rejected, and a zero-capacity
	// export must fail before writing.
	if err := m.Read(x, []byte{97}); !errors.Is(err, bignum.ErrInvalidInput) {
		return fmt.Errorf("%w: importing the modulus should fail with invalid input, got %v", ErrSelfTest, err)
	}
	if err := m.Write(x, nil); !errors.Is(err, bignum.ErrBufferTooSmall) {
		return fmt.Errorf("%w: zero-capacity export should fail with buffer too small, got %v", ErrSelfTest, err)
	}
	return nil
}

// targetModuli assembles the moduli the enabled mechanisms will present:
// curve field and order for the elliptic mechanisms, derived odd moduli at
// the RSA and Diffie-Hellman widths, plus a fixed single-limb case.
func targetModuli(set *features.Set) []target {
	targets := []target{{name: "single-limb", n: big.NewInt(97)}}

	if anyEnabled(set, features.MechECCKeyPair, features.MechECDSA,
		features.MechDeterministicECDSA, features.MechECDH, features.MechJPAKE) {
		secp := ethcrypto.S256().Params()
		targets = append(targets,
			target{name: "secp256k1-field", n: new(big.Int).Set(secp.P)},
			target{name: "secp256k1-order", n: new(big.Int).Set(secp.N)},
		)
	}
	if anyEnabled(set, features.MechRSAKeyPair, features.MechRSAPKCS1v15Sign,
		features.MechRSAPKCS1v15Crypt, features.MechRSAOAEP, features.MechRSAPSS) {
		targets = append(targets, target{name: "rsa-width", n: derivedOdd("selftest-rsa-width", 1024)})
	}
	if anyEnabled(set, features.MechDHKeyPair, features.MechFFDH) {
		targets = append(targets, target{name: "ffdh-width", n: derivedOdd("selftest-ffdh-width", 2048)})
	}
	return targets
}

func anyEnabled(set *features.Set, mechs ...features.Mechanism) bool {
	for _, m := range mechs {
		if set.Enabled(m) {
			return true
		}
	}
	return false
}

// checkModulus runs the full battery for one modulus: codec round trips,
// Montgomery involution, cross-checked multiplication, modular add and
// subtract, a short exponentiation, and the operation-count shape.
func checkModulus(tm target) error {
	m, err := bignum.NewModulus(tm.n.Bytes(), bignum.RepMontgomery)
	if err != nil {
		return fmt.Errorf("%w: %s: modulus: %v", ErrSelfTest, tm.name, err)
	}

	sh := operandStream("selftest-" + tm.name)
	for i := 0; i < rounds; i++ {
		a := drawBelow(sh, tm.n)
		b := drawBelow(sh, tm.n)
		if err := checkRoundTrip(m, tm.n, a); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSelfTest, tm.name, err)
		}
		if err := checkMul(m, tm.n, a, b); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSelfTest, tm.name, err)
		}
		if err := checkAddSub(m, tm.n, a, b); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSelfTest, tm.name, err)
		}
	}
	if err := checkExp(m, tm.n, drawBelow(sh, tm.n)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSelfTest, tm.name, err)
	}
	if err := checkShape(m, tm.n); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSelfTest, tm.name, err)
	}
	return nil
}

// checkRoundTrip verifies export(import(v)) at fixed width and the
// Montgomery involution for one value.
func checkRoundTrip(m *bignum.Modulus, n, v *big.Int) error {
	in := v.FillBytes(make([]byte, m.Size()))
	x := m.NewOperand()
	if err := m.Read(x, in); err != nil {
		return fmt.Errorf("import: %v", err)
	}
	out := make([]byte, m.Size())
	if err := m.Write(x, out); err != nil {
		return fmt.Errorf("export: %v", err)
	}
	if !bytes.Equal(in, out) {
		return fmt.Errorf("codec round trip: in %x out %x", in, out)
	}

	if err := m.ToMontgomery(x); err != nil {
		return fmt.Errorf("to montgomery: %v", err)
	}
	if err := m.FromMontgomery(x); err != nil {
		return fmt.Errorf("from montgomery: %v", err)
	}
	if got := toBig(m, x); got.Cmp(v) != 0 {
		return fmt.Errorf("montgomery involution: got %v want %v", got, v)
	}
	return nil
}

// checkMul compares the Montgomery pipeline against math/big, and for
// moduli up to 256 bits also against the uint256 implementation.
func checkMul(m *bignum.Modulus, n, a, b *big.Int) error {
	xa := operandFor(m, a)
	xb := operandFor(m, b)
	if err := m.ToMontgomery(xa); err != nil {
		return fmt.Errorf("to montgomery: %v", err)
	}
	if err := m.ToMontgomery(xb); err != nil {
		return fmt.Errorf("to montgomery: %v", err)
	}
	d := m.NewOperand()
	if err := m.Mul(d, xa, xb); err != nil {
		return fmt.Errorf("mul: %v", err)
	}
	if err := m.FromMontgomery(d); err != nil {
		return fmt.Errorf("from montgomery: %v", err)
	}
	got := toBig(m, d)

	want := new(big.Int).Mul(a, b)
	want.Mod(want, n)
	if got.Cmp(want) != 0 {
		return fmt.Errorf("mul against math/big: got %v want %v", got, want)
	}

	if n.BitLen() <= 256 {
		un, _ := uint256.FromBig(n)
		ua, _ := uint256.FromBig(a)
		ub, _ := uint256.FromBig(b)
		alt := new(uint256.Int).MulMod(ua, ub, un)
		if got.Cmp(alt.ToBig()) != 0 {
			return fmt.Errorf("mul against uint256: got %v want %v", got, alt)
		}
	}
	return nil
}

func checkAddSub(m *bignum.Modulus, n, a, b *big.Int) error {
	x := operandFor(m, a)
	if err := m.Add(x, operandFor(m, b)); err != nil {
		return fmt.Errorf("add: %v", err)
	}
	want := new(big.Int).Add(a, b)
	want.Mod(want, n)
	if got := toBig(m, x); got.Cmp(want) != 0 {
		return fmt.Errorf("add against math/big: got %v want %v", got, want)
	}

	x = operandFor(m, a)
	if err := m.Sub(x, operandFor(m, b)); err != nil {
		return fmt.Errorf("sub: %v", err)
	}
	want = new(big.Int).Sub(a, b)
	want.Mod(want, n)
	if got := toBig(m, x); got.Cmp(want) != 0 {
		return fmt.Errorf("sub against math/big: got %v want %v", got, want)
	}
	return nil
}

func checkExp(m *bignum.Modulus, n, base *big.Int) error {
	e := []byte{0x01, 0x00, 0x01} // 65537, the classic verification exponent
	x := operandFor(m, base)
	if err := m.ExpMod(x, e); err != nil {
		return fmt.Errorf("expmod: %v", err)
	}
	want := new(big.Int).Exp(base, new(big.Int).SetBytes(e), n)
	if got := toBig(m, x); got.Cmp(want) != 0 {
		return fmt.Errorf("expmod against math/big: got %v want %v", got, want)
	}
	return nil
}

// checkShape runs the same pipeline over extreme and mid-range operand
// values and requires the primitive operation counts to be identical, the
// runtime analogue of the constant-time contract.
func checkShape(m *bignum.Modulus, n *big.Int) error {
	pipeline := func(a, b *big.Int) (bignum.OpCounts, error) {
		var runErr error
		counts := bignum.CountOps(func() {
			xa := operandFor(m, a)
			xb := operandFor(m, b)
			if err := m.ToMontgomery(xa); err != nil {
				runErr = err
				return
			}
			if err := m.ToMontgomery(xb); err != nil {
				runErr = err
				return
			}
			d := m.NewOperand()
			if err := m.Mul(d, xa, xb); err != nil {
				runErr = err
				return
			}
			if err := m.FromMontgomery(d); err != nil {
				runErr = err
				return
			}
		})
		return counts, runErr
	}

	top := new(big.Int).Sub(n, big.NewInt(1))
	mid := new(big.Int).Rsh(n, 1)
	first, err := pipeline(big.NewInt(0), top)
	if err != nil {
		return fmt.Errorf("shape pipeline: %v", err)
	}
	second, err := pipeline(mid, big.NewInt(1))
	if err != nil {
		return fmt.Errorf("shape pipeline: %v", err)
	}
	if first != second {
		return fmt.Errorf("operation counts depend on operand values: %+v vs %+v", first, second)
	}
	return nil
}

// operandStream derives deterministic operands, so a failure in the field
// reproduces under the same build.
func operandStream(domain string) sha3.ShakeHash {
	sh := sha3.NewShake256()
	sh.Write([]byte(domain))
	return sh
}

func drawBelow(sh sha3.ShakeHash, n *big.Int) *big.Int {
	buf := make([]byte, len(n.Bytes())+8)
	sh.Read(buf)
	v := new(big.Int).SetBytes(buf)
	return v.Mod(v, n)
}

func derivedOdd(domain string, bits int) *big.Int {
	sh := operandStream(domain)
	buf := make([]byte, bits/8)
	sh.Read(buf)
	v := new(big.Int).SetBytes(buf)
	v.SetBit(v, bits-1, 1)
	v.SetBit(v, 0, 1)
	return v
}

// operandFor imports a reduced big.Int into a fresh operand. The caller
// guarantees v < the modulus, so the import cannot fail structurally.
func operandFor(m *bignum.Modulus, v *big.Int) bignum.Limbs {
	x := m.NewOperand()
	if err := m.Read(x, v.FillBytes(make([]byte, m.Size()))); err != nil {
		// Reachable only through a defect in this package's own drawing.
		panic(err)
	}
	return x
}

// toBig exports an operand through the public codec into a big.Int.
func toBig(m *bignum.Modulus, x bignum.Limbs) *big.Int {
	out := make([]byte, m.Size())
	if err := m.Write(x, out); err != nil {
		panic(err)
	}
	return new(big.Int).SetBytes(out)
}
