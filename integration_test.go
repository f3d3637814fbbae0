// Cross-package integration tests that drive the modular arithmetic core,
// the mechanism selection, and the self test driver together, the way an
// embedding protocol implementation would.
package mbedtls_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/sha3"

	"github.com/minosgalanakis/mbedtls/bignum"
	"github.com/minosgalanakis/mbedtls/features"
	"github.com/minosgalanakis/mbedtls/log"
	"github.com/minosgalanakis/mbedtls/selftest"
)

// deriveOdd produces a deterministic odd number of exactly the given bit
// length, seeded from the domain string.
func deriveOdd(t *testing.T, domain string, bits int) *big.Int {
	t.Helper()
	sh := sha3.NewShake256()
	sh.Write([]byte(domain))
	buf := make([]byte, (bits+7)/8)
	if _, err := sh.Read(buf); err != nil {
		t.Fatalf("shake read: %v", err)
	}
	n := new(big.Int).SetBytes(buf)
	n.SetBit(n, bits-1, 1)
	n.SetBit(n, 0, 1)
	return n
}

// importValue loads a reduced big.Int into a fresh operand of m.
func importValue(t *testing.T, m *bignum.Modulus, v *big.Int) bignum.Limbs {
	t.Helper()
	x := m.NewOperand()
	if err := m.Read(x, v.FillBytes(make([]byte, m.Size()))); err != nil {
		t.Fatalf("import %v: %v", v, err)
	}
	return x
}

// exportValue serializes an operand of m back into a big.Int.
func exportValue(t *testing.T, m *bignum.Modulus, x bignum.Limbs) *big.Int {
	t.Helper()
	out := make([]byte, m.Size())
	if err := m.Write(x, out); err != nil {
		t.Fatalf("export: %v", err)
	}
	return new(big.Int).SetBytes(out)
}

// ---------------------------------------------------------------------------
// Test: Public Exponent Flow
// ---------------------------------------------------------------------------

// TestPublicExponentFlow runs an RSA-shaped computation end to end: import
// a message block under a 1024-bit modulus, raise it to 65537, and export.
func TestPublicExponentFlow(t *testing.T) {
	n := deriveOdd(t, "integration-rsa-modulus", 1024)
	m, err := bignum.NewModulus(n.Bytes(), bignum.RepMontgomery)
	if err != nil {
		t.Fatalf("NewModulus: %v", err)
	}
	if m.BitLen() != 1024 {
		t.Fatalf("bit length = %d, want 1024", m.BitLen())
	}

	msg := deriveOdd(t, "integration-rsa-message", 1000)
	msg.Mod(msg, n)
	x := importValue(t, m, msg)

	if err := m.ExpMod(x, []byte{0x01, 0x00, 0x01}); err != nil {
		t.Fatalf("ExpMod: %v", err)
	}

	want := new(big.Int).Exp(msg, big.NewInt(65537), n)
	if got := exportValue(t, m, x); got.Cmp(want) != 0 {
		t.Fatalf("msg^e mod n = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// Test: Nonce Inversion
// ---------------------------------------------------------------------------

// TestNonceInversion inverts a scalar modulo the secp256k1 group order via
// the Fermat identity k^(q-2) and checks k·k⁻¹ ≡ 1 (mod q).
func TestNonceInversion(t *testing.T) {
	order, ok := new(big.Int).SetString(
		"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	if !ok {
		t.Fatal("bad order constant")
	}
	m, err := bignum.NewModulus(order.Bytes(), bignum.RepMontgomery)
	if err != nil {
		t.Fatalf("NewModulus: %v", err)
	}

	k := deriveOdd(t, "integration-nonce", 250)
	k.Mod(k, order)

	kinv := importValue(t, m, k)
	if err := m.ExpMod(kinv, new(big.Int).Sub(order, big.NewInt(2)).Bytes()); err != nil {
		t.Fatalf("ExpMod: %v", err)
	}

	kx := importValue(t, m, k)
	if err := m.ToMontgomery(kx); err != nil {
		t.Fatalf("ToMontgomery(k): %v", err)
	}
	if err := m.ToMontgomery(kinv); err != nil {
		t.Fatalf("ToMontgomery(kinv): %v", err)
	}
	prod := m.NewOperand()
	if err := m.Mul(prod, kx, kinv); err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if err := m.FromMontgomery(prod); err != nil {
		t.Fatalf("FromMontgomery: %v", err)
	}
	if got := exportValue(t, m, prod); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("k·k⁻¹ mod q = %v, want 1", got)
	}
}

// ---------------------------------------------------------------------------
// Test: Concurrent Descriptor Sharing
// ---------------------------------------------------------------------------

// TestConcurrentDescriptorSharing verifies the concurrency contract: one
// frozen modulus descriptor may serve many goroutines as long as each
// keeps its own operand buffers.
func TestConcurrentDescriptorSharing(t *testing.T) {
	n := deriveOdd(t, "integration-shared-modulus", 512)
	m, err := bignum.NewModulus(n.Bytes(), bignum.RepMontgomery)
	if err != nil {
		t.Fatalf("NewModulus: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			sh := sha3.NewShake256()
			fmt.Fprintf(sh, "worker-%d", seed)
			buf := make([]byte, m.Size()+8)
			sh.Read(buf)
			v := new(big.Int).SetBytes(buf)
			v.Mod(v, n)

			x := m.NewOperand()
			if err := m.Read(x, v.FillBytes(make([]byte, m.Size()))); err != nil {
				errs <- fmt.Errorf("worker %d: read: %v", seed, err)
				return
			}
			if err := m.ToMontgomery(x); err != nil {
				errs <- fmt.Errorf("worker %d: to montgomery: %v", seed, err)
				return
			}
			d := m.NewOperand()
			if err := m.Mul(d, x, x); err != nil {
				errs <- fmt.Errorf("worker %d: mul: %v", seed, err)
				return
			}
			if err := m.FromMontgomery(d); err != nil {
				errs <- fmt.Errorf("worker %d: from montgomery: %v", seed, err)
				return
			}

			out := make([]byte, m.Size())
			if err := m.Write(d, out); err != nil {
				errs <- fmt.Errorf("worker %d: write: %v", seed, err)
				return
			}
			want := new(big.Int).Mul(v, v)
			want.Mod(want, n)
			if new(big.Int).SetBytes(out).Cmp(want) != 0 {
				errs <- fmt.Errorf("worker %d: square does not match reference", seed)
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// ---------------------------------------------------------------------------
// Test: Self Test With Selection
// ---------------------------------------------------------------------------

// TestSelfTestWithSelection runs the self test under a curve-only mechanism
// selection and inspects the log for the targets it should and should not
// have visited.
func TestSelfTestWithSelection(t *testing.T) {
	set := features.NewSet()
	for _, mech := range []features.Mechanism{features.MechECDSA, features.MechECDH} {
		if err := set.Enable(mech); err != nil {
			t.Fatalf("Enable(%v): %v", mech, err)
		}
	}
	set.Freeze()

	var buf bytes.Buffer
	logger := log.NewText(&buf, slog.LevelDebug)
	if err := selftest.Run(set, logger); err != nil {
		t.Fatalf("Run: %v\nlog:\n%s", err, buf.String())
	}

	out := buf.String()
	if !strings.Contains(out, "secp256k1-field") {
		t.Fatalf("log missing the curve field target:\n%s", out)
	}
	if strings.Contains(out, "rsa-width") {
		t.Fatalf("log mentions a disabled mechanism's target:\n%s", out)
	}
	if !strings.Contains(out, "self test passed") {
		t.Fatalf("log missing the summary line:\n%s", out)
	}
}
