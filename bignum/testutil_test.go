package bignum

import (
	"crypto/elliptic"
	"math/big"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// Test operands are drawn from a SHAKE-256 stream seeded with a fixed
// domain string, so every run exercises the same values and failures
// reproduce exactly.
func newOperandStream(domain string) sha3.ShakeHash {
	sh := sha3.NewShake256()
	sh.Write([]byte(domain))
	return sh
}

// drawReduced derives the next value in [0, n) from the stream.
func drawReduced(sh sha3.ShakeHash, n *big.Int) *big.Int {
	buf := make([]byte, len(n.Bytes())+8)
	sh.Read(buf)
	v := new(big.Int).SetBytes(buf)
	return v.Mod(v, n)
}

// drawOdd derives an odd value of exactly the given bit length.
func drawOdd(sh sha3.ShakeHash, bits int) *big.Int {
	buf := make([]byte, (bits+7)/8)
	sh.Read(buf)
	v := new(big.Int).SetBytes(buf)
	v.SetBit(v, bits-1, 1)
	v.SetBit(v, 0, 1)
	return v
}

func limbsFromBig(count int, v *big.Int) Limbs {
	x := make(Limbs, count)
	decodeBE(x, v.Bytes())
	return x
}

func bigFromLimbs(x Limbs) *big.Int {
	b := make([]byte, len(x)*_S)
	encodeBE(b, x)
	return new(big.Int).SetBytes(b)
}

func mustModulus(t *testing.T, n *big.Int, rep Representation) *Modulus {
	t.Helper()
	m, err := NewModulus(n.Bytes(), rep)
	if err != nil {
		t.Fatalf("modulus for %v: %v", n, err)
	}
	return m
}

// testModuli returns odd moduli spanning one limb to many, including the
// curve primes real callers reach for.
func testModuli() map[string]*big.Int {
	secp := ethcrypto.S256().Params()
	sh := newOperandStream("bignum-test-moduli")
	return map[string]*big.Int{
		"n97":        big.NewInt(97),
		"uint64max":  new(big.Int).SetUint64(^uint64(0)), // 2^64 - 1, odd
		"secp256k1p": new(big.Int).Set(secp.P),
		"secp256k1n": new(big.Int).Set(secp.N),
		"p256":       new(big.Int).Set(elliptic.P256().Params().P),
		"odd384":     drawOdd(sh, 384),
		"odd1024":    drawOdd(sh, 1024),
		"odd1025":    drawOdd(sh, 1025), // straddles a limb boundary
		"odd2048":    drawOdd(sh, 2048),
	}
}
