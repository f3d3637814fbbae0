// Command bignum inspects moduli and drives the modular arithmetic core
// from the command line: it shows a modulus's limb geometry and Montgomery
// constants, converts values through the Montgomery domain, multiplies and
// exponentiates, and runs the library self test.
//
// Usage:
//
//	bignum [flags]
//
// Flags:
//
//	--modulus    0x-prefixed hex modulus to inspect (required unless --selftest)
//	--value      0x-prefixed hex operand to import
//	--mul        0x-prefixed hex second operand; prints value·mul mod modulus
//	--exp        0x-prefixed hex exponent; prints value^exp mod modulus
//	--plain      build the descriptor without Montgomery constants
//	--counts     print primitive operation counts for the computation
//	--selftest   run the library self test and exit
//	--verbosity  log level 0-5 (default: 3)
//	--version    print version and exit
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/minosgalanakis/mbedtls/bignum"
	"github.com/minosgalanakis/mbedtls/features"
	"github.com/minosgalanakis/mbedtls/log"
	"github.com/minosgalanakis/mbedtls/selftest"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	logger := log.NewText(os.Stderr, verbosityToLevel(cfg.Verbosity))
	log.SetDefault(logger)

	if cfg.SelfTest {
		if err := selftest.Run(features.Default(), logger); err != nil {
			logger.Error("self test failed", "err", err)
			return 1
		}
		fmt.Println("self test passed")
		return 0
	}

	if cfg.Modulus == "" {
		fmt.Fprintln(os.Stderr, "a --modulus is required unless --selftest is given")
		return 2
	}
	return inspect(cfg, logger)
}

// inspect builds the descriptor and performs the requested operations,
// printing results to stdout.
func inspect(cfg config, logger *log.Logger) int {
	raw, err := hexutil.Decode(cfg.Modulus)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --modulus: %v\n", err)
		return 2
	}

	rep := bignum.RepMontgomery
	if cfg.Plain || len(raw) == 0 || raw[len(raw)-1]&1 == 0 {
		rep = bignum.RepPlain
	}
	m, err := bignum.NewModulus(raw, rep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot build modulus: %v\n", err)
		return 1
	}
	logger.Debug("descriptor ready", "bits", m.BitLen(), "limbs", m.LimbCount(), "rep", m.Rep().String())

	fmt.Printf("modulus:    %s\n", hexutil.Encode(raw))
	fmt.Printf("bits:       %d\n", m.BitLen())
	fmt.Printf("limbs:      %d x %d bits\n", m.LimbCount(), bignum.LimbBits)
	fmt.Printf("bytes:      %d\n", m.Size())
	fmt.Printf("rep:        %s\n", m.Rep())
	if m.Rep() == bignum.RepMontgomery {
		fmt.Printf("m0inv:      %#x\n", m.MontInverse())
		fmt.Printf("rr:         %s\n", operandHex(m, m.RR()))
	}

	if cfg.Value == "" {
		return 0
	}
	vraw, err := hexutil.Decode(cfg.Value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --value: %v\n", err)
		return 2
	}
	x := m.NewOperand()
	if err := m.Read(x, vraw); err != nil {
		fmt.Fprintf(os.Stderr, "cannot import value: %v\n", err)
		return 1
	}
	fmt.Printf("value:      %s\n", operandHex(m, x))

	var opErr error
	counts := bignum.CountOps(func() {
		opErr = operate(cfg, m, x)
	})
	if opErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", opErr)
		return 1
	}
	if cfg.Counts {
		fmt.Printf("counts:     adds=%d subs=%d muladds=%d montmuls=%d selects=%d compares=%d\n",
			counts.Adds, counts.Subs, counts.MulAdds, counts.MontMuls, counts.Selects, counts.Compares)
	}
	return 0
}

// operate performs the conversion, multiplication, and exponentiation
// requested by the flags, printing each result.
func operate(cfg config, m *bignum.Modulus, x bignum.Limbs) error {
	if (cfg.Mul != "" || cfg.Exp != "") && m.Rep() != bignum.RepMontgomery {
		return fmt.Errorf("--mul and --exp need montgomery constants: use an odd modulus without --plain")
	}

	if m.Rep() == bignum.RepMontgomery {
		xm := x.Clone()
		if err := m.ToMontgomery(xm); err != nil {
			return fmt.Errorf("to montgomery: %w", err)
		}
		fmt.Printf("montgomery: %s\n", operandHex(m, xm))
	}

	if cfg.Mul != "" {
		yraw, err := hexutil.Decode(cfg.Mul)
		if err != nil {
			return fmt.Errorf("invalid --mul: %w", err)
		}
		y := m.NewOperand()
		if err := m.Read(y, yraw); err != nil {
			return fmt.Errorf("cannot import --mul operand: %w", err)
		}
		a := x.Clone()
		if err := m.ToMontgomery(a); err != nil {
			return fmt.Errorf("to montgomery: %w", err)
		}
		if err := m.ToMontgomery(y); err != nil {
			return fmt.Errorf("to montgomery: %w", err)
		}
		d := m.NewOperand()
		if err := m.Mul(d, a, y); err != nil {
			return fmt.Errorf("mul: %w", err)
		}
		if err := m.FromMontgomery(d); err != nil {
			return fmt.Errorf("from montgomery: %w", err)
		}
		fmt.Printf("product:    %s\n", operandHex(m, d))
	}

	if cfg.Exp != "" {
		eraw, err := hexutil.Decode(cfg.Exp)
		if err != nil {
			return fmt.Errorf("invalid --exp: %w", err)
		}
		p := x.Clone()
		if err := m.ExpMod(p, eraw); err != nil {
			return fmt.Errorf("expmod: %w", err)
		}
		fmt.Printf("power:      %s\n", operandHex(m, p))
	}
	return nil
}

// operandHex exports an operand at the modulus's byte width as 0x hex.
func operandHex(m *bignum.Modulus, x bignum.Limbs) string {
	out := make([]byte, m.Size())
	if err := m.Write(x, out); err != nil {
		return fmt.Sprintf("<unexportable: %v>", err)
	}
	return hexutil.Encode(out)
}
