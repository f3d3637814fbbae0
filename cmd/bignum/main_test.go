package main

import (
	"log/slog"
	"testing"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, exit, code := parseFlags(nil)
	if exit {
		t.Fatalf("unexpected exit with code %d", code)
	}
	if cfg.Modulus != "" || cfg.Value != "" || cfg.Mul != "" || cfg.Exp != "" {
		t.Errorf("operand flags should default empty: %+v", cfg)
	}
	if cfg.Plain || cfg.Counts || cfg.SelfTest {
		t.Errorf("boolean flags should default false: %+v", cfg)
	}
	if cfg.Verbosity != 3 {
		t.Errorf("Verbosity = %d, want 3", cfg.Verbosity)
	}
}

func TestParseFlagsOverrides(t *testing.T) {
	cfg, exit, code := parseFlags([]string{
		"--modulus", "0x61",
		"--value", "0x17",
		"--mul", "0x2a",
		"--exp", "0x010001",
		"--plain",
		"--counts",
		"--verbosity", "5",
	})
	if exit {
		t.Fatalf("unexpected exit with code %d", code)
	}
	if cfg.Modulus != "0x61" || cfg.Value != "0x17" || cfg.Mul != "0x2a" || cfg.Exp != "0x010001" {
		t.Errorf("operand flags not bound: %+v", cfg)
	}
	if !cfg.Plain || !cfg.Counts {
		t.Errorf("boolean flags not bound: %+v", cfg)
	}
	if cfg.Verbosity != 5 {
		t.Errorf("Verbosity = %d, want 5", cfg.Verbosity)
	}
}

func TestParseFlagsVersion(t *testing.T) {
	_, exit, code := parseFlags([]string{"--version"})
	if !exit || code != 0 {
		t.Fatalf("version flag should exit 0, got exit=%v code=%d", exit, code)
	}
}

func TestParseFlagsUnknownFlag(t *testing.T) {
	_, exit, code := parseFlags([]string{"--no-such-flag"})
	if !exit || code != 2 {
		t.Fatalf("unknown flag should exit 2, got exit=%v code=%d", exit, code)
	}
}

func TestVerbosityToLevel(t *testing.T) {
	cases := []struct {
		v    int
		want slog.Level
	}{
		{0, slog.LevelError + 4},
		{1, slog.LevelError},
		{2, slog.LevelWarn},
		{3, slog.LevelInfo},
		{4, slog.LevelDebug},
		{5, slog.LevelDebug},
	}
	for _, tc := range cases {
		if got := verbosityToLevel(tc.v); got != tc.want {
			t.Errorf("verbosityToLevel(%d) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestRunRequiresModulus(t *testing.T) {
	if code := run([]string{"--verbosity", "0"}); code != 2 {
		t.Fatalf("missing modulus should exit 2, got %d", code)
	}
}

func TestRunInspectSmallModulus(t *testing.T) {
	code := run([]string{
		"--verbosity", "0",
		"--modulus", "0x61",
		"--value", "0x17",
		"--mul", "0x2a",
		"--exp", "0x010001",
		"--counts",
	})
	if code != 0 {
		t.Fatalf("inspect run failed with code %d", code)
	}
}

func TestRunRejectsBadModulusHex(t *testing.T) {
	if code := run([]string{"--verbosity", "0", "--modulus", "61"}); code != 2 {
		t.Fatalf("missing 0x prefix should exit 2, got %d", code)
	}
}

func TestRunRejectsUnreducedValue(t *testing.T) {
	// 0x61 == the modulus itself, which import must refuse.
	code := run([]string{"--verbosity", "0", "--modulus", "0x61", "--value", "0x61"})
	if code != 1 {
		t.Fatalf("importing the modulus should exit 1, got %d", code)
	}
}

func TestRunPlainModulusRejectsMul(t *testing.T) {
	code := run([]string{"--verbosity", "0", "--modulus", "0x61", "--plain", "--value", "0x17", "--mul", "0x2a"})
	if code != 1 {
		t.Fatalf("mul without montgomery constants should exit 1, got %d", code)
	}
}

func TestRunSelfTest(t *testing.T) {
	if testing.Short() {
		t.Skip("self test exercises every configured modulus width")
	}
	if code := run([]string{"--verbosity", "0", "--selftest"}); code != 0 {
		t.Fatalf("self test run failed with code %d", code)
	}
}
