package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
)

// config holds the parsed command line options.
type config struct {
	Modulus   string
	Value     string
	Mul       string
	Exp       string
	Plain     bool
	Counts    bool
	SelfTest  bool
	Verbosity int
}

// parseFlags parses CLI arguments into a config. Returns the config,
// whether the caller should exit immediately, and the exit code.
func parseFlags(args []string) (config, bool, int) {
	var cfg config
	fs := newFlagSet(&cfg)

	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}

	if *showVersion {
		fmt.Printf("bignum %s (commit %s)\n", version, commit)
		return cfg, true, 0
	}

	return cfg, false, 0
}

// newFlagSet creates a flag.FlagSet that binds all CLI flags to the given
// config. The FlagSet uses ContinueOnError so callers control the error
// handling behavior.
func newFlagSet(cfg *config) *flag.FlagSet {
	fs := flag.NewFlagSet("bignum", flag.ContinueOnError)
	fs.StringVar(&cfg.Modulus, "modulus", "", "0x-prefixed hex modulus")
	fs.StringVar(&cfg.Value, "value", "", "0x-prefixed hex operand to import")
	fs.StringVar(&cfg.Mul, "mul", "", "0x-prefixed hex second operand for multiplication")
	fs.StringVar(&cfg.Exp, "exp", "", "0x-prefixed hex exponent")
	fs.BoolVar(&cfg.Plain, "plain", false, "skip montgomery constant computation")
	fs.BoolVar(&cfg.Counts, "counts", false, "print primitive operation counts")
	fs.BoolVar(&cfg.SelfTest, "selftest", false, "run the library self test and exit")
	fs.IntVar(&cfg.Verbosity, "verbosity", 3, "log level 0-5 (0=silent, 5=trace)")
	return fs
}

// verbosityToLevel maps the 0-5 verbosity scale onto slog levels.
func verbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError + 4
	case v == 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
