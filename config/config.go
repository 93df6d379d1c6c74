// Package config loads settings from the environment and an optional .env
// file. Command-line flags take precedence over everything loaded here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robinvdvleuten/hledger-fifo/xirr"
)

// DefaultJournal is the journal used when neither -f nor LEDGER_FILE is set,
// relative to the home directory.
const DefaultJournal = ".hledger.journal"

type Config struct {
	LedgerFile    string `env:"LEDGER_FILE"`
	HledgerBinary string `env:"HLEDGER_BIN" envDefault:"hledger"`
	NoDesc        string `env:"HLEDGER_FIFO_NO_DESC"`
	DayCount      string `env:"HLEDGER_FIFO_DAY_COUNT" envDefault:"30/360us"`
	Output        string `env:"HLEDGER_FIFO_OUTPUT" envDefault:"plain"`
	Home          string `env:"HOME"`
}

// Load reads envFiles (default ".env") into the environment, then parses the
// environment. Missing env files are ignored; variables already set in the
// environment are never overridden by them.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config error: %w", err)
	}
	if _, err := cfg.DayCountConvention(); err != nil {
		return nil, fmt.Errorf("HLEDGER_FIFO_DAY_COUNT: %w", err)
	}
	return cfg, nil
}

// DayCountConvention returns the configured day count convention.
func (c *Config) DayCountConvention() (xirr.DayCount, error) {
	return xirr.ParseDayCount(c.DayCount)
}

// JournalFiles resolves which journals to read: the -f flags when given,
// then $LEDGER_FILE, then ~/.hledger.journal.
func (c *Config) JournalFiles(flags []string) []string {
	if len(flags) > 0 {
		return flags
	}
	if c.LedgerFile != "" {
		return []string{c.LedgerFile}
	}
	return []string{filepath.Join(c.Home, DefaultJournal)}
}
