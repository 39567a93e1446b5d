package testtool

import (
	"errors"
	"fmt"

	"cellkit.dev/harness/vm"
)

// DefaultMaxCycles bounds a single verification when callers pass 0.
const DefaultMaxCycles uint64 = 10_000_000

type Config struct {
	// DataDir holds the cell store. Empty means a private temp dir that
	// Close removes.
	DataDir   string    `json:"data_dir"`
	MaxCycles uint64    `json:"max_cycles"`
	VM        vm.Config `json:"vm"`
	// DumpDir receives fixtures whose verification outcome was unexpected.
	DumpDir string `json:"dump_dir"`
}

func DefaultConfig() Config {
	return Config{
		MaxCycles: DefaultMaxCycles,
		VM:        vm.DefaultConfig(),
		DumpDir:   "failed_txs",
	}
}

func ValidateConfig(cfg Config) error {
	if cfg.MaxCycles == 0 {
		return errors.New("max_cycles must be > 0")
	}
	if cfg.DumpDir == "" {
		return errors.New("dump_dir is required")
	}
	if err := vm.ValidateConfig(cfg.VM); err != nil {
		return fmt.Errorf("vm: %w", err)
	}
	return nil
}
