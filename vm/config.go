package vm

import "fmt"

// Config prices execution. Every guest function call costs CallCycles,
// every syscall SyscallCycles plus ByteCycles per byte copied into guest
// memory, and every script group InstantiateCycles up front.
type Config struct {
	CallCycles        uint64
	SyscallCycles     uint64
	ByteCycles        uint64
	InstantiateCycles uint64
	// MemoryLimitPages caps guest memory in 64KiB pages. 0 keeps the wazero default.
	MemoryLimitPages uint32
	// CaptureDebug keeps debug syscall output for CapturedMessages.
	CaptureDebug bool
}

func DefaultConfig() Config {
	return Config{
		CallCycles:        10,
		SyscallCycles:     500,
		ByteCycles:        1,
		InstantiateCycles: 10_000,
		MemoryLimitPages:  256,
	}
}

func ValidateConfig(cfg Config) error {
	if cfg.MemoryLimitPages > 65536 {
		return fmt.Errorf("invalid memory_limit_pages=%d (max 65536)", cfg.MemoryLimitPages)
	}
	return nil
}
