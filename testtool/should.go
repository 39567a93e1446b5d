package testtool

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cellkit.dev/harness/chain"
)

// ShouldPass verifies tx. On failure the fixture is dumped to
// Config.DumpDir and the verification error is returned wrapped with the
// dump path.
func (c *Context) ShouldPass(ctx context.Context, tx chain.Tx, maxCycles uint64) (uint64, error) {
	cycles, err := c.VerifyTx(ctx, tx, maxCycles)
	if err == nil {
		return cycles, nil
	}
	path, derr := c.dump(tx)
	if derr != nil {
		return cycles, fmt.Errorf("should pass, but failed: %w (dump: %v)", err, derr)
	}
	return cycles, fmt.Errorf("should pass, but failed (fixture %s): %w", path, err)
}

// ShouldFail verifies tx and returns the verification error it expects.
// When tx passes instead, the fixture is dumped and ErrUnexpectedPass is
// returned.
func (c *Context) ShouldFail(ctx context.Context, tx chain.Tx, maxCycles uint64) (uint64, error) {
	cycles, err := c.VerifyTx(ctx, tx, maxCycles)
	if err != nil {
		return cycles, err
	}
	path, derr := c.dump(tx)
	if derr != nil {
		return cycles, fmt.Errorf("%w (dump: %v)", ErrUnexpectedPass, derr)
	}
	return cycles, fmt.Errorf("%w (fixture %s)", ErrUnexpectedPass, path)
}

func (c *Context) dump(tx chain.Tx) (string, error) {
	m, err := c.DumpTx(tx)
	if err != nil {
		return "", err
	}
	path, err := WriteMockTx(c.cfg.DumpDir, m)
	if err != nil {
		return "", err
	}
	Logger().Info("fixture written", zap.String("path", path), zap.Stringer("tx_hash", m.Hash))
	return path, nil
}
