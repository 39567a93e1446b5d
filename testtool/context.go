// Package testtool is the verification context fixtures are built against:
// a registry of deployed contracts and live cells plus a script verifier.
package testtool

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"cellkit.dev/harness/chain"
	"cellkit.dev/harness/chain/store"
	"cellkit.dev/harness/vm"
)

// contractCapacity is the capacity every deployed contract cell carries.
const contractCapacity uint64 = 1 << 40

// Context is not safe for concurrent mutation.
type Context struct {
	cfg     Config
	db      *store.DB
	vm      *vm.Verifier
	ownsDir bool
}

func New(ctx context.Context, cfg Config) (*Context, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	ownsDir := false
	if cfg.DataDir == "" {
		dir, err := os.MkdirTemp("", "cellkit-*")
		if err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		cfg.DataDir = dir
		ownsDir = true
	}
	db, err := store.Open(cfg.DataDir)
	if err != nil {
		if ownsDir {
			_ = os.RemoveAll(cfg.DataDir)
		}
		return nil, err
	}
	v, err := vm.NewVerifier(ctx, cfg.VM)
	if err != nil {
		_ = db.Close()
		if ownsDir {
			_ = os.RemoveAll(cfg.DataDir)
		}
		return nil, err
	}
	return &Context{cfg: cfg, db: db, vm: v, ownsDir: ownsDir}, nil
}

func (c *Context) Close() error {
	if c == nil {
		return nil
	}
	errs := []error{
		c.vm.Close(context.Background()),
		c.db.Close(),
	}
	if c.ownsDir {
		errs = append(errs, os.RemoveAll(c.cfg.DataDir))
	}
	return errors.Join(errs...)
}

func (c *Context) Config() Config { return c.cfg }

func (c *Context) Verifier() *vm.Verifier { return c.vm }

// contractLock locks every deployed contract cell. Contract cells are only
// ever used as cell deps, so the lock never runs.
func contractLock() chain.Script {
	return chain.Script{HashType: chain.HashTypeData, Args: []byte{}}
}

// nextOutPoint derives a fresh synthetic outpoint from the store sequence.
func (c *Context) nextOutPoint() (chain.OutPoint, error) {
	seq, err := c.db.NextSequence()
	if err != nil {
		return chain.OutPoint{}, err
	}
	var b [16]byte
	copy(b[:8], "cellkit:")
	binary.LittleEndian.PutUint64(b[8:], seq)
	return chain.OutPoint{TxHash: chain.DataHash(b[:]), Index: 0}, nil
}

// DeployCell registers data as a contract binary and returns its outpoint.
func (c *Context) DeployCell(data []byte) (chain.OutPoint, error) {
	op, err := c.nextOutPoint()
	if err != nil {
		return chain.OutPoint{}, err
	}
	out := chain.CellOutput{Capacity: contractCapacity, Lock: contractLock()}
	if err := c.db.PutCell(op, store.Entry{Output: out, Data: data}); err != nil {
		return chain.OutPoint{}, err
	}
	codeHash := chain.DataHash(data)
	if err := c.db.PutContract(codeHash, op); err != nil {
		return chain.OutPoint{}, err
	}
	Logger().Debug("contract deployed",
		zap.Stringer("out_point", op),
		zap.Stringer("code_hash", codeHash),
		zap.Int("size", len(data)))
	return op, nil
}

// CreateCell appends a live cell with a fresh outpoint.
func (c *Context) CreateCell(output chain.CellOutput, data []byte) (chain.OutPoint, error) {
	op, err := c.nextOutPoint()
	if err != nil {
		return chain.OutPoint{}, err
	}
	if err := c.db.PutCell(op, store.Entry{Output: output.Clone(), Data: data}); err != nil {
		return chain.OutPoint{}, err
	}
	return op, nil
}

func (c *Context) GetCell(op chain.OutPoint) (store.Entry, bool, error) {
	return c.db.GetCell(op)
}

// BuildScript points a script at the contract deployed at op.
func (c *Context) BuildScript(op chain.OutPoint, args []byte) (chain.Script, error) {
	e, ok, err := c.db.GetCell(op)
	if err != nil {
		return chain.Script{}, err
	}
	if !ok {
		return chain.Script{}, toolErr(TOOL_ERR_UNKNOWN_CONTRACT, "no contract at %s", op)
	}
	if args == nil {
		args = []byte{}
	}
	return chain.Script{
		CodeHash: chain.DataHash(e.Data),
		HashType: chain.HashTypeData1,
		Args:     append([]byte(nil), args...),
	}, nil
}

// Resolve looks up the cells tx spends and depends on.
func (c *Context) Resolve(tx chain.Tx) (*vm.ResolvedTx, error) {
	rtx := &vm.ResolvedTx{Tx: tx}
	for i, in := range tx.Inputs {
		cell, err := c.resolveCell(in.PreviousOutput)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		rtx.Inputs = append(rtx.Inputs, cell)
	}
	for i, dep := range tx.CellDeps {
		cell, err := c.resolveCell(dep.OutPoint)
		if err != nil {
			return nil, fmt.Errorf("cell dep %d: %w", i, err)
		}
		rtx.CellDeps = append(rtx.CellDeps, cell)
	}
	return rtx, nil
}

func (c *Context) resolveCell(op chain.OutPoint) (vm.ResolvedCell, error) {
	e, ok, err := c.db.GetCell(op)
	if err != nil {
		return vm.ResolvedCell{}, err
	}
	if !ok {
		return vm.ResolvedCell{}, toolErr(TOOL_ERR_UNKNOWN_CELL, "unknown cell %s", op)
	}
	return vm.ResolvedCell{OutPoint: op, Output: e.Output, Data: e.Data}, nil
}

// VerifyTx resolves and verifies tx. maxCycles 0 uses Config.MaxCycles.
func (c *Context) VerifyTx(ctx context.Context, tx chain.Tx, maxCycles uint64) (uint64, error) {
	if maxCycles == 0 {
		maxCycles = c.cfg.MaxCycles
	}
	rtx, err := c.Resolve(tx)
	if err != nil {
		return 0, err
	}
	return c.vm.Verify(ctx, rtx, maxCycles)
}
