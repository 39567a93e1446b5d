// Package fixture assembles transaction fixtures from typed cells against a
// verification context.
package fixture

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cellkit.dev/harness/cell"
	"cellkit.dev/harness/chain"
	"cellkit.dev/harness/loader"
	"cellkit.dev/harness/testtool"
)

// AlwaysSuccessName is the binary every builder deploys as its default lock.
const AlwaysSuccessName = "always_success"

// Builder owns a verification context. Every method that takes a chain.Tx
// returns a new value and leaves its argument untouched; only the context's
// cell registry grows.
type Builder struct {
	tctx          *testtool.Context
	ld            *loader.Loader
	alwaysSuccess chain.OutPoint
}

// New deploys always_success from ld.
func New(tctx *testtool.Context, ld *loader.Loader) (*Builder, error) {
	bin, err := ld.LoadBinary(AlwaysSuccessName)
	if err != nil {
		return nil, err
	}
	b, err := NewWithAlwaysSuccess(tctx, bin)
	if err != nil {
		return nil, err
	}
	b.ld = ld
	return b, nil
}

// NewWithAlwaysSuccess deploys the given always-success binary. The builder
// has no loader, so DeployContract fails.
func NewWithAlwaysSuccess(tctx *testtool.Context, binary []byte) (*Builder, error) {
	op, err := tctx.DeployCell(binary)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", AlwaysSuccessName, err)
	}
	return &Builder{tctx: tctx, alwaysSuccess: op}, nil
}

// Context is the verification context the builder deploys into.
func (b *Builder) Context() *testtool.Context { return b.tctx }

// AlwaysSuccess is the outpoint of the default lock contract.
func (b *Builder) AlwaysSuccess() chain.OutPoint { return b.alwaysSuccess }

// DeployContract loads the named binary and deploys it.
func (b *Builder) DeployContract(name string) (chain.OutPoint, error) {
	if b.ld == nil {
		return chain.OutPoint{}, fixtureErr(FIXTURE_ERR_NO_LOADER, "cannot load %q", name)
	}
	bin, err := b.ld.LoadBinary(name)
	if err != nil {
		return chain.OutPoint{}, err
	}
	return b.tctx.DeployCell(bin)
}

// OutputBuilder builds the output for c: a lock script on the lock contract
// with c's lock arg, a type script on typ with c's type arg when typ is
// given, and exactly capacity shannons.
func (b *Builder) OutputBuilder(lock chain.OutPoint, typ *chain.OutPoint, c cell.Cell, capacity uint64) (chain.CellOutput, error) {
	a, err := cell.EncodeArgs(c)
	if err != nil {
		return chain.CellOutput{}, err
	}
	return b.output(lock, typ, a, capacity)
}

func (b *Builder) output(lock chain.OutPoint, typ *chain.OutPoint, a cell.Args, capacity uint64) (chain.CellOutput, error) {
	ls, err := b.tctx.BuildScript(lock, a.Lock)
	if err != nil {
		return chain.CellOutput{}, fmt.Errorf("lock script: %w", err)
	}
	out := chain.CellOutput{Capacity: capacity, Lock: ls}
	if typ == nil {
		return out, nil
	}
	if !a.HasType {
		return chain.CellOutput{}, fixtureErr(FIXTURE_ERR_MISSING_TYPE_ARG, "type contract %s given for a cell without a type arg", *typ)
	}
	ts, err := b.tctx.BuildScript(*typ, a.Type)
	if err != nil {
		return chain.CellOutput{}, fmt.Errorf("type script: %w", err)
	}
	out.Type = &ts
	return out, nil
}

// slot encodes c once and bundles its output, data and witness. A cell
// without a witness gets an empty one.
func (b *Builder) slot(lock chain.OutPoint, typ *chain.OutPoint, c cell.Cell, capacity uint64) (chain.OutputSlot, error) {
	a, err := cell.EncodeArgs(c)
	if err != nil {
		return chain.OutputSlot{}, err
	}
	out, err := b.output(lock, typ, a, capacity)
	if err != nil {
		return chain.OutputSlot{}, err
	}
	s := chain.OutputSlot{Output: out, Data: a.Data, Witness: a.Witness}
	if s.Data == nil {
		s.Data = []byte{}
	}
	if !a.HasWitness || s.Witness == nil {
		s.Witness = []byte{}
	}
	return s, nil
}

// CreateCellInput commits a backing cell for c and returns an input
// spending it.
func (b *Builder) CreateCellInput(lock chain.OutPoint, typ *chain.OutPoint, c cell.Cell, capacity uint64) (chain.CellInput, error) {
	a, err := cell.EncodeArgs(c)
	if err != nil {
		return chain.CellInput{}, err
	}
	out, err := b.output(lock, typ, a, capacity)
	if err != nil {
		return chain.CellInput{}, err
	}
	op, err := b.tctx.CreateCell(out, a.Data)
	if err != nil {
		return chain.CellInput{}, err
	}
	return chain.CellInput{PreviousOutput: op}, nil
}

// AddInput commits a backing cell for c and appends an input spending it.
func (b *Builder) AddInput(tx chain.Tx, lock chain.OutPoint, typ *chain.OutPoint, c cell.Cell, capacity uint64) (chain.Tx, error) {
	return b.AddInputWithSince(tx, lock, typ, c, 0, capacity)
}

// AddInputWithSince is AddInput with a since constraint on the input.
func (b *Builder) AddInputWithSince(tx chain.Tx, lock chain.OutPoint, typ *chain.OutPoint, c cell.Cell, since uint64, capacity uint64) (chain.Tx, error) {
	in, err := b.CreateCellInput(lock, typ, c, capacity)
	if err != nil {
		return chain.Tx{}, err
	}
	in.Since = since
	out := tx.Clone()
	out.Inputs = append(out.Inputs, in)
	return out, nil
}

// AddOutput appends c as a new output slot.
func (b *Builder) AddOutput(tx chain.Tx, lock chain.OutPoint, typ *chain.OutPoint, c cell.Cell, capacity uint64) (chain.Tx, error) {
	s, err := b.slot(lock, typ, c, capacity)
	if err != nil {
		return chain.Tx{}, err
	}
	out := tx.Clone()
	out.Outputs = append(out.Outputs, s)
	return out, nil
}

// ReplaceOutput overwrites output slot index with c. index must be in
// [0, len(outputs)).
func (b *Builder) ReplaceOutput(tx chain.Tx, lock chain.OutPoint, typ *chain.OutPoint, c cell.Cell, capacity uint64, index int) (chain.Tx, error) {
	if index < 0 || index >= len(tx.Outputs) {
		Logger().Warn("replace output index out of range", zap.Int("index", index), zap.Int("outputs", len(tx.Outputs)))
		return chain.Tx{}, indexErr("replace output", index, len(tx.Outputs))
	}
	s, err := b.slot(lock, typ, c, capacity)
	if err != nil {
		return chain.Tx{}, err
	}
	out := tx.Clone()
	out.Outputs[index] = s
	return out, nil
}

// InsertOutput places c at index, shifting later slots right. index must
// be in [0, len(outputs)].
func (b *Builder) InsertOutput(tx chain.Tx, lock chain.OutPoint, typ *chain.OutPoint, c cell.Cell, capacity uint64, index int) (chain.Tx, error) {
	if index < 0 || index > len(tx.Outputs) {
		Logger().Warn("insert output index out of range", zap.Int("index", index), zap.Int("outputs", len(tx.Outputs)))
		return chain.Tx{}, indexErr("insert output", index, len(tx.Outputs))
	}
	s, err := b.slot(lock, typ, c, capacity)
	if err != nil {
		return chain.Tx{}, err
	}
	out := tx.Clone()
	out.Outputs = append(out.Outputs, chain.OutputSlot{})
	copy(out.Outputs[index+1:], out.Outputs[index:])
	out.Outputs[index] = s
	return out, nil
}

// AddCellDep appends a Code dependency on dep.
func (b *Builder) AddCellDep(tx chain.Tx, dep chain.OutPoint) chain.Tx {
	out := tx.Clone()
	out.CellDeps = append(out.CellDeps, chain.CellDep{OutPoint: dep, DepType: chain.DepTypeCode})
	return out
}

// CreateTxCells verifies tx and commits each of its outputs as a live cell,
// returning the new outpoints in output order.
func (b *Builder) CreateTxCells(ctx context.Context, tx chain.Tx) ([]chain.OutPoint, error) {
	if _, err := b.tctx.ShouldPass(ctx, tx, 0); err != nil {
		return nil, err
	}
	ops := make([]chain.OutPoint, 0, len(tx.Outputs))
	for i, s := range tx.Outputs {
		op, err := b.tctx.CreateCell(s.Output, s.Data)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// CellByIndex decodes output slot index of tx back into a typed cell.
func CellByIndex[C any](tx chain.Tx, index int, decode func(cell.Args) (C, error)) (C, error) {
	var zero C
	if index < 0 || index >= len(tx.Outputs) {
		return zero, indexErr("cell by index", index, len(tx.Outputs))
	}
	s := tx.Outputs[index]
	a := cell.Args{
		Lock:       s.Output.Lock.Args,
		Data:       s.Data,
		Witness:    s.Witness,
		HasWitness: true,
	}
	if s.Output.Type != nil {
		a.Type = s.Output.Type.Args
		a.HasType = true
	}
	return decode(a)
}
