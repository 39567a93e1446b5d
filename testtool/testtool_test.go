package testtool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cellkit.dev/harness/chain"
	"cellkit.dev/harness/internal/wasmtest"
	"cellkit.dev/harness/vm"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.DumpDir = filepath.Join(t.TempDir(), "failed_txs")
	c, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// spendable deploys code, creates a cell locked by it and returns a
// transaction spending that cell into one output.
func spendable(t *testing.T, c *Context, code, args []byte) chain.Tx {
	t.Helper()
	op, err := c.DeployCell(code)
	if err != nil {
		t.Fatalf("DeployCell: %v", err)
	}
	lock, err := c.BuildScript(op, args)
	if err != nil {
		t.Fatalf("BuildScript: %v", err)
	}
	in, err := c.CreateCell(chain.CellOutput{Capacity: 1000, Lock: lock}, []byte{})
	if err != nil {
		t.Fatalf("CreateCell: %v", err)
	}
	return chain.Tx{
		Inputs:  []chain.CellInput{{PreviousOutput: in}},
		Outputs: []chain.OutputSlot{{Output: chain.CellOutput{Capacity: 900, Lock: lock}, Data: []byte{}}},
	}
}

func TestDeployAndBuildScript(t *testing.T) {
	c := newTestContext(t)
	code := wasmtest.AlwaysSuccess()
	op, err := c.DeployCell(code)
	if err != nil {
		t.Fatalf("DeployCell: %v", err)
	}
	s, err := c.BuildScript(op, []byte{1, 2})
	if err != nil {
		t.Fatalf("BuildScript: %v", err)
	}
	if s.CodeHash != chain.DataHash(code) || s.HashType != chain.HashTypeData1 || string(s.Args) != "\x01\x02" {
		t.Fatalf("script=%+v", s)
	}
	if _, err := c.BuildScript(chain.OutPoint{Index: 9}, nil); err == nil {
		t.Fatal("expected error for unknown contract")
	}

	op2, err := c.DeployCell(code)
	if err != nil {
		t.Fatalf("DeployCell again: %v", err)
	}
	if op2 == op {
		t.Fatal("deployments must get distinct outpoints")
	}
}

func TestCompleteTx_AddsDepsOnceAndPadsWitnesses(t *testing.T) {
	c := newTestContext(t)
	code := wasmtest.AlwaysSuccess()
	tx := spendable(t, c, code, nil)
	lock := tx.Outputs[0].Output.Lock
	second, err := c.CreateCell(chain.CellOutput{Capacity: 10, Lock: lock}, nil)
	if err != nil {
		t.Fatalf("CreateCell: %v", err)
	}
	tx.Inputs = append(tx.Inputs, chain.CellInput{PreviousOutput: second})

	done, err := c.CompleteTx(tx)
	if err != nil {
		t.Fatalf("CompleteTx: %v", err)
	}
	if len(done.CellDeps) != 1 || done.CellDeps[0].DepType != chain.DepTypeCode {
		t.Fatalf("cell deps=%+v", done.CellDeps)
	}
	if got := len(done.Witnesses()); got != 2 {
		t.Fatalf("witnesses=%d, want 2", got)
	}
	if len(tx.CellDeps) != 0 || len(tx.ExtraWitnesses) != 0 {
		t.Fatal("CompleteTx mutated its input")
	}

	again, err := c.CompleteTx(done)
	if err != nil {
		t.Fatalf("CompleteTx again: %v", err)
	}
	if len(again.CellDeps) != 1 || len(again.Witnesses()) != 2 {
		t.Fatalf("second completion changed the tx: deps=%d witnesses=%d", len(again.CellDeps), len(again.Witnesses()))
	}
}

func TestVerifyTx(t *testing.T) {
	c := newTestContext(t)
	tx, err := c.CompleteTx(spendable(t, c, wasmtest.AlwaysSuccess(), nil))
	if err != nil {
		t.Fatal(err)
	}
	cycles, err := c.VerifyTx(context.Background(), tx, 0)
	if err != nil {
		t.Fatalf("VerifyTx: %v", err)
	}
	if cycles == 0 {
		t.Fatal("expected cycles to be charged")
	}

	tx.Inputs = append(tx.Inputs, chain.CellInput{PreviousOutput: chain.OutPoint{Index: 77}})
	_, err = c.VerifyTx(context.Background(), tx, 0)
	var te *Error
	if !errors.As(err, &te) || te.Code != TOOL_ERR_UNKNOWN_CELL {
		t.Fatalf("err=%v, want %s", err, TOOL_ERR_UNKNOWN_CELL)
	}
}

func TestShouldPassAndFail(t *testing.T) {
	c := newTestContext(t)
	good, err := c.CompleteTx(spendable(t, c, wasmtest.AlwaysSuccess(), nil))
	if err != nil {
		t.Fatal(err)
	}
	bad, err := c.CompleteTx(spendable(t, c, wasmtest.ExitCode(4), nil))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.ShouldPass(context.Background(), good, 0); err != nil {
		t.Fatalf("ShouldPass(good): %v", err)
	}
	_, err = c.ShouldFail(context.Background(), bad, 0)
	if code, ok := vm.ExitCode(err); !ok || code != 4 {
		t.Fatalf("ShouldFail(bad): code=%d ok=%v err=%v", code, ok, err)
	}
	if _, err := os.Stat(c.Config().DumpDir); !os.IsNotExist(err) {
		t.Fatal("expected outcomes must not dump fixtures")
	}

	_, err = c.ShouldFail(context.Background(), good, 0)
	if !errors.Is(err, ErrUnexpectedPass) {
		t.Fatalf("ShouldFail(good): err=%v", err)
	}
	h, _ := good.Hash()
	if _, err := os.Stat(MockTxPath(c.Config().DumpDir, h)); err != nil {
		t.Fatalf("fixture not dumped: %v", err)
	}

	_, err = c.ShouldPass(context.Background(), bad, 0)
	if !vm.IsKind(err, vm.VM_ERR_VALIDATION_FAILURE) {
		t.Fatalf("ShouldPass(bad): err=%v", err)
	}
}

func TestMockTx_ReverifiesWithoutContext(t *testing.T) {
	c := newTestContext(t)
	tx, err := c.CompleteTx(spendable(t, c, wasmtest.ArgByte(), []byte{0}))
	if err != nil {
		t.Fatal(err)
	}
	tx.Outputs[0].Witness = []byte{0xaa}

	m, err := c.DumpTx(tx)
	if err != nil {
		t.Fatalf("DumpTx: %v", err)
	}
	if len(m.View) == 0 {
		t.Fatal("expected a rendered view")
	}
	path, err := WriteMockTx(t.TempDir(), m)
	if err != nil {
		t.Fatalf("WriteMockTx: %v", err)
	}
	back, err := ReadMockTx(path)
	if err != nil {
		t.Fatalf("ReadMockTx: %v", err)
	}
	if back.Hash != m.Hash {
		t.Fatalf("hash %s != %s", back.Hash, m.Hash)
	}
	rtx, err := back.Resolved()
	if err != nil {
		t.Fatalf("Resolved: %v", err)
	}
	if len(rtx.Inputs) != 1 || len(rtx.CellDeps) != 1 || string(rtx.Tx.Outputs[0].Witness) != "\xaa" {
		t.Fatalf("resolved=%+v", rtx)
	}
	if _, err := c.Verifier().Verify(context.Background(), rtx, DefaultMaxCycles); err != nil {
		t.Fatalf("re-verify: %v", err)
	}
}

func TestMockTx_RejectsBadHex(t *testing.T) {
	m := &MockTx{Tx: "abc"}
	_, err := m.Resolved()
	var te *Error
	if !errors.As(err, &te) || te.Code != TOOL_ERR_MOCK {
		t.Fatalf("err=%v", err)
	}
}

func TestSDKTransactionView(t *testing.T) {
	typ := chain.Script{CodeHash: chain.Hash{2}, HashType: chain.HashTypeType}
	tx := chain.Tx{
		CellDeps: []chain.CellDep{{OutPoint: chain.OutPoint{Index: 1}, DepType: chain.DepTypeDepGroup}},
		Inputs:   []chain.CellInput{{Since: 5}},
		Outputs: []chain.OutputSlot{{
			Output:  chain.CellOutput{Capacity: 7, Lock: chain.Script{HashType: chain.HashTypeData1}, Type: &typ},
			Data:    []byte{1},
			Witness: []byte{2},
		}},
	}
	v := SDKTransaction(tx, chain.Hash{9})
	if len(v.Outputs) != 1 || v.Outputs[0].Capacity != 7 || v.Outputs[0].Type == nil {
		t.Fatalf("outputs=%+v", v.Outputs)
	}
	if string(v.Outputs[0].Lock.HashType) != "data1" || string(v.Outputs[0].Type.HashType) != "type" {
		t.Fatalf("hash types %q %q", v.Outputs[0].Lock.HashType, v.Outputs[0].Type.HashType)
	}
	if string(v.CellDeps[0].DepType) != "dep_group" || v.Inputs[0].Since != 5 {
		t.Fatalf("deps=%+v inputs=%+v", v.CellDeps[0], v.Inputs[0])
	}
	if len(v.Witnesses) != 1 || v.Witnesses[0][0] != 2 {
		t.Fatalf("witnesses=%x", v.Witnesses)
	}
}

func TestNew_TempDirRemovedOnClose(t *testing.T) {
	c, err := New(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dir := c.Config().DataDir
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("data dir %s still exists", dir)
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCycles = 0
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error for zero max cycles")
	}
}
