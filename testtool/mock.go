package testtool

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nervosnetwork/ckb-sdk-go/v2/types"

	"cellkit.dev/harness/chain"
	"cellkit.dev/harness/vm"
)

// MockCell is a resolved cell in a dumped fixture. Output is the canonical
// cell output encoding.
type MockCell struct {
	TxHash chain.Hash `json:"tx_hash"`
	Index  uint32     `json:"index"`
	Output string     `json:"output"`
	Data   string     `json:"data"`
}

// MockTx is a self-contained fixture: the canonical transaction plus every
// cell needed to verify it again without the context that built it.
type MockTx struct {
	Hash     chain.Hash `json:"hash"`
	Tx       string     `json:"tx"`
	Inputs   []MockCell `json:"inputs"`
	CellDeps []MockCell `json:"cell_deps"`
	// View renders the transaction in CKB RPC JSON for reading.
	View json.RawMessage `json:"view,omitempty"`
}

// DumpTx captures tx with its resolved cells.
func (c *Context) DumpTx(tx chain.Tx) (*MockTx, error) {
	rtx, err := c.Resolve(tx)
	if err != nil {
		return nil, err
	}
	return NewMockTx(rtx)
}

func NewMockTx(rtx *vm.ResolvedTx) (*MockTx, error) {
	raw, err := chain.MarshalTx(rtx.Tx)
	if err != nil {
		return nil, err
	}
	h, err := rtx.Tx.Hash()
	if err != nil {
		return nil, err
	}
	m := &MockTx{Hash: h, Tx: hex.EncodeToString(raw)}
	if m.Inputs, err = mockCells(rtx.Inputs); err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	if m.CellDeps, err = mockCells(rtx.CellDeps); err != nil {
		return nil, fmt.Errorf("cell deps: %w", err)
	}
	view, err := json.Marshal(SDKTransaction(rtx.Tx, h))
	if err != nil {
		return nil, fmt.Errorf("render view: %w", err)
	}
	m.View = view
	return m, nil
}

func mockCells(cells []vm.ResolvedCell) ([]MockCell, error) {
	out := make([]MockCell, 0, len(cells))
	for _, c := range cells {
		b, err := chain.MarshalCellOutput(c.Output)
		if err != nil {
			return nil, err
		}
		out = append(out, MockCell{
			TxHash: c.OutPoint.TxHash,
			Index:  c.OutPoint.Index,
			Output: hex.EncodeToString(b),
			Data:   hex.EncodeToString(c.Data),
		})
	}
	return out, nil
}

// Resolved rebuilds the resolved transaction the fixture was dumped from.
func (m *MockTx) Resolved() (*vm.ResolvedTx, error) {
	raw, err := parseHex("tx", m.Tx)
	if err != nil {
		return nil, toolErr(TOOL_ERR_MOCK, "%v", err)
	}
	tx, err := chain.ParseTx(raw)
	if err != nil {
		return nil, err
	}
	rtx := &vm.ResolvedTx{Tx: tx}
	if rtx.Inputs, err = resolvedCells("input", m.Inputs); err != nil {
		return nil, err
	}
	if rtx.CellDeps, err = resolvedCells("cell_dep", m.CellDeps); err != nil {
		return nil, err
	}
	return rtx, nil
}

func resolvedCells(name string, cells []MockCell) ([]vm.ResolvedCell, error) {
	out := make([]vm.ResolvedCell, 0, len(cells))
	for i, c := range cells {
		field := fmt.Sprintf("%s[%d]", name, i)
		ob, err := parseHex(field+".output", c.Output)
		if err != nil {
			return nil, toolErr(TOOL_ERR_MOCK, "%v", err)
		}
		o, err := chain.ParseCellOutput(ob)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		data, err := parseHex(field+".data", c.Data)
		if err != nil {
			return nil, toolErr(TOOL_ERR_MOCK, "%v", err)
		}
		out = append(out, vm.ResolvedCell{
			OutPoint: chain.OutPoint{TxHash: c.TxHash, Index: c.Index},
			Output:   o,
			Data:     data,
		})
	}
	return out, nil
}

// MockTxPath is where WriteMockTx puts the fixture of a transaction.
func MockTxPath(dir string, h chain.Hash) string {
	return filepath.Join(dir, h.String()+".json")
}

// WriteMockTx writes m as indented JSON under dir and returns the path.
func WriteMockTx(dir string, m *MockTx) (string, error) {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode mock tx: %w", err)
	}
	raw = append(raw, '\n')
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}
	path := MockTxPath(dir, m.Hash)
	if err := writeFileAtomic(path, raw, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func ReadMockTx(path string) (*MockTx, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- fixture path is chosen by the caller.
	if err != nil {
		return nil, err
	}
	var m MockTx
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode mock tx: %w", err)
	}
	return &m, nil
}

// SDKTransaction converts tx into the CKB SDK representation.
func SDKTransaction(tx chain.Tx, h chain.Hash) *types.Transaction {
	out := &types.Transaction{
		Hash:        types.Hash(h),
		Version:     tx.Version,
		OutputsData: tx.OutputsData(),
		Witnesses:   tx.Witnesses(),
	}
	for _, d := range tx.CellDeps {
		dep := &types.CellDep{OutPoint: sdkOutPoint(d.OutPoint), DepType: types.DepTypeCode}
		if d.DepType == chain.DepTypeDepGroup {
			dep.DepType = types.DepTypeDepGroup
		}
		out.CellDeps = append(out.CellDeps, dep)
	}
	for _, hd := range tx.HeaderDeps {
		out.HeaderDeps = append(out.HeaderDeps, types.Hash(hd))
	}
	for _, in := range tx.Inputs {
		out.Inputs = append(out.Inputs, &types.CellInput{Since: in.Since, PreviousOutput: sdkOutPoint(in.PreviousOutput)})
	}
	for _, o := range tx.CellOutputs() {
		co := &types.CellOutput{Capacity: o.Capacity, Lock: sdkScript(o.Lock)}
		if o.Type != nil {
			co.Type = sdkScript(*o.Type)
		}
		out.Outputs = append(out.Outputs, co)
	}
	return out
}

func sdkOutPoint(op chain.OutPoint) *types.OutPoint {
	return &types.OutPoint{TxHash: types.Hash(op.TxHash), Index: op.Index}
}

func sdkScript(s chain.Script) *types.Script {
	var ht types.ScriptHashType
	switch s.HashType {
	case chain.HashTypeType:
		ht = types.HashTypeType
	case chain.HashTypeData1:
		ht = types.HashTypeData1
	case chain.HashTypeData2:
		ht = types.ScriptHashType("data2")
	default:
		ht = types.HashTypeData
	}
	return &types.Script{CodeHash: types.Hash(s.CodeHash), HashType: ht, Args: s.Args}
}

func parseHex(name, value string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if len(trimmed)%2 != 0 {
		return nil, fmt.Errorf("%s: odd-length hex", name)
	}
	out, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmpPath := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
