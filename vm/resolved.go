package vm

import "cellkit.dev/harness/chain"

// ResolvedCell is a live cell a transaction refers to.
type ResolvedCell struct {
	OutPoint chain.OutPoint
	Output   chain.CellOutput
	Data     []byte
}

// ResolvedTx is a transaction with its inputs and cell deps looked up.
// Inputs[i] backs Tx.Inputs[i] and CellDeps[i] backs Tx.CellDeps[i].
type ResolvedTx struct {
	Tx       chain.Tx
	Inputs   []ResolvedCell
	CellDeps []ResolvedCell
}

func (r *ResolvedTx) check() error {
	if len(r.Inputs) != len(r.Tx.Inputs) {
		return &ScriptError{Kind: VM_ERR_RESOLVE, Msg: "resolved inputs do not match transaction inputs"}
	}
	if len(r.CellDeps) != len(r.Tx.CellDeps) {
		return &ScriptError{Kind: VM_ERR_RESOLVE, Msg: "resolved cell deps do not match transaction cell deps"}
	}
	return nil
}
