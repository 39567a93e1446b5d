package testtool

import (
	"fmt"

	"cellkit.dev/harness/chain"
)

// CompleteTx returns a copy of tx with a Code cell dep for every deployed
// contract its scripts reference, and with empty witnesses appended until
// every input has one.
func (c *Context) CompleteTx(tx chain.Tx) (chain.Tx, error) {
	out := tx.Clone()

	have := make(map[chain.OutPoint]struct{}, len(out.CellDeps))
	for _, d := range out.CellDeps {
		have[d.OutPoint] = struct{}{}
	}
	addDep := func(s *chain.Script) error {
		if s == nil || !s.HashType.ByData() {
			return nil
		}
		op, ok, err := c.db.GetContract(s.CodeHash)
		if err != nil || !ok {
			return err
		}
		if _, dup := have[op]; dup {
			return nil
		}
		have[op] = struct{}{}
		out.CellDeps = append(out.CellDeps, chain.CellDep{OutPoint: op, DepType: chain.DepTypeCode})
		return nil
	}

	for i, in := range out.Inputs {
		e, ok, err := c.db.GetCell(in.PreviousOutput)
		if err != nil {
			return chain.Tx{}, err
		}
		if !ok {
			return chain.Tx{}, fmt.Errorf("input %d: %w", i, toolErr(TOOL_ERR_UNKNOWN_CELL, "unknown cell %s", in.PreviousOutput))
		}
		if err := addDep(&e.Output.Lock); err != nil {
			return chain.Tx{}, err
		}
		if err := addDep(e.Output.Type); err != nil {
			return chain.Tx{}, err
		}
	}
	for _, slot := range out.Outputs {
		if err := addDep(slot.Output.Type); err != nil {
			return chain.Tx{}, err
		}
	}

	for n := len(out.Outputs) + len(out.ExtraWitnesses); n < len(out.Inputs); n++ {
		out.ExtraWitnesses = append(out.ExtraWitnesses, []byte{})
	}
	return out, nil
}
