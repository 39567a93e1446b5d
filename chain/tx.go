package chain

// OutputSlot bundles an output with its payload and the witness stored at
// the same index, so the three sequences cannot drift apart.
type OutputSlot struct {
	Output  CellOutput
	Data    []byte
	Witness []byte
}

func (s OutputSlot) Clone() OutputSlot {
	return OutputSlot{
		Output:  s.Output.Clone(),
		Data:    append([]byte(nil), s.Data...),
		Witness: append([]byte(nil), s.Witness...),
	}
}

// Tx is a transaction fixture. Witness i is stored with output slot i;
// witnesses past the last output live in ExtraWitnesses.
type Tx struct {
	Version        uint32
	CellDeps       []CellDep
	HeaderDeps     []Hash
	Inputs         []CellInput
	Outputs        []OutputSlot
	ExtraWitnesses [][]byte
}

func (tx Tx) Clone() Tx {
	out := Tx{
		Version:    tx.Version,
		CellDeps:   append([]CellDep(nil), tx.CellDeps...),
		HeaderDeps: append([]Hash(nil), tx.HeaderDeps...),
		Inputs:     append([]CellInput(nil), tx.Inputs...),
	}
	if tx.Outputs != nil {
		out.Outputs = make([]OutputSlot, len(tx.Outputs))
		for i, s := range tx.Outputs {
			out.Outputs[i] = s.Clone()
		}
	}
	if tx.ExtraWitnesses != nil {
		out.ExtraWitnesses = make([][]byte, len(tx.ExtraWitnesses))
		for i, w := range tx.ExtraWitnesses {
			out.ExtraWitnesses[i] = append([]byte(nil), w...)
		}
	}
	return out
}

func (tx Tx) CellOutputs() []CellOutput {
	out := make([]CellOutput, len(tx.Outputs))
	for i, s := range tx.Outputs {
		out[i] = s.Output
	}
	return out
}

func (tx Tx) OutputsData() [][]byte {
	out := make([][]byte, len(tx.Outputs))
	for i, s := range tx.Outputs {
		out[i] = s.Data
	}
	return out
}

// Witnesses returns the flat witness list: one per output slot, then the
// extra witnesses.
func (tx Tx) Witnesses() [][]byte {
	out := make([][]byte, 0, len(tx.Outputs)+len(tx.ExtraWitnesses))
	for _, s := range tx.Outputs {
		w := s.Witness
		if w == nil {
			w = []byte{}
		}
		out = append(out, w)
	}
	return append(out, tx.ExtraWitnesses...)
}

func (tx Tx) Hash() (Hash, error) { return TxHash(tx) }
