package chain

import (
	"cellkit.dev/harness/codec"
)

// Wire forms. Field order matches the on-chain molecule schema.
type rawTxWire struct {
	Version     uint32
	CellDeps    []CellDep
	HeaderDeps  []Hash
	Inputs      []CellInput
	Outputs     []CellOutput
	OutputsData [][]byte
}

type txWire struct {
	Raw       rawTxWire
	Witnesses [][]byte
}

func rawWire(tx Tx) rawTxWire {
	return rawTxWire{
		Version:     tx.Version,
		CellDeps:    nonNil(tx.CellDeps),
		HeaderDeps:  nonNil(tx.HeaderDeps),
		Inputs:      nonNil(tx.Inputs),
		Outputs:     tx.CellOutputs(),
		OutputsData: tx.OutputsData(),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func MarshalRawTx(tx Tx) ([]byte, error) {
	b, err := codec.Marshal(rawWire(tx), codec.Canonical)
	if err != nil {
		return nil, txerr(TX_ERR_ENCODE, "raw transaction", err)
	}
	return b, nil
}

func MarshalTx(tx Tx) ([]byte, error) {
	b, err := codec.Marshal(txWire{Raw: rawWire(tx), Witnesses: tx.Witnesses()}, codec.Canonical)
	if err != nil {
		return nil, txerr(TX_ERR_ENCODE, "transaction", err)
	}
	return b, nil
}

// ParseTx decodes canonical transaction bytes. Witness i is attached to
// output slot i; an output without a witness gets an empty one.
func ParseTx(b []byte) (Tx, error) {
	var w txWire
	if err := codec.Unmarshal(b, codec.Canonical, &w); err != nil {
		return Tx{}, txerr(TX_ERR_PARSE, "transaction", err)
	}
	if len(w.Raw.Outputs) != len(w.Raw.OutputsData) {
		return Tx{}, txerr(TX_ERR_OUTPUTS_DATA_MISMATCH, "", nil)
	}
	tx := Tx{
		Version:    w.Raw.Version,
		CellDeps:   w.Raw.CellDeps,
		HeaderDeps: w.Raw.HeaderDeps,
		Inputs:     w.Raw.Inputs,
		Outputs:    make([]OutputSlot, len(w.Raw.Outputs)),
	}
	for i := range w.Raw.Outputs {
		tx.Outputs[i] = OutputSlot{Output: w.Raw.Outputs[i], Data: w.Raw.OutputsData[i], Witness: []byte{}}
		if i < len(w.Witnesses) {
			tx.Outputs[i].Witness = w.Witnesses[i]
		}
	}
	if len(w.Witnesses) > len(w.Raw.Outputs) {
		tx.ExtraWitnesses = w.Witnesses[len(w.Raw.Outputs):]
	}
	return tx, nil
}

func MarshalCellOutput(o CellOutput) ([]byte, error) {
	b, err := codec.Marshal(o, codec.Canonical)
	if err != nil {
		return nil, txerr(TX_ERR_ENCODE, "cell output", err)
	}
	return b, nil
}

func ParseCellOutput(b []byte) (CellOutput, error) {
	o, err := codec.Decode[CellOutput](b, codec.Canonical)
	if err != nil {
		return CellOutput{}, txerr(TX_ERR_PARSE, "cell output", err)
	}
	return o, nil
}

func MarshalScript(s Script) ([]byte, error) {
	if s.Args == nil {
		s.Args = []byte{}
	}
	b, err := codec.Marshal(s, codec.Canonical)
	if err != nil {
		return nil, txerr(TX_ERR_ENCODE, "script", err)
	}
	return b, nil
}

// MarshalOutPoint returns the 36-byte outpoint encoding, also used as a
// store key.
func MarshalOutPoint(op OutPoint) []byte {
	// OutPoint is a fixed layout of a hash and a u32, so Marshal cannot fail.
	b, _ := codec.Marshal(op, codec.Canonical)
	return b
}

func ParseOutPoint(b []byte) (OutPoint, error) {
	op, err := codec.Decode[OutPoint](b, codec.Canonical)
	if err != nil {
		return OutPoint{}, txerr(TX_ERR_PARSE, "out point", err)
	}
	return op, nil
}
