package chain

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"cellkit.dev/harness/codec"
)

func sampleTx() Tx {
	typ := Script{CodeHash: Hash{0x22}, HashType: HashTypeType, Args: []byte{9}}
	return Tx{
		Version:  0,
		CellDeps: []CellDep{{OutPoint: OutPoint{TxHash: Hash{1}, Index: 0}, DepType: DepTypeCode}},
		Inputs:   []CellInput{{Since: SinceRelativeBlocks(10), PreviousOutput: OutPoint{TxHash: Hash{2}, Index: 3}}},
		Outputs: []OutputSlot{
			{
				Output:  CellOutput{Capacity: 500, Lock: Script{CodeHash: Hash{0x11}, HashType: HashTypeData1, Args: []byte{1, 2}}},
				Data:    []byte{5},
				Witness: []byte{0xaa},
			},
			{
				Output:  CellOutput{Capacity: 600, Lock: Script{CodeHash: Hash{0x11}, HashType: HashTypeData1, Args: []byte{}}, Type: &typ},
				Data:    []byte{},
				Witness: []byte{},
			},
		},
		ExtraWitnesses: [][]byte{{0xbb}},
	}
}

func TestScriptEncoding_MatchesMoleculeLayout(t *testing.T) {
	b, err := MarshalScript(Script{CodeHash: Hash{}, HashType: HashTypeData1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := "35000000" + "10000000" + "30000000" + "31000000" +
		hex.EncodeToString(make([]byte, 32)) + "02" + "00000000"
	if hex.EncodeToString(b) != want {
		t.Fatalf("got=%x\nwant=%s", b, want)
	}
}

func TestOutPointAndInputAreFixed(t *testing.T) {
	if n, ok := codec.FixedSize(OutPoint{}); !ok || n != 36 {
		t.Fatalf("outpoint size=%d ok=%v", n, ok)
	}
	if n, ok := codec.FixedSize(CellInput{}); !ok || n != 44 {
		t.Fatalf("cell input size=%d ok=%v", n, ok)
	}
	if n, ok := codec.FixedSize(CellDep{}); !ok || n != 37 {
		t.Fatalf("cell dep size=%d ok=%v", n, ok)
	}
	op := OutPoint{TxHash: Hash{7}, Index: 258}
	back, err := ParseOutPoint(MarshalOutPoint(op))
	if err != nil || back != op {
		t.Fatalf("outpoint round trip: got=%v err=%v", back, err)
	}
}

func TestTxRoundTrip(t *testing.T) {
	tx := sampleTx()
	b, err := MarshalTx(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := ParseTx(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(back.Outputs) != 2 || len(back.ExtraWitnesses) != 1 {
		t.Fatalf("shape: outputs=%d extra=%d", len(back.Outputs), len(back.ExtraWitnesses))
	}
	if !bytes.Equal(back.Outputs[0].Witness, []byte{0xaa}) || !bytes.Equal(back.ExtraWitnesses[0], []byte{0xbb}) {
		t.Fatalf("witnesses not restored: %+v", back)
	}
	if back.Outputs[1].Output.Type == nil || !back.Outputs[1].Output.Type.Equal(*tx.Outputs[1].Output.Type) {
		t.Fatalf("type script lost")
	}
	if back.Outputs[0].Output.Type != nil {
		t.Fatalf("absent type script decoded as present")
	}
	again, err := MarshalTx(back)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if !bytes.Equal(again, b) {
		t.Fatalf("re-encoding differs")
	}
}

func TestParseTx_MissingWitnessBecomesEmpty(t *testing.T) {
	tx := sampleTx()
	w := txWire{Raw: rawWire(tx), Witnesses: [][]byte{{1}}}
	b, err := codec.Marshal(w, codec.Canonical)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := ParseTx(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if back.Outputs[1].Witness == nil || len(back.Outputs[1].Witness) != 0 {
		t.Fatalf("witness=%v want empty", back.Outputs[1].Witness)
	}
}

func TestParseTx_OutputsDataMismatch(t *testing.T) {
	w := txWire{Raw: rawWire(sampleTx()), Witnesses: [][]byte{}}
	w.Raw.OutputsData = w.Raw.OutputsData[:1]
	b, err := codec.Marshal(w, codec.Canonical)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	_, err = ParseTx(b)
	var te *TxError
	if !errors.As(err, &te) || te.Code != TX_ERR_OUTPUTS_DATA_MISMATCH {
		t.Fatalf("err=%v want %s", err, TX_ERR_OUTPUTS_DATA_MISMATCH)
	}
}

func TestParseTx_Garbage(t *testing.T) {
	_, err := ParseTx([]byte{1, 2, 3})
	var te *TxError
	if !errors.As(err, &te) || te.Code != TX_ERR_PARSE {
		t.Fatalf("err=%v want %s", err, TX_ERR_PARSE)
	}
	if !codec.IsCode(err, codec.CODEC_ERR_DECODE) {
		t.Fatalf("codec cause lost: %v", err)
	}
}

func TestTxHash_IgnoresWitnesses(t *testing.T) {
	tx := sampleTx()
	h1, err := tx.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	tx2 := tx.Clone()
	tx2.Outputs[0].Witness = []byte{1, 2, 3}
	tx2.ExtraWitnesses = nil
	h2, err := tx2.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("witness change altered tx hash")
	}
	tx2.Outputs[0].Data = []byte{6}
	h3, _ := tx2.Hash()
	if h3 == h1 {
		t.Fatalf("data change did not alter tx hash")
	}
}

func TestCloneIsDeep(t *testing.T) {
	tx := sampleTx()
	c := tx.Clone()
	c.Outputs[0].Data[0] = 9
	c.Outputs[0].Output.Lock.Args[0] = 9
	c.Outputs[1].Output.Type.Args[0] = 1
	c.Inputs[0].Since = 0
	if tx.Outputs[0].Data[0] != 5 || tx.Outputs[0].Output.Lock.Args[0] != 1 ||
		tx.Outputs[1].Output.Type.Args[0] != 9 || tx.Inputs[0].Since == 0 {
		t.Fatalf("clone shares state with original")
	}
}

func TestWitnessesFlattenSlotsThenExtras(t *testing.T) {
	ws := sampleTx().Witnesses()
	if len(ws) != 3 || ws[0][0] != 0xaa || len(ws[1]) != 0 || ws[2][0] != 0xbb {
		t.Fatalf("witnesses=%x", ws)
	}
}

func TestSinceEncoding(t *testing.T) {
	if got := SinceRelativeBlocks(10); got != 0x800000000000000a {
		t.Fatalf("relative blocks=%x", got)
	}
	if got := SinceAbsoluteTimestamp(1700000000); got != 0x400000006553f100 {
		t.Fatalf("absolute timestamp=%x", got)
	}
	if got := SinceRelativeEpoch(1, 0, 1); got != 0xa000010000000001 {
		t.Fatalf("relative epoch=%x", got)
	}
	if !SinceIsRelative(SinceRelativeTimestamp(5)) || SinceIsRelative(SinceAbsoluteEpoch(1, 0, 1)) {
		t.Fatalf("relative flag misread")
	}
}

func TestHashText(t *testing.T) {
	h := DataHash([]byte("always_success"))
	txt, err := h.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Hash
	if err := back.UnmarshalText(txt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != h || h.IsZero() {
		t.Fatalf("round trip mismatch")
	}
	if err := back.UnmarshalText([]byte("0x12")); err == nil {
		t.Fatalf("expected length error")
	}
}
