package codec

import (
	"bytes"
	"reflect"
	"testing"
)

func TestDynVec_IndexMatchesStandaloneEncoding(t *testing.T) {
	pre := [4]byte{1, 1, 1, 1}
	items := []sigWitness{
		{Delay: 1, Sigs: []byte{}},
		{Delay: 2, Sigs: []byte{1, 2, 3}, Preimage: &pre},
		{Delay: 3, Sigs: []byte{4}},
	}
	b, err := Marshal(items, Canonical)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	v, err := ParseDynVec(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Len() != len(items) {
		t.Fatalf("len=%d want=%d", v.Len(), len(items))
	}
	for i, want := range items {
		alone, err := Marshal(want, Canonical)
		if err != nil {
			t.Fatalf("marshal item %d: %v", i, err)
		}
		raw, err := v.Item(i)
		if err != nil {
			t.Fatalf("item %d: %v", i, err)
		}
		if !bytes.Equal(raw, alone) {
			t.Fatalf("item %d bytes: got=%x want=%x", i, raw, alone)
		}
		got, err := DecodeItem[sigWitness](v, i)
		if err != nil {
			t.Fatalf("decode item %d: %v", i, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("item %d: got=%#v want=%#v", i, got, want)
		}
	}
	if _, err := v.Item(len(items)); err == nil {
		t.Fatalf("expected out of range error")
	}
	if !bytes.Equal(v.Bytes(), b) {
		t.Fatalf("Bytes does not return the parsed input")
	}
}

func TestDynVec_Empty(t *testing.T) {
	b, err := Marshal([]sigWitness{}, Canonical)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(b, []byte{4, 0, 0, 0}) {
		t.Fatalf("got=%x want=04000000", b)
	}
	v, err := ParseDynVec(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Len() != 0 {
		t.Fatalf("len=%d", v.Len())
	}
}

func TestParseTable_FieldCount(t *testing.T) {
	b, err := Marshal(sigWitness{Delay: 1, Sigs: []byte{}}, Canonical)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := ParseTable(b, 3); err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = ParseTable(b, 2)
	if got := mustCodecErr(t, err); got != CODEC_ERR_DECODE {
		t.Fatalf("code=%s, want %s", got, CODEC_ERR_DECODE)
	}
}

func TestDynVec_Offsets(t *testing.T) {
	b, err := Marshal([][]byte{{1}, {2, 3}}, Canonical)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	v, err := ParseDynVec(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// header: total + two offsets; items are fixvecs of 5 and 6 bytes.
	if v.Offset(0) != 12 || v.Offset(1) != 17 || v.Offset(2) != -1 || v.Offset(-1) != -1 {
		t.Fatalf("offsets=%d,%d,%d", v.Offset(0), v.Offset(1), v.Offset(2))
	}
}
