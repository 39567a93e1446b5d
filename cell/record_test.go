package cell

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"cellkit.dev/harness/codec"
)

type witness struct {
	Delay uint64
	Sigs  []byte
}

type shape = Record[[4]byte, uint8, uint32, witness]

func u8p(v uint8) *uint8 { return &v }

func TestRecord_EncodeAndBack(t *testing.T) {
	for _, m := range []Modes{DefaultModes(), RawModes()} {
		r := shape{
			LockArg: [4]byte{1, 2, 3, 4},
			TypeArg: u8p(9),
			Data:    77,
			Witness: &witness{Delay: 5, Sigs: []byte{0xaa}},
			Modes:   m,
		}
		a, err := EncodeArgs(r)
		if err != nil {
			t.Fatalf("%s: encode: %v", m, err)
		}
		if !a.HasType || !a.HasWitness {
			t.Fatalf("%s: presence lost: %+v", m, a)
		}
		got, err := FromArgs[[4]byte, uint8, uint32, witness](a, m)
		if err != nil {
			t.Fatalf("%s: decode: %v", m, err)
		}
		if !reflect.DeepEqual(*got, r) {
			t.Fatalf("%s: got=%+v want=%+v", m, *got, r)
		}
	}
}

func TestRecord_AbsentOptionals(t *testing.T) {
	r := shape{LockArg: [4]byte{1}, Data: 1, Modes: DefaultModes()}
	a, err := EncodeArgs(r)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if a.HasType || a.Type != nil || a.HasWitness || a.Witness != nil {
		t.Fatalf("expected absent optionals, got %+v", a)
	}
	got, err := FromArgs[[4]byte, uint8, uint32, witness](a, DefaultModes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TypeArg != nil || got.Witness != nil {
		t.Fatalf("optionals should stay nil: %+v", got)
	}
}

func TestFromArgs_EmptyWitnessIsAbsent(t *testing.T) {
	a := Args{Lock: []byte{0, 0, 0, 0}, Data: []byte{1, 0, 0, 0}, Witness: []byte{}, HasWitness: true}
	got, err := FromArgs[[4]byte, uint8, uint32, witness](a, DefaultModes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Witness != nil {
		t.Fatalf("empty witness should decode to nil, got %+v", got.Witness)
	}
}

func TestFromArgs_ErrorNamesField(t *testing.T) {
	a := Args{Lock: []byte{0, 0, 0, 0}, Data: []byte{1, 0}}
	_, err := FromArgs[[4]byte, uint8, uint32, witness](a, DefaultModes())
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FieldError, got %v", err)
	}
	if fe.Field != "data" {
		t.Fatalf("field=%q want data", fe.Field)
	}
	if !codec.IsCode(err, codec.CODEC_ERR_DECODE) {
		t.Fatalf("expected codec decode error, got %v", err)
	}
}

func TestFromArgs_ModeMismatchSurfaces(t *testing.T) {
	r := shape{LockArg: [4]byte{1}, Data: 1, Witness: &witness{Delay: 9, Sigs: []byte{1, 2}}, Modes: DefaultModes()}
	a, err := EncodeArgs(r)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = FromArgs[[4]byte, uint8, uint32, witness](a, RawModes())
	if !codec.IsCode(err, codec.CODEC_ERR_MODE_MISMATCH) {
		t.Fatalf("expected mode mismatch, got %v", err)
	}
}

func TestDecoderBindsModes(t *testing.T) {
	r := shape{LockArg: [4]byte{7}, Data: 3, Witness: &witness{Delay: 1, Sigs: []byte{}}, Modes: RawModes()}
	a, err := EncodeArgs(r)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := Decoder[[4]byte, uint8, uint32, witness](RawModes())
	got, err := dec(a)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Witness == nil || got.Witness.Delay != 1 {
		t.Fatalf("got=%+v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	r := shape{TypeArg: u8p(1), Witness: &witness{Delay: 1, Sigs: []byte{}}, Modes: DefaultModes()}
	c := r.Clone()
	*c.TypeArg = 2
	c.Witness.Delay = 2
	if *r.TypeArg != 1 || r.Witness.Delay != 1 {
		t.Fatalf("clone shares optionals with original")
	}
	if m := r.WithModes(RawModes()).Modes; m != RawModes() {
		t.Fatalf("modes=%v", m)
	}
}

func TestModesEncodeDifferently(t *testing.T) {
	w := &witness{Delay: 1, Sigs: []byte{5}}
	canon, _, err := shape{Witness: w, Modes: DefaultModes()}.EncodeWitness()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, _, err := shape{Witness: w, Modes: RawModes()}.EncodeWitness()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if bytes.Equal(canon, raw) {
		t.Fatalf("canonical and raw witness encodings should differ")
	}
	if len(raw) != 8+4+1 {
		t.Fatalf("raw witness len=%d", len(raw))
	}
}
