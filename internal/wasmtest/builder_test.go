package wasmtest

import (
	"bytes"
	"testing"

	"github.com/tetratelabs/wazero/api"
)

func TestLEB128(t *testing.T) {
	cases := []struct {
		got  []byte
		want []byte
	}{
		{uleb(0), []byte{0x00}},
		{uleb(127), []byte{0x7f}},
		{uleb(128), []byte{0x80, 0x01}},
		{uleb(624485), []byte{0xe5, 0x8e, 0x26}},
		{sleb(int32(-1)), []byte{0x7f}},
		{sleb(int32(63)), []byte{0x3f}},
		{sleb(int32(64)), []byte{0xc0, 0x00}},
		{sleb(int64(-123456)), []byte{0xc0, 0xbb, 0x78}},
	}
	for i, tc := range cases {
		if !bytes.Equal(tc.got, tc.want) {
			t.Fatalf("case %d: got=%x want=%x", i, tc.got, tc.want)
		}
	}
}

func TestExitCodeModuleBytes(t *testing.T) {
	got := ExitCode(7)
	want := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f, // type: () -> i32
		0x03, 0x02, 0x01, 0x00, // func 0 has type 0
		0x05, 0x03, 0x01, 0x00, 0x01, // memory min 1
		0x07, 0x13, 0x02,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x06, 'v', 'e', 'r', 'i', 'f', 'y', 0x00, 0x00,
		0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x07, 0x0b, // body: i32.const 7
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got=%x\nwant=%x", got, want)
	}
}

func TestImportsShareIndexSpace(t *testing.T) {
	b := NewBuilder()
	imp := b.ImportFunc("ckb", "debug", []api.ValueType{I32, I32}, nil)
	f := b.Func(nil, nil)
	if imp != 0 || f != 1 {
		t.Fatalf("imp=%d f=%d", imp, f)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for late import")
		}
	}()
	b.ImportFunc("ckb", "late", nil, nil)
}
