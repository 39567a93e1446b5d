package codec

import (
	"bytes"
	"testing"
)

func TestAppendHeader_Empty(t *testing.T) {
	b, err := appendHeader(nil, nil, "")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !bytes.Equal(b, []byte{4, 0, 0, 0}) {
		t.Fatalf("got=%x", b)
	}
}

func TestParseHeader_Rejects(t *testing.T) {
	cases := []struct {
		name string
		b    []byte
	}{
		{"short", []byte{4, 0}},
		{"size mismatch", []byte{8, 0, 0, 0}},
		{"too small for offset", []byte{6, 0, 0, 0, 0, 0}},
		{"unaligned first offset", []byte{9, 0, 0, 0, 9, 0, 0, 0, 0}},
		{"first offset past end", []byte{8, 0, 0, 0, 12, 0, 0, 0}},
		{"offsets out of order", []byte{14, 0, 0, 0, 12, 0, 0, 0, 10, 0, 0, 0, 0, 0}},
	}
	for _, tc := range cases {
		_, err := parseHeader(tc.b, "")
		if got := mustCodecErr(t, err); got != CODEC_ERR_DECODE {
			t.Fatalf("%s: code=%s, want %s", tc.name, got, CODEC_ERR_DECODE)
		}
	}
}

func TestParseHeader_Offsets(t *testing.T) {
	b, err := appendHeader(nil, [][]byte{{1}, {}, {2, 3}}, "")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	offsets, err := parseHeader(b, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []int{16, 17, 17}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("offset %d: got=%d want=%d", i, offsets[i], want[i])
		}
	}
	s, e := itemBounds(offsets, len(b), 2)
	if s != 17 || e != 19 {
		t.Fatalf("bounds=(%d,%d) want (17,19)", s, e)
	}
}

func TestCursor_ReadExact(t *testing.T) {
	c := newCursor([]byte{1, 2, 3})
	if _, err := c.readExact(-1, ""); err == nil {
		t.Fatalf("expected error for negative length")
	}
	b, err := c.readExact(2, "")
	if err != nil || !bytes.Equal(b, []byte{1, 2}) {
		t.Fatalf("got=%x err=%v", b, err)
	}
	if c.remaining() != 1 {
		t.Fatalf("remaining=%d", c.remaining())
	}
	if _, err := c.readU32LE(""); err == nil {
		t.Fatalf("expected truncation error")
	}
}
