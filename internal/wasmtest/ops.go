package wasmtest

func I32Const(v int32) []byte { return append([]byte{0x41}, sleb(v)...) }

func I64Const(v int64) []byte { return append([]byte{0x42}, sleb(v)...) }

func Call(idx uint32) []byte { return append([]byte{0x10}, uleb(idx)...) }

func LocalGet(idx uint32) []byte { return append([]byte{0x20}, uleb(idx)...) }

// I32Load8U loads one byte at the address on the stack plus offset.
func I32Load8U(offset uint32) []byte { return append([]byte{0x2d, 0x00}, uleb(offset)...) }

func Drop() []byte        { return []byte{0x1a} }
func Unreachable() []byte { return []byte{0x00} }
func Return() []byte      { return []byte{0x0f} }
func I32Eqz() []byte      { return []byte{0x45} }
func I32LtS() []byte      { return []byte{0x48} }
func I64Eq() []byte       { return []byte{0x51} }

// IfI32 wraps two branches that each leave one i32 on the stack.
func IfI32(then, els []byte) []byte {
	out := []byte{0x04, 0x7f}
	out = append(out, then...)
	out = append(out, 0x05)
	out = append(out, els...)
	return append(out, 0x0b)
}

// Forever repeats body in a loop that never exits.
func Forever(body []byte) []byte {
	out := []byte{0x03, 0x40}
	out = append(out, body...)
	return append(out, 0x0c, 0x00, 0x0b)
}
