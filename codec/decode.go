package codec

import (
	"encoding/binary"
	"reflect"
	"strconv"
)

// Unmarshal decodes b under mode into out, which must be a non-nil pointer.
// out is only written when decoding succeeds. When the bytes are malformed
// under mode but well-formed under the other mode the error is
// CODEC_ERR_MODE_MISMATCH.
func Unmarshal(b []byte, mode Mode, out any) error {
	if !mode.valid() {
		return codecErr(CODEC_ERR_DECODE, "", "invalid mode %s", mode)
	}
	rv := reflect.ValueOf(out)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return codecErr(CODEC_ERR_DECODE, "", "out must be a non-nil pointer, got %T", out)
	}
	t := rv.Elem().Type()
	l, err := layoutOf(t, hintNone, "")
	if err != nil {
		return err
	}
	tmp := reflect.New(t).Elem()
	err = decodeTop(b, l, tmp, mode)
	if err == nil {
		rv.Elem().Set(tmp)
		return nil
	}
	if l.modeSensitive() && (IsCode(err, CODEC_ERR_DECODE) || IsCode(err, CODEC_ERR_TRAILING_BYTES)) {
		probe := reflect.New(t).Elem()
		if decodeTop(b, l, probe, mode.other()) == nil {
			return &Error{
				Code:  CODEC_ERR_MODE_MISMATCH,
				Msg:   "bytes are " + mode.other().String() + " encoded, decoder expected " + mode.String(),
				Cause: err,
			}
		}
	}
	return err
}

// Decode is the generic form of Unmarshal.
func Decode[T any](b []byte, mode Mode) (T, error) {
	var out T
	if err := Unmarshal(b, mode, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func decodeTop(b []byte, l *layout, v reflect.Value, mode Mode) error {
	cur := newCursor(b)
	var err error
	if l.kind == kindStruct && mode == Raw {
		err = decodeStruct(cur, l, v, true, "")
	} else {
		err = decodeFrom(cur, l, v, "")
	}
	if err != nil {
		return err
	}
	if cur.remaining() != 0 {
		return codecErr(CODEC_ERR_TRAILING_BYTES, "", "%d bytes left after value", cur.remaining())
	}
	return nil
}

// decodeExact decodes one value that must occupy all of b.
func decodeExact(b []byte, l *layout, v reflect.Value, path string) error {
	if l.kind == kindOption {
		if len(b) == 0 {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		inner := reflect.New(l.elem.typ)
		if err := decodeExact(b, l.elem, inner.Elem(), path); err != nil {
			return err
		}
		v.Set(inner)
		return nil
	}
	cur := newCursor(b)
	if err := decodeFrom(cur, l, v, path); err != nil {
		return err
	}
	if cur.remaining() != 0 {
		return codecErr(CODEC_ERR_DECODE, path, "%d unread bytes inside item", cur.remaining())
	}
	return nil
}

func decodeFrom(cur *cursor, l *layout, v reflect.Value, path string) error {
	if l.fixed() {
		raw, err := cur.readExact(l.size, path)
		if err != nil {
			return err
		}
		return decodeFixed(raw, l, v, path)
	}
	switch l.kind {
	case kindStruct:
		return decodeStruct(cur, l, v, l.concat, path)
	case kindFixVec:
		return decodeFixVec(cur, l, v, path)
	case kindDynVec:
		raw, err := readFramed(cur, path)
		if err != nil {
			return err
		}
		offsets, err := parseHeader(raw, path)
		if err != nil {
			return err
		}
		out := reflect.MakeSlice(l.typ, len(offsets), len(offsets))
		for i := range offsets {
			start, end := itemBounds(offsets, len(raw), i)
			if err := decodeExact(raw[start:end], l.elem, out.Index(i), path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		v.Set(out)
		return nil
	case kindOption:
		// Only reachable as the trailing field of a concatenated record.
		if cur.remaining() == 0 {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		inner := reflect.New(l.elem.typ)
		if err := decodeFrom(cur, l.elem, inner.Elem(), path); err != nil {
			return err
		}
		v.Set(inner)
		return nil
	default:
		return codecErr(CODEC_ERR_UNSUPPORTED_TYPE, path, "unknown layout")
	}
}

// readFramed consumes one dynvec or table, using its leading total_size.
func readFramed(cur *cursor, path string) ([]byte, error) {
	total, err := cur.peekU32LE(path)
	if err != nil {
		return nil, err
	}
	if total < 4 {
		return nil, codecErr(CODEC_ERR_DECODE, path, "total_size %d below header size", total)
	}
	if uint64(total) > uint64(cur.remaining()) {
		return nil, codecErr(CODEC_ERR_DECODE, path, "truncated: total_size %d, have %d", total, cur.remaining())
	}
	return cur.readExact(int(total), path)
}

func decodeStruct(cur *cursor, l *layout, v reflect.Value, concat bool, path string) error {
	if concat {
		if l.optionNotLast {
			return codecErr(CODEC_ERR_UNSUPPORTED_TYPE, path, "optional field must be last in a concatenated record")
		}
		for _, f := range l.fields {
			if err := decodeFrom(cur, f.l, v.Field(f.index), joinPath(path, f.name)); err != nil {
				return err
			}
		}
		return nil
	}
	raw, err := readFramed(cur, path)
	if err != nil {
		return err
	}
	offsets, err := parseHeader(raw, path)
	if err != nil {
		return err
	}
	if len(offsets) != len(l.fields) {
		return codecErr(CODEC_ERR_DECODE, path, "table has %d fields, want %d", len(offsets), len(l.fields))
	}
	for i, f := range l.fields {
		start, end := itemBounds(offsets, len(raw), i)
		if err := decodeExact(raw[start:end], f.l, v.Field(f.index), joinPath(path, f.name)); err != nil {
			return err
		}
	}
	return nil
}

func decodeFixVec(cur *cursor, l *layout, v reflect.Value, path string) error {
	count, err := cur.readU32LE(path)
	if err != nil {
		return err
	}
	need := uint64(count) * uint64(l.elem.size)
	if need > uint64(cur.remaining()) {
		return codecErr(CODEC_ERR_DECODE, path, "truncated: %d items need %d bytes, have %d", count, need, cur.remaining())
	}
	raw, err := cur.readExact(int(need), path)
	if err != nil {
		return err
	}
	if l.isString {
		v.SetString(string(raw))
		return nil
	}
	n := int(count)
	out := reflect.MakeSlice(l.typ, n, n)
	if l.elem.kind == kindUint && l.elem.size == 1 {
		for i := 0; i < n; i++ {
			out.Index(i).SetUint(uint64(raw[i]))
		}
		v.Set(out)
		return nil
	}
	es := l.elem.size
	for i := 0; i < n; i++ {
		if err := decodeFixed(raw[i*es:(i+1)*es], l.elem, out.Index(i), path+"["+strconv.Itoa(i)+"]"); err != nil {
			return err
		}
	}
	v.Set(out)
	return nil
}

func decodeFixed(raw []byte, l *layout, v reflect.Value, path string) error {
	switch l.kind {
	case kindBool:
		switch raw[0] {
		case 0:
			v.SetBool(false)
		case 1:
			v.SetBool(true)
		default:
			return codecErr(CODEC_ERR_DECODE, path, "bool byte 0x%02x", raw[0])
		}
		return nil
	case kindUint:
		v.SetUint(readUint(raw, l.size))
		return nil
	case kindInt:
		u := readUint(raw, l.size)
		switch l.size {
		case 1:
			v.SetInt(int64(int8(u))) // #nosec G115 -- sign extension of the wire value.
		case 2:
			v.SetInt(int64(int16(u))) // #nosec G115
		case 4:
			v.SetInt(int64(int32(u))) // #nosec G115
		default:
			v.SetInt(int64(u)) // #nosec G115
		}
		return nil
	case kindArray:
		es := l.elem.size
		for i := 0; i < v.Len(); i++ {
			if err := decodeFixed(raw[i*es:(i+1)*es], l.elem, v.Index(i), path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		return nil
	case kindStruct:
		off := 0
		for _, f := range l.fields {
			if err := decodeFixed(raw[off:off+f.l.size], f.l, v.Field(f.index), joinPath(path, f.name)); err != nil {
				return err
			}
			off += f.l.size
		}
		return nil
	default:
		return codecErr(CODEC_ERR_UNSUPPORTED_TYPE, path, "layout is not fixed")
	}
}

func readUint(raw []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(raw[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(raw))
	case 4:
		return uint64(binary.LittleEndian.Uint32(raw))
	default:
		return binary.LittleEndian.Uint64(raw)
	}
}
