package codec

import (
	"math"
	"reflect"
	"strconv"
)

// Marshal encodes v under mode. A pointer argument is dereferenced once; a
// nil pointer is rejected because top-level absence is signalled out of band.
func Marshal(v any, mode Mode) ([]byte, error) {
	if !mode.valid() {
		return nil, codecErr(CODEC_ERR_ENCODE, "", "invalid mode %s", mode)
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, codecErr(CODEC_ERR_ENCODE, "", "nil value")
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, codecErr(CODEC_ERR_ENCODE, "", "nil %s", rv.Type())
		}
		rv = rv.Elem()
	}
	l, err := layoutOf(rv.Type(), hintNone, "")
	if err != nil {
		return nil, err
	}
	if l.kind == kindStruct && mode == Raw {
		return encodeStruct(nil, l, rv, true, "")
	}
	return encodeValue(nil, l, rv, "")
}

func encodeValue(dst []byte, l *layout, v reflect.Value, path string) ([]byte, error) {
	switch l.kind {
	case kindBool:
		if v.Bool() {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	case kindUint:
		return appendUint(dst, v.Uint(), l.size), nil
	case kindInt:
		return appendUint(dst, uint64(v.Int()), l.size), nil // #nosec G115 -- two's complement truncation is the wire format.
	case kindArray:
		var err error
		for i := 0; i < v.Len(); i++ {
			dst, err = encodeValue(dst, l.elem, v.Index(i), path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	case kindStruct:
		return encodeStruct(dst, l, v, l.concat, path)
	case kindFixVec:
		return encodeFixVec(dst, l, v, path)
	case kindDynVec:
		parts := make([][]byte, v.Len())
		for i := range parts {
			p, err := encodeItem(l.elem, v.Index(i), path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			parts[i] = p
		}
		return appendHeader(dst, parts, path)
	case kindOption:
		if v.IsNil() {
			return dst, nil
		}
		return encodeValue(dst, l.elem, v.Elem(), path)
	default:
		return nil, codecErr(CODEC_ERR_UNSUPPORTED_TYPE, path, "unknown layout")
	}
}

// encodeItem encodes one framed item (dynvec element or table field).
func encodeItem(l *layout, v reflect.Value, path string) ([]byte, error) {
	return encodeValue(nil, l, v, path)
}

func encodeStruct(dst []byte, l *layout, v reflect.Value, concat bool, path string) ([]byte, error) {
	if concat {
		if l.optionNotLast {
			return nil, codecErr(CODEC_ERR_UNSUPPORTED_TYPE, path, "optional field must be last in a concatenated record")
		}
		var err error
		for _, f := range l.fields {
			dst, err = encodeValue(dst, f.l, v.Field(f.index), joinPath(path, f.name))
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	}
	parts := make([][]byte, len(l.fields))
	for i, f := range l.fields {
		p, err := encodeItem(f.l, v.Field(f.index), joinPath(path, f.name))
		if err != nil {
			return nil, err
		}
		parts[i] = p
	}
	return appendHeader(dst, parts, path)
}

func encodeFixVec(dst []byte, l *layout, v reflect.Value, path string) ([]byte, error) {
	n := v.Len()
	if uint64(n) > math.MaxUint32 {
		return nil, codecErr(CODEC_ERR_ENCODE, path, "vector length %d exceeds u32", n)
	}
	dst = appendU32le(dst, uint32(n)) // #nosec G115 -- bounded above.
	if l.isString {
		return append(dst, v.String()...), nil
	}
	if l.elem.kind == kindUint && l.elem.size == 1 {
		for i := 0; i < n; i++ {
			dst = append(dst, byte(v.Index(i).Uint()))
		}
		return dst, nil
	}
	var err error
	for i := 0; i < n; i++ {
		dst, err = encodeValue(dst, l.elem, v.Index(i), path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func appendUint(dst []byte, u uint64, size int) []byte {
	switch size {
	case 1:
		return append(dst, byte(u))
	case 2:
		return appendU16le(dst, uint16(u))
	case 4:
		return appendU32le(dst, uint32(u))
	default:
		return appendU64le(dst, u)
	}
}
