package codec

import "reflect"

// DynVec is a zero-copy view over an encoded dynvec or table. Item access
// reads the offset table directly, so indexing is O(1).
type DynVec struct {
	raw     []byte
	offsets []int
}

// ParseDynVec validates the framing of b, which must be exactly one dynvec.
func ParseDynVec(b []byte) (DynVec, error) {
	offsets, err := parseHeader(b, "")
	if err != nil {
		return DynVec{}, err
	}
	return DynVec{raw: b, offsets: offsets}, nil
}

// ParseTable is ParseDynVec with a field count check.
func ParseTable(b []byte, fields int) (DynVec, error) {
	v, err := ParseDynVec(b)
	if err != nil {
		return DynVec{}, err
	}
	if v.Len() != fields {
		return DynVec{}, codecErr(CODEC_ERR_DECODE, "", "table has %d fields, want %d", v.Len(), fields)
	}
	return v, nil
}

func (v DynVec) Len() int { return len(v.offsets) }

// Item returns the encoded bytes of item i. The slice aliases the input.
func (v DynVec) Item(i int) ([]byte, error) {
	if i < 0 || i >= len(v.offsets) {
		return nil, codecErr(CODEC_ERR_DECODE, "", "item %d out of range (len %d)", i, len(v.offsets))
	}
	start, end := itemBounds(v.offsets, len(v.raw), i)
	return v.raw[start:end], nil
}

// Offset returns the position of item i within Bytes, or -1 when i is out
// of range.
func (v DynVec) Offset(i int) int {
	if i < 0 || i >= len(v.offsets) {
		return -1
	}
	return v.offsets[i]
}

// Bytes returns the full encoding the view was parsed from.
func (v DynVec) Bytes() []byte { return v.raw }

// DecodeItem decodes item i as a nested (canonical) value of type T.
func DecodeItem[T any](v DynVec, i int) (T, error) {
	var out T
	raw, err := v.Item(i)
	if err != nil {
		return out, err
	}
	l, err := layoutOf(reflect.TypeOf(&out).Elem(), hintNone, "")
	if err != nil {
		return out, err
	}
	tmp := reflect.New(l.typ).Elem()
	if err := decodeExact(raw, l, tmp, ""); err != nil {
		return out, err
	}
	return tmp.Interface().(T), nil
}
