package codec

import (
	"reflect"
	"strings"
	"sync"
)

type kind uint8

const (
	kindBool kind = iota + 1
	kindUint
	kindInt
	kindArray
	kindStruct
	kindFixVec
	kindDynVec
	kindOption
)

// hint carries a `mol` struct tag down into the compiled layout.
type hint uint8

const (
	hintNone hint = iota
	hintTable
	hintStruct
	hintDynVec
	hintFixVec
)

type field struct {
	index int
	name  string
	l     *layout
}

type layout struct {
	kind kind
	typ  reflect.Type
	// size is the fixed encoded size in bytes, or -1 for variable-size layouts.
	size int
	elem *layout
	// fields of a struct layout, in declaration order.
	fields []field
	// concat is set for structs framed as plain concatenation under canonical rules.
	concat bool
	// optionNotLast marks structs that cannot be concatenated because an
	// optional field is followed by another field.
	optionNotLast bool
	isString      bool
}

func (l *layout) fixed() bool { return l.size >= 0 }

// modeSensitive reports whether canonical and raw framing differ for l.
func (l *layout) modeSensitive() bool {
	return l.kind == kindStruct && !l.concat
}

type layoutKey struct {
	t reflect.Type
	h hint
}

var layouts sync.Map // layoutKey -> *layout

func layoutOf(t reflect.Type, h hint, path string) (*layout, error) {
	key := layoutKey{t: t, h: h}
	if cached, ok := layouts.Load(key); ok {
		return cached.(*layout), nil
	}
	l, err := compile(t, h, path, map[reflect.Type]bool{})
	if err != nil {
		return nil, err
	}
	actual, _ := layouts.LoadOrStore(key, l)
	return actual.(*layout), nil
}

func parseHint(tag string) (hint, bool, bool) {
	switch strings.TrimSpace(tag) {
	case "":
		return hintNone, false, true
	case "-":
		return hintNone, true, true
	case "table":
		return hintTable, false, true
	case "struct":
		return hintStruct, false, true
	case "dynvec":
		return hintDynVec, false, true
	case "fixvec":
		return hintFixVec, false, true
	default:
		return hintNone, false, false
	}
}

func compile(t reflect.Type, h hint, path string, inProgress map[reflect.Type]bool) (*layout, error) {
	switch t.Kind() {
	case reflect.Bool:
		return &layout{kind: kindBool, typ: t, size: 1}, nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &layout{kind: kindUint, typ: t, size: int(t.Size())}, nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &layout{kind: kindInt, typ: t, size: int(t.Size())}, nil
	case reflect.Array:
		elem, err := compile(t.Elem(), hintNone, path+"[]", inProgress)
		if err != nil {
			return nil, err
		}
		if !elem.fixed() {
			return nil, codecErr(CODEC_ERR_UNSUPPORTED_TYPE, path, "array of variable-size %s", t.Elem())
		}
		return &layout{kind: kindArray, typ: t, size: t.Len() * elem.size, elem: elem}, nil
	case reflect.String:
		u8 := &layout{kind: kindUint, typ: reflect.TypeOf(uint8(0)), size: 1}
		return &layout{kind: kindFixVec, typ: t, size: -1, elem: u8, isString: true}, nil
	case reflect.Slice:
		elem, err := compile(t.Elem(), hintNone, path+"[]", inProgress)
		if err != nil {
			return nil, err
		}
		if elem.size == 0 {
			return nil, codecErr(CODEC_ERR_UNSUPPORTED_TYPE, path, "vector of zero-size %s", t.Elem())
		}
		switch {
		case h == hintDynVec || !elem.fixed():
			if h == hintFixVec {
				return nil, codecErr(CODEC_ERR_UNSUPPORTED_TYPE, path, "fixvec of variable-size %s", t.Elem())
			}
			return &layout{kind: kindDynVec, typ: t, size: -1, elem: elem}, nil
		default:
			return &layout{kind: kindFixVec, typ: t, size: -1, elem: elem}, nil
		}
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			return nil, codecErr(CODEC_ERR_UNSUPPORTED_TYPE, path, "nested optional %s", t)
		}
		elem, err := compile(t.Elem(), h, path, inProgress)
		if err != nil {
			return nil, err
		}
		return &layout{kind: kindOption, typ: t, size: -1, elem: elem}, nil
	case reflect.Struct:
		return compileStruct(t, h, path, inProgress)
	default:
		return nil, codecErr(CODEC_ERR_UNSUPPORTED_TYPE, path, "unsupported kind %s (%s)", t.Kind(), t)
	}
}

func compileStruct(t reflect.Type, h hint, path string, inProgress map[reflect.Type]bool) (*layout, error) {
	if inProgress[t] {
		return nil, codecErr(CODEC_ERR_UNSUPPORTED_TYPE, path, "recursive type %s", t)
	}
	inProgress[t] = true
	defer delete(inProgress, t)

	l := &layout{kind: kindStruct, typ: t}
	fixed := true
	size := 0
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fh, skip, ok := parseHint(sf.Tag.Get("mol"))
		if !ok {
			return nil, codecErr(CODEC_ERR_UNSUPPORTED_TYPE, joinPath(path, sf.Name), "unknown mol tag %q", sf.Tag.Get("mol"))
		}
		if skip {
			continue
		}
		if !sf.IsExported() {
			return nil, codecErr(CODEC_ERR_UNSUPPORTED_TYPE, joinPath(path, sf.Name), "unexported field")
		}
		fl, err := compile(sf.Type, fh, joinPath(path, sf.Name), inProgress)
		if err != nil {
			return nil, err
		}
		if !fl.fixed() {
			fixed = false
		} else {
			size += fl.size
		}
		l.fields = append(l.fields, field{index: i, name: sf.Name, l: fl})
	}
	for i, f := range l.fields {
		if f.l.kind == kindOption && i != len(l.fields)-1 {
			l.optionNotLast = true
		}
	}

	switch {
	case h == hintTable:
		l.size = -1
	case h == hintStruct:
		l.concat = true
		l.size = -1
		if fixed {
			l.size = size
		}
	case fixed:
		l.concat = true
		l.size = size
	default:
		l.size = -1
	}
	return l, nil
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// FixedSize reports the encoded size of v's type when it is fixed.
func FixedSize(v any) (int, bool) {
	t := reflect.TypeOf(v)
	if t == nil {
		return 0, false
	}
	l, err := layoutOf(t, hintNone, "")
	if err != nil || !l.fixed() {
		return 0, false
	}
	return l.size, true
}
