package cell

import "cellkit.dev/harness/codec"

// Record is a cell shape: lock argument L, optional type argument T, payload
// D and optional witness W, each encoded under the matching entry of Modes.
type Record[L, T, D, W any] struct {
	LockArg L
	TypeArg *T
	Data    D
	Witness *W
	Modes   Modes
}

func (r Record[L, T, D, W]) EncodeLockArg() ([]byte, error) {
	b, err := codec.Marshal(r.LockArg, r.Modes.LockArg)
	if err != nil {
		return nil, fieldErr("lock_arg", err)
	}
	return b, nil
}

func (r Record[L, T, D, W]) EncodeTypeArg() ([]byte, bool, error) {
	if r.TypeArg == nil {
		return nil, false, nil
	}
	b, err := codec.Marshal(*r.TypeArg, r.Modes.TypeArg)
	if err != nil {
		return nil, false, fieldErr("type_arg", err)
	}
	return b, true, nil
}

func (r Record[L, T, D, W]) EncodeData() ([]byte, error) {
	b, err := codec.Marshal(r.Data, r.Modes.Data)
	if err != nil {
		return nil, fieldErr("data", err)
	}
	return b, nil
}

func (r Record[L, T, D, W]) EncodeWitness() ([]byte, bool, error) {
	if r.Witness == nil {
		return nil, false, nil
	}
	b, err := codec.Marshal(*r.Witness, r.Modes.Witness)
	if err != nil {
		return nil, false, fieldErr("witness", err)
	}
	return b, true, nil
}

// Clone copies r, including the values behind its optional fields.
func (r Record[L, T, D, W]) Clone() Record[L, T, D, W] {
	out := r
	if r.TypeArg != nil {
		v := *r.TypeArg
		out.TypeArg = &v
	}
	if r.Witness != nil {
		v := *r.Witness
		out.Witness = &v
	}
	return out
}

func (r Record[L, T, D, W]) WithModes(m Modes) Record[L, T, D, W] {
	out := r
	out.Modes = m
	return out
}

// FromArgs decodes an encoded cell under m. An absent or empty witness
// decodes to nil: fixtures store an empty witness for cells without one.
func FromArgs[L, T, D, W any](a Args, m Modes) (*Record[L, T, D, W], error) {
	r := &Record[L, T, D, W]{Modes: m}
	var err error
	if r.LockArg, err = codec.Decode[L](a.Lock, m.LockArg); err != nil {
		return nil, fieldErr("lock_arg", err)
	}
	if a.HasType {
		t, err := codec.Decode[T](a.Type, m.TypeArg)
		if err != nil {
			return nil, fieldErr("type_arg", err)
		}
		r.TypeArg = &t
	}
	if r.Data, err = codec.Decode[D](a.Data, m.Data); err != nil {
		return nil, fieldErr("data", err)
	}
	if a.HasWitness && len(a.Witness) > 0 {
		w, err := codec.Decode[W](a.Witness, m.Witness)
		if err != nil {
			return nil, fieldErr("witness", err)
		}
		r.Witness = &w
	}
	return r, nil
}

// Decoder binds FromArgs to a descriptor, for use where a
// func(Args) (C, error) is expected.
func Decoder[L, T, D, W any](m Modes) func(Args) (*Record[L, T, D, W], error) {
	return func(a Args) (*Record[L, T, D, W], error) {
		return FromArgs[L, T, D, W](a, m)
	}
}
