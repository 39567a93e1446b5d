package cell

import "cellkit.dev/harness/codec"

// Modes selects the codec mode for each of the four cell fields. It travels
// with the record so the same descriptor is used to encode and decode.
type Modes struct {
	LockArg codec.Mode
	TypeArg codec.Mode
	Data    codec.Mode
	Witness codec.Mode
}

func DefaultModes() Modes {
	return Modes{LockArg: codec.Canonical, TypeArg: codec.Canonical, Data: codec.Canonical, Witness: codec.Canonical}
}

func RawModes() Modes {
	return Modes{LockArg: codec.Raw, TypeArg: codec.Raw, Data: codec.Raw, Witness: codec.Raw}
}

func (m Modes) String() string {
	return "lock_arg=" + m.LockArg.String() +
		" type_arg=" + m.TypeArg.String() +
		" data=" + m.Data.String() +
		" witness=" + m.Witness.String()
}
