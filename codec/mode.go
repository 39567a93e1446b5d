package codec

import "fmt"

// Mode selects how a top-level value is framed.
//
// Canonical frames variable-size records as tables (total size plus an
// offset per field) and keeps fixed-size records as plain concatenation.
// Raw always concatenates the fields of a record; nested vectors stay
// self-delimiting. Fixed-size values encode identically under both modes.
type Mode uint8

const (
	Canonical Mode = iota
	Raw
)

func (m Mode) String() string {
	switch m {
	case Canonical:
		return "canonical"
	case Raw:
		return "raw"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

func (m Mode) other() Mode {
	if m == Raw {
		return Canonical
	}
	return Raw
}

func (m Mode) valid() bool {
	return m == Canonical || m == Raw
}
