// Package cell defines the capability every typed cell shape exposes to the
// fixture builder: its four fields as encoded bytes, and the inverse.
package cell

import "fmt"

// Args holds the encoded form of a cell. Optional fields carry presence out
// of band in HasType/HasWitness.
type Args struct {
	Lock       []byte
	Type       []byte
	HasType    bool
	Data       []byte
	Witness    []byte
	HasWitness bool
}

type Cell interface {
	EncodeLockArg() ([]byte, error)
	// EncodeTypeArg reports false when the cell has no type argument.
	EncodeTypeArg() ([]byte, bool, error)
	EncodeData() ([]byte, error)
	// EncodeWitness reports false when the cell carries no witness.
	EncodeWitness() ([]byte, bool, error)
}

// EncodeArgs gathers all four encoded fields of c.
func EncodeArgs(c Cell) (Args, error) {
	var a Args
	var err error
	if a.Lock, err = c.EncodeLockArg(); err != nil {
		return Args{}, err
	}
	if a.Type, a.HasType, err = c.EncodeTypeArg(); err != nil {
		return Args{}, err
	}
	if a.Data, err = c.EncodeData(); err != nil {
		return Args{}, err
	}
	if a.Witness, a.HasWitness, err = c.EncodeWitness(); err != nil {
		return Args{}, err
	}
	return a, nil
}

// FieldError names the cell field whose encoding or decoding failed.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func fieldErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}
