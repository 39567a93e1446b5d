package chain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

type Hash [32]byte

func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Hash) UnmarshalText(b []byte) error {
	s := strings.TrimPrefix(string(b), "0x")
	if len(s) != 64 {
		return fmt.Errorf("hash: want 64 hex chars, got %d", len(s))
	}
	_, err := hex.Decode(h[:], []byte(s))
	return err
}

// HashType tells the verifier how a script's code hash is matched against
// cell deps.
type HashType uint8

const (
	HashTypeData  HashType = 0
	HashTypeType  HashType = 1
	HashTypeData1 HashType = 2
	HashTypeData2 HashType = 4
)

func (t HashType) String() string {
	switch t {
	case HashTypeData:
		return "data"
	case HashTypeType:
		return "type"
	case HashTypeData1:
		return "data1"
	case HashTypeData2:
		return "data2"
	default:
		return fmt.Sprintf("hash_type(%d)", uint8(t))
	}
}

// ByData reports whether scripts of this hash type match on the data hash.
func (t HashType) ByData() bool {
	return t == HashTypeData || t == HashTypeData1 || t == HashTypeData2
}

type DepType uint8

const (
	DepTypeCode     DepType = 0
	DepTypeDepGroup DepType = 1
)

func (t DepType) String() string {
	if t == DepTypeDepGroup {
		return "dep_group"
	}
	return "code"
}

type Script struct {
	CodeHash Hash
	HashType HashType
	Args     []byte
}

func (s Script) Clone() Script {
	s.Args = append([]byte(nil), s.Args...)
	return s
}

func (s Script) Equal(o Script) bool {
	return s.CodeHash == o.CodeHash && s.HashType == o.HashType && string(s.Args) == string(o.Args)
}

type OutPoint struct {
	TxHash Hash
	Index  uint32
}

func (o OutPoint) String() string { return fmt.Sprintf("%s:%d", o.TxHash, o.Index) }

type CellOutput struct {
	Capacity uint64
	Lock     Script
	Type     *Script
}

func (o CellOutput) Clone() CellOutput {
	o.Lock = o.Lock.Clone()
	if o.Type != nil {
		t := o.Type.Clone()
		o.Type = &t
	}
	return o
}

type CellInput struct {
	Since          uint64
	PreviousOutput OutPoint
}

type CellDep struct {
	OutPoint OutPoint
	DepType  DepType
}
