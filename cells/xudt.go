package cells

import (
	"cellkit.dev/harness/cell"
	"cellkit.dev/harness/codec"
)

// EmptyWitnessArgs is a WitnessArgs table with lock, input_type and
// output_type all absent.
var EmptyWitnessArgs = [16]byte{16, 0, 0, 0, 16, 0, 0, 0, 16, 0, 0, 0, 16, 0, 0, 0}

type XUDTData struct {
	Amount codec.Uint128
}

type XUDTWitness struct {
	EmptyWitnessArgs [16]byte
}

type XUDTCell = cell.Record[uint8, [32]byte, XUDTData, XUDTWitness]

func NewXUDTCell(typeArg [32]byte, data XUDTData) XUDTCell {
	return XUDTCell{
		TypeArg: &typeArg,
		Data:    data,
		Witness: &XUDTWitness{EmptyWitnessArgs: EmptyWitnessArgs},
		Modes:   cell.RawModes(),
	}
}

func DecodeXUDTCell(a cell.Args) (*XUDTCell, error) {
	return cell.FromArgs[uint8, [32]byte, XUDTData, XUDTWitness](a, cell.RawModes())
}
