// Package cells holds the concrete cell shapes exercised by the lock and
// type script conformance suites.
package cells

import "cellkit.dev/harness/cell"

type Demo = cell.Record[uint8, uint8, uint8, uint8]

func NewDemo() Demo {
	return Demo{Data: 1, Modes: cell.RawModes()}
}

func DecodeDemo(a cell.Args) (*Demo, error) {
	return cell.FromArgs[uint8, uint8, uint8, uint8](a, cell.RawModes())
}
