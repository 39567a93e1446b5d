package cells

import "cellkit.dev/harness/cell"

type FundingWitness struct {
	EmptyWitnessArgs [16]byte
	Version          uint64
	FundingOutPoint  [36]byte
	Pubkey           [32]byte
	Signature        [64]byte
}

type FundingCell = cell.Record[[20]byte, uint8, uint8, FundingWitness]

// FundingErrWitness carries 32 trailing bytes the funding lock must reject.
type FundingErrWitness struct {
	EmptyWitnessArgs [16]byte
	Version          uint64
	FundingOutPoint  [36]byte
	Pubkey           [32]byte
	Signature        [64]byte
	Err              [32]byte
}

type FundingErrCell = cell.Record[[20]byte, uint8, uint8, FundingErrWitness]

func NewFundingCell(lockArg [20]byte, w *FundingWitness) FundingCell {
	return FundingCell{LockArg: lockArg, Witness: w, Modes: cell.RawModes()}
}

func NewFundingErrCell(lockArg [20]byte, w *FundingErrWitness) FundingErrCell {
	return FundingErrCell{LockArg: lockArg, Witness: w, Modes: cell.RawModes()}
}
