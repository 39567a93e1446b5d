package cells

import (
	"cellkit.dev/harness/cell"
	"cellkit.dev/harness/codec"
)

const (
	HTLCTypeOffered  uint8 = 0
	HTLCTypeReceived uint8 = 1
)

// PendingHTLC is the 85-byte record the commitment lock reads per pending
// payment. Expiry must be an absolute timestamp.
type PendingHTLC struct {
	HTLCType             uint8
	PaymentAmount        codec.Uint128
	PaymentHash          [20]byte
	RemoteHTLCPubkeyHash [20]byte
	LocalHTLCPubkeyHash  [20]byte
	Expiry               uint64
}

// CommitmentWitness is the full commitment-lock witness. Under raw framing
// the pending HTLCs are a dynvec and the preimage trails the signature.
type CommitmentWitness struct {
	EmptyWitnessArgs     [16]byte
	LocalDelayEpoch      uint64
	LocalDelayPubkeyHash [20]byte
	RevocationPubkeyHash [20]byte
	PendingHTLCs         []PendingHTLC `mol:"dynvec"`
	UnlockType           uint8
	Signature            [65]byte
	Preimage             *[32]byte
}

type CommitmentCell = cell.Record[[20]byte, uint8, uint8, CommitmentWitness]

// CommitmentArgErrCell has a 22-byte lock argument, two bytes longer than
// the lock accepts.
type CommitmentArgErrCell = cell.Record[[22]byte, uint8, uint8, CommitmentWitness]

type CommitmentNoHTLCWitness struct {
	EmptyWitnessArgs     [16]byte
	LocalDelayEpoch      uint64
	LocalDelayPubkeyHash [20]byte
	RevocationPubkeyHash [20]byte
	UnlockType           uint8
	Signature            [65]byte
}

type CommitmentNoHTLCCell = cell.Record[[20]byte, uint8, uint8, CommitmentNoHTLCWitness]

type CommitmentHTLC1Witness struct {
	EmptyWitnessArgs     [16]byte
	LocalDelayEpoch      uint64
	LocalDelayPubkeyHash [20]byte
	RevocationPubkeyHash [20]byte
	PendingHTLC1         PendingHTLC
	UnlockType           uint8
	Signature            [65]byte
}

type CommitmentHTLC1Cell = cell.Record[[20]byte, [32]byte, codec.Uint128, CommitmentHTLC1Witness]

type CommitmentHTLC1PreimageWitness struct {
	EmptyWitnessArgs     [16]byte
	LocalDelayEpoch      uint64
	LocalDelayPubkeyHash [20]byte
	RevocationPubkeyHash [20]byte
	PendingHTLC1         PendingHTLC
	UnlockType           uint8
	Signature            [65]byte
	Preimage             [32]byte
}

type CommitmentHTLC1PreimageUDTCell = cell.Record[[20]byte, [32]byte, codec.Uint128, CommitmentHTLC1PreimageWitness]

type CommitmentHTLC2Witness struct {
	EmptyWitnessArgs     [16]byte
	LocalDelayEpoch      uint64
	LocalDelayPubkeyHash [20]byte
	RevocationPubkeyHash [20]byte
	PendingHTLC1         PendingHTLC
	PendingHTLC2         PendingHTLC
	UnlockType           uint8
	Signature            [65]byte
}

type CommitmentHTLC2Cell = cell.Record[[20]byte, uint8, uint8, CommitmentHTLC2Witness]

type CommitmentHTLC2PreimageWitness struct {
	EmptyWitnessArgs     [16]byte
	LocalDelayEpoch      uint64
	LocalDelayPubkeyHash [20]byte
	RevocationPubkeyHash [20]byte
	PendingHTLC1         PendingHTLC
	PendingHTLC2         PendingHTLC
	UnlockType           uint8
	Signature            [65]byte
	Preimage             [32]byte
}

type CommitmentHTLC2PreimageUDTCell = cell.Record[[20]byte, [32]byte, codec.Uint128, CommitmentHTLC2PreimageWitness]

// CommitmentMinLenErrWitness drops the unlock type, one byte short.
type CommitmentMinLenErrWitness struct {
	EmptyWitnessArgs     [16]byte
	LocalDelayEpoch      uint64
	LocalDelayPubkeyHash [20]byte
	RevocationPubkeyHash [20]byte
	Signature            [65]byte
}

type CommitmentMinLenErrCell = cell.Record[[20]byte, uint8, uint8, CommitmentMinLenErrWitness]

// CommitmentMaxLenErrWitness appends five junk bytes after the signature.
type CommitmentMaxLenErrWitness struct {
	EmptyWitnessArgs     [16]byte
	LocalDelayEpoch      uint64
	LocalDelayPubkeyHash [20]byte
	RevocationPubkeyHash [20]byte
	UnlockType           uint8
	Signature            [65]byte
	Err                  [5]byte
}

type CommitmentMaxLenErrCell = cell.Record[[20]byte, uint8, uint8, CommitmentMaxLenErrWitness]

// NewCommitmentCell returns a commitment-lock cell with raw framing on all
// fields, the layout the lock script reads.
func NewCommitmentCell(lockArg [20]byte, w *CommitmentWitness) CommitmentCell {
	return CommitmentCell{LockArg: lockArg, Witness: w, Modes: cell.RawModes()}
}
