package store

import (
	"cellkit.dev/harness/chain"
	"cellkit.dev/harness/codec"
)

// Entry is a committed (output, payload) pair.
type Entry struct {
	Output chain.CellOutput
	Data   []byte
}

func encodeOutpointKey(op chain.OutPoint) []byte {
	// tx_hash(32) || index(u32 little-endian)
	return chain.MarshalOutPoint(op)
}

func decodeOutpointKey(b []byte) (chain.OutPoint, error) {
	if len(b) != 36 {
		return chain.OutPoint{}, storeErr(STORE_ERR_CORRUPT, "outpoint: expected 36 bytes, got %d", len(b))
	}
	return chain.ParseOutPoint(b)
}

func encodeEntry(e Entry) ([]byte, error) {
	if e.Data == nil {
		e.Data = []byte{}
	}
	return codec.Marshal(e, codec.Canonical)
}

func decodeEntry(b []byte) (Entry, error) {
	e, err := codec.Decode[Entry](b, codec.Canonical)
	if err != nil {
		return Entry{}, storeErr(STORE_ERR_CORRUPT, "cell entry: %v", err)
	}
	return e, nil
}
