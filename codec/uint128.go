package codec

import "lukechampine.com/uint128"

// Uint128 is a 128-bit unsigned integer. Lo precedes Hi, so the layout
// encodes it as 16 little-endian bytes.
type Uint128 = uint128.Uint128

func NewUint128(v uint64) Uint128 { return uint128.From64(v) }
