package chain

const (
	sinceRelativeFlag uint64 = 1 << 63
	sinceMetricEpoch  uint64 = 1 << 61
	sinceMetricTime   uint64 = 1 << 62
	sinceValueMask    uint64 = (1 << 56) - 1
	epochNumberMask   uint64 = (1 << 24) - 1
	epochFractionMask uint64 = (1 << 16) - 1
)

// SinceRelativeBlocks locks an input until n blocks after its cell was committed.
func SinceRelativeBlocks(n uint64) uint64 {
	return sinceRelativeFlag | (n & sinceValueMask)
}

// SinceRelativeEpoch encodes a relative epoch of number + index/length.
func SinceRelativeEpoch(number, index, length uint64) uint64 {
	return sinceRelativeFlag | sinceMetricEpoch | EpochWithFraction(number, index, length)
}

func SinceAbsoluteEpoch(number, index, length uint64) uint64 {
	return sinceMetricEpoch | EpochWithFraction(number, index, length)
}

// SinceAbsoluteTimestamp takes seconds since the unix epoch.
func SinceAbsoluteTimestamp(ts uint64) uint64 {
	return sinceMetricTime | (ts & sinceValueMask)
}

func SinceRelativeTimestamp(seconds uint64) uint64 {
	return sinceRelativeFlag | sinceMetricTime | (seconds & sinceValueMask)
}

// EpochWithFraction packs an epoch as number(24) | index(16) << 24 | length(16) << 40.
func EpochWithFraction(number, index, length uint64) uint64 {
	return (number & epochNumberMask) | (index&epochFractionMask)<<24 | (length&epochFractionMask)<<40
}

func SinceIsRelative(since uint64) bool { return since&sinceRelativeFlag != 0 }
