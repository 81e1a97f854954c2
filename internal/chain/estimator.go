package chain

// DefaultBlockInterval is the network's average seconds-per-block.
const DefaultBlockInterval = 12.0

// EstimateBlock maps a target wall-clock timestamp to an estimated
// block height using the average block interval. Pure arithmetic, no
// chain traversal; the result is clamped so it never precedes block 1.
// It always returns a value: an inaccurate blockInterval yields an
// inaccurate estimate, never an error.
func EstimateBlock(currentBlock, currentTimestamp, targetTimestamp int64, blockInterval float64) int64 {
	if blockInterval <= 0 {
		blockInterval = DefaultBlockInterval
	}
	diff := currentTimestamp - targetTimestamp
	blockDelta := int64(float64(diff) * (1 / blockInterval))
	estimated := currentBlock - blockDelta
	if estimated < 1 {
		return 1
	}
	return estimated
}
