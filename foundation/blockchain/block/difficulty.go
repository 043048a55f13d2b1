package block

import "time"

// AdjustDifficulty returns the difficulty for a block mined on top of the
// original block at the specified timestamp (milliseconds). When more than
// mineRate has passed since the original block the difficulty drops by one,
// never below 1. Otherwise it rises by one.
func AdjustDifficulty(original Block, timestamp int64, mineRate time.Duration) uint {
	if timestamp-original.Timestamp > mineRate.Milliseconds() {
		if original.Difficulty <= 1 {
			return 1
		}
		return original.Difficulty - 1
	}

	return original.Difficulty + 1
}
