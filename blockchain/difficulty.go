package blockchain

import "time"

// retarget returns the difficulty that follows current after a block took
// elapsed to mine. The step is always exactly one and the result stays
// within [minimum, maximum].
func retarget(current, minimum, maximum int, elapsed, target time.Duration) int {
	switch {
	case elapsed < target/2:
		if current+1 > maximum {
			return maximum
		}
		return current + 1
	case elapsed > target*2:
		if current-1 < minimum {
			return minimum
		}
		return current - 1
	default:
		return current
	}
}

// isAdjustmentHeight reports whether the block at index triggers a retarget
func isAdjustmentHeight(index, interval int64) bool {
	return interval > 0 && index > 0 && index%interval == 0
}
