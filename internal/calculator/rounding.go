package calculator

import "math"

// Epsilon is the tolerance for treating a balance or payment as zero.
// It matches the rounding granularity of Round2 so that floating-point noise
// below one cent never produces a spurious transfer.
const Epsilon = 0.01

// Round2 rounds x to two decimal places, half away from zero.
// Both the balance calculation and the settlement resolution round through
// this single helper so their independent roundings cannot drift the ledger
// out of sum-zero by more than the rounding unit.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
