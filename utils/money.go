package utils

import "math"

// Round2 rounds x half-up to 2 decimal places. One rounding policy, applied
// everywhere money or weight leaves a computation.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
