package analytics

import "math"

// roundHalfUp rounds to the nearest integer with halves going toward +Inf,
// so -2.5 becomes -2 and 2.5 becomes 3. Dashboard clients compute the same
// figures with this rule, which differs from math.Round for negative halves.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// round1 rounds x to one decimal place.
func round1(x float64) float64 {
	return roundHalfUp(x*10) / 10
}

// frac returns the fractional part of x in [0, 1).
func frac(x float64) float64 {
	return x - math.Floor(x)
}
