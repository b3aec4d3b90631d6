// Package approx holds the tolerance every geometric predicate goes through.
//
// Nothing in the renderer compares a computed float against zero directly;
// it asks IsZero or snaps the value with AlignZero first.
package approx

import "math"

// Epsilon is the magnitude below which a value is considered to be zero.
const Epsilon = 1e-10

func IsZero(x float64) bool {
	return math.Abs(x) < Epsilon
}

// AlignZero returns 0 if x is within Epsilon of zero, and x otherwise.
func AlignZero(x float64) float64 {
	if IsZero(x) {
		return 0.0
	}
	return x
}

func Equal(a, b float64) bool {
	return IsZero(a - b)
}
