package wire

import "math"

// The coercion helpers below replace missing or invalid numeric values with
// a safe zero instead of letting NaN or infinities reach the wire format.
// The acceptable failure causes are enumerated: NaN, ±Inf, and (for
// integers) values outside the int range. Anything else passes through
// untouched.

func CoerceFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func CoerceInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0
	}
	return int(v)
}

// Round rounds to the given number of decimal places, matching the
// precision table of the wire format.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
