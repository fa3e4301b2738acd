package core

import (
	"math"
	"slices"
)

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps, either
// absolutely or relative to the larger magnitude. Equal infinities compare
// equal.
func NearlyEqual(a, b, eps float64) bool {
	if a == b {
		return true
	}

	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 || math.IsInf(largest, 0) {
		return false
	}

	return diff/largest <= eps
}

// DBToAmplitude converts dB to linear amplitude (20*log10 convention).
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// AmplitudeToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func AmplitudeToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// DBToPower converts dB to linear power (10*log10 convention).
func DBToPower(db float64) float64 {
	return math.Pow(10, db/10)
}

// PowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func PowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(power)
}

// Median returns the median of values without modifying them, or NaN for
// an empty slice. Even-length inputs average the two middle values.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}

	return (sorted[n/2-1] + sorted[n/2]) / 2
}
