package loudness

import (
	"math"
	"slices"
)

// Trajectory returns the loudness of every full window of size samples at
// hop cadence. Momentary loudness uses Geometry.BlockSize and short-term
// loudness Geometry.ShortTermSize.
func (a *Accumulator) Trajectory(size int) []float64 {
	out := make([]float64, 0, a.geom.numWindows(a.n, size))
	for b := range a.Windows(size) {
		out = append(out, b.Loudness)
	}

	return out
}

// ShortTermSummary reduces a short-term trajectory to reporting values.
type ShortTermSummary struct {
	// RawLast is the final window, -Inf without windows.
	RawLast float64
	// MedianActive is the median of active windows, -Inf when none are active.
	MedianActive float64
	// Max is the loudest finite window, -Inf when there is none.
	Max float64
	// ActiveCount is the number of windows at or above AbsoluteThreshold.
	ActiveCount int
	// Count is the number of windows.
	Count int
}

// Value is the representative short-term loudness: MedianActive when any
// window is active, RawLast otherwise.
func (s ShortTermSummary) Value() float64 {
	if s.ActiveCount > 0 {
		return s.MedianActive
	}

	return s.RawLast
}

// SummarizeShortTerm computes the summary of a short-term trajectory. A
// window is active when its loudness is at or above AbsoluteThreshold.
func SummarizeShortTerm(st []float64) ShortTermSummary {
	s := ShortTermSummary{
		RawLast:      math.Inf(-1),
		MedianActive: math.Inf(-1),
		Max:          math.Inf(-1),
		Count:        len(st),
	}

	if len(st) == 0 {
		return s
	}

	s.RawLast = st[len(st)-1]

	active := make([]float64, 0, len(st))

	for _, v := range st {
		if !math.IsInf(v, 0) && v > s.Max {
			s.Max = v
		}

		if v >= AbsoluteThreshold {
			active = append(active, v)
		}
	}

	s.ActiveCount = len(active)
	if s.ActiveCount > 0 {
		s.MedianActive = median(active)
	}

	return s
}

// MomentarySummary reduces a momentary trajectory to reporting values.
type MomentarySummary struct {
	// Max is the loudest finite block, the reported momentary loudness.
	Max float64
	// Min is the quietest finite block.
	Min float64
	// Mean is the energy mean of all blocks.
	Mean float64
	// Count is the number of blocks.
	Count int
}

// SummarizeMomentary computes the summary of a momentary trajectory. All
// fields are -Inf when no block has finite loudness.
func SummarizeMomentary(m []float64) MomentarySummary {
	s := MomentarySummary{
		Max:   math.Inf(-1),
		Min:   math.Inf(-1),
		Mean:  math.Inf(-1),
		Count: len(m),
	}

	var (
		energy float64
		seen   bool
	)

	for _, v := range m {
		energy += energyOf(v)

		if math.IsInf(v, 0) {
			continue
		}

		if !seen || v > s.Max {
			s.Max = v
		}

		if !seen || v < s.Min {
			s.Min = v
		}

		seen = true
	}

	if len(m) > 0 {
		s.Mean = loudnessOf(energy / float64(len(m)))
	}

	return s
}

// median sorts x in place and returns its median; the mean of the middle
// pair for even lengths.
func median(x []float64) float64 {
	slices.Sort(x)

	mid := len(x) / 2
	if len(x)%2 == 1 {
		return x[mid]
	}

	return (x[mid-1] + x[mid]) / 2
}
