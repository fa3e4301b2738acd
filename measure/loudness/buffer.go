package loudness

import (
	"fmt"
	"math"
)

// AudioBuffer is a stereo signal normalized to [-1, 1] full scale.
// A mono source is represented by the same slice in both channels.
//
// The engine never modifies the sample slices.
type AudioBuffer struct {
	Left       []float64
	Right      []float64
	SampleRate int
}

// NewMonoBuffer returns a buffer that presents samples on both channels.
func NewMonoBuffer(samples []float64, sampleRate int) AudioBuffer {
	return AudioBuffer{Left: samples, Right: samples, SampleRate: sampleRate}
}

// Frames returns the number of samples per channel.
func (b AudioBuffer) Frames() int {
	return len(b.Left)
}

// Duration returns the signal length in seconds, or 0 for an invalid rate.
func (b AudioBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}

	return float64(len(b.Left)) / float64(b.SampleRate)
}

// Validate reports the first usage error in the buffer: a non-positive
// sample rate, unequal channel lengths, or a NaN/Inf sample.
func (b AudioBuffer) Validate() error {
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: %d Hz", ErrInvalidSampleRate, b.SampleRate)
	}

	if len(b.Left) != len(b.Right) {
		return fmt.Errorf("%w: left %d, right %d", ErrChannelMismatch, len(b.Left), len(b.Right))
	}

	if i, ok := firstNonFinite(b.Left); ok {
		return fmt.Errorf("%w: left[%d] = %v", ErrNonFiniteSample, i, b.Left[i])
	}

	if i, ok := firstNonFinite(b.Right); ok {
		return fmt.Errorf("%w: right[%d] = %v", ErrNonFiniteSample, i, b.Right[i])
	}

	return nil
}

func firstNonFinite(x []float64) (int, bool) {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i, true
		}
	}

	return 0, false
}
