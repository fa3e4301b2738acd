package loudness

import (
	"errors"

	"github.com/soundyai/loudness/dsp/filter/weighting"
)

var (
	// ErrChannelMismatch is returned when left and right differ in length.
	ErrChannelMismatch = errors.New("loudness: channel lengths differ")
	// ErrNonFiniteSample is returned when a sample is NaN or infinite.
	ErrNonFiniteSample = errors.New("loudness: non-finite sample")
	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("loudness: invalid sample rate")
	// ErrUnsupportedSampleRate is returned when no K-weighting filter can be
	// designed for the sample rate.
	ErrUnsupportedSampleRate = weighting.ErrUnsupportedSampleRate
)
