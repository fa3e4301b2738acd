package spectral

import "errors"

var (
	// ErrChannelMismatch is returned when left and right differ in length.
	ErrChannelMismatch = errors.New("spectral: channel lengths differ")
	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("spectral: invalid sample rate")
	// ErrInvalidFrameSize is returned for frame sizes that are not a power
	// of two of at least MinFrameSize, or hops outside (0, frame size].
	ErrInvalidFrameSize = errors.New("spectral: invalid frame or hop size")
)
