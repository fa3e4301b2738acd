// Package stereo measures the correlation and width of a two-channel
// signal.
//
// Both measures are computed over frames of FrameSize samples advanced by
// HopSize and reported as the median over frames that carry signal.
package stereo

import (
	"errors"
	"fmt"
	"math"

	"github.com/soundyai/loudness/dsp/core"
)

const (
	// FrameSize is the analysis frame length in samples.
	FrameSize = 4096
	// HopSize is the distance between frame starts.
	HopSize = FrameSize / 2
	// MinSamples is the shortest signal that is analyzed at all.
	MinSamples = 1024

	// silenceRMS is the RMS below which a channel or a mid/side component
	// counts as empty.
	silenceRMS = 1e-8
)

// ErrChannelMismatch is returned when left and right differ in length.
var ErrChannelMismatch = errors.New("stereo: channel lengths differ")

// Result is the stereo analysis of one signal.
type Result struct {
	Frames      int `json:"frames"`
	ValidFrames int `json:"valid_frames"`

	// Correlation is the Pearson correlation of left and right, -1..1.
	Correlation         float64 `json:"correlation"`
	CorrelationCategory string  `json:"correlation_category,omitempty"`

	// Width compares side to mid energy: 0 is mono, 1 is side only.
	Width         float64 `json:"width"`
	WidthCategory string  `json:"width_category,omitempty"`
}

// Valid reports whether at least one frame carried signal.
func (r Result) Valid() bool {
	return r.ValidFrames > 0
}

// Analyze measures left and right. Signals shorter than MinSamples, and
// signals with no frame above the silence floor, produce a result that is
// not Valid. A signal shorter than FrameSize is analyzed as one frame.
func Analyze(left, right []float64) (Result, error) {
	if len(left) != len(right) {
		return Result{}, fmt.Errorf("%w: left=%d right=%d", ErrChannelMismatch, len(left), len(right))
	}

	var res Result

	n := len(left)
	if n < MinSamples {
		return res, nil
	}

	var corr, width []float64

	for start := 0; start < n; start += HopSize {
		end := min(start+FrameSize, n)
		if start > 0 && end-start < FrameSize {
			break
		}

		res.Frames++

		c, w, ok := Frame(left[start:end], right[start:end])
		if !ok {
			continue
		}

		res.ValidFrames++
		width = append(width, w)

		if !math.IsNaN(c) {
			corr = append(corr, c)
		}
	}

	if res.ValidFrames == 0 {
		return res, nil
	}

	// Frames where one channel is constant leave the correlation at 0.
	if len(corr) > 0 {
		res.Correlation = core.Median(corr)
	}

	res.Width = core.Median(width)
	res.CorrelationCategory = CorrelationCategory(res.Correlation)
	res.WidthCategory = WidthCategory(res.Width)

	return res, nil
}

// Frame returns the correlation and width of one frame. ok is false when
// both channels are silent. correlation is NaN when either channel has no
// variance.
func Frame(left, right []float64) (correlation, width float64, ok bool) {
	n := min(len(left), len(right))
	if n == 0 {
		return 0, 0, false
	}

	var sumL, sumR, sumLL, sumRR, sumLR, sumMid, sumSide float64

	for i := range n {
		l, r := left[i], right[i]
		sumL += l
		sumR += r
		sumLL += l * l
		sumRR += r * r
		sumLR += l * r

		mid := (l + r) / 2
		side := (l - r) / 2
		sumMid += mid * mid
		sumSide += side * side
	}

	fn := float64(n)
	if math.Sqrt(sumLL/fn) < silenceRMS && math.Sqrt(sumRR/fn) < silenceRMS {
		return 0, 0, false
	}

	meanL, meanR := sumL/fn, sumR/fn
	cov := sumLR/fn - meanL*meanR
	varL := sumLL/fn - meanL*meanL
	varR := sumRR/fn - meanR*meanR

	// A channel without variance has no defined correlation.
	correlation = math.NaN()
	if den := fn * math.Sqrt(math.Max(varL, 0)*math.Max(varR, 0)); den >= silenceRMS {
		correlation = core.Clamp(fn*cov/den, -1, 1)
	}

	width = widthOf(math.Sqrt(sumMid/fn), math.Sqrt(sumSide/fn))

	return correlation, width, true
}

func widthOf(midRMS, sideRMS float64) float64 {
	if midRMS < silenceRMS {
		if sideRMS > silenceRMS {
			return 1
		}

		return 0
	}

	return core.Clamp(2*sideRMS/(midRMS+sideRMS), 0, 1)
}

// CorrelationCategory names a correlation value.
func CorrelationCategory(c float64) string {
	switch {
	case c > 0.8:
		return "very high"
	case c > 0.5:
		return "high"
	case c > 0.2:
		return "moderate"
	case c > -0.2:
		return "uncorrelated"
	case c > -0.5:
		return "negative"
	default:
		return "anti-phase"
	}
}

// WidthCategory names a width value.
func WidthCategory(w float64) string {
	switch {
	case w < 0.2:
		return "mono"
	case w < 0.4:
		return "narrow"
	case w < 0.6:
		return "moderate"
	case w < 0.8:
		return "wide"
	default:
		return "very wide"
	}
}
