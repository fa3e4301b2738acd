package time

import (
	"math"

	"github.com/soundyai/loudness/dsp/core"
)

// ClipThreshold is the absolute sample value counted as clipped.
const ClipThreshold = 0.99

// Stats holds sample-level statistics of one channel.
type Stats struct {
	Length int     `json:"length"`
	DC     float64 `json:"dc"` // mean

	RMS   float64    `json:"rms"`
	RMSDB core.Level `json:"rms_dbfs"`

	Peak    float64    `json:"peak"` // max |x|
	PeakDB  core.Level `json:"peak_dbfs"`
	PeakPos int        `json:"peak_pos"`

	CrestFactor   float64    `json:"crest_factor"` // peak / RMS
	CrestFactorDB core.Level `json:"crest_factor_db"`

	ClippedSamples  int     `json:"clipped_samples"`
	ClippingPercent float64 `json:"clipping_percent"`

	ZeroCrossings int `json:"zero_crossings"`
}

// HasClipping reports whether any sample reached the clip threshold.
func (s Stats) HasClipping() bool {
	return s.ClippedSamples > 0
}

// emptyStats returns a zero-valued Stats with -Inf for all dB fields.
func emptyStats() Stats {
	return Stats{
		RMSDB:         core.Level(math.Inf(-1)),
		PeakDB:        core.Level(math.Inf(-1)),
		CrestFactorDB: core.Level(math.Inf(-1)),
	}
}

// Calculate computes the statistics of signal in a single pass with the
// default ClipThreshold.
func Calculate(signal []float64) Stats {
	return CalculateWithThreshold(signal, ClipThreshold)
}

// CalculateWithThreshold is Calculate with a custom clip threshold.
// A sample is clipped when |x| >= clip.
func CalculateWithThreshold(signal []float64, clip float64) Stats {
	n := len(signal)
	if n == 0 {
		return emptyStats()
	}

	s := emptyStats()
	s.Length = n

	var (
		sum, c float64 // Kahan-compensated sum for DC
		sumSq  float64
	)

	for i, x := range signal {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t

		sumSq += x * x

		a := math.Abs(x)
		if a > s.Peak {
			s.Peak = a
			s.PeakPos = i
		}

		if a >= clip {
			s.ClippedSamples++
		}

		if i > 0 && signal[i-1]*x < 0 {
			s.ZeroCrossings++
		}
	}

	nf := float64(n)
	s.DC = sum / nf
	s.RMS = math.Sqrt(sumSq / nf)
	s.RMSDB = core.Level(core.AmplitudeToDB(s.RMS))
	s.PeakDB = core.Level(core.AmplitudeToDB(s.Peak))
	s.ClippingPercent = 100 * float64(s.ClippedSamples) / nf

	if s.RMS > 0 {
		s.CrestFactor = s.Peak / s.RMS
		s.CrestFactorDB = core.Level(core.AmplitudeToDB(s.CrestFactor))
	}

	return s
}
