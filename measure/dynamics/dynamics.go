// Package dynamics measures how much the short-term level of a signal
// moves and how far its peaks stand above its average level.
package dynamics

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/soundyai/loudness/dsp/core"
)

const (
	// WindowSeconds is the length of the RMS windows.
	WindowSeconds = 0.3
	// HopSeconds is the distance between RMS window starts.
	HopSeconds = 0.1
	// MinWindows is the number of non-silent windows needed for a dynamic
	// range value.
	MinWindows = 10

	// MinRMS is the linear RMS below which a window or signal is silent.
	MinRMS = 1e-10

	// MaxCrestFactorDB bounds the plausible crest factor of a mix.
	MaxCrestFactorDB = 20.0
)

var (
	// ErrChannelMismatch is returned when left and right differ in length.
	ErrChannelMismatch = errors.New("dynamics: channel lengths differ")
	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("dynamics: invalid sample rate")
)

// Result is the dynamics analysis of the mid signal (L+R)/2.
type Result struct {
	// Windows counts the non-silent RMS windows.
	Windows int `json:"windows"`

	PeakRMSDBFS core.Level `json:"peak_rms_dbfs"`
	MeanRMSDBFS core.Level `json:"mean_rms_dbfs"` // mean of the window levels in dB

	// DynamicRangeDB is the peak window level minus the mean window level.
	DynamicRangeDB    float64 `json:"dynamic_range_db"`
	DynamicRangeValid bool    `json:"dynamic_range_valid"`

	RMSDBFS core.Level `json:"rms_dbfs"` // whole-signal RMS

	// CrestFactorDB is the true peak minus RMSDBFS. It is valid when both
	// are finite and the difference lies in [0, MaxCrestFactorDB].
	CrestFactorDB    float64 `json:"crest_factor_db"`
	CrestFactorValid bool    `json:"crest_factor_valid"`
	Compression      string  `json:"compression,omitempty"`

	LRACategory string `json:"lra_category,omitempty"`
}

// Analyze measures the mid signal of left and right. truePeakDBTP is the
// true peak of the same signal; pass -Inf when it is unknown.
func Analyze(left, right []float64, sampleRate int, truePeakDBTP float64) (Result, error) {
	if sampleRate <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	if len(left) != len(right) {
		return Result{}, fmt.Errorf("%w: left=%d right=%d", ErrChannelMismatch, len(left), len(right))
	}

	silent := core.Level(math.Inf(-1))
	res := Result{PeakRMSDBFS: silent, MeanRMSDBFS: silent, RMSDBFS: silent}

	n := len(left)
	if n == 0 {
		return res, nil
	}

	energy := midEnergy(left, right)

	// prefix[i] is the energy of the first i mid samples.
	prefix := make([]float64, n+1)
	for i, e := range energy {
		prefix[i+1] = prefix[i] + e
	}

	window := int(math.Round(WindowSeconds * float64(sampleRate)))
	hop := max(int(math.Round(HopSeconds*float64(sampleRate))), 1)

	var levels []float64

	for start := 0; window > 0 && start+window <= n; start += hop {
		rms := math.Sqrt(math.Max(prefix[start+window]-prefix[start], 0) / float64(window))
		if rms > MinRMS {
			levels = append(levels, core.AmplitudeToDB(rms))
		}
	}

	res.Windows = len(levels)
	if len(levels) > 0 {
		peak, sum := levels[0], 0.0
		for _, l := range levels {
			peak = math.Max(peak, l)
			sum += l
		}

		mean := sum / float64(len(levels))
		res.PeakRMSDBFS = core.Level(peak)
		res.MeanRMSDBFS = core.Level(mean)
		res.DynamicRangeDB = peak - mean
		res.DynamicRangeValid = len(levels) >= MinWindows
	}

	rms := math.Sqrt(prefix[n] / float64(n))
	if rms < MinRMS {
		return res, nil
	}

	res.RMSDBFS = core.Level(core.AmplitudeToDB(rms))

	if math.IsNaN(truePeakDBTP) || math.IsInf(truePeakDBTP, 0) {
		return res, nil
	}

	res.CrestFactorDB = truePeakDBTP - float64(res.RMSDBFS)
	res.CrestFactorValid = res.CrestFactorDB >= 0 && res.CrestFactorDB <= MaxCrestFactorDB
	res.Compression = CompressionCategory(res.CrestFactorDB)

	return res, nil
}

// midEnergy returns ((l+r)/2)^2 per sample.
func midEnergy(left, right []float64) []float64 {
	mid := make([]float64, len(left))
	vecmath.AddBlock(mid, left, right)
	vecmath.ScaleBlockInPlace(mid, 0.5)
	vecmath.MulBlockInPlace(mid, mid)

	return mid
}

// CompressionCategory names the degree of compression a crest factor
// suggests.
func CompressionCategory(crestDB float64) string {
	switch {
	case crestDB < 6:
		return "heavily compressed"
	case crestDB < 12:
		return "moderately compressed"
	case crestDB < 18:
		return "lightly compressed"
	default:
		return "natural"
	}
}

// LRACategory names a loudness range in LU.
func LRACategory(lra float64) string {
	switch {
	case math.IsNaN(lra) || math.IsInf(lra, 0):
		return ""
	case lra < 1:
		return "very compressed"
	case lra < 3:
		return "compressed"
	case lra < 6:
		return "moderate"
	case lra < 10:
		return "dynamic"
	default:
		return "very dynamic"
	}
}
