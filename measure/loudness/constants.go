package loudness

import (
	"math"

	"github.com/soundyai/loudness/dsp/core"
)

// BS.1770-4 / EBU R128 measurement constants.
const (
	// BlockDuration is the gating block and momentary window length in seconds.
	BlockDuration = 0.4
	// ShortTermDuration is the short-term window length in seconds.
	ShortTermDuration = 3.0
	// IntegratedOverlap is the overlap between consecutive gating blocks.
	IntegratedOverlap = 0.75

	// AbsoluteThreshold is the absolute gate in LUFS.
	AbsoluteThreshold = -70.0
	// RelativeThreshold is the relative gate for integrated loudness in LU.
	RelativeThreshold = -10.0
	// LRARelativeThreshold is the relative gate for loudness range in LU.
	LRARelativeThreshold = -20.0

	// LRALowPercentile and LRAHighPercentile bound the loudness range.
	LRALowPercentile  = 0.10
	LRAHighPercentile = 0.95

	// ReferenceLevel is the EBU R128 programme target in LUFS.
	ReferenceLevel = -23.0
	// BroadcastTolerance is the accepted deviation from ReferenceLevel in LU.
	BroadcastTolerance = 1.0
)

// lufsOffset cancels the K-weighting gain at 997 Hz.
const lufsOffset = -0.691

// loudnessOf converts a weighted mean-square energy to LUFS.
// Zero energy is digital silence and maps to -Inf.
func loudnessOf(z float64) float64 {
	if z <= 0 {
		return math.Inf(-1)
	}

	return lufsOffset + core.PowerToDB(z)
}

// energyOf is the inverse of loudnessOf.
func energyOf(lufs float64) float64 {
	if math.IsInf(lufs, -1) {
		return 0
	}

	return core.DBToPower(lufs - lufsOffset)
}
