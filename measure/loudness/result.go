package loudness

import (
	"math"

	"github.com/soundyai/loudness/dsp/core"
)

// SchemaVersion identifies the JSON layout of Result.
const SchemaVersion = 1

// LUFS is a loudness value. Non-finite values encode as JSON null and null
// decodes to -Inf, so silence survives a round trip.
type LUFS float64

// IsSilent reports whether l is -Inf.
func (l LUFS) IsSilent() bool {
	return math.IsInf(float64(l), -1)
}

// MarshalJSON implements json.Marshaler.
func (l LUFS) MarshalJSON() ([]byte, error) {
	return core.Level(l).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *LUFS) UnmarshalJSON(data []byte) error {
	return (*core.Level)(l).UnmarshalJSON(data)
}

// Result is the outcome of one loudness measurement.
type Result struct {
	SchemaVersion int      `json:"schema_version"`
	Geometry      Geometry `json:"geometry"`
	// Duration is the signal length in seconds.
	Duration float64 `json:"duration"`

	Integrated LUFS `json:"lufs_integrated"`

	// ShortTerm is the representative short-term value, see
	// ShortTermSummary.Value.
	ShortTerm             LUFS `json:"lufs_short_term"`
	ShortTermRawLast      LUFS `json:"lufs_short_term_raw_last"`
	ShortTermMedianActive LUFS `json:"lufs_short_term_median_active"`
	ShortTermMax          LUFS `json:"lufs_short_term_max"`
	ShortTermActiveCount  int  `json:"lufs_short_term_active_count"`
	ShortTermCount        int  `json:"lufs_short_term_count"`

	// Momentary is the loudest 400 ms block.
	Momentary     LUFS `json:"lufs_momentary"`
	MomentaryMin  LUFS `json:"lufs_momentary_min"`
	MomentaryMean LUFS `json:"lufs_momentary_mean"`

	// LRA is the loudness range of the configured algorithm, LRALegacy the
	// legacy variant regardless of configuration.
	LRA           float64 `json:"lra"`
	LRALegacy     float64 `json:"lra_legacy"`
	LRAMeta       LRAMeta `json:"lra_meta"`
	LRALegacyMeta LRAMeta `json:"lra_legacy_meta"`

	GatingStats GatingStats `json:"gating_stats"`

	// ReferenceLevel is the target the offset is measured against.
	ReferenceLevel float64 `json:"reference_level"`
	// LoudnessOffset is the gain in dB that brings Integrated to
	// ReferenceLevel; unbounded (null in JSON) for silence.
	LoudnessOffset core.Gain `json:"loudness_offset_db"`
	// MeetsBroadcast reports ReferenceLevel ± BroadcastTolerance compliance.
	MeetsBroadcast bool `json:"meets_broadcast"`

	MomentaryTrajectory []float64 `json:"-"`
	ShortTermTrajectory []float64 `json:"-"`
}

// IsSilent reports whether no block survived gating.
func (r *Result) IsSilent() bool {
	return r.Integrated.IsSilent()
}
