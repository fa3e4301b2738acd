package loudness

import (
	"fmt"
	"math"

	"github.com/soundyai/loudness/dsp/core"
	"github.com/soundyai/loudness/dsp/filter/weighting"
)

// Meter measures BS.1770-4 loudness of complete stereo buffers.
//
// A Meter holds only configuration; it is safe for concurrent use.
type Meter struct {
	cfg MeterConfig
}

// NewMeter creates a new loudness meter with the given options.
func NewMeter(opts ...MeterOption) *Meter {
	return &Meter{cfg: ApplyMeterOptions(opts...)}
}

// Config returns the meter configuration.
func (m *Meter) Config() MeterConfig {
	return m.cfg
}

// Measure validates buf and computes its loudness. Silence and signals
// shorter than a block are not errors; their loudness fields are -Inf.
func (m *Meter) Measure(buf AudioBuffer) (*Result, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	left, err := kWeight(buf.Left, buf.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("loudness: left channel: %w", err)
	}

	right, err := kWeight(buf.Right, buf.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("loudness: right channel: %w", err)
	}

	geom := NewGeometry(buf.SampleRate)

	acc, err := NewAccumulator(geom, m.cfg.ChannelWeights[:], left, right)
	if err != nil {
		return nil, err
	}

	return m.measure(acc, buf.Duration()), nil
}

func (m *Meter) measure(acc *Accumulator, duration float64) *Result {
	geom := acc.Geometry()
	log := m.cfg.Logger

	integrated, stats := Gate(acc.All())

	momentary := acc.Trajectory(geom.BlockSize)
	shortTerm := acc.Trajectory(geom.ShortTermSize)

	mom := SummarizeMomentary(momentary)
	st := SummarizeShortTerm(shortTerm)

	lraLegacy, legacyMeta := LegacyLRA(shortTerm)
	lraR128, r128Meta := R128LRA(shortTerm)

	lra, lraMeta := lraR128, r128Meta
	if m.cfg.LRAAlgorithm == LRALegacy {
		lra, lraMeta = lraLegacy, legacyMeta
	}

	log.Debug("loudness gating",
		"sample_rate", geom.SampleRate,
		"samples", acc.Samples(),
		"blocks", stats.TotalBlocks,
		"absolute_gated", stats.AbsoluteGatedBlocks,
		"gated", stats.GatedBlocks,
		"relative_threshold", float64(stats.RelativeThreshold),
		"integrated", integrated)
	log.Debug("loudness windows",
		"short_term_windows", st.Count,
		"short_term_active", st.ActiveCount,
		"short_term_raw_last", st.RawLast,
		"short_term_median_active", st.MedianActive,
		"momentary_max", mom.Max,
		"lra", lra,
		"lra_legacy", lraLegacy,
		"lra_algorithm", string(lraMeta.Algorithm))

	offset := math.Inf(1)
	if !math.IsInf(integrated, -1) {
		offset = ReferenceLevel - integrated
	}

	return &Result{
		SchemaVersion: SchemaVersion,
		Geometry:      geom,
		Duration:      duration,

		Integrated: LUFS(integrated),

		ShortTerm:             LUFS(st.Value()),
		ShortTermRawLast:      LUFS(st.RawLast),
		ShortTermMedianActive: LUFS(st.MedianActive),
		ShortTermMax:          LUFS(st.Max),
		ShortTermActiveCount:  st.ActiveCount,
		ShortTermCount:        st.Count,

		Momentary:     LUFS(mom.Max),
		MomentaryMin:  LUFS(mom.Min),
		MomentaryMean: LUFS(mom.Mean),

		LRA:           lra,
		LRALegacy:     lraLegacy,
		LRAMeta:       lraMeta,
		LRALegacyMeta: legacyMeta,

		GatingStats: stats,

		ReferenceLevel: ReferenceLevel,
		LoudnessOffset: core.Gain(offset),
		MeetsBroadcast: math.Abs(integrated-ReferenceLevel) <= BroadcastTolerance,

		MomentaryTrajectory: momentary,
		ShortTermTrajectory: shortTerm,
	}
}

// kWeight filters x through a fresh K-weighting filter.
func kWeight(x []float64, sampleRate int) ([]float64, error) {
	k, err := weighting.NewK(float64(sampleRate))
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	k.ProcessBlockTo(out, x)

	return out, nil
}
