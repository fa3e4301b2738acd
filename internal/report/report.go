// Package report combines the loudness, true-peak, level, spectral, stereo
// and dynamics measurements of one file into a serializable report and
// publishes it to sinks.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/soundyai/loudness/internal/decode"
	"github.com/soundyai/loudness/measure/dynamics"
	"github.com/soundyai/loudness/measure/loudness"
	"github.com/soundyai/loudness/measure/spectral"
	"github.com/soundyai/loudness/measure/stereo"
	"github.com/soundyai/loudness/measure/truepeak"
	timestats "github.com/soundyai/loudness/stats/time"
)

// SchemaVersion identifies the report layout.
const SchemaVersion = 2

// Warnings attached to a report.
const (
	WarnTruePeak = "true peak exceeds -1 dBTP"
	WarnClipping = "clipping detected"
	WarnSilence  = "silence detected"
	WarnShort    = "signal shorter than one short-term window"
	WarnPhase    = "stereo channels are negatively correlated"
)

// Levels holds per-channel sample statistics.
type Levels struct {
	Left  timestats.Stats `json:"left"`
	Right timestats.Stats `json:"right"`
}

// Report is the complete analysis of one input.
type Report struct {
	SchemaVersion int          `json:"schema_version"`
	Name          string       `json:"name"`
	Source        *decode.Info `json:"source,omitempty"`

	SampleRate int     `json:"sample_rate"`
	Duration   float64 `json:"duration"`

	Loudness *loudness.Result `json:"loudness"`
	TruePeak truepeak.Result  `json:"true_peak"`
	Levels   Levels           `json:"levels"`
	Spectral spectral.Result  `json:"spectral"`
	Stereo   stereo.Result    `json:"stereo"`
	Dynamics dynamics.Result  `json:"dynamics"`

	Warnings []string `json:"warnings"`
}

// Measurements are the finished analyses a report is built from.
type Measurements struct {
	Loudness *loudness.Result
	TruePeak truepeak.Result
	Levels   Levels
	Spectral spectral.Result
	Stereo   stereo.Result
	Dynamics dynamics.Result
}

// Build assembles a report from finished measurements.
func Build(name string, buf loudness.AudioBuffer, m Measurements) Report {
	r := Report{
		SchemaVersion: SchemaVersion,
		Name:          name,
		SampleRate:    buf.SampleRate,
		Duration:      buf.Duration(),
		Loudness:      m.Loudness,
		TruePeak:      m.TruePeak,
		Levels:        m.Levels,
		Spectral:      m.Spectral,
		Stereo:        m.Stereo,
		Dynamics:      m.Dynamics,
		Warnings:      []string{},
	}

	if m.TruePeak.ExceedsMinus1DBTP {
		r.Warnings = append(r.Warnings, WarnTruePeak)
	}

	if m.Levels.Left.HasClipping() || m.Levels.Right.HasClipping() {
		r.Warnings = append(r.Warnings, WarnClipping)
	}

	if m.Loudness.IsSilent() {
		r.Warnings = append(r.Warnings, WarnSilence)
	}

	if m.Loudness.ShortTermCount == 0 {
		r.Warnings = append(r.Warnings, WarnShort)
	}

	if m.Stereo.Valid() && m.Stereo.Correlation < 0 {
		r.Warnings = append(r.Warnings, WarnPhase)
	}

	return r
}

// Measure runs every analysis on buf.
func Measure(m *loudness.Meter, name string, buf loudness.AudioBuffer) (Report, error) {
	loud, err := m.Measure(buf)
	if err != nil {
		return Report{}, err
	}

	peak := truepeak.Detect(buf.Left, buf.Right)

	spec, err := spectral.Analyze(buf.Left, buf.Right, buf.SampleRate)
	if err != nil {
		return Report{}, err
	}

	st, err := stereo.Analyze(buf.Left, buf.Right)
	if err != nil {
		return Report{}, err
	}

	dyn, err := dynamics.Analyze(buf.Left, buf.Right, buf.SampleRate, float64(peak.TruePeakDBTP))
	if err != nil {
		return Report{}, err
	}

	dyn.LRACategory = dynamics.LRACategory(loud.LRA)

	return Build(name, buf, Measurements{
		Loudness: loud,
		TruePeak: peak,
		Levels: Levels{
			Left:  timestats.Calculate(buf.Left),
			Right: timestats.Calculate(buf.Right),
		},
		Spectral: spec,
		Stereo:   st,
		Dynamics: dyn,
	}), nil
}

// Analyze decodes the file at path and measures it.
func Analyze(ctx context.Context, m *loudness.Meter, path string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	buf, info, err := decode.Open(path)
	if err != nil {
		return Report{}, err
	}

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	r, err := Measure(m, filepath.Base(path), buf)
	if err != nil {
		return Report{}, fmt.Errorf("report: %s: %w", filepath.Base(path), err)
	}

	r.Source = &info

	return r, nil
}

// Key returns the object name a report is stored under when it is the
// only report with its name.
func (r Report) Key() string {
	return keyFor(r.Name, 1)
}

func keyFor(name string, n int) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if n > 1 {
		stem += "-" + strconv.Itoa(n)
	}

	return stem + ".lufs.json"
}

// Keys returns one object key per input path, in order. Inputs that share
// a base name get -2, -3, ... suffixes so no two reports collide.
func Keys(paths []string) []string {
	keys := make([]string, len(paths))
	used := make(map[string]bool, len(paths))

	for i, p := range paths {
		name := filepath.Base(p)
		for n := 1; ; n++ {
			k := keyFor(name, n)
			if !used[k] {
				used[k] = true
				keys[i] = k

				break
			}
		}
	}

	return keys
}

// JSON returns the indented JSON encoding of the report.
func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
