package spectral

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/soundyai/loudness/dsp/core"
	"github.com/soundyai/loudness/dsp/window"
	frequencystats "github.com/soundyai/loudness/stats/frequency"
)

const (
	// FrameSize is the default FFT length.
	FrameSize = 4096
	// HopSize is the default distance between frame starts.
	HopSize = FrameSize / 2
	// MinFrameSize is the smallest accepted FFT length.
	MinFrameSize = 256
)

// BandEnergy is the share of the total band energy that falls in one band.
type BandEnergy struct {
	Name    string     `json:"name"`
	LowHz   float64    `json:"low_hz"`
	HighHz  float64    `json:"high_hz"`
	Percent float64    `json:"percent"`
	Level   core.Level `json:"level_db"` // relative to the sum of all bands
}

// Result is the spectral analysis of one signal.
type Result struct {
	FrameSize   int `json:"frame_size"`
	HopSize     int `json:"hop_size"`
	Frames      int `json:"frames"`
	ValidFrames int `json:"valid_frames"`

	Bands []BandEnergy `json:"bands"`

	// Descriptors holds the median of each descriptor over valid frames.
	Descriptors frequencystats.Stats `json:"descriptors"`
}

// Valid reports whether at least one frame carried usable energy.
func (r Result) Valid() bool {
	return r.ValidFrames > 0
}

// Band returns the energy entry for the named band.
func (r Result) Band(name string) (BandEnergy, bool) {
	for _, b := range r.Bands {
		if b.Name == name {
			return b, true
		}
	}

	return BandEnergy{}, false
}

// Option configures an Analyzer.
type Option func(*config)

type config struct {
	frameSize int
	hopSize   int
}

// WithFrameSize sets the FFT length. The hop follows at half the frame
// unless WithHopSize is also given.
func WithFrameSize(n int) Option {
	return func(c *config) {
		c.frameSize = n
	}
}

// WithHopSize sets the distance between frame starts.
func WithHopSize(n int) Option {
	return func(c *config) {
		c.hopSize = n
	}
}

// Analyzer holds the FFT plan and scratch buffers for one frame size. It is
// not safe for concurrent use.
type Analyzer struct {
	frameSize int
	hopSize   int

	plan   *algofft.Plan[complex128]
	window []float64

	frame    []complex128
	spectrum []complex128
	re, im   []float64
	power    []float64
	scratch  []float64
}

// NewAnalyzer returns an analyzer with a periodic Hann window.
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	cfg := config{frameSize: FrameSize}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.hopSize == 0 {
		cfg.hopSize = cfg.frameSize / 2
	}

	n := cfg.frameSize
	if n < MinFrameSize || n&(n-1) != 0 || cfg.hopSize <= 0 || cfg.hopSize > n {
		return nil, fmt.Errorf("%w: frame %d, hop %d", ErrInvalidFrameSize, n, cfg.hopSize)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("spectral: failed to create FFT plan: %w", err)
	}

	bins := n/2 + 1

	return &Analyzer{
		frameSize: n,
		hopSize:   cfg.hopSize,
		plan:      plan,
		window:    window.Generate(window.TypeHann, n, window.WithPeriodic()),
		frame:     make([]complex128, n),
		spectrum:  make([]complex128, n),
		re:        make([]float64, bins),
		im:        make([]float64, bins),
		power:     make([]float64, bins),
		scratch:   make([]float64, bins),
	}, nil
}

// Analyze measures left and right at sampleRate with the default frame
// and hop sizes.
func Analyze(left, right []float64, sampleRate int) (Result, error) {
	a, err := NewAnalyzer()
	if err != nil {
		return Result{}, err
	}

	return a.Analyze(left, right, sampleRate)
}

// Analyze measures left and right at sampleRate. A signal shorter than one
// frame is analyzed as a single zero-padded frame; an empty signal yields a
// result with no frames.
func (a *Analyzer) Analyze(left, right []float64, sampleRate int) (Result, error) {
	if sampleRate <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	if len(left) != len(right) {
		return Result{}, fmt.Errorf("%w: left=%d right=%d", ErrChannelMismatch, len(left), len(right))
	}

	bins := len(a.power)
	binHz := float64(sampleRate) / float64(a.frameSize)

	ranges := make([][2]int, len(Bands))
	for i, b := range Bands {
		lo, hi := b.binRange(binHz, bins)
		ranges[i] = [2]int{lo, hi}
	}

	res := Result{FrameSize: a.frameSize, HopSize: a.hopSize}
	bandEnergy := make([]float64, len(Bands))

	var per descriptorSeries

	for start := 0; start < len(left); start += a.hopSize {
		if start > 0 && start+a.frameSize > len(left) {
			break
		}

		if err := a.framePower(left, right, start); err != nil {
			return Result{}, err
		}

		res.Frames++

		s := frequencystats.Calculate(a.power, float64(sampleRate))
		if !s.Valid() {
			continue
		}

		res.ValidFrames++
		per.add(s)

		for i, r := range ranges {
			for k := r[0]; k < r[1]; k++ {
				bandEnergy[i] += a.power[k]
			}
		}
	}

	res.Bands = bandShares(bandEnergy)
	if res.ValidFrames > 0 {
		res.Descriptors = per.median()
	}

	return res, nil
}

// framePower fills a.power with the mean of the two channels' power spectra
// for the frame starting at start. Samples past the end are zero.
func (a *Analyzer) framePower(left, right []float64, start int) error {
	if err := a.channelPower(left, start, a.power); err != nil {
		return err
	}

	// Mono buffers present one slice on both channels.
	if &left[0] == &right[0] {
		return nil
	}

	if err := a.channelPower(right, start, a.scratch); err != nil {
		return err
	}

	vecmath.AddBlockInPlace(a.power, a.scratch)
	vecmath.ScaleBlockInPlace(a.power, 0.5)

	return nil
}

func (a *Analyzer) channelPower(x []float64, start int, dst []float64) error {
	for i := range a.frame {
		v := 0.0
		if start+i < len(x) {
			v = x[start+i] * a.window[i]
		}

		a.frame[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.spectrum, a.frame); err != nil {
		return fmt.Errorf("spectral: forward FFT failed: %w", err)
	}

	for k := range a.re {
		a.re[k] = real(a.spectrum[k])
		a.im[k] = imag(a.spectrum[k])
	}

	vecmath.Power(dst, a.re, a.im)

	return nil
}

func bandShares(energy []float64) []BandEnergy {
	total := 0.0
	for _, e := range energy {
		total += e
	}

	out := make([]BandEnergy, len(Bands))
	for i, b := range Bands {
		out[i] = BandEnergy{
			Name:   b.Name,
			LowHz:  b.LowHz,
			HighHz: b.HighHz,
			Level:  core.Level(core.PowerToDB(0)),
		}

		if total > 0 {
			share := energy[i] / total
			out[i].Percent = 100 * share
			out[i].Level = core.Level(core.PowerToDB(share))
		}
	}

	return out
}

// descriptorSeries collects per-frame descriptors for median aggregation.
type descriptorSeries struct {
	centroid, spread, skewness, kurtosis []float64
	flatness, crest, rolloff, bandwidth  []float64
}

func (d *descriptorSeries) add(s frequencystats.Stats) {
	d.centroid = append(d.centroid, s.Centroid)
	d.spread = append(d.spread, s.Spread)
	d.skewness = append(d.skewness, s.Skewness)
	d.kurtosis = append(d.kurtosis, s.Kurtosis)
	d.flatness = append(d.flatness, s.Flatness)
	d.crest = append(d.crest, s.Crest)
	d.rolloff = append(d.rolloff, s.Rolloff)
	d.bandwidth = append(d.bandwidth, s.Bandwidth)
}

func (d *descriptorSeries) median() frequencystats.Stats {
	return frequencystats.Stats{
		Centroid:  core.Median(d.centroid),
		Spread:    core.Median(d.spread),
		Skewness:  core.Median(d.skewness),
		Kurtosis:  core.Median(d.kurtosis),
		Flatness:  core.Median(d.flatness),
		Crest:     core.Median(d.crest),
		Rolloff:   core.Median(d.rolloff),
		Bandwidth: core.Median(d.bandwidth),
	}
}
