package truepeak

import (
	"math"

	"github.com/soundyai/loudness/dsp/core"
)

const (
	// Oversampling is the interpolation factor.
	Oversampling = 4
	// TapsPerPhase is the length of each polyphase branch.
	TapsPerPhase = 12

	// ClipThresholdDBTP is the maximum true peak recommended by EBU R128.
	ClipThresholdDBTP = -1.0
)

// phases holds the BS.1770-4 Annex 2 interpolation filter split into its
// four polyphase branches: phases[p][k] = h[p + 4k].
var phases = [Oversampling][TapsPerPhase]float64{
	{
		0.0017089843750, 0.0109863281250, -0.0196533203125, 0.0332031250000,
		-0.0594482421875, 0.1373291015625, 0.9721679687500, -0.1022949218750,
		0.0476074218750, -0.0266113281250, 0.0148925781250, -0.0083007812500,
	},
	{
		-0.0291748046875, 0.0292968750000, -0.0517578125000, 0.0891113281250,
		-0.1665039062500, 0.4650878906250, 0.7797851562500, -0.2003173828125,
		0.1015625000000, -0.0582275390625, 0.0330810546875, -0.0189208984375,
	},
	{
		-0.0189208984375, 0.0330810546875, -0.0582275390625, 0.1015625000000,
		-0.2003173828125, 0.7797851562500, 0.4650878906250, -0.1665039062500,
		0.0891113281250, -0.0517578125000, 0.0292968750000, -0.0291748046875,
	},
	{
		-0.0083007812500, 0.0148925781250, -0.0266113281250, 0.0476074218750,
		-0.1022949218750, 0.9721679687500, 0.1373291015625, -0.0594482421875,
		0.0332031250000, -0.0196533203125, 0.0109863281250, 0.0017089843750,
	},
}

// Detector tracks the true peak of one channel across calls to Process.
type Detector struct {
	// history holds the last TapsPerPhase samples twice so that
	// history[pos:pos+TapsPerPhase] is always newest-first.
	history    [2 * TapsPerPhase]float64
	pos        int
	peak       float64
	samplePeak float64
	overs      int
}

// NewDetector returns a detector with empty history.
func NewDetector() *Detector {
	return &Detector{}
}

// Process feeds samples through the interpolator.
func (d *Detector) Process(x []float64) {
	for _, v := range x {
		if a := math.Abs(v); a > d.samplePeak {
			d.samplePeak = a
		}

		d.push(v)
	}
}

// Flush drains the interpolator so the last input samples reach every
// output phase. Call it once after the final Process.
func (d *Detector) Flush() {
	for range TapsPerPhase {
		d.push(0)
	}
}

func (d *Detector) push(v float64) {
	d.pos = (d.pos + TapsPerPhase - 1) % TapsPerPhase
	d.history[d.pos] = v
	d.history[d.pos+TapsPerPhase] = v

	h := d.history[d.pos : d.pos+TapsPerPhase]

	for p := range phases {
		var y float64
		for k, c := range phases[p] {
			y += c * h[k]
		}

		a := math.Abs(y)
		if a > d.peak {
			d.peak = a
		}

		if a > 1 {
			d.overs++
		}
	}
}

// Peak returns the linear true peak: the larger of the interpolated and
// sample peaks.
func (d *Detector) Peak() float64 {
	return math.Max(d.peak, d.samplePeak)
}

// SamplePeak returns the largest absolute input sample.
func (d *Detector) SamplePeak() float64 {
	return d.samplePeak
}

// Overs returns the number of interpolated values above full scale.
func (d *Detector) Overs() int {
	return d.overs
}

// Reset clears history and peaks.
func (d *Detector) Reset() {
	*d = Detector{}
}

// Result summarizes the true peak of one or more channels.
type Result struct {
	TruePeakDBTP   core.Level   `json:"true_peak_dbtp"`
	TruePeakLinear float64      `json:"true_peak_linear"`
	SamplePeakDBFS core.Level   `json:"sample_peak_dbfs"`
	ChannelDBTP    []core.Level `json:"channel_dbtp"`
	// InterSampleOvers counts interpolated values above 0 dBFS.
	InterSampleOvers   int  `json:"inter_sample_overs"`
	OversamplingFactor int  `json:"oversampling_factor"`
	ExceedsMinus1DBTP  bool `json:"exceeds_minus_1_dbtp"`
	Exceeds0DBTP       bool `json:"exceeds_0_dbtp"`
}

// Detect measures the true peak of every channel. Silence yields -Inf.
func Detect(channels ...[]float64) Result {
	res := Result{
		OversamplingFactor: Oversampling,
		ChannelDBTP:        make([]core.Level, len(channels)),
	}

	var samplePeak float64

	for i, ch := range channels {
		d := NewDetector()
		d.Process(ch)
		d.Flush()

		peak := d.Peak()
		res.ChannelDBTP[i] = core.Level(core.AmplitudeToDB(peak))
		res.InterSampleOvers += d.Overs()
		res.TruePeakLinear = math.Max(res.TruePeakLinear, peak)
		samplePeak = math.Max(samplePeak, d.SamplePeak())
	}

	tp := core.AmplitudeToDB(res.TruePeakLinear)
	res.TruePeakDBTP = core.Level(tp)
	res.SamplePeakDBFS = core.Level(core.AmplitudeToDB(samplePeak))
	res.ExceedsMinus1DBTP = tp > ClipThresholdDBTP
	res.Exceeds0DBTP = tp > 0

	return res
}
