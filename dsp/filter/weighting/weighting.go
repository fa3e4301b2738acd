package weighting

import (
	"errors"
	"fmt"
	"math"

	"github.com/soundyai/loudness/dsp/filter/biquad"
)

// BS.1770 analog prototype parameters.
const (
	preShelfFreq = 1681.974450955533
	preShelfGain = 3.999843853973347 // dB
	preShelfQ    = 0.7071752369554196
	preShelfVb   = 0.4996667741545416 // band gain exponent

	rlbFreq = 38.13547087602444
	rlbQ    = 0.5003270373238773
)

// Supported sample-rate range in Hz.
const (
	MinSampleRate = 8000.0
	MaxSampleRate = 768000.0
)

// ErrUnsupportedSampleRate is returned for sample rates outside
// [MinSampleRate, MaxSampleRate], including NaN.
var ErrUnsupportedSampleRate = errors.New("weighting: unsupported sample rate")

// KCoefficients returns the pre-filter and RLB filter coefficients for the
// given sample rate. Both are normalized so that A[0] == 1.
func KCoefficients(sampleRate float64) (pre, rlb biquad.Coefficients, err error) {
	if !(sampleRate >= MinSampleRate && sampleRate <= MaxSampleRate) {
		return pre, rlb, fmt.Errorf("%w: %v Hz", ErrUnsupportedSampleRate, sampleRate)
	}

	return preFilter(sampleRate), rlbFilter(sampleRate), nil
}

// preFilter designs the high-shelf stage.
//
// With K = tan(pi*f0/fs), Vh = 10^(G/20) and Vb = Vh^0.49967:
//
//	a0 = 1 + K/Q + K^2
//	B  = [Vh + Vb*K/Q + K^2, 2(K^2 - Vh), Vh - Vb*K/Q + K^2] / a0
//	A  = [1, 2(K^2 - 1)/a0, (1 - K/Q + K^2)/a0]
func preFilter(sr float64) biquad.Coefficients {
	k := math.Tan(math.Pi * preShelfFreq / sr)
	k2 := k * k
	vh := math.Pow(10, preShelfGain/20)
	vb := math.Pow(vh, preShelfVb)
	a0 := 1 + k/preShelfQ + k2

	return biquad.Coefficients{
		B: [3]float64{
			(vh + vb*k/preShelfQ + k2) / a0,
			2 * (k2 - vh) / a0,
			(vh - vb*k/preShelfQ + k2) / a0,
		},
		A: [3]float64{
			1,
			2 * (k2 - 1) / a0,
			(1 - k/preShelfQ + k2) / a0,
		},
	}
}

// rlbFilter designs the high-pass stage. The numerator is kept at
// [1, -2, 1] as in the normative table.
func rlbFilter(sr float64) biquad.Coefficients {
	k := math.Tan(math.Pi * rlbFreq / sr)
	k2 := k * k
	a0 := 1 + k/rlbQ + k2

	return biquad.Coefficients{
		B: [3]float64{1, -2, 1},
		A: [3]float64{
			1,
			2 * (k2 - 1) / a0,
			(1 - k/rlbQ + k2) / a0,
		},
	}
}

// K is a K-weighting filter for one channel.
type K struct {
	sampleRate float64
	pre        biquad.Section
	rlb        biquad.Section
}

// NewK returns a K-weighting filter with zeroed state for the given rate.
func NewK(sampleRate float64) (*K, error) {
	pre, rlb, err := KCoefficients(sampleRate)
	if err != nil {
		return nil, err
	}

	return &K{
		sampleRate: sampleRate,
		pre:        biquad.Section{Coefficients: pre},
		rlb:        biquad.Section{Coefficients: rlb},
	}, nil
}

// SampleRate returns the rate the filter was designed for.
func (k *K) SampleRate() float64 { return k.sampleRate }

// Coefficients returns the pre-filter and RLB coefficients in use.
func (k *K) Coefficients() (pre, rlb biquad.Coefficients) {
	return k.pre.Coefficients, k.rlb.Coefficients
}

// ProcessSample filters one sample through both stages.
func (k *K) ProcessSample(x float64) float64 {
	return k.rlb.ProcessSample(k.pre.ProcessSample(x))
}

// ProcessBlockTo filters src into dst. dst must be at least as long as src
// and may alias it. State carries over between calls.
func (k *K) ProcessBlockTo(dst, src []float64) {
	k.pre.ProcessBlockTo(dst, src)
	k.rlb.ProcessBlock(dst[:len(src)])
}

// Reset zeroes both delay lines.
func (k *K) Reset() {
	k.pre.State.Reset()
	k.rlb.State.Reset()
}

// MagnitudeDB returns the cascade gain in dB at freqHz.
func (k *K) MagnitudeDB(freqHz float64) float64 {
	p := k.pre.MagnitudeSquared(freqHz, k.sampleRate)
	r := k.rlb.MagnitudeSquared(freqHz, k.sampleRate)

	return 10 * math.Log10(p*r)
}

// PowerGain returns the linear power gain |H(f)|^2 of the cascade.
func (k *K) PowerGain(freqHz float64) float64 {
	return k.pre.MagnitudeSquared(freqHz, k.sampleRate) * k.rlb.MagnitudeSquared(freqHz, k.sampleRate)
}
