package testutil

import (
	"fmt"
	"math"
	"math/rand"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	return PhasedSine(freqHz, sampleRate, amplitude, 0, length)
}

// PhasedSine generates a sine wave starting at the given phase in radians.
func PhasedSine(freqHz, sampleRate, amplitude, phase float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i)+phase)
	}

	return out
}

// SineDBFS generates a sine whose peak sits at levelDB dBFS for the given
// duration in seconds.
func SineDBFS(freqHz, levelDB float64, sampleRate int, seconds float64) []float64 {
	n := int(math.Round(seconds * float64(sampleRate)))
	return DeterministicSine(freqHz, float64(sampleRate), math.Pow(10, levelDB/20), n)
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// Silence returns length zero samples.
func Silence(length int) []float64 {
	return make([]float64, length)
}

// Concat joins signals end to end into a new slice.
func Concat(parts ...[]float64) []float64 {
	n := 0
	for _, p := range parts {
		n += len(p)
	}

	out := make([]float64, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

// Scale multiplies every sample by gain in place and returns x.
func Scale(x []float64, gain float64) []float64 {
	for i := range x {
		x[i] *= gain
	}

	return x
}

// LinearFade multiplies x in place by a gain ramp from "from" to "to"
// across its full length and returns x.
func LinearFade(x []float64, from, to float64) []float64 {
	n := len(x)
	if n == 0 {
		return x
	}

	if n == 1 {
		x[0] *= from
		return x
	}

	for i := range x {
		x[i] *= from + (to-from)*float64(i)/float64(n-1)
	}

	return x
}

// RMS returns the root-mean-square of x (0 for empty input).
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	var sum float64
	for _, v := range x {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(x)))
}

// PinkNoise synthesizes length samples with a 1/f power spectrum between
// minHz and maxHz and random phases, normalized to unit RMS.
//
// The spectrum is built on an FFT grid of the next power of two and
// transformed back with an inverse FFT; the result is truncated to length.
func PinkNoise(seed int64, sampleRate float64, length int, minHz, maxHz float64) ([]float64, error) {
	if length <= 0 {
		return nil, nil
	}

	size := nextPowerOf2(length)

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("testutil: failed to create FFT plan: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	spec := make([]complex128, size)
	binHz := sampleRate / float64(size)

	for k := 1; k < size/2; k++ {
		f := float64(k) * binHz
		if f < minHz || f > maxHz {
			continue
		}

		mag := 1 / math.Sqrt(f)
		phase := 2 * math.Pi * rng.Float64()
		c := complex(mag*math.Cos(phase), mag*math.Sin(phase))
		spec[k] = c
		spec[size-k] = complex(real(c), -imag(c))
	}

	timeDomain := make([]complex128, size)
	if err := plan.Inverse(timeDomain, spec); err != nil {
		return nil, fmt.Errorf("testutil: inverse FFT failed: %w", err)
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = real(timeDomain[i])
	}

	if rms := RMS(out); rms > 0 {
		Scale(out, 1/rms)
	}

	return out, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
