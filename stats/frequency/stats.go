// Package frequency computes spectral shape descriptors of a one-sided
// power spectrum.
package frequency

import "math"

const (
	// MinEnergy is the total power below which a spectrum carries no usable
	// shape information.
	MinEnergy = 1e-10

	// RolloffFraction is the share of energy below the rolloff frequency.
	RolloffFraction = 0.85

	// flatnessFloor bounds the logarithm of near-empty bins.
	flatnessFloor = 1e-12
)

// Stats holds frequency-domain statistics computed from a power spectrum.
type Stats struct {
	BinCount int     `json:"-"`
	Energy   float64 `json:"-"` // sum of bin powers, DC included
	PeakBin  int     `json:"-"`

	Centroid  float64 `json:"centroid_hz"`  // power-weighted mean frequency
	Spread    float64 `json:"spread_hz"`    // power-weighted standard deviation around the centroid
	Skewness  float64 `json:"skewness"`     // third standardized moment
	Kurtosis  float64 `json:"kurtosis"`     // fourth standardized moment
	Flatness  float64 `json:"flatness"`     // Wiener entropy, 0..1
	Crest     float64 `json:"crest"`        // peak magnitude over mean magnitude
	Rolloff   float64 `json:"rolloff_hz"`   // frequency below which 85% of energy lies
	Bandwidth float64 `json:"bandwidth_hz"` // 3 dB bandwidth around the peak
}

// Valid reports whether the spectrum had enough energy for its descriptors
// to mean anything.
func (s Stats) Valid() bool {
	return s.BinCount >= 2 && s.Energy > MinEnergy
}

// binFreq returns the frequency in Hz of a given bin index.
// fftSize = 2 * (binCount - 1).
func binFreq(i int, sampleRate float64, binCount int) float64 {
	return float64(i) * sampleRate / float64(2*(binCount-1))
}

// Calculate computes all descriptors from a power spectrum (squared
// magnitudes, linear scale).
//
// The power slice represents bins from 0 (DC) to Nyquist (one-sided
// spectrum, length = FFTSize/2 + 1). The frequency of bin i is:
//
//	f_i = i * sampleRate / (2 * (len(power) - 1))
//
// The DC bin counts toward the total energy but is excluded from the
// moment, flatness and crest descriptors. Spectra that are not Valid return
// zero descriptors.
func Calculate(power []float64, sampleRate float64) Stats {
	n := len(power)

	s := Stats{BinCount: n}
	for i, v := range power {
		s.Energy += v
		if i > 0 && v > power[s.PeakBin] {
			s.PeakBin = i
		}
	}

	if !s.Valid() {
		return Stats{BinCount: n, Energy: s.Energy}
	}

	s.Centroid = centroid(power, sampleRate, s.Energy)
	s.Spread, s.Skewness, s.Kurtosis = moments(power, sampleRate, s.Centroid, s.Energy)
	s.Flatness = flatness(power)
	s.Crest = crest(power)
	s.Rolloff = rolloff(power, sampleRate, RolloffFraction, s.Energy)
	s.Bandwidth = bandwidth(power, sampleRate, s.PeakBin)

	return s
}

// Centroid returns the spectral centroid in Hz.
//
//	centroid = sum(f_i * P_i) / sum(P_i)
func Centroid(power []float64, sampleRate float64) float64 {
	if len(power) < 2 {
		return 0
	}

	return centroid(power, sampleRate, sum(power))
}

func centroid(power []float64, sampleRate, energy float64) float64 {
	n := len(power)
	if n < 2 || energy == 0 {
		return 0
	}

	weighted := 0.0
	for i := 1; i < n; i++ {
		weighted += binFreq(i, sampleRate, n) * power[i]
	}

	return weighted / energy
}

// moments returns the spread (Hz) together with the skewness and kurtosis
// of the power distribution around cent.
func moments(power []float64, sampleRate, cent, energy float64) (spread, skewness, kurtosis float64) {
	n := len(power)

	var m2, m3, m4 float64

	for i := 1; i < n; i++ {
		d := binFreq(i, sampleRate, n) - cent
		d2 := d * d
		m2 += d2 * power[i]
		m3 += d2 * d * power[i]
		m4 += d2 * d2 * power[i]
	}

	m2 /= energy
	m3 /= energy
	m4 /= energy

	if m2 <= 0 {
		return 0, 0, 0
	}

	return math.Sqrt(m2), m3 / math.Pow(m2, 1.5), m4 / (m2 * m2)
}

// Flatness returns the spectral flatness (Wiener entropy) in the range 0..1.
//
// Flatness = exp(mean(log(P_i))) / mean(P_i)
//
// The DC bin is excluded. Bins below a power floor of 1e-12 enter the
// geometric mean at the floor. If every bin is zero, 0 is returned.
func Flatness(power []float64) float64 {
	return flatness(power)
}

func flatness(power []float64) float64 {
	n := len(power)
	if n < 2 {
		return 0
	}

	var sumLin, sumLog float64

	for i := 1; i < n; i++ {
		v := power[i]
		sumLin += v
		sumLog += math.Log(math.Max(v, flatnessFloor))
	}

	if sumLin == 0 {
		return 0
	}

	bins := float64(n - 1)
	geoMean := math.Exp(sumLog / bins)

	return math.Min(geoMean/(sumLin/bins), 1)
}

func crest(power []float64) float64 {
	n := len(power)
	if n < 2 {
		return 0
	}

	var peak, total float64

	for i := 1; i < n; i++ {
		m := math.Sqrt(power[i])
		total += m

		if m > peak {
			peak = m
		}
	}

	if total == 0 {
		return 0
	}

	return peak / (total / float64(n-1))
}

// Rolloff returns the frequency below which the specified fraction (0..1) of
// spectral energy lies.
func Rolloff(power []float64, sampleRate float64, fraction float64) float64 {
	if len(power) < 2 {
		return 0
	}

	return rolloff(power, sampleRate, fraction, sum(power))
}

func rolloff(power []float64, sampleRate, fraction, totalEnergy float64) float64 {
	n := len(power)
	if n < 2 || totalEnergy == 0 {
		return 0
	}

	threshold := fraction * totalEnergy
	cumEnergy := 0.0

	for i, v := range power {
		cumEnergy += v
		if cumEnergy >= threshold {
			return binFreq(i, sampleRate, n)
		}
	}

	return binFreq(n-1, sampleRate, n)
}

// bandwidth returns the width in Hz of the region around peakBin where the
// power stays above half the peak power, interpolated between bins.
func bandwidth(power []float64, sampleRate float64, peakBin int) float64 {
	n := len(power)

	peak := power[peakBin]
	if peak == 0 {
		return 0
	}

	threshold := peak / 2

	lowerFreq := binFreq(0, sampleRate, n)
	for i := peakBin; i >= 1; i-- {
		if power[i-1] <= threshold && power[i] > threshold {
			lowerFreq = interpFreq(i-1, i, power[i-1], power[i], threshold, sampleRate, n)
			break
		}
	}

	upperFreq := binFreq(n-1, sampleRate, n)
	for i := peakBin; i < n-1; i++ {
		if power[i+1] <= threshold && power[i] > threshold {
			upperFreq = interpFreq(i, i+1, power[i], power[i+1], threshold, sampleRate, n)
			break
		}
	}

	bw := upperFreq - lowerFreq
	if bw < 0 {
		return 0
	}

	return bw
}

// interpFreq linearly interpolates between two bins to find the frequency
// where the power crosses the given threshold.
func interpFreq(binLow, binHigh int, pLow, pHigh, threshold, sampleRate float64, binCount int) float64 {
	fLow := binFreq(binLow, sampleRate, binCount)
	fHigh := binFreq(binHigh, sampleRate, binCount)

	denom := pHigh - pLow
	if denom == 0 {
		return (fLow + fHigh) / 2
	}

	t := (threshold - pLow) / denom

	return fLow + t*(fHigh-fLow)
}

func sum(x []float64) float64 {
	total := 0.0
	for _, v := range x {
		total += v
	}

	return total
}
