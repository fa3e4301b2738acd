package testutil

import (
	"math"
	"testing"

	algofft "github.com/MeKo-Christian/algo-fft"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	// First sample of a sine at phase 0 should be 0.
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}

	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestSineDBFS(t *testing.T) {
	s := SineDBFS(1000, -6, 48000, 0.5)
	if len(s) != 24000 {
		t.Fatalf("len = %d, want 24000", len(s))
	}

	peak := 0.0
	for _, v := range s {
		peak = math.Max(peak, math.Abs(v))
	}

	if want := math.Pow(10, -6.0/20); math.Abs(peak-want) > 1e-9 {
		t.Fatalf("peak = %v, want %v", peak, want)
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)

	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
	}
}

func TestConcatAndFade(t *testing.T) {
	x := Concat(DC(1, 3), Silence(2), DC(0.5, 1))

	RequireSliceNearlyEqual(t, x, []float64{1, 1, 1, 0, 0, 0.5}, 0)

	f := LinearFade(DC(1, 5), 1, 0)
	RequireSliceNearlyEqual(t, f, []float64{1, 0.75, 0.5, 0.25, 0}, 1e-15)
}

func TestRMS(t *testing.T) {
	if got := RMS(DC(-0.5, 10)); math.Abs(got-0.5) > 1e-15 {
		t.Fatalf("RMS = %v, want 0.5", got)
	}

	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v, want 0", got)
	}
}

func TestPinkNoiseSpectrum(t *testing.T) {
	const (
		sr   = 48000.0
		size = 1 << 16
	)

	x, err := PinkNoise(7, sr, size, 20, 20000)
	if err != nil {
		t.Fatal(err)
	}

	RequireFinite(t, x)

	if rms := RMS(x); math.Abs(rms-1) > 1e-9 {
		t.Fatalf("RMS = %v, want 1", rms)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		t.Fatal(err)
	}

	in := make([]complex128, size)
	for i, v := range x {
		in[i] = complex(v, 0)
	}

	spec := make([]complex128, size)
	if err := plan.Forward(spec, in); err != nil {
		t.Fatal(err)
	}

	band := func(lo, hi float64) float64 {
		var e float64

		for k := 1; k < size/2; k++ {
			f := float64(k) * sr / size
			if f >= lo && f < hi {
				m := spec[k]
				e += real(m)*real(m) + imag(m)*imag(m)
			}
		}

		return e
	}

	// Equal energy per octave.
	low := band(200, 400)
	high := band(4000, 8000)

	if diff := 10 * math.Log10(high/low); math.Abs(diff) > 0.5 {
		t.Fatalf("octave energy differs by %.2f dB", diff)
	}

	// Nothing outside the requested band.
	if e := band(20500, sr/2); e > 1e-12*high {
		t.Fatalf("energy above band: %g", e)
	}
}

func TestPinkNoiseDeterministic(t *testing.T) {
	a, err := PinkNoise(3, 48000, 1000, 20, 20000)
	if err != nil {
		t.Fatal(err)
	}

	b, err := PinkNoise(3, 48000, 1000, 20, 20000)
	if err != nil {
		t.Fatal(err)
	}

	RequireSliceNearlyEqual(t, a, b, 0)
}
