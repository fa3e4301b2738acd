package weighting

import (
	"errors"
	"math"
	"testing"
)

// BS.1770-4 Annex 1, Tables 1 and 2 (48 kHz).
var (
	refPreB = [3]float64{1.53512485958697, -2.69169618940638, 1.19839281085285}
	refPreA = [3]float64{1, -1.69065929318241, 0.73248077421585}
	refRLBB = [3]float64{1, -2, 1}
	refRLBA = [3]float64{1, -1.99004745483398, 0.99007225036621}
)

func TestKCoefficients48k(t *testing.T) {
	pre, rlb, err := KCoefficients(48000)
	if err != nil {
		t.Fatalf("KCoefficients: %v", err)
	}

	const tol = 1e-6

	check := func(name string, got, want [3]float64) {
		t.Helper()

		for i := range 3 {
			if math.Abs(got[i]-want[i]) > tol {
				t.Errorf("%s[%d] = %.14f, want %.14f", name, i, got[i], want[i])
			}
		}
	}

	check("pre.B", pre.B, refPreB)
	check("pre.A", pre.A, refPreA)
	check("rlb.B", rlb.B, refRLBB)
	check("rlb.A", rlb.A, refRLBA)
}

func TestKCoefficientsOtherRates(t *testing.T) {
	ref, _, err := KCoefficients(48000)
	if err != nil {
		t.Fatal(err)
	}

	for _, sr := range []float64{8000, 16000, 22050, 32000, 44100, 88200, 96000, 192000, 384000, 768000} {
		pre, rlb, err := KCoefficients(sr)
		if err != nil {
			t.Fatalf("sr=%v: %v", sr, err)
		}

		if pre.A[0] != 1 || rlb.A[0] != 1 {
			t.Errorf("sr=%v: A[0] not normalized: pre=%v rlb=%v", sr, pre.A[0], rlb.A[0])
		}

		if pre == ref {
			t.Errorf("sr=%v: pre-filter equals the 48 kHz table", sr)
		}

		for name, a := range map[string][3]float64{"pre": pre.A, "rlb": rlb.A} {
			// Stability triangle for a second-order denominator.
			if math.Abs(a[2]) >= 1 || math.Abs(a[1]) >= 1+a[2] {
				t.Errorf("sr=%v: %s poles outside unit circle: %v", sr, name, a)
			}
		}
	}
}

func TestKCoefficientsUnsupportedRate(t *testing.T) {
	for _, sr := range []float64{0, -48000, 4000, 7999, 768001, 1e7, math.NaN(), math.Inf(1)} {
		_, _, err := KCoefficients(sr)
		if !errors.Is(err, ErrUnsupportedSampleRate) {
			t.Errorf("sr=%v: err = %v, want ErrUnsupportedSampleRate", sr, err)
		}

		if _, err := NewK(sr); !errors.Is(err, ErrUnsupportedSampleRate) {
			t.Errorf("NewK(%v): err = %v, want ErrUnsupportedSampleRate", sr, err)
		}
	}
}

func TestKResponse(t *testing.T) {
	for _, sr := range []float64{44100, 48000, 96000, 192000} {
		k, err := NewK(sr)
		if err != nil {
			t.Fatal(err)
		}

		// The -0.691 offset in the loudness formula cancels this gain.
		if got := k.MagnitudeDB(1000); math.Abs(got-0.691) > 0.03 {
			t.Errorf("sr=%v: gain at 1 kHz = %.4f dB, want ~0.691", sr, got)
		}

		if got := k.MagnitudeDB(20); got > -10 {
			t.Errorf("sr=%v: gain at 20 Hz = %.2f dB, want < -10", sr, got)
		}

		if got := k.MagnitudeDB(10000); got < 3.5 || got > 4.5 {
			t.Errorf("sr=%v: gain at 10 kHz = %.2f dB, want ~+4", sr, got)
		}

		if got := k.PowerGain(1000); math.Abs(10*math.Log10(got)-k.MagnitudeDB(1000)) > 1e-12 {
			t.Errorf("sr=%v: PowerGain disagrees with MagnitudeDB", sr)
		}
	}
}

func TestKProcessMatchesCascade(t *testing.T) {
	const sr = 48000

	k, err := NewK(sr)
	if err != nil {
		t.Fatal(err)
	}

	src := make([]float64, 1024)
	for i := range src {
		src[i] = math.Sin(2*math.Pi*440*float64(i)/sr) + 0.25*math.Sin(2*math.Pi*9000*float64(i)/sr)
	}

	want := make([]float64, len(src))
	for i, x := range src {
		want[i] = k.ProcessSample(x)
	}

	k.Reset()

	// Block processing in uneven chunks must match per-sample processing.
	got := make([]float64, len(src))
	for _, r := range [][2]int{{0, 7}, {7, 500}, {500, 501}, {501, 1024}} {
		k.ProcessBlockTo(got[r[0]:r[1]], src[r[0]:r[1]])
	}

	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d: block=%v sample=%v", i, got[i], want[i])
		}
	}
}

func TestKDCRejection(t *testing.T) {
	k, err := NewK(48000)
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]float64, 48000)
	for i := range buf {
		buf[i] = 0.5
	}

	k.ProcessBlockTo(buf, buf)

	if tail := math.Abs(buf[len(buf)-1]); tail > 1e-3 {
		t.Errorf("DC not rejected: last output %v", tail)
	}
}

func BenchmarkKProcessBlock(b *testing.B) {
	k, err := NewK(48000)
	if err != nil {
		b.Fatal(err)
	}

	buf := make([]float64, 4800)
	for i := range buf {
		buf[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / 48000)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(buf) * 8))

	for range b.N {
		k.ProcessBlockTo(buf, buf)
	}
}
