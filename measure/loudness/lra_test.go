package loudness

import (
	"math"
	"testing"

	"github.com/soundyai/loudness/internal/testutil"
)

func ramp(from, to float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + (to-from)*float64(i)/float64(n-1)
	}

	return out
}

func TestLegacyLRAPercentiles(t *testing.T) {
	// -40 .. -21 in 1 LU steps: p10 = s[2], p95 = s[19].
	lra, meta := LegacyLRA(ramp(-40, -21, 20))

	if math.Abs(lra-17) > 1e-12 {
		t.Fatalf("lra = %v, want 17", lra)
	}

	if meta.UsedCount != 20 || meta.GatedCount != 0 || meta.Algorithm != LRALegacy {
		t.Fatalf("meta = %+v", meta)
	}

	if meta.Low != -38 || meta.High != -21 {
		t.Fatalf("low/high = %v/%v, want -38/-21", meta.Low, meta.High)
	}
}

func TestLegacyLRAIncludesQuietButNotSilent(t *testing.T) {
	st := []float64{math.Inf(-1), -90, -20, -20, math.Inf(-1)}

	lra, meta := LegacyLRA(st)
	if meta.UsedCount != 3 {
		t.Fatalf("used = %d, want 3", meta.UsedCount)
	}

	// n=3: p10 = s[0] = -90, p95 = s[2] = -20.
	if math.Abs(lra-70) > 1e-12 {
		t.Fatalf("lra = %v, want 70", lra)
	}
}

func TestLRAFewValues(t *testing.T) {
	for _, st := range [][]float64{nil, {-20}, {math.Inf(-1), -20}} {
		if lra, _ := LegacyLRA(st); lra != 0 {
			t.Errorf("LegacyLRA(%v) = %v, want 0", st, lra)
		}

		if lra, _ := R128LRA(st); lra != 0 {
			t.Errorf("R128LRA(%v) = %v, want 0", st, lra)
		}
	}
}

func TestR128LRAGates(t *testing.T) {
	st := append(ramp(-30, -20, 50), -80, -80, -60, -55)

	lra, meta := R128LRA(st)

	if meta.Algorithm != LRAR128 || meta.AbsoluteThreshold != AbsoluteThreshold {
		t.Fatalf("meta = %+v", meta)
	}

	// -80 fails the absolute gate, -60 and -55 the relative one.
	if meta.UsedCount != 50 || meta.GatedCount != 4 {
		t.Fatalf("used/gated = %d/%d, want 50/4", meta.UsedCount, meta.GatedCount)
	}

	rel := float64(meta.RelativeThreshold)
	if rel > -40 || rel < -50 {
		t.Fatalf("relative threshold = %v, want about 20 LU below the mean", rel)
	}

	legacy, _ := LegacyLRA(st)
	if !(lra < legacy) {
		t.Fatalf("r128 %v should be narrower than legacy %v", lra, legacy)
	}
}

func TestR128LRAAllBelowAbsolute(t *testing.T) {
	lra, meta := R128LRA([]float64{-80, -75, math.Inf(-1)})

	if lra != 0 || meta.UsedCount != 0 || meta.GatedCount != 2 {
		t.Fatalf("lra = %v meta = %+v", lra, meta)
	}

	if !meta.RelativeThreshold.IsSilent() {
		t.Fatalf("relative threshold = %v, want -Inf", meta.RelativeThreshold)
	}
}

func TestLRAEnvelopedTone(t *testing.T) {
	const sec = 5

	in := testutil.LinearFade(testutil.SineDBFS(1000, -20, testRate, sec), 0, 1)
	hold := testutil.SineDBFS(1000, -20, testRate, sec)
	out := testutil.LinearFade(testutil.SineDBFS(1000, -20, testRate, sec), 1, 0)

	res := measure(t, stereo(testutil.Concat(in, hold, out)))

	if !(res.LRA > 0) || !(res.LRALegacy > 0) {
		t.Fatalf("lra = %v legacy = %v, want both > 0", res.LRA, res.LRALegacy)
	}
}

func TestLRAR128NotWiderThanLegacy(t *testing.T) {
	pink, err := testutil.PinkNoise(5, testRate, 8*testRate, 20, 20000)
	if err != nil {
		t.Fatal(err)
	}

	signals := map[string][]float64{
		"sine":  testutil.SineDBFS(1000, -20, testRate, 8),
		"fade":  testutil.LinearFade(testutil.SineDBFS(440, -10, testRate, 12), 1, 0.01),
		"pink":  testutil.Scale(pink, 0.1),
		"gappy": testutil.Concat(testutil.SineDBFS(1000, -20, testRate, 4), testutil.Silence(4*testRate), testutil.SineDBFS(1000, -26, testRate, 4)),
		"quiet": testutil.SineDBFS(1000, -72, testRate, 6),
	}

	for name, x := range signals {
		res := measure(t, stereo(x))

		if res.LRA < 0 || res.LRALegacy < 0 {
			t.Errorf("%s: negative lra %v / %v", name, res.LRA, res.LRALegacy)
		}

		if res.LRA > res.LRALegacy+0.1 {
			t.Errorf("%s: r128 lra %v exceeds legacy %v", name, res.LRA, res.LRALegacy)
		}
	}
}

func TestParseLRAAlgorithm(t *testing.T) {
	for _, s := range []string{"r128", "legacy"} {
		a, err := ParseLRAAlgorithm(s)
		if err != nil || string(a) != s {
			t.Errorf("ParseLRAAlgorithm(%q) = %q, %v", s, a, err)
		}
	}

	if _, err := ParseLRAAlgorithm("ebu"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}
