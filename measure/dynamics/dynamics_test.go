package dynamics

import (
	"errors"
	"math"
	"testing"

	"github.com/soundyai/loudness/internal/testutil"
)

func TestSteadySine(t *testing.T) {
	x := testutil.SineDBFS(1000, -20, 48000, 2)

	res, err := Analyze(x, x, 48000, -20)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Windows != 18 || !res.DynamicRangeValid {
		t.Fatalf("windows = %d valid = %v, want 18 valid", res.Windows, res.DynamicRangeValid)
	}

	testutil.RequireWithin(t, "dynamic range", res.DynamicRangeDB, 0, 0.01)
	testutil.RequireWithin(t, "rms", float64(res.RMSDBFS), -20-10*math.Log10(2), 0.01)
	testutil.RequireWithin(t, "crest", res.CrestFactorDB, 10*math.Log10(2), 0.01)

	if !res.CrestFactorValid || res.Compression != "heavily compressed" {
		t.Errorf("crest valid = %v compression = %q", res.CrestFactorValid, res.Compression)
	}
}

func TestLevelStep(t *testing.T) {
	x := testutil.Concat(
		testutil.SineDBFS(1000, -30, 48000, 1),
		testutil.SineDBFS(1000, -10, 48000, 1),
	)

	res, err := Analyze(x, x, 48000, -10)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	testutil.RequireWithin(t, "peak rms", float64(res.PeakRMSDBFS), -10-10*math.Log10(2), 0.01)

	if res.DynamicRangeDB < 5 || !res.DynamicRangeValid {
		t.Errorf("dynamic range = %.2f valid = %v, want > 5 dB", res.DynamicRangeDB, res.DynamicRangeValid)
	}

	if float64(res.MeanRMSDBFS) >= float64(res.PeakRMSDBFS) {
		t.Errorf("mean %v not below peak %v", res.MeanRMSDBFS, res.PeakRMSDBFS)
	}
}

func TestTooFewWindows(t *testing.T) {
	x := testutil.SineDBFS(1000, -20, 48000, 0.5)

	res, err := Analyze(x, x, 48000, -20)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Windows != 3 || res.DynamicRangeValid {
		t.Errorf("windows = %d valid = %v, want 3 invalid", res.Windows, res.DynamicRangeValid)
	}

	if !res.CrestFactorValid {
		t.Error("crest factor should not depend on the window count")
	}
}

func TestSilence(t *testing.T) {
	sine := testutil.SineDBFS(1000, -20, 48000, 1)
	inverted := testutil.Scale(append([]float64(nil), sine...), -1)

	for name, pair := range map[string][2][]float64{
		"zeros":     {testutil.Silence(48000), testutil.Silence(48000)},
		"cancelled": {sine, inverted},
		"empty":     {nil, nil},
	} {
		res, err := Analyze(pair[0], pair[1], 48000, 0)
		if err != nil {
			t.Fatalf("%s: Analyze: %v", name, err)
		}

		if res.Windows != 0 || res.DynamicRangeValid || res.CrestFactorValid {
			t.Errorf("%s: %+v, want nothing measured", name, res)
		}

		if !res.RMSDBFS.IsSilent() || !res.PeakRMSDBFS.IsSilent() || res.Compression != "" {
			t.Errorf("%s: levels %v/%v compression %q", name, res.RMSDBFS, res.PeakRMSDBFS, res.Compression)
		}
	}
}

func TestCrestFactorBounds(t *testing.T) {
	x := testutil.SineDBFS(1000, -40, 48000, 1)

	res, err := Analyze(x, x, 48000, 0)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.CrestFactorValid || res.CrestFactorDB < 20 {
		t.Errorf("crest = %.2f valid = %v, want out of range", res.CrestFactorDB, res.CrestFactorValid)
	}

	res, err = Analyze(x, x, 48000, math.Inf(-1))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.CrestFactorValid || res.CrestFactorDB != 0 || res.Compression != "" {
		t.Errorf("unknown peak: %+v, want no crest factor", res)
	}

	if res.RMSDBFS.IsSilent() {
		t.Error("RMS should be measured without a true peak")
	}
}

func TestErrors(t *testing.T) {
	if _, err := Analyze([]float64{0}, nil, 48000, 0); !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("mismatch: err = %v", err)
	}

	if _, err := Analyze(nil, nil, 0, 0); !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("rate: err = %v", err)
	}
}

func TestCategories(t *testing.T) {
	crest := []struct {
		db   float64
		want string
	}{
		{3, "heavily compressed"},
		{9, "moderately compressed"},
		{15, "lightly compressed"},
		{19, "natural"},
	}
	for _, tc := range crest {
		if got := CompressionCategory(tc.db); got != tc.want {
			t.Errorf("CompressionCategory(%v) = %q, want %q", tc.db, got, tc.want)
		}
	}

	lra := []struct {
		lu   float64
		want string
	}{
		{0.5, "very compressed"},
		{2, "compressed"},
		{4, "moderate"},
		{8, "dynamic"},
		{12, "very dynamic"},
		{math.NaN(), ""},
	}
	for _, tc := range lra {
		if got := LRACategory(tc.lu); got != tc.want {
			t.Errorf("LRACategory(%v) = %q, want %q", tc.lu, got, tc.want)
		}
	}
}
