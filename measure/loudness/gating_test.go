package loudness

import (
	"math"
	"slices"
	"testing"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func TestGateEmpty(t *testing.T) {
	got, stats := GateValues(nil)
	if !math.IsInf(got, -1) {
		t.Fatalf("integrated = %v, want -Inf", got)
	}

	if stats.TotalBlocks != 0 || stats.GatedBlocks != 0 || stats.GatingEfficiency != 0 {
		t.Fatalf("stats = %+v, want zero counts", stats)
	}
}

func TestGateAllBelowAbsolute(t *testing.T) {
	got, stats := GateValues([]float64{-75, -80, math.Inf(-1)})
	if !math.IsInf(got, -1) {
		t.Fatalf("integrated = %v, want -Inf", got)
	}

	if stats.TotalBlocks != 3 || stats.AbsoluteGatedBlocks != 0 || stats.GatedBlocks != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	if !stats.RelativeThreshold.IsSilent() {
		t.Fatalf("relative threshold = %v, want -Inf", stats.RelativeThreshold)
	}

	if stats.GatingEfficiency != 0 {
		t.Fatalf("efficiency = %v, want 0", stats.GatingEfficiency)
	}
}

func TestGateIdenticalBlocksAllPass(t *testing.T) {
	got, stats := GateValues(repeat(-20, 10))
	if math.Abs(got+20) > 1e-9 {
		t.Fatalf("integrated = %v, want -20", got)
	}

	if stats.GatedBlocks != 10 || stats.GatingEfficiency != 1 {
		t.Fatalf("stats = %+v, want all 10 blocks gated in", stats)
	}

	if math.Abs(float64(stats.RelativeThreshold)+30) > 1e-9 {
		t.Fatalf("relative threshold = %v, want -30", stats.RelativeThreshold)
	}
}

func TestGateAbsoluteThresholdInclusive(t *testing.T) {
	_, stats := GateValues([]float64{AbsoluteThreshold, AbsoluteThreshold - 1e-9})
	if stats.AbsoluteGatedBlocks != 1 {
		t.Fatalf("absolute survivors = %d, want 1", stats.AbsoluteGatedBlocks)
	}
}

func TestGateRelative(t *testing.T) {
	blocks := slices.Concat(repeat(-20, 10), repeat(-35, 10), repeat(-80, 5))

	got, stats := GateValues(blocks)
	if math.Abs(got+20) > 1e-9 {
		t.Fatalf("integrated = %v, want -20", got)
	}

	// Energy mean of ten -20 and ten -35 blocks, minus 10 LU.
	wantRel := 10*math.Log10((math.Pow(10, -2)+math.Pow(10, -3.5))/2) - 10
	if math.Abs(float64(stats.RelativeThreshold)-wantRel) > 1e-9 {
		t.Fatalf("relative threshold = %v, want %v", stats.RelativeThreshold, wantRel)
	}

	want := GatingStats{
		TotalBlocks:         25,
		AbsoluteGatedBlocks: 20,
		GatedBlocks:         10,
		AbsoluteThreshold:   AbsoluteThreshold,
		RelativeThreshold:   stats.RelativeThreshold,
		GatingEfficiency:    10.0 / 25,
	}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestGateEnergyMeanNotDBMean(t *testing.T) {
	got, _ := GateValues([]float64{-20, -26})

	want := 10 * math.Log10((math.Pow(10, -2)+math.Pow(10, -2.6))/2)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("integrated = %v, want energy mean %v", got, want)
	}

	if math.Abs(got+23) < 0.1 {
		t.Fatalf("integrated %v looks like a dB-domain mean", got)
	}
}
