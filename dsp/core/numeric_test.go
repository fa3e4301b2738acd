package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("expected values to be nearly equal")
	}

	if NearlyEqual(1.0, 1.1, 1e-3) {
		t.Fatal("expected values to differ")
	}

	if !NearlyEqual(math.Inf(-1), math.Inf(-1), 1e-9) {
		t.Fatal("expected equal infinities to compare equal")
	}

	if NearlyEqual(math.Inf(-1), -70, 1e-9) {
		t.Fatal("expected -Inf and a finite value to differ")
	}
}

func TestAmplitudeConversions(t *testing.T) {
	db := AmplitudeToDB(DBToAmplitude(-6))
	if !NearlyEqual(db, -6, 1e-10) {
		t.Fatalf("AmplitudeToDB(DBToAmplitude(-6)) = %v, want -6", db)
	}

	if !math.IsInf(AmplitudeToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}

	if !math.IsNaN(AmplitudeToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}

func TestPowerConversions(t *testing.T) {
	// 3 dB power ~ 2x linear power
	p := DBToPower(3)
	if !NearlyEqual(p, 2.0, 0.01) {
		t.Fatalf("DBToPower(3) = %v, want ~2.0", p)
	}

	if got := PowerToDB(0.01); !NearlyEqual(got, -20, 1e-12) {
		t.Fatalf("PowerToDB(0.01) = %v, want -20", got)
	}

	if !math.IsInf(PowerToDB(0), -1) {
		t.Fatal("expected -Inf for zero power")
	}

	if !math.IsNaN(PowerToDB(-1)) {
		t.Fatal("expected NaN for negative power")
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{name: "single", values: []float64{3}, expected: 3},
		{name: "odd", values: []float64{5, 1, 3}, expected: 3},
		{name: "even", values: []float64{4, 1, 3, 2}, expected: 2.5},
		{name: "negative", values: []float64{-1, -0.5, 1}, expected: -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]float64(nil), tt.values...)

			got := Median(in)
			if got != tt.expected {
				t.Fatalf("Median() = %v, want %v", got, tt.expected)
			}

			for i := range in {
				if in[i] != tt.values[i] {
					t.Fatalf("Median modified its input: %v", in)
				}
			}
		})
	}

	if got := Median(nil); !math.IsNaN(got) {
		t.Fatalf("Median(nil) = %v, want NaN", got)
	}
}
