package loudness

import (
	"fmt"
	"math"
	"slices"
)

// LRAAlgorithm names a loudness range variant.
type LRAAlgorithm string

const (
	// LRAR128 gates short-term values at -70 LUFS and 20 LU below their
	// energy mean before taking percentiles (EBU Tech 3342).
	LRAR128 LRAAlgorithm = "r128"
	// LRALegacy takes percentiles over every finite short-term value.
	LRALegacy LRAAlgorithm = "legacy"
)

// Valid reports whether a is a known algorithm.
func (a LRAAlgorithm) Valid() bool {
	return a == LRAR128 || a == LRALegacy
}

// ParseLRAAlgorithm parses "r128" or "legacy".
func ParseLRAAlgorithm(s string) (LRAAlgorithm, error) {
	a := LRAAlgorithm(s)
	if !a.Valid() {
		return "", fmt.Errorf("loudness: unknown LRA algorithm %q", s)
	}

	return a, nil
}

// LRAMeta describes how a loudness range was obtained.
type LRAMeta struct {
	Algorithm LRAAlgorithm `json:"algorithm"`
	// UsedCount is the number of short-term values in the percentile set.
	UsedCount int `json:"used_count"`
	// GatedCount is the number of finite values removed by gating.
	GatedCount int `json:"gated_count"`
	// AbsoluteThreshold and RelativeThreshold are -Inf when not applied.
	AbsoluteThreshold LUFS `json:"absolute_threshold"`
	RelativeThreshold LUFS `json:"relative_threshold"`
	// Low and High are the percentile values, -Inf with fewer than two values.
	Low  LUFS `json:"low"`
	High LUFS `json:"high"`
}

// LegacyLRA is the 10th to 95th percentile spread of every finite
// short-term value. It is 0 with fewer than two values.
func LegacyLRA(st []float64) (float64, LRAMeta) {
	meta := LRAMeta{
		Algorithm:         LRALegacy,
		AbsoluteThreshold: LUFS(math.Inf(-1)),
		RelativeThreshold: LUFS(math.Inf(-1)),
	}

	values := make([]float64, 0, len(st))
	for _, v := range st {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			values = append(values, v)
		}
	}

	return spread(values, meta)
}

// R128LRA applies the absolute gate and a relative gate LRARelativeThreshold
// below the energy mean of the absolute survivors, then takes the same
// percentile spread as LegacyLRA.
func R128LRA(st []float64) (float64, LRAMeta) {
	meta := LRAMeta{
		Algorithm:         LRAR128,
		AbsoluteThreshold: AbsoluteThreshold,
		RelativeThreshold: LUFS(math.Inf(-1)),
	}

	var (
		finite int
		energy float64
	)

	absGated := make([]float64, 0, len(st))

	for _, v := range st {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}

		finite++

		if v >= AbsoluteThreshold {
			absGated = append(absGated, v)
			energy += energyOf(v)
		}
	}

	if len(absGated) == 0 {
		meta.GatedCount = finite
		return spread(nil, meta)
	}

	rel := loudnessOf(energy/float64(len(absGated))) + LRARelativeThreshold
	meta.RelativeThreshold = LUFS(rel)

	values := absGated[:0]
	for _, v := range absGated {
		if v >= rel {
			values = append(values, v)
		}
	}

	meta.GatedCount = finite - len(values)

	return spread(values, meta)
}

// spread sorts values in place and fills the percentile fields of meta.
func spread(values []float64, meta LRAMeta) (float64, LRAMeta) {
	meta.UsedCount = len(values)
	meta.Low = LUFS(math.Inf(-1))
	meta.High = LUFS(math.Inf(-1))

	if len(values) < 2 {
		return 0, meta
	}

	slices.Sort(values)

	lo := values[percentileIndex(len(values), LRALowPercentile)]
	hi := values[percentileIndex(len(values), LRAHighPercentile)]
	meta.Low = LUFS(lo)
	meta.High = LUFS(hi)

	return hi - lo, meta
}

func percentileIndex(n int, p float64) int {
	return min(int(math.Floor(float64(n)*p)), n-1)
}
