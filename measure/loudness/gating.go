package loudness

import (
	"iter"
	"math"
)

// GatingStats describes the two gating passes of an integrated measurement.
type GatingStats struct {
	// TotalBlocks is the number of full gating blocks in the signal.
	TotalBlocks int `json:"total_blocks"`
	// AbsoluteGatedBlocks is the number of blocks at or above the absolute gate.
	AbsoluteGatedBlocks int `json:"absolute_gated_blocks"`
	// GatedBlocks is the number of blocks that passed both gates.
	GatedBlocks int `json:"gated_blocks"`
	// AbsoluteThreshold is the first-pass threshold in LUFS.
	AbsoluteThreshold LUFS `json:"absolute_threshold"`
	// RelativeThreshold is the second-pass threshold in LUFS, -Inf when no
	// block passed the absolute gate.
	RelativeThreshold LUFS `json:"relative_threshold"`
	// GatingEfficiency is GatedBlocks / TotalBlocks, 0 without blocks.
	GatingEfficiency float64 `json:"gating_efficiency"`
}

// Gate computes the integrated loudness of blocks with the BS.1770-4
// two-pass gate. Blocks below the absolute threshold are discarded; the
// relative threshold is the energy-mean loudness of the survivors plus
// RelativeThreshold; the result is the energy mean of blocks at or above
// both thresholds. It returns -Inf when no block survives.
//
// blocks is iterated twice.
func Gate(blocks iter.Seq[Block]) (float64, GatingStats) {
	stats := GatingStats{
		AbsoluteThreshold: AbsoluteThreshold,
		RelativeThreshold: LUFS(math.Inf(-1)),
	}

	var absSum float64

	for b := range blocks {
		stats.TotalBlocks++

		if b.Loudness >= AbsoluteThreshold {
			stats.AbsoluteGatedBlocks++
			absSum += b.Energy
		}
	}

	if stats.AbsoluteGatedBlocks == 0 {
		return math.Inf(-1), stats
	}

	relThreshold := loudnessOf(absSum/float64(stats.AbsoluteGatedBlocks)) + RelativeThreshold
	stats.RelativeThreshold = LUFS(relThreshold)

	var relSum float64

	for b := range blocks {
		if b.Loudness >= AbsoluteThreshold && b.Loudness >= relThreshold {
			stats.GatedBlocks++
			relSum += b.Energy
		}
	}

	stats.GatingEfficiency = float64(stats.GatedBlocks) / float64(stats.TotalBlocks)

	if stats.GatedBlocks == 0 {
		return math.Inf(-1), stats
	}

	return loudnessOf(relSum / float64(stats.GatedBlocks)), stats
}

// GateValues runs Gate over a slice of block loudness values.
func GateValues(loudness []float64) (float64, GatingStats) {
	return Gate(func(yield func(Block) bool) {
		for i, l := range loudness {
			if !yield(Block{Index: i, Energy: energyOf(l), Loudness: l}) {
				return
			}
		}
	})
}
