package loudness

import "math"

// Geometry holds the window sizes, in samples, for one sample rate.
type Geometry struct {
	SampleRate    int `json:"sample_rate"`
	BlockSize     int `json:"block_size"`
	HopSize       int `json:"hop_size"`
	ShortTermSize int `json:"short_term_size"`
}

// NewGeometry derives block, hop and short-term sizes from the sample rate.
// At 48 kHz that is 19200, 4800 and 144000 samples.
func NewGeometry(sampleRate int) Geometry {
	sr := float64(sampleRate)
	block := max(int(math.Round(BlockDuration*sr)), 1)

	return Geometry{
		SampleRate:    sampleRate,
		BlockSize:     block,
		HopSize:       max(int(math.Round(float64(block)*(1-IntegratedOverlap))), 1),
		ShortTermSize: max(int(math.Round(ShortTermDuration*sr)), 1),
	}
}

// NumBlocks returns how many full gating blocks fit in n samples.
func (g Geometry) NumBlocks(n int) int {
	return g.numWindows(n, g.BlockSize)
}

// NumShortTerm returns how many full short-term windows fit in n samples.
func (g Geometry) NumShortTerm(n int) int {
	return g.numWindows(n, g.ShortTermSize)
}

func (g Geometry) numWindows(n, size int) int {
	if n < size {
		return 0
	}

	return (n-size)/g.HopSize + 1
}
