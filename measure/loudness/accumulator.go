package loudness

import (
	"fmt"
	"iter"

	"github.com/cwbudde/algo-vecmath"
)

// Block is one gating block or measurement window.
type Block struct {
	// Index is the position in hops from the start of the signal.
	Index int
	// Start is the first sample of the window.
	Start int
	// MeanSquare holds the per-channel mean-square energy.
	MeanSquare []float64
	// Energy is the channel-weighted sum z of the mean squares.
	Energy float64
	// Loudness is -0.691 + 10*log10(Energy), or -Inf when Energy is zero.
	Loudness float64
}

// Accumulator measures mean-square energy over windows of K-weighted
// channels.
//
// Squared samples are summed once per hop-sized chunk. A window's sum is
// then the sum of the whole chunks it covers plus its unaligned edges,
// all of which are sums of non-negative terms. A window has zero energy
// exactly when every sample in it is zero.
type Accumulator struct {
	geom    Geometry
	weights []float64
	squares [][]float64
	chunks  [][]float64
	n       int
}

// NewAccumulator prepares an accumulator over the given weighted channels.
// weights must have one entry per channel and all channels the same length.
// The channel slices are not retained.
func NewAccumulator(geom Geometry, weights []float64, channels ...[]float64) (*Accumulator, error) {
	if len(weights) != len(channels) {
		return nil, fmt.Errorf("loudness: %d weights for %d channels", len(weights), len(channels))
	}

	n := 0
	if len(channels) > 0 {
		n = len(channels[0])
	}

	a := &Accumulator{
		geom:    geom,
		weights: append([]float64(nil), weights...),
		squares: make([][]float64, len(channels)),
		chunks:  make([][]float64, len(channels)),
		n:       n,
	}

	hop := geom.HopSize

	for c, ch := range channels {
		if len(ch) != n {
			return nil, fmt.Errorf("%w: channel %d has %d samples, want %d", ErrChannelMismatch, c, len(ch), n)
		}

		sq := make([]float64, n)
		vecmath.MulBlock(sq, ch, ch)

		chunks := make([]float64, n/hop)
		for i := range chunks {
			chunks[i] = sum(sq[i*hop : (i+1)*hop])
		}

		a.squares[c] = sq
		a.chunks[c] = chunks
	}

	return a, nil
}

// Geometry returns the window sizes used by the accumulator.
func (a *Accumulator) Geometry() Geometry { return a.geom }

// Samples returns the number of samples per channel.
func (a *Accumulator) Samples() int { return a.n }

// Len returns the number of full gating blocks.
func (a *Accumulator) Len() int {
	return a.geom.NumBlocks(a.n)
}

// Block returns gating block j. It panics if j is out of range.
func (a *Accumulator) Block(j int) Block {
	if j < 0 || j >= a.Len() {
		panic(fmt.Sprintf("loudness: block index %d out of range [0, %d)", j, a.Len()))
	}

	return a.Window(j*a.geom.HopSize, a.geom.BlockSize)
}

// All yields every gating block in order. The sequence may be iterated
// any number of times.
func (a *Accumulator) All() iter.Seq[Block] {
	return a.Windows(a.geom.BlockSize)
}

// Windows yields every full window of size samples at hop cadence.
func (a *Accumulator) Windows(size int) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		count := a.geom.numWindows(a.n, size)
		for j := range count {
			if !yield(a.Window(j*a.geom.HopSize, size)) {
				return
			}
		}
	}
}

// Window measures size samples starting at start. The window must lie
// inside the signal and size must be positive.
func (a *Accumulator) Window(start, size int) Block {
	if start < 0 || size <= 0 || start+size > a.n {
		panic(fmt.Sprintf("loudness: window [%d, %d) outside signal of %d samples", start, start+size, a.n))
	}

	b := Block{
		Index:      start / a.geom.HopSize,
		Start:      start,
		MeanSquare: make([]float64, len(a.squares)),
	}

	for c := range a.squares {
		ms := a.rangeSum(c, start, start+size) / float64(size)
		b.MeanSquare[c] = ms
		b.Energy += a.weights[c] * ms
	}

	b.Loudness = loudnessOf(b.Energy)

	return b
}

// rangeSum returns the sum of squares of channel c over [lo, hi).
func (a *Accumulator) rangeSum(c, lo, hi int) float64 {
	hop := a.geom.HopSize
	sq := a.squares[c]

	first := (lo + hop - 1) / hop // first whole chunk
	last := hi / hop              // one past the last whole chunk

	if last > len(a.chunks[c]) {
		last = len(a.chunks[c])
	}

	if first >= last {
		return sum(sq[lo:hi])
	}

	s := sum(sq[lo : first*hop])
	s += sum(a.chunks[c][first:last])
	s += sum(sq[last*hop : hi])

	return s
}

func sum(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}

	return s
}
