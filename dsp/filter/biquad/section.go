package biquad

// Coefficients holds the transfer function of a single second-order section:
//
//	H(z) = (B[0] + B[1]z^-1 + B[2]z^-2) / (A[0] + A[1]z^-1 + A[2]z^-2)
//
// Sections expect A[0] == 1; use [Coefficients.Normalize] otherwise.
type Coefficients struct {
	B [3]float64 // feedforward (numerator)
	A [3]float64 // feedback (denominator)
}

// Normalize returns a copy scaled so that A[0] equals 1.
// A zero A[0] yields the coefficients unchanged.
func (c Coefficients) Normalize() Coefficients {
	a0 := c.A[0]
	if a0 == 0 || a0 == 1 {
		return c
	}

	out := c
	for i := range 3 {
		out.B[i] /= a0
		out.A[i] /= a0
	}

	out.A[0] = 1

	return out
}

// State is the Direct Form I delay line: two previous inputs and two
// previous outputs.
type State struct {
	X1, X2 float64
	Y1, Y2 float64
}

// Reset zeroes the delay line.
func (s *State) Reset() {
	*s = State{}
}

// Section is a single biquad filter with coefficients and its own state.
type Section struct {
	Coefficients
	State
}

// NewSection returns a Section with normalized coefficients and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c.Normalize()}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B[0]*x + s.B[1]*s.X1 + s.B[2]*s.X2 - s.A[1]*s.Y1 - s.A[2]*s.Y2

	s.X2, s.X1 = s.X1, x
	s.Y2, s.Y1 = s.Y1, y

	return y
}

// ProcessBlock filters buf in place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	s.ProcessBlockTo(buf, buf)
}

// ProcessBlockTo filters src into dst. dst must be at least as long as src;
// dst and src may alias. Zero-alloc.
func (s *Section) ProcessBlockTo(dst, src []float64) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1] // bounds check hint

	b0, b1, b2 := s.B[0], s.B[1], s.B[2]
	a1, a2 := s.A[1], s.A[2]
	x1, x2, y1, y2 := s.X1, s.X2, s.Y1, s.Y2

	for i, x := range src {
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		dst[i] = y
	}

	s.X1, s.X2, s.Y1, s.Y2 = x1, x2, y1, y2
}
