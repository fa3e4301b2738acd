package spectral

import "math"

// Band is a named frequency range [LowHz, HighHz).
type Band struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// Bands are the seven ranges energy is split into.
var Bands = []Band{
	{Name: "sub", LowHz: 20, HighHz: 60},
	{Name: "bass", LowHz: 60, HighHz: 150},
	{Name: "low_mid", LowHz: 150, HighHz: 500},
	{Name: "mid", LowHz: 500, HighHz: 2000},
	{Name: "high_mid", LowHz: 2000, HighHz: 5000},
	{Name: "presence", LowHz: 5000, HighHz: 10000},
	{Name: "air", LowHz: 10000, HighHz: 20000},
}

// binRange returns the half-open bin interval whose centre frequencies lie
// in [b.LowHz, b.HighHz), limited to binCount bins of binHz each.
func (b Band) binRange(binHz float64, binCount int) (lo, hi int) {
	lo = int(math.Ceil(b.LowHz / binHz))
	hi = int(math.Ceil(b.HighHz / binHz))

	lo = min(max(lo, 0), binCount)
	hi = min(max(hi, lo), binCount)

	return lo, hi
}
