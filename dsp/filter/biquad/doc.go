// Package biquad provides the second-order IIR runtime used by the loudness
// filters.
//
// A [Section] pairs transfer-function [Coefficients] with an explicit [State]
// holding the last two inputs and the last two outputs (Direct Form I). The
// state is a plain value: a section is owned by exactly one channel of one
// measurement, so sections are never shared between goroutines.
//
// Coefficient design lives in dsp/filter/weighting.
package biquad
