// Package weighting provides the K-weighting filter of ITU-R BS.1770-4.
//
// K-weighting is the cascade of two second-order sections:
//
//   - the pre-filter, a high shelf of about +4 dB above roughly 1.5 kHz that
//     models the acoustic effect of the head;
//   - the RLB filter, a high-pass around 38 Hz (revised low-frequency
//     B-curve).
//
// Coefficients are derived for the requested sample rate from the analog
// prototype of the standard using the bilinear transform with frequency
// pre-warping. At 48 kHz the derivation reproduces the normative table of
// BS.1770-4 Annex 1; other rates get their own coefficients rather than the
// 48 kHz table.
//
// A [K] filter owns its delay lines. Create one per channel per measurement.
package weighting
