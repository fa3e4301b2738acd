// Package loudness implements ITU-R BS.1770-4 loudness measurement with the
// EBU R128 reporting conventions.
//
// A measurement runs over a complete stereo [AudioBuffer]:
//
//  1. each channel is K-weighted with its own filter instance;
//  2. an [Accumulator] turns the weighted signal into 400 ms blocks with 75%
//     overlap and exposes any window of whole hops as a mean-square energy;
//  3. [Gate] applies the absolute (-70 LUFS) and relative (-10 LU) gates and
//     yields the integrated loudness;
//  4. momentary (400 ms) and short-term (3 s) trajectories are summarized
//     into representative values;
//  5. [LegacyLRA] and [R128LRA] derive the loudness range from the
//     short-term trajectory.
//
// Only windows that lie fully inside the signal are measured. A signal
// shorter than one block therefore has no blocks, and a signal shorter than
// three seconds has no short-term values. Both cases are reported as -Inf
// and zero counts rather than errors, as is digital silence.
//
// [Meter] holds only configuration. Every call to [Meter.Measure] allocates
// its own filter state and accumulators, so one Meter may be shared by any
// number of goroutines.
package loudness
