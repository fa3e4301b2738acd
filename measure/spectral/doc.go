// Package spectral measures how the energy of a stereo signal is spread
// over frequency.
//
// The signal is cut into Hann-windowed frames of FrameSize samples with a
// hop of HopSize. Each frame is transformed with an FFT and the two
// channels are combined into one RMS power spectrum. Band energies are
// summed over all frames with usable energy and reported as shares of the
// total. Shape descriptors such as centroid, rolloff and flatness are
// computed per frame and reported as medians.
package spectral
