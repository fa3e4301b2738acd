package decode

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVE format tags.
const (
	wavPCM   = 1
	wavFloat = 3
)

func decodeWAV(r io.ReadSeeker) ([][]float64, Info, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, Info{}, fmt.Errorf("%w: invalid WAV file", ErrUnsupportedFormat)
	}

	info := Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}

	if err := checkChannels(info.Channels); err != nil {
		return nil, Info{}, err
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode: reading WAV PCM data: %w", err)
	}

	switch dec.WavAudioFormat {
	case wavPCM:
		return pcmChannels(buf, info.BitDepth), info, nil
	case wavFloat:
		if info.BitDepth != 32 {
			return nil, Info{}, fmt.Errorf("%w: %d-bit float WAV", ErrUnsupportedFormat, info.BitDepth)
		}

		return floatChannels(buf), info, nil
	default:
		return nil, Info{}, fmt.Errorf("%w: WAV format tag %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
}

// pcmChannels normalizes integer PCM by 2^(bits-1). 8-bit WAV is unsigned.
func pcmChannels(buf *audio.IntBuffer, bits int) [][]float64 {
	n := buf.Format.NumChannels

	if bits == 8 {
		for i, v := range buf.Data {
			buf.Data[i] = v - 128
		}
	}

	return deinterleave(buf.Data, n, 1/math.Exp2(float64(bits-1)))
}

// floatChannels reinterprets 32-bit words as IEEE floats.
func floatChannels(buf *audio.IntBuffer) [][]float64 {
	data := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = math.Float32frombits(uint32(int32(v)))
	}

	return deinterleave(data, buf.Format.NumChannels, 1)
}
