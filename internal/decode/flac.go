package decode

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/mewkiz/flac"
)

func decodeFLAC(r io.Reader) ([][]float64, Info, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: decoding FLAC: %w", ErrUnsupportedFormat, err)
	}
	defer stream.Close()

	si := stream.Info
	info := Info{
		SampleRate: int(si.SampleRate),
		Channels:   int(si.NChannels),
		BitDepth:   int(si.BitsPerSample),
	}

	if err := checkChannels(info.Channels); err != nil {
		return nil, Info{}, err
	}

	scale := 1 / math.Exp2(float64(info.BitDepth-1))

	out := make([][]float64, info.Channels)
	for c := range out {
		out[c] = make([]float64, 0, si.NSamples)
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, Info{}, fmt.Errorf("decode: parsing FLAC frame: %w", err)
		}

		for c, sub := range frame.Subframes[:info.Channels] {
			for _, s := range sub.Samples {
				out[c] = append(out[c], float64(s)*scale)
			}
		}
	}

	return out, info, nil
}
