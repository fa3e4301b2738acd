package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

func decodeOgg(r io.Reader) ([][]float64, Info, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: decoding Ogg Vorbis: %w", ErrUnsupportedFormat, err)
	}

	info := Info{
		SampleRate: reader.SampleRate(),
		Channels:   reader.Channels(),
	}

	if err := checkChannels(info.Channels); err != nil {
		return nil, Info{}, err
	}

	var (
		data []float32
		buf  = make([]float32, 8192*info.Channels)
	)

	for {
		n, err := reader.Read(buf)
		data = append(data, buf[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, Info{}, fmt.Errorf("decode: reading Ogg Vorbis packets: %w", err)
		}
	}

	return deinterleave(data, info.Channels, 1), info, nil
}
