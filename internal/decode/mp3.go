package decode

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	mp3Channels = 2
	mp3BitDepth = 16
)

func decodeMP3(r io.Reader) ([][]float64, Info, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: decoding MP3: %w", ErrUnsupportedFormat, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode: reading MP3 frames: %w", err)
	}

	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}

	info := Info{
		SampleRate: dec.SampleRate(),
		Channels:   mp3Channels,
		BitDepth:   mp3BitDepth,
	}

	return deinterleave(samples, mp3Channels, 1.0/32768), info, nil
}

// readTags returns the ID3v2 title, artist and album, or empty strings.
func readTags(path string) (title, artist, album string) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return "", "", ""
	}
	defer tag.Close()

	return strings.TrimSpace(tag.Title()), strings.TrimSpace(tag.Artist()), strings.TrimSpace(tag.Album())
}
