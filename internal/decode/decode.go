// Package decode reads audio files into stereo buffers for measurement.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/soundyai/loudness/measure/loudness"
)

// Format identifies a container/codec.
type Format string

// Supported formats.
const (
	WAV  Format = "wav"
	FLAC Format = "flac"
	MP3  Format = "mp3"
	Ogg  Format = "ogg"
)

var (
	// ErrUnsupportedFormat is returned for files no decoder understands.
	ErrUnsupportedFormat = errors.New("decode: unsupported format")
	// ErrUnsupportedChannels is returned for sources with more than two
	// channels.
	ErrUnsupportedChannels = errors.New("decode: unsupported channel count")
)

// Info describes a decoded source.
type Info struct {
	Format     Format `json:"format"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bit_depth,omitempty"`
	Frames     int    `json:"frames"`

	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}

// Duration returns the source length in seconds.
func (i Info) Duration() float64 {
	if i.SampleRate <= 0 {
		return 0
	}

	return float64(i.Frames) / float64(i.SampleRate)
}

var extensions = map[string]Format{
	".wav":  WAV,
	".wave": WAV,
	".flac": FLAC,
	".mp3":  MP3,
	".ogg":  Ogg,
	".oga":  Ogg,
}

// FormatFromPath maps a file extension to a Format.
func FormatFromPath(path string) (Format, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// flacMarker opens every FLAC stream.
var flacMarker = []byte("fLaC")

// sniffLimit is how much of a file Open reads to identify it.
const sniffLimit = 3072

// Sniff identifies the format from the leading bytes of a file.
func Sniff(header []byte) (Format, error) {
	f, err := fromMIME(mimetype.Detect(header))
	if err != nil && bytes.HasPrefix(header, flacMarker) {
		// mimetype only matches FLAC whose first metadata block is a
		// non-final STREAMINFO.
		return FLAC, nil
	}

	return f, err
}

func fromMIME(m *mimetype.MIME) (Format, error) {
	for ; m != nil; m = m.Parent() {
		switch {
		case m.Is("audio/wav"):
			return WAV, nil
		case m.Is("audio/flac"):
			return FLAC, nil
		case m.Is("audio/mpeg"):
			return MP3, nil
		case m.Is("audio/ogg"), m.Is("application/ogg"):
			return Ogg, nil
		}
	}

	return "", ErrUnsupportedFormat
}

// Open decodes the file at path. The format comes from the extension, or
// from the file contents when the extension is unknown. MP3 files also
// get their ID3v2 title, artist and album.
func Open(path string) (loudness.AudioBuffer, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return loudness.AudioBuffer{}, Info{}, fmt.Errorf("decode: %w", err)
	}
	defer f.Close()

	format, ok := FormatFromPath(path)
	if !ok {
		if format, err = sniffFile(f); err != nil {
			return loudness.AudioBuffer{}, Info{}, fmt.Errorf("%w: %s", err, filepath.Base(path))
		}
	}

	buf, info, err := Decode(f, format)
	if err != nil {
		return loudness.AudioBuffer{}, Info{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	if format == MP3 {
		info.Title, info.Artist, info.Album = readTags(path)
	}

	return buf, info, nil
}

// sniffFile identifies f from its header and rewinds it.
func sniffFile(f io.ReadSeeker) (Format, error) {
	header := make([]byte, sniffLimit)

	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("decode: %w", err)
	}

	format, err := Sniff(header[:n])
	if err != nil {
		return "", err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	return format, nil
}

// Decode reads a complete stream of the given format.
func Decode(r io.ReadSeeker, format Format) (loudness.AudioBuffer, Info, error) {
	var (
		ch   [][]float64
		info Info
		err  error
	)

	switch format {
	case WAV:
		ch, info, err = decodeWAV(r)
	case FLAC:
		ch, info, err = decodeFLAC(r)
	case MP3:
		ch, info, err = decodeMP3(r)
	case Ogg:
		ch, info, err = decodeOgg(r)
	default:
		return loudness.AudioBuffer{}, Info{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err != nil {
		return loudness.AudioBuffer{}, Info{}, err
	}

	info.Format = format

	buf, err := toStereo(ch, info.SampleRate)
	if err != nil {
		return loudness.AudioBuffer{}, Info{}, err
	}

	info.Frames = buf.Frames()

	return buf, info, nil
}

// toStereo duplicates mono and rejects more than two channels.
func toStereo(ch [][]float64, sampleRate int) (loudness.AudioBuffer, error) {
	switch len(ch) {
	case 1:
		return loudness.NewMonoBuffer(ch[0], sampleRate), nil
	case 2:
		return loudness.AudioBuffer{Left: ch[0], Right: ch[1], SampleRate: sampleRate}, nil
	default:
		return loudness.AudioBuffer{}, fmt.Errorf("%w: %d", ErrUnsupportedChannels, len(ch))
	}
}

// deinterleave splits frames of n channels, scaling each sample.
func deinterleave[T int | int16 | float32](data []T, n int, scale float64) [][]float64 {
	frames := len(data) / n
	out := make([][]float64, n)

	for c := range out {
		out[c] = make([]float64, frames)
	}

	for i := range frames {
		for c := range n {
			out[c][i] = float64(data[i*n+c]) * scale
		}
	}

	return out
}

func checkChannels(n int) error {
	if n < 1 || n > 2 {
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, n)
	}

	return nil
}
