package testutil

import (
	"math"
	"os"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV encodes equal-length channels as integer PCM at the given bit
// depth. Samples are clamped to [-1, 1].
func WriteWAV(t *testing.T, path string, sampleRate, bitDepth int, channels ...[]float64) {
	t.Helper()

	if len(channels) == 0 {
		t.Fatal("WriteWAV: no channels")
	}

	frames := len(channels[0])
	full := math.Exp2(float64(bitDepth-1)) - 1
	data := make([]int, 0, frames*len(channels))

	for i := range frames {
		for _, ch := range channels {
			v := math.Max(-1, math.Min(1, ch[i]))
			data = append(data, int(math.Round(v*full)))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, len(channels), 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: len(channels), SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
}
