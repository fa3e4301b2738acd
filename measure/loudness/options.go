package loudness

import (
	"log/slog"
	"math"
)

// MeterConfig defines configuration for the loudness meter.
type MeterConfig struct {
	// LRAAlgorithm selects the variant reported as Result.LRA.
	LRAAlgorithm LRAAlgorithm
	// ChannelWeights are the BS.1770 channel gains G_i for left and right.
	ChannelWeights [2]float64
	// Logger receives Debug-level measurement traces.
	Logger *slog.Logger
}

// MeterOption mutates a MeterConfig.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns R128 LRA, unit stereo weights and a discarding
// logger.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{
		LRAAlgorithm:   LRAR128,
		ChannelWeights: [2]float64{1, 1},
		Logger:         slog.New(slog.DiscardHandler),
	}
}

// WithLRAAlgorithm selects the loudness range variant. Unknown values are
// ignored.
func WithLRAAlgorithm(algo LRAAlgorithm) MeterOption {
	return func(cfg *MeterConfig) {
		if algo.Valid() {
			cfg.LRAAlgorithm = algo
		}
	}
}

// WithChannelWeights sets the left and right channel gains. Negative,
// non-finite or all-zero weights are ignored.
func WithChannelWeights(left, right float64) MeterOption {
	return func(cfg *MeterConfig) {
		if !validWeight(left) || !validWeight(right) || left+right == 0 {
			return
		}

		cfg.ChannelWeights = [2]float64{left, right}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) MeterOption {
	return func(cfg *MeterConfig) {
		if logger != nil {
			cfg.Logger = logger
		}
	}
}

// ApplyMeterOptions applies zero or more options to the default config.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 0)
}
