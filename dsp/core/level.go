package core

import (
	"bytes"
	"encoding/json"
	"math"
)

// Level is a value in dB. JSON has no infinities, so a non-finite Level
// encodes as null and null decodes as -Inf (silence).
type Level float64

// IsSilent reports whether l is -Inf.
func (l Level) IsSilent() bool {
	return math.IsInf(float64(l), -1)
}

// MarshalJSON implements json.Marshaler.
func (l Level) MarshalJSON() ([]byte, error) {
	f := float64(l)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}

	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Level) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = Level(math.Inf(-1))
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	*l = Level(f)

	return nil
}

// Gain is a correction in dB. It is unbounded (+Inf) when no finite gain
// reaches the target, for example when the signal is silent. Non-finite
// values encode as null and null decodes as +Inf.
type Gain float64

// IsUnbounded reports whether g is +Inf.
func (g Gain) IsUnbounded() bool {
	return math.IsInf(float64(g), 1)
}

// MarshalJSON implements json.Marshaler.
func (g Gain) MarshalJSON() ([]byte, error) {
	return Level(g).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Gain) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*g = Gain(math.Inf(1))
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	*g = Gain(f)

	return nil
}
