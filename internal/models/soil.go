package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// SoilSample holds one soil-test record keyed by canonical parameter code.
// A sample is immutable once built; accessors return copies.
type SoilSample struct {
	values map[Nutrient]float64
	keys   map[Nutrient]string // input key each value was read from
}

// NewSoilSample builds a sample from canonical codes. Readings must be finite
// and non-negative.
func NewSoilSample(values map[Nutrient]float64) (SoilSample, error) {
	sample := SoilSample{
		values: make(map[Nutrient]float64, len(values)),
		keys:   make(map[Nutrient]string, len(values)),
	}
	for _, n := range SoilParameters {
		v, ok := values[n]
		if !ok {
			continue
		}
		if err := checkReading(n, string(n), v); err != nil {
			return SoilSample{}, err
		}
		sample.values[n] = v
		sample.keys[n] = string(n)
	}
	return sample, nil
}

// ParseSoilSample converts a loosely typed record (decoded JSON or YAML) into a
// SoilSample. Keys are resolved through the alias table and unknown keys are
// ignored. A canonical key takes precedence over any alias of the same
// parameter. Values must already be numeric: strings are rejected, never
// coerced. Null values count as absent.
func ParseSoilSample(raw map[string]any) (SoilSample, error) {
	sample := SoilSample{
		values: make(map[Nutrient]float64),
		keys:   make(map[Nutrient]string),
	}

	// Sorted iteration keeps the reported error stable across runs
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		n, ok := ResolveParameter(key)
		if !ok || raw[key] == nil {
			continue
		}

		v, err := toFloat(n, key, raw[key])
		if err != nil {
			return SoilSample{}, err
		}
		if err := checkReading(n, key, v); err != nil {
			return SoilSample{}, err
		}

		prev, seen := sample.keys[n]
		if seen && prev == string(n) {
			continue
		}
		if seen && key != string(n) && prev < key {
			continue
		}
		sample.values[n] = v
		sample.keys[n] = key
	}

	return sample, nil
}

func toFloat(n Nutrient, key string, raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, newInvalidInput(n, key, raw, "must be a number")
		}
		return f, nil
	default:
		return 0, newInvalidInput(n, key, raw, "must be a number")
	}
}

func checkReading(n Nutrient, key string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return newInvalidInput(n, key, v, "must be a finite number")
	}
	if v < 0 {
		return newInvalidInput(n, key, v, "must not be negative")
	}
	return nil
}

// Value returns the reading for n and whether it was supplied
func (s SoilSample) Value(n Nutrient) (float64, bool) {
	v, ok := s.values[n]
	return v, ok
}

// Has reports whether n was supplied
func (s SoilSample) Has(n Nutrient) bool {
	_, ok := s.values[n]
	return ok
}

// Key returns the input key the reading for n was taken from
func (s SoilSample) Key(n Nutrient) string {
	return s.keys[n]
}

// Len returns the number of recognized parameters in the sample
func (s SoilSample) Len() int {
	return len(s.values)
}

// Values returns a copy of the readings keyed by canonical code
func (s SoilSample) Values() map[Nutrient]float64 {
	out := make(map[Nutrient]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// InvalidInputError reports a soil reading that cannot be used as a number.
// Field carries the canonical parameter code.
type InvalidInputError struct {
	Field   string
	Value   string
	Message string
}

func newInvalidInput(n Nutrient, key string, raw any, reason string) *InvalidInputError {
	msg := fmt.Sprintf("invalid soil value for %s: %s", n, reason)
	if key != string(n) {
		msg = fmt.Sprintf("invalid soil value for %s (supplied as %q): %s", n, key, reason)
	}
	return &InvalidInputError{
		Field:   string(n),
		Value:   fmt.Sprintf("%v", raw),
		Message: msg,
	}
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// IsTransient returns false as malformed input never succeeds on retry
func (e *InvalidInputError) IsTransient() bool {
	return false
}
