package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

// TestParseSoilSample tests alias resolution and numeric validation
func TestParseSoilSample(t *testing.T) {
	tests := []struct {
		name        string
		raw         map[string]any
		wantErr     bool
		wantField   string
		checkValues func(*testing.T, SoilSample)
	}{
		{
			name: "canonical keys",
			raw: map[string]any{
				"pH": 7.0, "EC": 0.5, "OC": 0.9, "N": 500, "P": 30, "K": 300,
				"Zn": 2, "Cu": 0.5, "Fe": 10, "Mn": 20, "S": 30,
			},
			checkValues: func(t *testing.T, s SoilSample) {
				if s.Len() != 11 {
					t.Errorf("Len() = %d, want 11", s.Len())
				}
				if v, _ := s.Value(N); v != 500 {
					t.Errorf("N = %v, want 500", v)
				}
				if s.Key(PH) != "pH" {
					t.Errorf("Key(pH) = %q, want %q", s.Key(PH), "pH")
				}
			},
		},
		{
			name: "input aliases resolve to canonical codes",
			raw:  map[string]any{"av_p": 12.5, "av_k": 140, "zinc": 0.4, "cu": 0.1, "iron": 3, "mn": 7},
			checkValues: func(t *testing.T, s SoilSample) {
				want := map[Nutrient]float64{P: 12.5, K: 140, Zn: 0.4, Cu: 0.1, Fe: 3, Mn: 7}
				for n, w := range want {
					if v, ok := s.Value(n); !ok || v != w {
						t.Errorf("%s = %v (present %v), want %v", n, v, ok, w)
					}
				}
				if s.Key(P) != "av_p" {
					t.Errorf("Key(P) = %q, want av_p", s.Key(P))
				}
			},
		},
		{
			name: "lab report field names",
			raw:  map[string]any{"ph": 6.4, "organic_carbon": 0.45, "nitrogen": 210, "sulphur": 9},
			checkValues: func(t *testing.T, s SoilSample) {
				if v, _ := s.Value(PH); v != 6.4 {
					t.Errorf("pH = %v, want 6.4", v)
				}
				if v, _ := s.Value(OC); v != 0.45 {
					t.Errorf("OC = %v, want 0.45", v)
				}
				if v, _ := s.Value(S); v != 9 {
					t.Errorf("S = %v, want 9", v)
				}
			},
		},
		{
			name: "canonical key wins over alias",
			raw:  map[string]any{"P": 20.0, "av_p": 5.0},
			checkValues: func(t *testing.T, s SoilSample) {
				if v, _ := s.Value(P); v != 20 {
					t.Errorf("P = %v, want 20", v)
				}
			},
		},
		{
			name: "unknown keys and nulls are ignored",
			raw:  map[string]any{"district": "Hisar", "N": nil, "K": 150},
			checkValues: func(t *testing.T, s SoilSample) {
				if s.Has(N) {
					t.Error("N should be absent when null")
				}
				if s.Len() != 1 {
					t.Errorf("Len() = %d, want 1", s.Len())
				}
			},
		},
		{
			name: "json.Number accepted",
			raw:  map[string]any{"N": json.Number("312.5")},
			checkValues: func(t *testing.T, s SoilSample) {
				if v, _ := s.Value(N); v != 312.5 {
					t.Errorf("N = %v, want 312.5", v)
				}
			},
		},
		{
			name:      "non-numeric string pH",
			raw:       map[string]any{"pH": "acidic", "N": 250},
			wantErr:   true,
			wantField: "pH",
		},
		{
			name:      "numeric string is not coerced",
			raw:       map[string]any{"pH": "6.5"},
			wantErr:   true,
			wantField: "pH",
		},
		{
			name:      "alias reports canonical field",
			raw:       map[string]any{"zinc": true},
			wantErr:   true,
			wantField: "Zn",
		},
		{
			name:      "NaN rejected",
			raw:       map[string]any{"EC": math.NaN()},
			wantErr:   true,
			wantField: "EC",
		},
		{
			name:      "negative reading rejected",
			raw:       map[string]any{"K": -4.0},
			wantErr:   true,
			wantField: "K",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := ParseSoilSample(tt.raw)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSoilSample() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				var invalid *InvalidInputError
				if !errors.As(err, &invalid) {
					t.Fatalf("error %T is not *InvalidInputError", err)
				}
				if invalid.Field != tt.wantField {
					t.Errorf("Field = %q, want %q", invalid.Field, tt.wantField)
				}
				return
			}

			if tt.checkValues != nil {
				tt.checkValues(t, sample)
			}
		})
	}
}

func TestSoilSampleIsImmutable(t *testing.T) {
	sample, err := NewSoilSample(map[Nutrient]float64{N: 250})
	if err != nil {
		t.Fatalf("NewSoilSample() error = %v", err)
	}

	values := sample.Values()
	values[N] = 0

	if v, _ := sample.Value(N); v != 250 {
		t.Errorf("N = %v after mutating copy, want 250", v)
	}
}

func TestResolveParameterRoundTrip(t *testing.T) {
	for _, n := range SoilParameters {
		got, ok := ResolveParameter(string(n))
		if !ok || got != n {
			t.Errorf("ResolveParameter(%q) = %q, %v", n, got, ok)
		}
		for _, alias := range AliasesOf(n) {
			got, ok := ResolveParameter(alias)
			if !ok || got != n {
				t.Errorf("ResolveParameter(%q) = %q, want %q", alias, got, n)
			}
		}
	}

	if _, ok := ResolveParameter("boron"); ok {
		t.Error("boron should not resolve")
	}
}

// TestInvalidInputError tests error handling
func TestInvalidInputError(t *testing.T) {
	err := &InvalidInputError{
		Field:   "pH",
		Value:   "acidic",
		Message: "invalid soil value for pH: must be a number",
	}

	if err.Error() != "invalid soil value for pH: must be a number" {
		t.Errorf("Error() = %v", err.Error())
	}

	if err.IsTransient() {
		t.Error("InvalidInputError should not be transient")
	}
}

func TestSeverityRank(t *testing.T) {
	if SeverityIdeal.Rank() != SeverityOptimal.Rank() {
		t.Error("ideal and optimal should share a rank")
	}
	if !(SeverityOptimal.Rank() < SeverityModerate.Rank() && SeverityModerate.Rank() < SeverityCritical.Rank()) {
		t.Error("severity ranks out of order")
	}
}
