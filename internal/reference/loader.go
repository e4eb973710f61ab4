package reference

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fertilizer-advisor/internal/models"
)

// Overrides is the on-disk shape of a reference-table file. Every section is
// optional; entries replace the compiled-in entry of the same key.
type Overrides struct {
	BlendWeight *float64                    `yaml:"blend_weight"`
	Optimal     map[models.Nutrient]float64 `yaml:"optimal"`
	Crops       map[string]Crop             `yaml:"crops"`
	CropAliases map[string]string           `yaml:"crop_aliases"`
	Fertilizers map[string]Fertilizer       `yaml:"fertilizers"`
	CropNotes   map[string]string           `yaml:"crop_notes"`
}

// LoadFile reads a YAML reference file and applies it over the defaults
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference tables: %w", err)
	}
	return Load(data)
}

// Load applies YAML overrides over the compiled-in tables and validates the
// result.
func Load(data []byte) (*Tables, error) {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse reference tables: %w", err)
	}

	t := Default()
	t.Apply(o)

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reference tables: %w", err)
	}
	return t, nil
}

// Apply merges overrides into t
func (t *Tables) Apply(o Overrides) {
	if o.BlendWeight != nil {
		t.BlendWeight = *o.BlendWeight
	}
	for n, v := range o.Optimal {
		t.Optimal[n] = v
	}
	for name, c := range o.Crops {
		key := NormalizeCropName(name)
		existing, ok := t.Crops[key]
		if !ok {
			existing = Crop{Name: key, Category: CategoryOther}
		}
		if c.Category != "" {
			existing.Category = Category(NormalizeCropName(string(c.Category)))
		}
		if c.Requirements != nil {
			existing.Requirements = c.Requirements
		}
		t.Crops[key] = existing
	}
	for alias, target := range o.CropAliases {
		t.CropAliases[NormalizeCropName(alias)] = NormalizeCropName(target)
	}
	for name, f := range o.Fertilizers {
		existing, ok := t.Fertilizers[name]
		if !ok {
			existing = Fertilizer{Name: name}
		}
		if f.Content != nil {
			existing.Content = f.Content
		}
		if f.BagSizeKg != 0 {
			existing.BagSizeKg = f.BagSizeKg
		}
		t.Fertilizers[name] = existing
	}
	for crop, note := range o.CropNotes {
		t.CropNotes[NormalizeCropName(crop)] = note
	}
}

// Validate checks the tables for values the engine cannot use
func (t *Tables) Validate() error {
	var errs []error

	if t.BlendWeight < 0 || t.BlendWeight > 1 {
		errs = append(errs, fmt.Errorf("blend_weight %v outside [0,1]", t.BlendWeight))
	}
	for n, v := range t.Optimal {
		if v < 0 {
			errs = append(errs, fmt.Errorf("optimal %s is negative", n))
		}
	}
	for name, c := range t.Crops {
		if !c.Category.Valid() {
			errs = append(errs, fmt.Errorf("crop %s: unknown category %q", name, c.Category))
		}
		for n, v := range c.Requirements {
			if v < 0 {
				errs = append(errs, fmt.Errorf("crop %s: requirement %s is negative", name, n))
			}
		}
	}
	for alias, target := range t.CropAliases {
		if _, ok := t.Crops[target]; !ok {
			errs = append(errs, fmt.Errorf("crop alias %s points to unknown crop %s", alias, target))
		}
	}
	for name, f := range t.Fertilizers {
		if f.BagSizeKg < 0 {
			errs = append(errs, fmt.Errorf("fertilizer %s: bag size is negative", name))
		}
		for n, pct := range f.Content {
			if pct < 0 || pct > 100 {
				errs = append(errs, fmt.Errorf("fertilizer %s: %s content %v outside [0,100]", name, n, pct))
			}
		}
	}

	return errors.Join(errs...)
}
