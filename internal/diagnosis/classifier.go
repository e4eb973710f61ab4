// Package diagnosis turns raw soil readings into qualitative classifications
// and numeric nutrient deficiencies.
package diagnosis

import (
	"fertilizer-advisor/internal/models"
	"fertilizer-advisor/internal/reference"
)

// Classifier maps soil readings onto the band tables
type Classifier struct {
	bands map[models.Nutrient]reference.BandTable
}

// NewClassifier creates a classifier over the given reference tables
func NewClassifier(tables *reference.Tables) *Classifier {
	return &Classifier{bands: tables.Bands}
}

// Classify returns one classification per supplied parameter that has a band
// table. Parameters that are absent, or have no table, produce no entry.
func (c *Classifier) Classify(sample models.SoilSample) models.Classifications {
	out := make(models.Classifications)
	for _, n := range models.SoilParameters {
		v, ok := sample.Value(n)
		if !ok {
			continue
		}
		table, ok := c.bands[n]
		if !ok {
			continue
		}
		if cl, ok := table.Lookup(v); ok {
			out[n] = cl
		}
	}
	return out
}
