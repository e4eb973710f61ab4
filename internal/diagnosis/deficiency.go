package diagnosis

import (
	"math"

	"fertilizer-advisor/internal/models"
	"fertilizer-advisor/internal/reference"
)

// criticalShare is the fraction of the target a shortfall must exceed to be
// graded critical.
const criticalShare = 0.5

// Calculator computes nutrient deficiencies against crop-adjusted targets
type Calculator struct {
	tables *reference.Tables
}

// NewCalculator creates a calculator over the given reference tables
func NewCalculator(tables *reference.Tables) *Calculator {
	return &Calculator{tables: tables}
}

// Target returns the growth-stage adjusted target level of n for a crop:
// optimal·w + requirement·(1−w), scaled by the crop's multiplier for n.
// Unknown crops contribute a requirement of zero.
func (c *Calculator) Target(n models.Nutrient, crop string, multipliers map[models.Nutrient]float64) (float64, bool) {
	optimal, ok := c.tables.Optimal[n]
	if !ok {
		return 0, false
	}

	w := c.tables.BlendWeight
	target := optimal*w + c.tables.CropRequirement(crop, n)*(1-w)

	if m, ok := multipliers[n]; ok {
		target *= m
	}
	return target, true
}

// ComputeDeficiencies returns the shortfall of every plant nutrient present in
// the sample. It does not modify its inputs.
func (c *Calculator) ComputeDeficiencies(sample models.SoilSample, crop string) models.Deficiencies {
	multipliers := c.tables.GrowthMultipliersFor(crop)
	out := make(models.Deficiencies)

	for _, n := range models.PlantNutrients {
		value, ok := sample.Value(n)
		if !ok {
			continue
		}
		target, ok := c.Target(n, crop, multipliers)
		if !ok {
			continue
		}

		amount := math.Max(0, target-value)
		out[n] = models.Deficiency{
			Nutrient: n,
			Target:   target,
			Amount:   amount,
			Severity: grade(amount, target),
		}
	}

	return out
}

func grade(amount, target float64) models.Severity {
	switch {
	case amount > target*criticalShare:
		return models.SeverityCritical
	case amount > 0:
		return models.SeverityModerate
	default:
		return models.SeverityOptimal
	}
}
