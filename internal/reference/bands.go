package reference

import (
	"math"

	"fertilizer-advisor/internal/models"
)

// Band is one numeric range of a band table
type Band struct {
	Lower          float64
	Upper          float64
	LowerInclusive bool
	UpperInclusive bool
	Category       string
	Severity       models.Severity
}

// Contains reports whether v falls inside the band
func (b Band) Contains(v float64) bool {
	if v < b.Lower || (v == b.Lower && !b.LowerInclusive) {
		return false
	}
	if v > b.Upper || (v == b.Upper && !b.UpperInclusive) {
		return false
	}
	return true
}

// BandTable is an ordered set of non-overlapping bands
type BandTable []Band

// Lookup returns the classification of the first band containing v
func (t BandTable) Lookup(v float64) (models.Classification, bool) {
	for _, b := range t {
		if b.Contains(v) {
			return models.Classification{Category: b.Category, Severity: b.Severity}, true
		}
	}
	return models.Classification{}, false
}

var inf = math.Inf(1)

// halfOpen builds a band [lower, upper)
func halfOpen(lower, upper float64, category string, severity models.Severity) Band {
	return Band{Lower: lower, Upper: upper, LowerInclusive: true, Category: category, Severity: severity}
}

// leftOpen builds a band (lower, upper]
func leftOpen(lower, upper float64, category string, severity models.Severity) Band {
	return Band{Lower: lower, Upper: upper, UpperInclusive: true, Category: category, Severity: severity}
}

// threeTier builds the Low/Medium/High table used for plant nutrients.
// Severity follows the category: Low is critical, Medium moderate, High optimal.
func threeTier(medium, high float64) BandTable {
	return BandTable{
		halfOpen(0, medium, "Low", models.SeverityCritical),
		halfOpen(medium, high, "Medium", models.SeverityModerate),
		halfOpen(high, inf, "High", models.SeverityOptimal),
	}
}

func defaultBands() map[models.Nutrient]BandTable {
	return map[models.Nutrient]BandTable{
		models.PH: {
			halfOpen(-inf, 4.0, "Extremely acidic", models.SeverityCritical),
			halfOpen(4.0, 5.5, "Strongly acidic", models.SeverityCritical),
			halfOpen(5.5, 6.0, "Medium acidic", models.SeverityModerate),
			halfOpen(6.0, 7.0, "Slightly acidic", models.SeverityOptimal),
			{Lower: 7.0, Upper: 7.0, LowerInclusive: true, UpperInclusive: true, Category: "Neutral", Severity: models.SeverityIdeal},
			leftOpen(7.0, 8.5, "Slightly saline", models.SeverityModerate),
			leftOpen(8.5, 9.3, "Tending to become alkaline", models.SeverityCritical),
			{Lower: 9.3, Upper: inf, UpperInclusive: true, Category: "Alkaline", Severity: models.SeverityCritical},
		},
		models.EC: {
			halfOpen(-inf, 1.0, "Normal", models.SeverityOptimal),
			halfOpen(1.0, 2.0, "Critical for Germination", models.SeverityModerate),
			halfOpen(2.0, 3.0, "Critical for growth", models.SeverityCritical),
			{Lower: 3.0, Upper: inf, LowerInclusive: true, UpperInclusive: true, Category: "Injurious", Severity: models.SeverityCritical},
		},
		models.OC: {
			halfOpen(-inf, 0.5, "Low", models.SeverityCritical),
			halfOpen(0.5, 0.8, "Medium", models.SeverityModerate),
			{Lower: 0.8, Upper: inf, LowerInclusive: true, UpperInclusive: true, Category: "High", Severity: models.SeverityOptimal},
		},
		models.N:  threeTier(240, 480),
		models.P:  threeTier(10, 22.5),
		models.K:  threeTier(120, 280),
		models.Zn: threeTier(0.6, 1.2),
		models.Fe: threeTier(4, 8),
		models.Cu: threeTier(0.2, 0.4),
		models.S:  threeTier(10, 22.5),
		models.Mn: threeTier(5, 15),
	}
}
