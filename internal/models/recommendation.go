package models

// Classification is the qualitative reading of one soil parameter
type Classification struct {
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
}

// Classifications maps each classified parameter to its reading
type Classifications map[Nutrient]Classification

// Severity returns the severity for n, or "" when n was not classified
func (c Classifications) Severity(n Nutrient) Severity {
	if cl, ok := c[n]; ok {
		return cl.Severity
	}
	return ""
}

// Deficiency is the shortfall of one nutrient against its adjusted target
type Deficiency struct {
	Nutrient Nutrient `json:"nutrient"`
	Target   float64  `json:"target"`
	Amount   float64  `json:"amount"` // never negative
	Severity Severity `json:"severity"`
}

// Deficient reports whether the nutrient needs any fertilizer
func (d Deficiency) Deficient() bool {
	return d.Amount > 0
}

// Deficiencies maps nutrients to their computed shortfall
type Deficiencies map[Nutrient]Deficiency

// Ordered returns the deficiencies in PlantNutrients order
func (d Deficiencies) Ordered() []Deficiency {
	out := make([]Deficiency, 0, len(d))
	for _, n := range PlantNutrients {
		if def, ok := d[n]; ok {
			out = append(out, def)
		}
	}
	return out
}

// AnyDeficient reports whether any of the given nutrients (all nutrients when
// none are given) has a positive shortfall.
func (d Deficiencies) AnyDeficient(nutrients ...Nutrient) bool {
	if len(nutrients) == 0 {
		nutrients = PlantNutrients
	}
	for _, n := range nutrients {
		if d[n].Amount > 0 {
			return true
		}
	}
	return false
}

// RecommendationType distinguishes soil conditioners from nutrient sources
type RecommendationType string

const (
	SoilAmendment         RecommendationType = "Soil Amendment"
	FertilizerApplication RecommendationType = "Fertilizer"
)

// Stage identifies the selector stage that produced a recommendation
type Stage string

const (
	StageAmendment Stage = "amendment"
	StageCompound  Stage = "compound"
	StageStraight  Stage = "straight"
	StageOrganic   Stage = "organic"
	StageSpecial   Stage = "special"
)

// Recommendation is one line of the treatment plan. Amendments use Dose; all
// other stages use AmountKg, Packs and Unit. Covers lists the nutrient amounts
// (kg/ha) the product is credited with against the deficiency ledger.
type Recommendation struct {
	Type        RecommendationType   `json:"type"`
	Stage       Stage                `json:"stage"`
	Product     string               `json:"product"`
	Dose        string               `json:"dose,omitempty"`
	AmountKg    float64              `json:"amount_kg,omitempty"`
	Packs       float64              `json:"packs,omitempty"`
	Unit        string               `json:"unit,omitempty"`
	Covers      map[Nutrient]float64 `json:"covers,omitempty"`
	Purpose     string               `json:"purpose,omitempty"`
	Application string               `json:"application,omitempty"`
}

// CoveredNutrients returns the nutrients in Covers in PlantNutrients order
func (r Recommendation) CoveredNutrients() []Nutrient {
	out := make([]Nutrient, 0, len(r.Covers))
	for _, n := range PlantNutrients {
		if _, ok := r.Covers[n]; ok {
			out = append(out, n)
		}
	}
	return out
}
