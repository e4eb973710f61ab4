package selection

import (
	"fertilizer-advisor/internal/models"
	"fertilizer-advisor/internal/reference"
)

// organicStrategy adds a bulk organic manure. Farmyard manure answers a
// critically low organic carbon reading; otherwise vermicompost backs up any
// field that started with a nutrient shortfall.
type organicStrategy struct{}

func (organicStrategy) Name() string                { return "organic-manures" }
func (organicStrategy) Stage() models.Stage         { return models.StageOrganic }
func (organicStrategy) Requires() []models.Nutrient { return nil }
func (organicStrategy) Consumes() bool              { return false }

func (organicStrategy) Apply(f *Facts, l *Ledger) []models.Recommendation {
	switch {
	case f.Classifications.Severity(models.OC) == models.SeverityCritical:
		return []models.Recommendation{addOn(models.StageOrganic, reference.FarmyardManure, 10000, 10, unitTons,
			"Improve soil organic matter and micronutrients",
			"Spread evenly and mix during land preparation")}
	case l.OriginallyDeficient():
		return []models.Recommendation{addOn(models.StageOrganic, reference.Vermicompost, 5000, 5, unitTons,
			"Provide slow-release nutrients and improve soil health",
			"Apply in planting pits or as top dressing")}
	}
	return nil
}

// paddyZincStrategy guards flooded paddy against khaira disease
type paddyZincStrategy struct{}

func (paddyZincStrategy) Name() string                { return "paddy-zinc" }
func (paddyZincStrategy) Stage() models.Stage         { return models.StageSpecial }
func (paddyZincStrategy) Requires() []models.Nutrient { return nil }
func (paddyZincStrategy) Consumes() bool              { return false }

func (paddyZincStrategy) Apply(f *Facts, l *Ledger) []models.Recommendation {
	if f.CropName != "PADDY" || !l.OriginallyDeficient(models.Zn) {
		return nil
	}
	return []models.Recommendation{addOn(models.StageSpecial, reference.ZincSulphate, 25, 5, "Pkt (5 kg)",
		"Prevent khaira disease in paddy",
		"Apply as basal dose or foliar spray (0.5%)")}
}

var rhizobiumCrops = map[string]bool{"GRAM": true, "MOONG": true, "SOYABEAN": true}

// rhizobiumStrategy adds seed inoculant for nodulating legumes
type rhizobiumStrategy struct{}

func (rhizobiumStrategy) Name() string                { return "rhizobium" }
func (rhizobiumStrategy) Stage() models.Stage         { return models.StageSpecial }
func (rhizobiumStrategy) Requires() []models.Nutrient { return nil }
func (rhizobiumStrategy) Consumes() bool              { return false }

func (rhizobiumStrategy) Apply(f *Facts, _ *Ledger) []models.Recommendation {
	if !rhizobiumCrops[f.CropName] {
		return nil
	}
	return []models.Recommendation{addOn(models.StageSpecial, "Rhizobium Culture", 1, 1, unitPacket,
		"Enhance nitrogen fixation",
		"Mix with seeds before sowing")}
}

var orchardCrops = map[string]bool{"MANGO": true, "GUAVA": true, "AONLA": true, "KINOO": true}

// fruitMicronutrientStrategy adds a foliar micronutrient mixture for orchards
type fruitMicronutrientStrategy struct{}

func (fruitMicronutrientStrategy) Name() string                { return "fruit-micronutrients" }
func (fruitMicronutrientStrategy) Stage() models.Stage         { return models.StageSpecial }
func (fruitMicronutrientStrategy) Requires() []models.Nutrient { return nil }
func (fruitMicronutrientStrategy) Consumes() bool              { return false }

func (fruitMicronutrientStrategy) Apply(f *Facts, l *Ledger) []models.Recommendation {
	if !orchardCrops[f.CropName] || !l.OriginallyDeficient(models.Micronutrients...) {
		return nil
	}
	return []models.Recommendation{addOn(models.StageSpecial, "Micronutrient Mixture", 5, 1, unitPacket,
		"Correct micronutrient deficiencies",
		"Foliar spray (0.5%) at 15 day intervals")}
}

func addOn(stage models.Stage, product string, amountKg, packs float64, unit, purpose, application string) models.Recommendation {
	return models.Recommendation{
		Type:        models.FertilizerApplication,
		Stage:       stage,
		Product:     product,
		AmountKg:    amountKg,
		Packs:       packs,
		Unit:        unit,
		Purpose:     purpose,
		Application: application,
	}
}
