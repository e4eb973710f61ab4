package selection

import (
	"math"

	"fertilizer-advisor/internal/models"
	"fertilizer-advisor/internal/reference"
)

// Pack units
const (
	unitBags   = "Bags"
	unitPkt    = "Pkt"
	unitTons   = "Tons"
	unitPacket = "Packet"
)

// packetThresholdKg is the amount below which micronutrient sulphates are
// counted in packets rather than bags
const packetThresholdKg = 50.0

// compoundStrategy applies one multi-nutrient product sized to the tightest
// of its target nutrients, so no target is overshot.
type compoundStrategy struct {
	name     string
	product  string
	targets  []models.Nutrient
	eligible func(f *Facts) bool
}

func npsStrategy() compoundStrategy {
	return compoundStrategy{
		name:    "nps-oilseeds-pulses",
		product: reference.NPS,
		targets: []models.Nutrient{models.N, models.P, models.S},
		eligible: func(f *Facts) bool {
			return f.Category == reference.CategoryPulse || f.Category == reference.CategoryOilseed
		},
	}
}

func dapStrategy() compoundStrategy {
	return compoundStrategy{
		name:    "dap-potato-tomato-fruits",
		product: reference.DAP,
		targets: []models.Nutrient{models.N, models.P},
		eligible: func(f *Facts) bool {
			return f.CropName == "POTATO" || f.CropName == "TOMATO" || f.Category == reference.CategoryFruit
		},
	}
}

func npkStrategy() compoundStrategy {
	return compoundStrategy{
		name:    "npk",
		product: reference.NPK,
		targets: []models.Nutrient{models.N, models.P, models.K},
	}
}

func (s compoundStrategy) Name() string                { return s.name }
func (s compoundStrategy) Stage() models.Stage         { return models.StageCompound }
func (s compoundStrategy) Requires() []models.Nutrient { return s.targets }
func (s compoundStrategy) Consumes() bool              { return true }

func (s compoundStrategy) Apply(f *Facts, l *Ledger) []models.Recommendation {
	if s.eligible != nil && !s.eligible(f) {
		return nil
	}
	product, ok := f.Tables.Fertilizer(s.product)
	if !ok {
		return nil
	}

	amount := math.Inf(1)
	for _, n := range s.targets {
		pct := product.ContentOf(n)
		rem, _ := l.Remaining(n)
		if pct <= 0 || rem <= 0 {
			return nil
		}
		amount = math.Min(amount, rem/(pct/100))
	}
	if math.IsInf(amount, 1) || amount <= 0 {
		return nil
	}

	covers := make(map[models.Nutrient]float64, len(s.targets))
	for _, n := range s.targets {
		covers[n] = l.Cover(n, amount*product.ContentOf(n)/100)
	}

	return []models.Recommendation{{
		Type:     models.FertilizerApplication,
		Stage:    models.StageCompound,
		Product:  product.Name,
		AmountKg: amount,
		Packs:    amount / f.Tables.BagSize(product.Name),
		Unit:     unitBags,
		Covers:   covers,
	}}
}

// straightProducts maps each nutrient to its single-nutrient source
var straightProducts = map[models.Nutrient]string{
	models.N:  reference.Urea,
	models.P:  reference.SSP,
	models.K:  reference.MOP,
	models.S:  reference.AmmoniumSulphate,
	models.Zn: reference.ZincSulphate,
	models.Fe: reference.FerrousSulphate,
	models.Cu: reference.CopperSulphate,
	models.Mn: reference.ManganeseSulphate,
}

// straightStrategy closes every remaining gap with a straight fertilizer
type straightStrategy struct{}

func (straightStrategy) Name() string                { return "straight-fertilizers" }
func (straightStrategy) Stage() models.Stage         { return models.StageStraight }
func (straightStrategy) Requires() []models.Nutrient { return nil }
func (straightStrategy) Consumes() bool              { return true }

func (straightStrategy) Apply(f *Facts, l *Ledger) []models.Recommendation {
	var out []models.Recommendation
	for _, n := range models.PlantNutrients {
		rem, ok := l.Remaining(n)
		if !ok || rem <= 0 {
			continue
		}
		product, ok := f.Tables.Fertilizer(straightProducts[n])
		if !ok {
			continue
		}
		pct := product.ContentOf(n)
		if pct <= 0 {
			continue
		}

		amount := rem * 100 / pct
		unit := unitBags
		if n.IsMicronutrient() && amount < packetThresholdKg {
			unit = unitPkt
		}

		out = append(out, models.Recommendation{
			Type:     models.FertilizerApplication,
			Stage:    models.StageStraight,
			Product:  product.Name,
			AmountKg: amount,
			Packs:    amount / f.Tables.BagSize(product.Name),
			Unit:     unit,
			Covers:   map[models.Nutrient]float64{n: l.Cover(n, rem)},
		})
	}
	return out
}
