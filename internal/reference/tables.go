// Package reference holds the agronomic reference data the recommendation
// engine reads: optimal nutrient levels, crop requirements, fertilizer
// composition and pack sizes, classification bands, growth-stage multipliers,
// amendment guidance and crop notes.
//
// Tables are plain values. Default builds a fresh copy on every call and the
// engine never writes to a Tables after construction, so one instance can be
// shared by concurrent report builds.
package reference

import (
	"strings"

	"fertilizer-advisor/internal/models"
)

// Product names used across the recommendation stages
const (
	Urea              = "UREA"
	DAP               = "DAP"
	SSP               = "SSP"
	MOP               = "MOP"
	NPK               = "NPK"
	NPS               = "NPS"
	AmmoniumSulphate  = "Ammonium Sulphate"
	ZincSulphate      = "Zinc Sulphate"
	FerrousSulphate   = "Ferrous Sulphate"
	CopperSulphate    = "Copper Sulphate"
	ManganeseSulphate = "Manganese Sulphate"
	FarmyardManure    = "Farmyard Manure"
	Vermicompost      = "Vermicompost"
)

// DefaultBlendWeight is the share of the universal optimum in a nutrient
// target; the crop requirement gets the remainder.
const DefaultBlendWeight = 0.5

// Fertilizer describes one product: nutrient content in percent by weight
// and the size of one bag or packet in kilograms.
type Fertilizer struct {
	Name      string                      `yaml:"name"`
	Content   map[models.Nutrient]float64 `yaml:"content"`
	BagSizeKg float64                     `yaml:"bag_size_kg"`
}

// ContentOf returns the percentage of n in the product (0 when absent)
func (f Fertilizer) ContentOf(n models.Nutrient) float64 {
	return f.Content[n]
}

// AmendmentKind names a soil condition that calls for a conditioner
type AmendmentKind string

const (
	AmendAcidic   AmendmentKind = "acidic"
	AmendAlkaline AmendmentKind = "alkaline"
	AmendSaline   AmendmentKind = "saline"
	AmendLowOC    AmendmentKind = "low_oc"
)

// Amendment is the guidance text for one soil conditioner
type Amendment struct {
	Name        string `yaml:"name"`
	Dose        string `yaml:"dose"`
	Purpose     string `yaml:"purpose"`
	Application string `yaml:"application"`
}

// Tables bundles every reference table the engine consults
type Tables struct {
	BlendWeight             float64
	Optimal                 map[models.Nutrient]float64
	Crops                   map[string]Crop
	CropAliases             map[string]string
	Fertilizers             map[string]Fertilizer
	CropNotes               map[string]string
	Amendments              map[AmendmentKind]Amendment
	Bands                   map[models.Nutrient]BandTable
	GrowthMultipliers       map[models.Nutrient]float64
	CategoryGrowthOverrides map[Category]map[models.Nutrient]float64
	CropGrowthOverrides     map[string]map[models.Nutrient]float64
}

// Default returns the compiled-in reference tables
func Default() *Tables {
	return &Tables{
		BlendWeight: DefaultBlendWeight,
		Optimal: map[models.Nutrient]float64{
			models.PH: 7.0,
			models.EC: 1.0,
			models.OC: 0.8,
			models.N:  360,   // kg/ha
			models.P:  16.25, // kg/ha
			models.K:  200,   // kg/ha
			models.Zn: 0.9,   // ppm
			models.Cu: 0.3,   // ppm
			models.Fe: 6.0,   // ppm
			models.Mn: 10.0,  // ppm
			models.S:  16.25, // ppm
		},
		Crops:       defaultCrops(),
		CropAliases: defaultCropAliases(),
		Fertilizers: defaultFertilizers(),
		CropNotes: map[string]string{
			"PADDY":     "Requires more zinc in flooded conditions",
			"GROUNDNUT": "Needs sulphur for pod development",
			"SUGARCANE": "Split applications recommended (4-6 splits)",
			"POTATO":    "Avoid excess nitrogen to prevent hollow heart",
			"FRUITS":    "Foliar sprays recommended for micronutrients",
			"PULSES":    "Rhizobium inoculation recommended for nitrogen fixation",
		},
		Amendments: map[AmendmentKind]Amendment{
			AmendAcidic: {
				Name:        "Lime",
				Dose:        "2-5 t/ha",
				Purpose:     "Raise pH to optimal level",
				Application: "Apply 2-3 weeks before planting and mix well",
			},
			AmendAlkaline: {
				Name:        "Gypsum + Organic Matter",
				Dose:        "1-2 t/ha gypsum + 10 t/ha FYM",
				Purpose:     "Lower pH and improve soil structure",
				Application: "Apply during land preparation",
			},
			AmendSaline: {
				Name:        "Gypsum + Leaching",
				Dose:        "2-5 t/ha gypsum + 10-15 cm standing water",
				Purpose:     "Reduce soil salinity",
				Application: "Apply gypsum before leaching irrigation",
			},
			AmendLowOC: {
				Name:        "Organic Matter",
				Dose:        "10-15 t/ha FYM or compost",
				Purpose:     "Improve soil organic carbon",
				Application: "Apply during land preparation",
			},
		},
		Bands: defaultBands(),
		// Peak demand across vegetative, flowering and fruiting stages
		GrowthMultipliers: map[models.Nutrient]float64{
			models.N:  1.2,
			models.P:  1.5,
			models.K:  1.5,
			models.Zn: 1.2,
			models.Cu: 1.2,
			models.Fe: 1.2,
			models.Mn: 1.2,
			models.S:  1.2,
		},
		CategoryGrowthOverrides: map[Category]map[models.Nutrient]float64{
			CategoryCereal:  {models.N: 1.2}, // tillering
			CategoryPulse:   {models.P: 1.8}, // flowering
			CategoryOilseed: {models.P: 1.8}, // flowering
		},
		CropGrowthOverrides: map[string]map[models.Nutrient]float64{
			"SUGARCANE": {models.N: 1.5}, // continuous N through all stages
		},
	}
}

func defaultFertilizers() map[string]Fertilizer {
	list := []Fertilizer{
		{Name: Urea, BagSizeKg: 50, Content: map[models.Nutrient]float64{models.N: 46}},
		{Name: DAP, BagSizeKg: 50, Content: map[models.Nutrient]float64{models.N: 18, models.P: 46}},
		{Name: SSP, BagSizeKg: 50, Content: map[models.Nutrient]float64{models.P: 16, models.S: 11}},
		{Name: MOP, BagSizeKg: 50, Content: map[models.Nutrient]float64{models.K: 60}},
		{Name: NPK, BagSizeKg: 50, Content: map[models.Nutrient]float64{models.N: 12, models.P: 32, models.K: 16}},
		{Name: NPS, BagSizeKg: 33.33, Content: map[models.Nutrient]float64{models.N: 20, models.P: 20, models.K: 13, models.S: 16}},
		{Name: AmmoniumSulphate, BagSizeKg: 50, Content: map[models.Nutrient]float64{models.N: 21, models.S: 24}},
		{Name: ZincSulphate, BagSizeKg: 5, Content: map[models.Nutrient]float64{models.Zn: 21, models.S: 10}},
		{Name: FerrousSulphate, BagSizeKg: 5, Content: map[models.Nutrient]float64{models.Fe: 19, models.S: 10}},
		{Name: CopperSulphate, BagSizeKg: 5, Content: map[models.Nutrient]float64{models.Cu: 25, models.S: 12}},
		{Name: ManganeseSulphate, BagSizeKg: 5, Content: map[models.Nutrient]float64{models.Mn: 32, models.S: 18}},
		{Name: FarmyardManure, BagSizeKg: 1000, Content: map[models.Nutrient]float64{models.N: 0.5, models.P: 0.2, models.K: 0.5}},
		{Name: Vermicompost, BagSizeKg: 1000, Content: map[models.Nutrient]float64{models.N: 1.5, models.P: 0.5, models.K: 1.2}},
	}

	out := make(map[string]Fertilizer, len(list))
	for _, f := range list {
		out[f.Name] = f
	}
	return out
}

// Fertilizer returns the product with the given name
func (t *Tables) Fertilizer(name string) (Fertilizer, bool) {
	f, ok := t.Fertilizers[name]
	return f, ok
}

// BagSize returns the pack size of a product, falling back to 1 kg so pack
// counts stay defined for products without a size.
func (t *Tables) BagSize(name string) float64 {
	if f, ok := t.Fertilizers[name]; ok && f.BagSizeKg > 0 {
		return f.BagSizeKg
	}
	return 1
}

// CropNote returns the note for a crop, falling back to its category note
func (t *Tables) CropNote(crop string) (string, bool) {
	key := t.canonicalCropName(crop)
	if note, ok := t.CropNotes[key]; ok {
		return note, true
	}
	if c, ok := t.LookupCrop(crop); ok {
		note, ok := t.CropNotes[string(c.Category)]
		return note, ok
	}
	return "", false
}

// GrowthMultipliersFor returns the per-nutrient growth-stage multiplier for a
// crop: defaults, then category overrides, then crop overrides.
func (t *Tables) GrowthMultipliersFor(crop string) map[models.Nutrient]float64 {
	out := make(map[models.Nutrient]float64, len(t.GrowthMultipliers))
	for n, m := range t.GrowthMultipliers {
		out[n] = m
	}

	if c, ok := t.LookupCrop(crop); ok {
		for n, m := range t.CategoryGrowthOverrides[c.Category] {
			out[n] = m
		}
		for n, m := range t.CropGrowthOverrides[c.Name] {
			out[n] = m
		}
	}
	return out
}

// NormalizeCropName upper-cases a crop name and collapses inner whitespace
func NormalizeCropName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}
