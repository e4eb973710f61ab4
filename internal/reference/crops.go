package reference

import (
	"sort"

	"fertilizer-advisor/internal/models"
)

// Category groups crops that share fertilizer strategy
type Category string

const (
	CategoryCereal     Category = "CEREALS"
	CategoryPulse      Category = "PULSES"
	CategoryOilseed    Category = "OILSEEDS"
	CategoryCommercial Category = "COMMERCIAL"
	CategoryVegetable  Category = "VEGETABLES"
	CategoryFruit      Category = "FRUITS"
	CategoryOther      Category = "OTHERS"
)

// Categories lists every known category
var Categories = []Category{
	CategoryCereal, CategoryPulse, CategoryOilseed, CategoryCommercial,
	CategoryVegetable, CategoryFruit, CategoryOther,
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Crop is one entry of the crop requirement table (kg/ha)
type Crop struct {
	Name         string                      `yaml:"name"`
	Category     Category                    `yaml:"category"`
	Requirements map[models.Nutrient]float64 `yaml:"requirements"`
}

func defaultCrops() map[string]Crop {
	type row struct {
		name     string
		category Category
		req      map[models.Nutrient]float64
	}
	const (
		n  = models.N
		p  = models.P
		k  = models.K
		zn = models.Zn
		fe = models.Fe
		s  = models.S
	)
	rows := []row{
		{"PADDY", CategoryCereal, map[models.Nutrient]float64{n: 120, p: 60, k: 50, zn: 5, fe: 5, s: 20}},
		{"WHEAT", CategoryCereal, map[models.Nutrient]float64{n: 120, p: 60, k: 40, zn: 5, s: 20}},
		{"BAJRA", CategoryCereal, map[models.Nutrient]float64{n: 80, p: 40, k: 40, zn: 5}},
		{"MAIZE", CategoryCereal, map[models.Nutrient]float64{n: 150, p: 75, k: 75, zn: 5, s: 15}},

		{"GRAM", CategoryPulse, map[models.Nutrient]float64{n: 20, p: 60, k: 20, s: 15, zn: 3}},
		{"MOONG", CategoryPulse, map[models.Nutrient]float64{n: 20, p: 60, k: 20, s: 15}},
		{"SOYABEAN", CategoryPulse, map[models.Nutrient]float64{n: 20, p: 80, k: 40, s: 20, zn: 5}},

		{"GROUNDNUT", CategoryOilseed, map[models.Nutrient]float64{n: 20, p: 60, k: 40, s: 20}},
		{"MUSTARD", CategoryOilseed, map[models.Nutrient]float64{n: 80, p: 40, k: 40, s: 40}},

		{"SUGARCANE", CategoryCommercial, map[models.Nutrient]float64{n: 200, p: 80, k: 60, zn: 5, fe: 5, s: 20}},
		{"COTTON", CategoryCommercial, map[models.Nutrient]float64{n: 150, p: 75, k: 75, zn: 5, s: 20}},
		{"CASTOR", CategoryCommercial, map[models.Nutrient]float64{n: 80, p: 40, k: 40, s: 20}},

		{"ONION", CategoryVegetable, map[models.Nutrient]float64{n: 150, p: 75, k: 100, s: 30}},
		{"POTATO", CategoryVegetable, map[models.Nutrient]float64{n: 180, p: 120, k: 150, zn: 5, s: 30}},
		{"BRINJAL", CategoryVegetable, map[models.Nutrient]float64{n: 150, p: 75, k: 100, s: 20}},
		{"TOMATO", CategoryVegetable, map[models.Nutrient]float64{n: 150, p: 100, k: 120, s: 25}},
		{"CABBAGE", CategoryVegetable, map[models.Nutrient]float64{n: 180, p: 90, k: 120, s: 25}},
		{"CAULIFLOWER", CategoryVegetable, map[models.Nutrient]float64{n: 150, p: 100, k: 120, s: 25}},
		{"CARROT", CategoryVegetable, map[models.Nutrient]float64{n: 100, p: 80, k: 150, s: 20}},
		{"CUCUMBER", CategoryVegetable, map[models.Nutrient]float64{n: 100, p: 50, k: 100, s: 15}},
		{"BOTTLE GOURD", CategoryVegetable, map[models.Nutrient]float64{n: 100, p: 50, k: 100, s: 15}},
		{"VEGETABLE", CategoryVegetable, map[models.Nutrient]float64{n: 150, p: 75, k: 100, s: 20}},

		{"MANGO", CategoryFruit, map[models.Nutrient]float64{n: 500, p: 250, k: 500, zn: 5}},
		{"GUAVA", CategoryFruit, map[models.Nutrient]float64{n: 500, p: 250, k: 500, zn: 5}},
		{"AONLA", CategoryFruit, map[models.Nutrient]float64{n: 500, p: 250, k: 500, zn: 5}},
		{"KINOO", CategoryFruit, map[models.Nutrient]float64{n: 500, p: 250, k: 500, zn: 5}},

		{"TURMERIC", CategoryOther, map[models.Nutrient]float64{n: 120, p: 60, k: 120, zn: 5, s: 30}},
		{"GARLIC", CategoryOther, map[models.Nutrient]float64{n: 150, p: 75, k: 100, s: 30}},
	}

	out := make(map[string]Crop, len(rows))
	for _, r := range rows {
		out[r.name] = Crop{Name: r.name, Category: r.category, Requirements: r.req}
	}
	return out
}

func defaultCropAliases() map[string]string {
	return map[string]string{
		"RICE":     "PADDY",
		"SOYBEAN":  "SOYABEAN",
		"SOYABEEN": "SOYABEAN",
		"MUSTERD":  "MUSTARD",
		"KINNOW":   "KINOO",
	}
}

// canonicalCropName upper-cases the name and resolves crop aliases
func (t *Tables) canonicalCropName(name string) string {
	key := NormalizeCropName(name)
	if target, ok := t.CropAliases[key]; ok {
		return target
	}
	return key
}

// LookupCrop finds a crop by name, case-insensitively. Category names such as
// "FRUITS" or "PULSES" resolve to a crop of that category with no
// requirement figures.
func (t *Tables) LookupCrop(name string) (Crop, bool) {
	key := t.canonicalCropName(name)
	if c, ok := t.Crops[key]; ok {
		return c, true
	}
	if c := Category(key); c.Valid() {
		return Crop{Name: key, Category: c}, true
	}
	return Crop{}, false
}

// CropRequirement returns the requirement (kg/ha) of a crop for n; unknown
// crops and unlisted nutrients yield 0.
func (t *Tables) CropRequirement(crop string, n models.Nutrient) float64 {
	c, ok := t.LookupCrop(crop)
	if !ok {
		return 0
	}
	return c.Requirements[n]
}

// CategoryOf returns the category of a crop and whether the crop is known
func (t *Tables) CategoryOf(crop string) (Category, bool) {
	c, ok := t.LookupCrop(crop)
	return c.Category, ok
}

// CropNames returns the crops of the requirement table, sorted
func (t *Tables) CropNames() []string {
	names := make([]string, 0, len(t.Crops))
	for name := range t.Crops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
