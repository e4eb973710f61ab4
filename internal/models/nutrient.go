package models

import "sort"

// Nutrient is the canonical code of a soil-test parameter
type Nutrient string

const (
	PH Nutrient = "pH"
	EC Nutrient = "EC"
	OC Nutrient = "OC"
	N  Nutrient = "N"
	P  Nutrient = "P"
	K  Nutrient = "K"
	Zn Nutrient = "Zn"
	Cu Nutrient = "Cu"
	Fe Nutrient = "Fe"
	Mn Nutrient = "Mn"
	S  Nutrient = "S"
)

// SoilParameters lists every parameter a soil sample may carry, in report order
var SoilParameters = []Nutrient{PH, EC, OC, N, P, K, Zn, Cu, Fe, Mn, S}

// PlantNutrients lists the parameters that can be deficient and fertilized
var PlantNutrients = []Nutrient{N, P, K, Zn, Cu, Fe, Mn, S}

// Micronutrients are supplied as sulphate salts in small packs
var Micronutrients = []Nutrient{Zn, Fe, Cu, Mn}

// IsSoilCondition reports whether n describes soil condition (pH, EC, OC)
// rather than a nutrient that can be fertilized.
func (n Nutrient) IsSoilCondition() bool {
	return n == PH || n == EC || n == OC
}

// IsMicronutrient reports whether n is one of Zn, Fe, Cu, Mn
func (n Nutrient) IsMicronutrient() bool {
	for _, m := range Micronutrients {
		if m == n {
			return true
		}
	}
	return false
}

// DisplayName returns the label used in soil test tables
func (n Nutrient) DisplayName() string {
	if name, ok := displayNames[n]; ok {
		return name
	}
	return string(n)
}

var displayNames = map[Nutrient]string{
	PH: "pH",
	EC: "EC (dS/m)",
	OC: "OC (%)",
	N:  "Nitrogen (kg/ha)",
	P:  "Phosphorus (kg/ha)",
	K:  "Potassium (kg/ha)",
	Zn: "Zinc (ppm)",
	Cu: "Copper (ppm)",
	Fe: "Iron (ppm)",
	Mn: "Manganese (ppm)",
	S:  "Sulphur (ppm)",
}

// aliasDisplayNames overrides the display name when a lab sheet reports the
// available fraction rather than the total.
var aliasDisplayNames = map[string]string{
	"av_p": "Available P (kg/ha)",
	"av_k": "Available K (kg/ha)",
}

// DisplayNameFor returns the soil-table label for a parameter supplied under key
func DisplayNameFor(n Nutrient, key string) string {
	if name, ok := aliasDisplayNames[key]; ok {
		return name
	}
	return n.DisplayName()
}

// parameterAliases maps input field names to canonical codes. It is the only
// place input names are resolved; the reverse direction is derived from it.
var parameterAliases = map[string]Nutrient{
	"av_p":           P,
	"av_k":           K,
	"zinc":           Zn,
	"cu":             Cu,
	"iron":           Fe,
	"mn":             Mn,
	"ph":             PH,
	"ec":             EC,
	"oc":             OC,
	"organic_carbon": OC,
	"nitrogen":       N,
	"phosphorus":     P,
	"potassium":      K,
	"sulphur":        S,
	"sulfur":         S,
	"copper":         Cu,
	"manganese":      Mn,
}

var aliasesByNutrient = func() map[Nutrient][]string {
	out := make(map[Nutrient][]string)
	for alias, n := range parameterAliases {
		out[n] = append(out[n], alias)
	}
	for n := range out {
		sort.Strings(out[n])
	}
	return out
}()

// ResolveParameter maps a canonical code or a known alias to its canonical code
func ResolveParameter(key string) (Nutrient, bool) {
	for _, n := range SoilParameters {
		if string(n) == key {
			return n, true
		}
	}
	n, ok := parameterAliases[key]
	return n, ok
}

// AliasesOf returns the known input aliases of a canonical code, sorted
func AliasesOf(n Nutrient) []string {
	aliases := aliasesByNutrient[n]
	out := make([]string, len(aliases))
	copy(out, aliases)
	return out
}

// Severity grades how far a reading is from its optimum
type Severity string

const (
	SeverityIdeal    Severity = "ideal"
	SeverityOptimal  Severity = "optimal"
	SeverityModerate Severity = "moderate"
	SeverityCritical Severity = "critical"
)

// Rank orders severities by distance from optimum; ideal and optimal share rank 0
func (s Severity) Rank() int {
	switch s {
	case SeverityIdeal, SeverityOptimal:
		return 0
	case SeverityModerate:
		return 1
	case SeverityCritical:
		return 2
	default:
		return -1
	}
}
