// Package selection turns nutrient deficiencies into an ordered treatment
// plan. Selection runs as an ordered list of strategies over a Ledger: soil
// amendments, compound fertilizers, straight fertilizers, organic manures and
// crop-specific additions. Each strategy sees the ledger as the previous one
// left it.
package selection

import (
	"fertilizer-advisor/internal/models"
	"fertilizer-advisor/internal/reference"
)

// Input is what the selector knows about the field besides the ledger
type Input struct {
	Crop            string
	Sample          models.SoilSample
	Classifications models.Classifications
}

// Facts is the resolved view of an Input handed to each strategy
type Facts struct {
	Input
	CropName  string // canonical crop name, or the normalized input when unknown
	Category  reference.Category
	KnownCrop bool
	Tables    *reference.Tables
}

// Strategy is one step of the selection pipeline. Requires lists the
// nutrients that must all still be deficient for the step to run; an empty
// list means the step always runs. Consumes reports whether the step
// decrements the ledger; a step that does not consume works on a scratch
// copy, so its covers never reach the shared ledger.
type Strategy interface {
	Name() string
	Stage() models.Stage
	Requires() []models.Nutrient
	Consumes() bool
	Apply(f *Facts, l *Ledger) []models.Recommendation
}

// Selector runs the strategy list in order
type Selector struct {
	tables     *reference.Tables
	strategies []Strategy
}

// NewSelector creates a selector. Without explicit strategies it uses
// DefaultStrategies.
func NewSelector(tables *reference.Tables, strategies ...Strategy) *Selector {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Selector{tables: tables, strategies: strategies}
}

// DefaultStrategies returns the standard resolution order
func DefaultStrategies() []Strategy {
	return []Strategy{
		amendmentStrategy{},
		npsStrategy(),
		dapStrategy(),
		npkStrategy(),
		straightStrategy{},
		organicStrategy{},
		paddyZincStrategy{},
		rhizobiumStrategy{},
		fruitMicronutrientStrategy{},
	}
}

// Strategies returns the strategies in the order they run
func (s *Selector) Strategies() []Strategy {
	out := make([]Strategy, len(s.strategies))
	copy(out, s.strategies)
	return out
}

// Facts resolves the crop of an input against the reference tables
func (s *Selector) Facts(in Input) *Facts {
	f := &Facts{Input: in, Tables: s.tables}
	if crop, ok := s.tables.LookupCrop(in.Crop); ok {
		f.CropName = crop.Name
		f.Category = crop.Category
		f.KnownCrop = true
	} else {
		f.CropName = reference.NormalizeCropName(in.Crop)
	}
	return f
}

// Select runs every strategy against the ledger and returns the
// recommendations in application order. On return the ledger holds the
// amounts no product covered.
func (s *Selector) Select(l *Ledger, in Input) []models.Recommendation {
	facts := s.Facts(in)

	var out []models.Recommendation
	for _, st := range s.strategies {
		if req := st.Requires(); len(req) > 0 && !l.Deficient(req...) {
			continue
		}
		view := l
		if !st.Consumes() {
			view = l.scratch()
		}
		out = append(out, st.Apply(facts, view)...)
	}
	return out
}
