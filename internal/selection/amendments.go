package selection

import (
	"fertilizer-advisor/internal/models"
	"fertilizer-advisor/internal/reference"
)

// acidicBelow separates acidic from alkaline critical pH readings
const acidicBelow = 7.0

// amendmentStrategy recommends soil conditioners from the pH, EC and OC
// classifications. It never touches the ledger.
type amendmentStrategy struct{}

func (amendmentStrategy) Name() string                { return "soil-amendments" }
func (amendmentStrategy) Stage() models.Stage         { return models.StageAmendment }
func (amendmentStrategy) Requires() []models.Nutrient { return nil }
func (amendmentStrategy) Consumes() bool              { return false }

func (amendmentStrategy) Apply(f *Facts, _ *Ledger) []models.Recommendation {
	var kinds []reference.AmendmentKind

	if f.Classifications.Severity(models.PH) == models.SeverityCritical {
		if ph, ok := f.Sample.Value(models.PH); ok {
			if ph < acidicBelow {
				kinds = append(kinds, reference.AmendAcidic)
			} else {
				kinds = append(kinds, reference.AmendAlkaline)
			}
		}
	}
	if f.Classifications.Severity(models.EC) == models.SeverityCritical {
		kinds = append(kinds, reference.AmendSaline)
	}
	if f.Classifications.Severity(models.OC) == models.SeverityCritical {
		kinds = append(kinds, reference.AmendLowOC)
	}

	out := make([]models.Recommendation, 0, len(kinds))
	for _, kind := range kinds {
		a, ok := f.Tables.Amendments[kind]
		if !ok {
			continue
		}
		out = append(out, models.Recommendation{
			Type:        models.SoilAmendment,
			Stage:       models.StageAmendment,
			Product:     a.Name,
			Dose:        a.Dose,
			Purpose:     a.Purpose,
			Application: a.Application,
		})
	}
	return out
}
