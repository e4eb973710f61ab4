package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fertilizer-advisor/internal/models"
	"fertilizer-advisor/internal/reference"
)

var fixedDay = time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)

func newTestBuilder() *Builder {
	return NewBuilder(reference.Default(), WithClock(func() time.Time { return fixedDay }))
}

func sample(t *testing.T, raw map[string]any) models.SoilSample {
	t.Helper()
	s, err := models.ParseSoilSample(raw)
	require.NoError(t, err)
	return s
}

var (
	richField = map[string]any{
		"pH": 7.0, "EC": 0.5, "OC": 0.9, "N": 500, "P": 30, "K": 300,
		"Zn": 2, "Cu": 0.5, "Fe": 10, "Mn": 20, "S": 30,
	}
	acidicField = map[string]any{
		"pH": 4.4, "EC": 0.79, "OC": 1.78, "N": 250, "P": 15, "K": 150,
		"Zn": 6.5, "Cu": 0.1, "Fe": 1.11, "Mn": 45.27, "S": 20,
	}
	poorPaddyField = map[string]any{
		"pH": 6.5, "EC": 0.4, "OC": 0.4, "N": 200, "P": 8, "K": 100,
		"zinc": 0.5, "cu": 0.3, "iron": 5, "mn": 8, "S": 12,
	}
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name        string
		raw         map[string]any
		crop        string
		checkValues func(*testing.T, *Report)
	}{
		{
			name: "well supplied wheat field",
			raw:  richField,
			crop: "Wheat",
			checkValues: func(t *testing.T, r *Report) {
				for _, row := range r.SoilTests {
					assert.True(t, row.Classified, row.Parameter)
					assert.Contains(t, []string{"OPTIMAL", "IDEAL"}, row.Status, row.Parameter)
				}
				for _, rec := range r.Recommendations {
					assert.NotEqual(t, models.StageAmendment, rec.Stage, rec.Product)
					assert.NotEqual(t, models.StageCompound, rec.Stage, rec.Product)
				}
				assert.Equal(t, []string{reference.SSP, reference.ZincSulphate, reference.Vermicompost}, r.Products())
			},
		},
		{
			name: "acidic wheat field",
			raw:  acidicField,
			crop: "Wheat",
			checkValues: func(t *testing.T, r *Report) {
				ph := r.SoilTests[0]
				assert.Equal(t, models.PH, ph.Nutrient)
				assert.Equal(t, "Strongly acidic", ph.Classification)
				assert.Equal(t, "CRITICAL", ph.Status)

				products := r.Products()
				assert.Contains(t, products, "Lime")
				assert.Contains(t, products, reference.FerrousSulphate)
				assert.Contains(t, products, reference.CopperSulphate)

				assert.Equal(t, "Soil pH needs correction before fertilizer application", r.SpecialNotes[0])
				assert.Contains(t, r.SpecialNotes, "Basal application at planting and top dressing recommended")
			},
		},
		{
			name: "paddy with zinc shortfall",
			raw:  poorPaddyField,
			crop: "rice",
			checkValues: func(t *testing.T, r *Report) {
				var zincStages []models.Stage
				for _, rec := range r.Recommendations {
					if rec.Product == reference.ZincSulphate {
						zincStages = append(zincStages, rec.Stage)
					}
				}
				assert.Equal(t, []models.Stage{models.StageStraight, models.StageSpecial}, zincStages)
				assert.Contains(t, r.Products(), reference.FarmyardManure, "OC below 0.5 is critical")
				assert.Contains(t, r.SpecialNotes, "Requires more zinc in flooded conditions")
				assert.Contains(t, r.SpecialNotes, "Regular organic matter addition recommended to improve soil health")
				assert.Equal(t, "Zinc (ppm)", r.SoilTests[6].Parameter)
				assert.Equal(t, "RICE", r.Header.Crop)
			},
		},
		{
			name: "unknown crop",
			raw:  acidicField,
			crop: "UnknownCropXYZ",
			checkValues: func(t *testing.T, r *Report) {
				assert.False(t, r.KnownCrop)
				require.NotEmpty(t, r.Deficiencies)
				for _, d := range r.Deficiencies {
					if d.Nutrient == models.N {
						assert.InDelta(t, 360*0.5*1.2, d.Target, 1e-9)
					}
				}
				assert.Equal(t, []string{"Lime", reference.CopperSulphate, reference.FerrousSulphate, reference.Vermicompost}, r.Products())
				assert.Equal(t, []string{"Soil pH needs correction before fertilizer application"}, r.SpecialNotes)
			},
		},
		{
			name: "fruit crop",
			raw:  poorPaddyField,
			crop: "Mango",
			checkValues: func(t *testing.T, r *Report) {
				products := r.Products()
				assert.Contains(t, products, reference.DAP)
				assert.Contains(t, products, "Micronutrient Mixture")
				assert.Contains(t, r.SpecialNotes, "Foliar sprays recommended for micronutrients")
				assert.Contains(t, r.SpecialNotes, "Soil application + foliar sprays recommended for better nutrient uptake")
			},
		},
	}

	b := newTestBuilder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := b.Build(Request{Sample: sample(t, tt.raw), Crop: tt.crop})
			assert.Equal(t, Title, r.Header.Title)
			assert.Equal(t, "05-Mar-2024", r.Header.Date)
			_, err := uuid.Parse(r.Header.ReportID)
			assert.NoError(t, err)
			tt.checkValues(t, r)
		})
	}
}

func TestBuildRejectsTextReading(t *testing.T) {
	raw := map[string]any{"pH": "acidic", "N": 250}
	_, err := models.ParseSoilSample(raw)
	require.Error(t, err)

	var invalid *models.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "pH", invalid.Field)
}

func TestBuildIsIdempotent(t *testing.T) {
	b := newTestBuilder()
	req := Request{Sample: sample(t, acidicField), Crop: "Wheat", FarmerName: "Ramesh Kumar", Location: "Hisar"}

	first := b.Build(req)
	second := b.Build(req)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Build() mismatch (-first +second):\n%s", diff)
	}
	assert.Equal(t, RenderText(first), RenderText(second))

	other := b.Build(Request{Sample: req.Sample, Crop: "Paddy", FarmerName: req.FarmerName, Location: req.Location})
	assert.NotEqual(t, first.Header.ReportID, other.Header.ReportID)
}

func TestBuildLeavesSampleUntouched(t *testing.T) {
	s := sample(t, acidicField)
	before := s.Values()
	newTestBuilder().Build(Request{Sample: s, Crop: "Wheat"})
	assert.Equal(t, before, s.Values())
}

func TestRenderViewsAgree(t *testing.T) {
	b := newTestBuilder()
	crops := []string{"Wheat", "Paddy", "Groundnut", "Potato", "Mango", "Soyabean", "Sugarcane", "UnknownCropXYZ"}
	fields := []map[string]any{richField, acidicField, poorPaddyField}

	for _, crop := range crops {
		for i, field := range fields {
			r := b.Build(Request{Sample: sample(t, field), Crop: crop, FarmerName: "Asha", Location: "Karnal"})
			text := RenderText(r)
			view := RenderJSON(r)

			require.Len(t, view.SoilTestResults, len(r.SoilTests), "%s/%d", crop, i)
			require.Len(t, view.DeficiencyAnalysis, len(r.Deficiencies), "%s/%d", crop, i)
			require.Len(t, view.FertilizerRecommendations, len(r.Recommendations), "%s/%d", crop, i)
			assert.Equal(t, r.SpecialNotes, view.SpecialRecommendations)

			for j, d := range view.DeficiencyAnalysis {
				assert.Equal(t, string(r.Deficiencies[j].Nutrient), d.Nutrient)
				assert.Contains(t, text, d.Nutrient)
			}
			for j, rec := range view.FertilizerRecommendations {
				assert.Equal(t, r.Recommendations[j].Product, rec.Product)
				assert.Contains(t, text, rec.Product)
			}
			for _, note := range view.SpecialRecommendations {
				assert.Contains(t, text, "- "+note)
			}
			assert.Contains(t, text, view.Summary)
			assert.Contains(t, text, view.Header.ReportID)
		}
	}
}

func TestRenderJSONShape(t *testing.T) {
	r := newTestBuilder().Build(Request{Sample: sample(t, acidicField), Crop: "Wheat", FarmerName: "Ramesh Kumar"})

	data, err := json.Marshal(RenderJSON(r))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"header", "soil_test_results", "deficiency_analysis", "fertilizer_recommendations", "special_recommendations", "summary"} {
		assert.Contains(t, doc, key)
	}

	header := doc["header"].(map[string]any)
	assert.Equal(t, "Ramesh Kumar", header["farmer_name"])
	assert.NotContains(t, header, "location")

	view := RenderJSON(r)
	lime := view.FertilizerRecommendations[0]
	assert.Equal(t, "Soil Amendment", lime.Type)
	assert.Equal(t, "2-5 t/ha", lime.Dose)
	assert.Nil(t, lime.DoseKgHa)

	for _, d := range view.DeficiencyAnalysis {
		if d.Nutrient == "P" {
			assert.Equal(t, 42.19, d.Deficiency)
			assert.Equal(t, "Critical", d.Impact)
		}
		if d.Nutrient == "Zn" {
			assert.Equal(t, 0.0, d.Deficiency)
			assert.Equal(t, "Adequate", d.Impact)
		}
	}
}

func TestRenderTextSections(t *testing.T) {
	r := newTestBuilder().Build(Request{Sample: sample(t, acidicField), Crop: "wheat", FarmerName: "Ramesh Kumar", Location: "Hisar"})
	text := RenderText(r)

	for _, want := range []string{
		Title,
		"Farmer Name: Ramesh Kumar",
		"Location: Hisar",
		"Crop: WHEAT",
		"Recommendation Date: 05-Mar-2024",
		"SOIL TEST RESULTS:",
		"NUTRIENT DEFICIENCY ANALYSIS:",
		"FERTILIZER RECOMMENDATIONS:",
		"SPECIAL RECOMMENDATIONS:",
		"SUMMARY:",
		"Strongly acidic",
	} {
		assert.Contains(t, text, want)
	}

	order := []string{"SOIL TEST RESULTS:", "NUTRIENT DEFICIENCY ANALYSIS:", "FERTILIZER RECOMMENDATIONS:", "SPECIAL RECOMMENDATIONS:"}
	for i := 1; i < len(order); i++ {
		assert.Less(t, strings.Index(text, order[i-1]), strings.Index(text, order[i]))
	}
}

func TestBuildNutrientBalance(t *testing.T) {
	b := newTestBuilder()
	for _, crop := range []string{"Wheat", "Paddy", "Mango", "UnknownCropXYZ"} {
		for i, field := range []map[string]any{richField, acidicField, poorPaddyField} {
			r := b.Build(Request{Sample: sample(t, field), Crop: crop})

			deficient := 0
			for _, d := range r.Deficiencies {
				if d.Deficient() {
					deficient++
				}
			}
			require.Len(t, r.Balance, deficient, "%s/%d", crop, i)

			for _, row := range r.Balance {
				assert.GreaterOrEqual(t, row.Remaining, 0.0, "%s/%d %s", crop, i, row.Nutrient)
				assert.LessOrEqual(t, row.Supplied, row.Deficit+1e-9, "%s/%d %s", crop, i, row.Nutrient)
				assert.InDelta(t, row.Deficit, row.Supplied+row.Remaining, 1e-9, "%s/%d %s", crop, i, row.Nutrient)
			}
		}
	}

	r := b.Build(Request{Sample: sample(t, acidicField), Crop: "Wheat"})
	view := RenderJSON(r)
	require.Len(t, view.NutrientBalance, len(r.Balance))
	for _, row := range view.NutrientBalance {
		if row.Nutrient == "P" {
			assert.Equal(t, 42.19, row.Deficit)
			assert.Equal(t, 42.19, row.Supplied, "NPK closes the phosphorus gap")
			assert.Zero(t, row.Remaining)
		}
	}
	assert.Contains(t, RenderText(r), "NUTRIENT BALANCE:")
}
