package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"fertilizer-advisor/internal/models"
)

var rule = strings.Repeat("=", 80)

// RenderText renders the report as plain text with one table per section
func RenderText(r *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s\n%s\n%s\n", rule, r.Header.Title, rule)
	fmt.Fprintf(&sb, "Report ID: %s\n", r.Header.ReportID)
	if r.Header.FarmerName != "" {
		fmt.Fprintf(&sb, "Farmer Name: %s\n", r.Header.FarmerName)
	}
	if r.Header.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n", r.Header.Location)
	}
	fmt.Fprintf(&sb, "Crop: %s\n", r.Header.Crop)
	fmt.Fprintf(&sb, "Recommendation Date: %s\n", r.Header.Date)

	section(&sb, "SOIL TEST RESULTS", soilTable(r))
	section(&sb, "NUTRIENT DEFICIENCY ANALYSIS", deficiencyTable(r))
	section(&sb, "FERTILIZER RECOMMENDATIONS", recommendationTable(r))
	if len(r.Balance) > 0 {
		section(&sb, "NUTRIENT BALANCE", balanceTable(r))
	}

	fmt.Fprintf(&sb, "\n%s\n\nSPECIAL RECOMMENDATIONS:\n", rule)
	for _, note := range r.SpecialNotes {
		fmt.Fprintf(&sb, "- %s\n", note)
	}

	fmt.Fprintf(&sb, "\n%s\n\nSUMMARY: %s\n\n%s\n", rule, r.Summary, rule)
	return sb.String()
}

func section(sb *strings.Builder, title, body string) {
	fmt.Fprintf(sb, "\n%s\n\n%s:\n%s\n", rule, title, body)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func soilTable(r *Report) string {
	t := newTable("Parameter", "Value", "Classification", "Status")
	for _, row := range r.SoilTests {
		t.Row(row.Parameter, formatValue(row.Value), row.Classification, row.Status)
	}
	return t.Render()
}

func deficiencyTable(r *Report) string {
	t := newTable("Nutrient", "Target", "Deficiency (kg/ha)", "Severity", "Impact")
	for _, d := range r.Deficiencies {
		t.Row(string(d.Nutrient), fmt.Sprintf("%.2f", d.Target), fmt.Sprintf("%.2f", d.Amount),
			strings.ToUpper(string(d.Severity)), Impact(d))
	}
	return t.Render()
}

func recommendationTable(r *Report) string {
	t := newTable("Type", "Product", "Dose", "Quantity", "Covers / Purpose")
	for _, rec := range r.Recommendations {
		if rec.Type == models.SoilAmendment {
			t.Row(string(rec.Type), rec.Product, rec.Dose, "-", rec.Purpose)
			continue
		}
		detail := formatCovers(rec)
		if detail == "" {
			detail = rec.Purpose
		}
		t.Row(string(rec.Type), rec.Product, fmt.Sprintf("%.2f kg/ha", rec.AmountKg), quantity(rec), detail)
	}
	return t.Render()
}

func balanceTable(r *Report) string {
	t := newTable("Nutrient", "Deficit (kg/ha)", "Supplied (kg/ha)", "Remaining (kg/ha)")
	for _, b := range r.Balance {
		t.Row(string(b.Nutrient), fmt.Sprintf("%.2f", b.Deficit), fmt.Sprintf("%.2f", b.Supplied), fmt.Sprintf("%.2f", b.Remaining))
	}
	return t.Render()
}

func formatCovers(rec models.Recommendation) string {
	parts := make([]string, 0, len(rec.Covers))
	for _, n := range rec.CoveredNutrients() {
		parts = append(parts, fmt.Sprintf("%s: %.2f kg/ha", n, rec.Covers[n]))
	}
	return strings.Join(parts, ", ")
}

func quantity(rec models.Recommendation) string {
	return fmt.Sprintf("%.2f %s", rec.Packs, rec.Unit)
}

func formatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// JSONReport is the structured view of a Report
type JSONReport struct {
	Header                    JSONHeader           `json:"header"`
	SoilTestResults           []JSONSoilResult     `json:"soil_test_results"`
	DeficiencyAnalysis        []JSONDeficiency     `json:"deficiency_analysis"`
	FertilizerRecommendations []JSONRecommendation `json:"fertilizer_recommendations"`
	NutrientBalance           []JSONBalance        `json:"nutrient_balance"`
	SpecialRecommendations    []string             `json:"special_recommendations"`
	Summary                   string               `json:"summary"`
}

// JSONHeader identifies the report
type JSONHeader struct {
	Title      string `json:"title"`
	ReportID   string `json:"report_id"`
	FarmerName string `json:"farmer_name,omitempty"`
	Location   string `json:"location,omitempty"`
	Crop       string `json:"crop"`
	Date       string `json:"date"`
}

// JSONSoilResult is one soil-test reading with its classification
type JSONSoilResult struct {
	Parameter      string  `json:"parameter"`
	Value          float64 `json:"value"`
	Classification string  `json:"classification"`
	Status         string  `json:"status"`
}

// JSONDeficiency is one row of the deficiency analysis
type JSONDeficiency struct {
	Nutrient   string  `json:"nutrient"`
	Target     float64 `json:"target"`
	Deficiency float64 `json:"deficiency"`
	Severity   string  `json:"severity"`
	Impact     string  `json:"impact"`
}

// JSONRecommendation is one recommended product. Amendments carry a dose
// text; fertilizers carry a dose in kg/ha and a pack quantity.
type JSONRecommendation struct {
	Type        string             `json:"type"`
	Stage       string             `json:"stage"`
	Product     string             `json:"product"`
	Dose        string             `json:"dose,omitempty"`
	DoseKgHa    *float64           `json:"dose_kg_ha,omitempty"`
	Quantity    string             `json:"quantity,omitempty"`
	Covers      map[string]float64 `json:"covers,omitempty"`
	Purpose     string             `json:"purpose,omitempty"`
	Application string             `json:"application,omitempty"`
}

// JSONBalance is one row of the nutrient balance
type JSONBalance struct {
	Nutrient  string  `json:"nutrient"`
	Deficit   float64 `json:"deficit"`
	Supplied  float64 `json:"supplied"`
	Remaining float64 `json:"remaining"`
}

// RenderJSON builds the structured view of the report. Numbers are rounded
// to two decimals the same way the text view prints them.
func RenderJSON(r *Report) JSONReport {
	out := JSONReport{
		Header: JSONHeader{
			Title:      r.Header.Title,
			ReportID:   r.Header.ReportID,
			FarmerName: r.Header.FarmerName,
			Location:   r.Header.Location,
			Crop:       r.Header.Crop,
			Date:       r.Header.Date,
		},
		SoilTestResults:           make([]JSONSoilResult, 0, len(r.SoilTests)),
		DeficiencyAnalysis:        make([]JSONDeficiency, 0, len(r.Deficiencies)),
		FertilizerRecommendations: make([]JSONRecommendation, 0, len(r.Recommendations)),
		NutrientBalance:           make([]JSONBalance, 0, len(r.Balance)),
		SpecialRecommendations:    append([]string{}, r.SpecialNotes...),
		Summary:                   r.Summary,
	}

	for _, row := range r.SoilTests {
		out.SoilTestResults = append(out.SoilTestResults, JSONSoilResult{
			Parameter:      row.Parameter,
			Value:          row.Value,
			Classification: row.Classification,
			Status:         row.Status,
		})
	}

	for _, d := range r.Deficiencies {
		out.DeficiencyAnalysis = append(out.DeficiencyAnalysis, JSONDeficiency{
			Nutrient:   string(d.Nutrient),
			Target:     round2(d.Target),
			Deficiency: round2(d.Amount),
			Severity:   strings.ToUpper(string(d.Severity)),
			Impact:     Impact(d),
		})
	}

	for _, rec := range r.Recommendations {
		jr := JSONRecommendation{
			Type:        string(rec.Type),
			Stage:       string(rec.Stage),
			Product:     rec.Product,
			Purpose:     rec.Purpose,
			Application: rec.Application,
		}
		if rec.Type == models.SoilAmendment {
			jr.Dose = rec.Dose
		} else {
			dose := round2(rec.AmountKg)
			jr.DoseKgHa = &dose
			jr.Quantity = quantity(rec)
			if len(rec.Covers) > 0 {
				jr.Covers = make(map[string]float64, len(rec.Covers))
				for n, v := range rec.Covers {
					jr.Covers[string(n)] = round2(v)
				}
			}
		}
		out.FertilizerRecommendations = append(out.FertilizerRecommendations, jr)
	}

	for _, b := range r.Balance {
		out.NutrientBalance = append(out.NutrientBalance, JSONBalance{
			Nutrient:  string(b.Nutrient),
			Deficit:   round2(b.Deficit),
			Supplied:  round2(b.Supplied),
			Remaining: round2(b.Remaining),
		})
	}

	return out
}
