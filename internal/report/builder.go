// Package report assembles a fertilizer recommendation report from a soil
// sample and a crop, and renders it as text or as a JSON document. Both
// renderings read the same Report; neither recomputes anything.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"fertilizer-advisor/internal/diagnosis"
	"fertilizer-advisor/internal/models"
	"fertilizer-advisor/internal/reference"
	"fertilizer-advisor/internal/selection"
)

const (
	// Title heads every report
	Title = "FERTILIZER RECOMMENDATION REPORT"
	// DateLayout formats the recommendation date, e.g. 05-Mar-2024
	DateLayout = "02-Jan-2006"

	notApplicable  = "N/A"
	lowOCNoteBelow = 0.5
)

// reportNamespace scopes report IDs
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("fertilizer-advisor/report"))

// Request is the input of one report build
type Request struct {
	Sample     models.SoilSample
	Crop       string
	FarmerName string
	Location   string
}

// Header identifies a report
type Header struct {
	Title      string
	ReportID   string
	Crop       string
	Date       string
	FarmerName string
	Location   string
}

// SoilTestResult is one row of the soil test table
type SoilTestResult struct {
	Nutrient       models.Nutrient
	Parameter      string
	Value          float64
	Classification string
	Status         string
	Classified     bool
}

// NutrientBalance shows how much of a deficiency the recommended products
// supply and how much is left uncovered (kg/ha)
type NutrientBalance struct {
	Nutrient  models.Nutrient
	Deficit   float64
	Supplied  float64
	Remaining float64
}

// Report is the complete result of one recommendation run
type Report struct {
	Header          Header
	KnownCrop       bool
	SoilTests       []SoilTestResult
	Deficiencies    []models.Deficiency
	Recommendations []models.Recommendation
	Balance         []NutrientBalance
	SpecialNotes    []string
	Summary         string
}

// Products returns the distinct recommended products in application order
func (r *Report) Products() []string {
	seen := make(map[string]bool, len(r.Recommendations))
	var out []string
	for _, rec := range r.Recommendations {
		if !seen[rec.Product] {
			seen[rec.Product] = true
			out = append(out, rec.Product)
		}
	}
	return out
}

// Impact labels a deficiency for the analysis table
func Impact(d models.Deficiency) string {
	if d.Deficient() {
		return "Critical"
	}
	return "Adequate"
}

// Option configures a Builder
type Option func(*Builder)

// WithClock sets the time source used for the report date
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithSelector replaces the default fertilizer selector
func WithSelector(s *selection.Selector) Option {
	return func(b *Builder) { b.selector = s }
}

// Builder runs classification, deficiency calculation and fertilizer
// selection for a request. A Builder holds no per-request state and may be
// shared by concurrent callers.
type Builder struct {
	tables     *reference.Tables
	classifier *diagnosis.Classifier
	calculator *diagnosis.Calculator
	selector   *selection.Selector
	now        func() time.Time
}

// NewBuilder creates a report builder over the given tables
func NewBuilder(tables *reference.Tables, opts ...Option) *Builder {
	b := &Builder{
		tables:     tables,
		classifier: diagnosis.NewClassifier(tables),
		calculator: diagnosis.NewCalculator(tables),
		selector:   selection.NewSelector(tables),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build produces the report for one request
func (b *Builder) Build(req Request) *Report {
	classifications := b.classifier.Classify(req.Sample)
	deficiencies := b.calculator.ComputeDeficiencies(req.Sample, req.Crop)

	ledger := selection.NewLedger(deficiencies)
	recs := b.selector.Select(ledger, selection.Input{
		Crop:            req.Crop,
		Sample:          req.Sample,
		Classifications: classifications,
	})

	_, known := b.tables.LookupCrop(req.Crop)
	date := b.now().Format(DateLayout)

	r := &Report{
		Header: Header{
			Title:      Title,
			ReportID:   reportID(req, date),
			Crop:       reference.NormalizeCropName(req.Crop),
			Date:       date,
			FarmerName: strings.TrimSpace(req.FarmerName),
			Location:   strings.TrimSpace(req.Location),
		},
		KnownCrop:       known,
		SoilTests:       soilTests(req.Sample, classifications),
		Deficiencies:    deficiencies.Ordered(),
		Recommendations: recs,
		Balance:         balance(ledger),
	}
	r.SpecialNotes = b.specialNotes(req, classifications)
	r.Summary = summary(r.Products())
	return r
}

// balance lists every nutrient that started deficient, in PlantNutrients order
func balance(l *selection.Ledger) []NutrientBalance {
	remaining := l.Snapshot()
	var out []NutrientBalance
	for _, n := range models.PlantNutrients {
		if !l.OriginallyDeficient(n) {
			continue
		}
		out = append(out, NutrientBalance{
			Nutrient:  n,
			Deficit:   l.Original(n),
			Supplied:  l.Covered(n),
			Remaining: remaining[n],
		})
	}
	return out
}

func soilTests(sample models.SoilSample, classifications models.Classifications) []SoilTestResult {
	out := make([]SoilTestResult, 0, sample.Len())
	for _, n := range models.SoilParameters {
		v, ok := sample.Value(n)
		if !ok {
			continue
		}
		row := SoilTestResult{
			Nutrient:       n,
			Parameter:      models.DisplayNameFor(n, sample.Key(n)),
			Value:          v,
			Classification: notApplicable,
			Status:         notApplicable,
		}
		if c, ok := classifications[n]; ok {
			row.Classification = c.Category
			row.Status = strings.ToUpper(string(c.Severity))
			row.Classified = true
		}
		out = append(out, row)
	}
	return out
}

func (b *Builder) specialNotes(req Request, classifications models.Classifications) []string {
	var notes []string

	if classifications.Severity(models.PH) == models.SeverityCritical {
		notes = append(notes, "Soil pH needs correction before fertilizer application")
	}
	if note, ok := b.tables.CropNote(req.Crop); ok {
		notes = append(notes, note)
	}

	crop, _ := b.tables.LookupCrop(req.Crop)
	switch {
	case crop.Name == "SUGARCANE" || crop.Name == "POTATO" || crop.Name == "COTTON":
		notes = append(notes, "Split applications recommended (3-4 splits during crop growth)")
	case crop.Name == "PADDY" || crop.Name == "WHEAT":
		notes = append(notes, "Basal application at planting and top dressing recommended")
	case crop.Category == reference.CategoryFruit:
		notes = append(notes, "Soil application + foliar sprays recommended for better nutrient uptake")
	}

	if oc, ok := req.Sample.Value(models.OC); ok && oc < lowOCNoteBelow {
		notes = append(notes, "Regular organic matter addition recommended to improve soil health")
	}
	return notes
}

func summary(products []string) string {
	if len(products) == 0 {
		return "Soil nutrient levels are adequate; no fertilizer application required."
	}
	return fmt.Sprintf("Based on soil analysis, recommended products include: %s.", strings.Join(products, ", "))
}

// reportID derives a stable ID from everything that shapes the report, so a
// rebuild of the same request on the same day yields the same ID.
func reportID(req Request, date string) string {
	values := req.Sample.Values()
	keys := make([]string, 0, len(values))
	for n := range values {
		keys = append(keys, string(n))
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%s|%s|%s", reference.NormalizeCropName(req.Crop), req.FarmerName, req.Location, date)
	for _, k := range keys {
		fmt.Fprintf(&sb, "|%s=%g", k, values[models.Nutrient(k)])
	}
	return uuid.NewSHA1(reportNamespace, []byte(sb.String())).String()
}
