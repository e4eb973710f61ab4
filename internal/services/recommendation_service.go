package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fertilizer-advisor/internal/config"
	"fertilizer-advisor/internal/models"
	"fertilizer-advisor/internal/reference"
	"fertilizer-advisor/internal/report"
	"fertilizer-advisor/pkg/logging"
	"fertilizer-advisor/pkg/metrics"
)

// RecommendationService turns soil-test records into fertilizer reports
type RecommendationService struct {
	tables  *reference.Tables
	builder *report.Builder
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// RecommendationRequest is one soil-test record as supplied by a caller
type RecommendationRequest struct {
	Soil       map[string]any `yaml:"soil" json:"soil"`
	Crop       string         `yaml:"crop" json:"crop"`
	FarmerName string         `yaml:"farmer_name" json:"farmer_name"`
	Location   string         `yaml:"location" json:"location"`
	Village    string         `yaml:"village" json:"village"`
	District   string         `yaml:"district" json:"district"`
}

// location returns the explicit location, or one composed from village and
// district.
func (r RecommendationRequest) location() string {
	if loc := strings.TrimSpace(r.Location); loc != "" {
		return loc
	}
	var parts []string
	for _, p := range []string{r.Village, r.District} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// BatchItem is the outcome of one request in a batch
type BatchItem struct {
	Index  int
	Crop   string
	Report *report.Report
	Err    error
}

// BatchResult contains batch statistics
type BatchResult struct {
	Items     []BatchItem
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// CropInfo describes one entry of the crop catalogue
type CropInfo struct {
	Name         string
	Category     reference.Category
	Requirements map[models.Nutrient]float64
}

// NewRecommendationService creates a new recommendation service. A nil
// logger discards log output.
func NewRecommendationService(tables *reference.Tables, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, opts ...report.Option) *RecommendationService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &RecommendationService{
		tables:  tables,
		builder: report.NewBuilder(tables, opts...),
		logger:  logger,
		metrics: metricsCollector,
	}
}

// LoadTables returns the reference tables described by cfg: the built-in
// tables, or the override file when one is configured, with the configured
// blend weight applied.
func LoadTables(cfg *config.Config) (*reference.Tables, error) {
	tables := reference.Default()
	if cfg.Engine.TablesPath != "" {
		loaded, err := reference.LoadFile(cfg.Engine.TablesPath)
		if err != nil {
			return nil, err
		}
		tables = loaded
	}
	if w := cfg.Engine.BlendWeight; w != nil {
		tables.BlendWeight = *w
	}
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reference tables: %w", err)
	}
	return tables, nil
}

// Recommend validates one soil-test record and builds its report
func (s *RecommendationService) Recommend(ctx context.Context, req RecommendationRequest) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.metrics.ActiveBuilds.Inc()
	defer s.metrics.ActiveBuilds.Dec()
	timer := s.metrics.NewTimer(s.metrics.ReportBuildDuration)

	s.logger.Debug(ctx, "[RECOMMEND_START] Building recommendation", logging.Fields{
		"crop":        req.Crop,
		"param_count": len(req.Soil),
		"stage":       "INITIALIZATION",
	})

	sample, err := models.ParseSoilSample(req.Soil)
	if err != nil {
		var invalid *models.InvalidInputError
		if errors.As(err, &invalid) {
			s.metrics.RecordInvalidInput(invalid.Field)
		}
		s.metrics.RecordReport(s.knownCrop(req.Crop), "invalid_input")
		s.logger.Error(ctx, "[RECOMMEND_ERROR] Soil sample rejected", logging.Fields{
			"crop":  req.Crop,
			"stage": "VALIDATION",
		}, err)
		return nil, fmt.Errorf("invalid soil sample: %w", err)
	}

	if !s.knownCrop(req.Crop) {
		s.logger.Warn(ctx, "[RECOMMEND_UNKNOWN_CROP] Crop not in requirement table, using optimal levels only", logging.Fields{
			"crop":  req.Crop,
			"stage": "CROP_LOOKUP",
		})
	}

	r := s.builder.Build(report.Request{
		Sample:     sample,
		Crop:       req.Crop,
		FarmerName: req.FarmerName,
		Location:   req.location(),
	})
	duration := timer.ObserveDuration()

	s.metrics.RecordReport(r.KnownCrop, "ok")
	deficient := 0
	for _, d := range r.Deficiencies {
		if d.Deficient() {
			deficient++
			s.metrics.RecordDeficiency(string(d.Nutrient), string(d.Severity))
		}
	}
	for _, rec := range r.Recommendations {
		s.metrics.RecordRecommendation(string(rec.Stage), rec.Product)
	}

	s.logger.Info(ctx, "[RECOMMEND_COMPLETE] Recommendation built", logging.Fields{
		"report_id":            r.Header.ReportID,
		"crop":                 r.Header.Crop,
		"known_crop":           r.KnownCrop,
		"deficient_nutrients":  deficient,
		"recommendation_count": len(r.Recommendations),
		"duration_ms":          duration.Milliseconds(),
		"stage":                "COMPLETE",
	})

	return r, nil
}

// RecommendBatch builds reports for many records with at most concurrency
// builds in flight. A rejected record fails only its own item; the batch
// fails as a whole only when ctx is cancelled.
func (s *RecommendationService) RecommendBatch(ctx context.Context, reqs []RecommendationRequest, concurrency int) (*BatchResult, error) {
	startTime := time.Now()
	if concurrency < 1 {
		concurrency = 1
	}

	log := s.logger.WithFields(logging.Fields{
		"batch_size":  len(reqs),
		"concurrency": concurrency,
	})
	log.Info(ctx, "[BATCH_START] Starting batch recommendation", logging.Fields{
		"stage": "INITIALIZATION",
	})
	s.metrics.BatchSize.Observe(float64(len(reqs)))

	items := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ictx := logging.WithRequestID(gctx, itemRequestID(ctx, i))
			r, err := s.Recommend(ictx, req)
			items[i] = BatchItem{Index: i, Crop: req.Crop, Report: r, Err: err}
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error(ctx, "[BATCH_ERROR] Batch cancelled", logging.Fields{
			"stage": "PROCESSING",
		}, err)
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	result := &BatchResult{Items: items}
	for _, item := range items {
		if item.Err != nil {
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	result.Duration = time.Since(startTime)
	s.metrics.BatchDuration.Observe(result.Duration.Seconds())

	log.Info(ctx, "[BATCH_COMPLETE] Batch recommendation completed", logging.Fields{
		"succeeded":        result.Succeeded,
		"failed":           result.Failed,
		"duration_seconds": result.Duration.Seconds(),
		"stage":            "COMPLETE",
	})

	return result, nil
}

// Crops returns the crop catalogue sorted by name
func (s *RecommendationService) Crops() []CropInfo {
	names := s.tables.CropNames()
	out := make([]CropInfo, 0, len(names))
	for _, name := range names {
		c := s.tables.Crops[name]
		req := make(map[models.Nutrient]float64, len(c.Requirements))
		for n, v := range c.Requirements {
			req[n] = v
		}
		out = append(out, CropInfo{Name: c.Name, Category: c.Category, Requirements: req})
	}
	return out
}

// itemRequestID names batch item i, nested under the batch's own request ID
// when the caller set one
func itemRequestID(ctx context.Context, i int) string {
	if id, ok := logging.RequestIDFrom(ctx); ok {
		return fmt.Sprintf("%s/batch-%d", id, i)
	}
	return fmt.Sprintf("batch-%d", i)
}

func (s *RecommendationService) knownCrop(crop string) bool {
	_, ok := s.tables.LookupCrop(crop)
	return ok
}
