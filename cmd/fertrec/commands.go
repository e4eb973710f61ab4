package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fertilizer-advisor/internal/config"
	"fertilizer-advisor/internal/models"
	"fertilizer-advisor/internal/report"
	"fertilizer-advisor/internal/services"
	"fertilizer-advisor/pkg/logging"
	"fertilizer-advisor/pkg/metrics"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	configPath string
	tablesPath string
	logLevel   string

	cfg      *config.Config
	logger   *logging.StructuredLogger
	registry *prometheus.Registry
	service  *services.RecommendationService
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "fertrec",
		Short: "Soil diagnosis and fertilizer recommendation",
		Long: `fertrec classifies soil-test readings, computes nutrient deficiencies
against crop requirements, and recommends soil amendments, compound and
straight fertilizers, organic manures and crop-specific additions.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvConfigPath+")")
	root.PersistentFlags().StringVar(&a.tablesPath, "tables", "", "YAML file overriding the built-in reference tables")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRecommendCmd(a),
		newBatchCmd(a),
		newCropsCmd(a),
		newDemoCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	cfg, err := config.LoadConfigFrom(path)
	if err != nil {
		return err
	}
	if a.tablesPath != "" {
		cfg.Engine.TablesPath = a.tablesPath
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	// Reports go to stdout, logs to stderr
	a.logger = logging.NewStructuredLogger("fertrec", version, cfg.LogLevel())
	a.logger.SetOutput(cmd.ErrOrStderr())
	// Every log line of one invocation shares a request ID
	cmd.SetContext(logging.WithRequestID(cmd.Context(), uuid.NewString()))

	tables, err := services.LoadTables(cfg)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	collector := metrics.NewCollector(cfg.Metrics.Namespace, a.registry)
	a.service = services.NewRecommendationService(tables, a.logger, collector)
	return nil
}

func newRecommendCmd(a *app) *cobra.Command {
	var (
		soilPath string
		req      services.RecommendationRequest
		format   string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Build a recommendation report for one soil sample",
		Example: `  fertrec recommend --soil field.yaml --crop wheat --farmer "Ramesh Kumar"
  fertrec recommend --soil field.json --crop paddy --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			soil, err := readSoil(soilPath)
			if err != nil {
				return err
			}
			req.Soil = soil

			r, err := a.service.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), r, format)
		},
	}

	cmd.Flags().StringVar(&soilPath, "soil", "", "YAML or JSON file with soil-test readings")
	cmd.Flags().StringVar(&req.Crop, "crop", "", "crop name")
	cmd.Flags().StringVar(&req.FarmerName, "farmer", "", "farmer name")
	cmd.Flags().StringVar(&req.Location, "location", "", "field location")
	cmd.Flags().StringVar(&req.Village, "village", "", "village, used when --location is empty")
	cmd.Flags().StringVar(&req.District, "district", "", "district, used when --location is empty")
	cmd.Flags().StringVar(&format, "format", formatText, "output format (text, json)")
	_ = cmd.MarkFlagRequired("soil")
	_ = cmd.MarkFlagRequired("crop")
	return cmd
}

// batchEntry is one element of the JSON batch output
type batchEntry struct {
	Index  int                `json:"index"`
	Crop   string             `json:"crop"`
	Report *report.JSONReport `json:"report,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		inputPath   string
		concurrency int
		metricsFile string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Build reports for a file of soil samples",
		Long: `Reads a YAML or JSON list of records, each with soil, crop and optional
farmer_name, location, village and district keys, and builds one report per
record. A rejected record is reported and does not stop the batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("failed to read batch input: %w", err)
			}
			var reqs []services.RecommendationRequest
			if err := yaml.Unmarshal(data, &reqs); err != nil {
				return fmt.Errorf("failed to parse batch input %s: %w", inputPath, err)
			}

			if concurrency <= 0 {
				concurrency = a.cfg.Batch.Concurrency
			}
			result, err := a.service.RecommendBatch(cmd.Context(), reqs, concurrency)
			if err != nil {
				return err
			}

			if err := writeBatch(cmd.OutOrStdout(), result, format); err != nil {
				return err
			}

			if metricsFile == "" {
				metricsFile = a.cfg.Metrics.TextfilePath
			}
			if metricsFile != "" {
				if err := metrics.WriteTextfile(metricsFile, a.registry); err != nil {
					return fmt.Errorf("failed to write metrics: %w", err)
				}
			}

			if result.Failed > 0 {
				return fmt.Errorf("%d of %d records rejected", result.Failed, len(result.Items))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "YAML or JSON file with a list of records")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum reports built in parallel (default from config)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	cmd.Flags().StringVar(&format, "format", formatText, "output format (text, json)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newCropsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "crops",
		Short: "List the crops of the requirement table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Crop", "Category", "Requirements (kg/ha)")
			for _, c := range a.service.Crops() {
				t.Row(c.Name, string(c.Category), formatRequirements(c))
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}
}

// demoSample is the worked example from the field trials: a strongly acidic
// wheat field short of iron and copper.
var demoSample = map[string]any{
	"pH": 4.4, "EC": 0.79, "OC": 1.78,
	"N": 250, "P": 15, "K": 150,
	"Zn": 6.5, "Cu": 0.1, "Fe": 1.11, "Mn": 45.27, "S": 20,
}

func newDemoCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Print the report for a built-in example sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.service.Recommend(cmd.Context(), services.RecommendationRequest{
				Soil:       demoSample,
				Crop:       "Wheat",
				FarmerName: "Ramesh Kumar",
				Village:    "Village XYZ",
				District:   "District ABC",
			})
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), r, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", formatText, "output format (text, json)")
	return cmd
}

func readSoil(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read soil file: %w", err)
	}
	var soil map[string]any
	if err := yaml.Unmarshal(data, &soil); err != nil {
		return nil, fmt.Errorf("failed to parse soil file %s: %w", path, err)
	}
	if len(soil) == 0 {
		return nil, fmt.Errorf("soil file %s has no readings", path)
	}
	return soil, nil
}

func writeReport(w io.Writer, r *report.Report, format string) error {
	switch format {
	case formatText:
		_, err := io.WriteString(w, report.RenderText(r))
		return err
	case formatJSON:
		return writeJSON(w, report.RenderJSON(r))
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeBatch(w io.Writer, result *services.BatchResult, format string) error {
	switch format {
	case formatText:
		for _, item := range result.Items {
			if item.Err != nil {
				if _, err := fmt.Fprintf(w, "\nRecord %d (%s) rejected: %v\n", item.Index, item.Crop, item.Err); err != nil {
					return err
				}
				continue
			}
			if _, err := io.WriteString(w, report.RenderText(item.Report)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "\n%d reports built, %d records rejected in %s\n", result.Succeeded, result.Failed, result.Duration)
		return err
	case formatJSON:
		entries := make([]batchEntry, 0, len(result.Items))
		for _, item := range result.Items {
			entry := batchEntry{Index: item.Index, Crop: item.Crop}
			if item.Err != nil {
				entry.Error = item.Err.Error()
			} else {
				view := report.RenderJSON(item.Report)
				entry.Report = &view
			}
			entries = append(entries, entry)
		}
		return writeJSON(w, entries)
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatRequirements(c services.CropInfo) string {
	parts := make([]string, 0, len(c.Requirements))
	for _, n := range models.PlantNutrients {
		if v, ok := c.Requirements[n]; ok {
			parts = append(parts, fmt.Sprintf("%s %g", n, v))
		}
	}
	return strings.Join(parts, ", ")
}
