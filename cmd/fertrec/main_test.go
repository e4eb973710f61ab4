package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fertilizer-advisor/internal/config"
	"fertilizer-advisor/internal/report"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, k := range []string{config.EnvConfigPath, config.EnvLogLevel, config.EnvTablesPath, config.EnvConcurrency} {
		t.Setenv(k, "")
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const fieldYAML = `
pH: 4.4
EC: 0.79
OC: 1.78
N: 250
av_p: 15
av_k: 150
zinc: 6.5
cu: 0.1
iron: 1.11
mn: 45.27
S: 20
`

func TestRecommendCommand(t *testing.T) {
	soil := writeFile(t, "field.yaml", fieldYAML)

	out, logs, err := execute(t, "recommend", "--soil", soil, "--crop", "wheat", "--farmer", "Asha", "--village", "Siwani", "--district", "Bhiwani")
	require.NoError(t, err)
	assert.Contains(t, out, report.Title)
	assert.Contains(t, out, "Location: Siwani, Bhiwani")
	assert.Contains(t, out, "Lime")
	assert.Contains(t, out, "Available P (kg/ha)")
	assert.Contains(t, logs, "[RECOMMEND_COMPLETE]")
	assert.Contains(t, logs, `"request_id"`)
}

func TestRecommendCommandJSON(t *testing.T) {
	soil := writeFile(t, "field.json", `{"pH": 7.0, "EC": 0.5, "OC": 0.9, "N": 500, "P": 30, "K": 300, "Zn": 2, "Cu": 0.5, "Fe": 10, "Mn": 20, "S": 30}`)

	out, _, err := execute(t, "recommend", "--soil", soil, "--crop", "Wheat", "--format", "json", "--log-level", "error")
	require.NoError(t, err)

	var view report.JSONReport
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "WHEAT", view.Header.Crop)
	assert.Len(t, view.SoilTestResults, 11)
	for _, rec := range view.FertilizerRecommendations {
		assert.NotEqual(t, "Soil Amendment", rec.Type)
	}
}

func TestRecommendCommandRejectsText(t *testing.T) {
	soil := writeFile(t, "field.yaml", "pH: \"acidic\"\nN: 250\n")

	_, _, err := execute(t, "recommend", "--soil", soil, "--crop", "wheat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pH")
}

func TestRecommendCommandFlags(t *testing.T) {
	_, _, err := execute(t, "recommend", "--crop", "wheat")
	require.Error(t, err)

	soil := writeFile(t, "field.yaml", fieldYAML)
	_, _, err = execute(t, "recommend", "--soil", soil, "--crop", "wheat", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	_, _, err = execute(t, "recommend", "--soil", soil, "--crop", "wheat", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestBatchCommand(t *testing.T) {
	input := writeFile(t, "batch.yaml", `
- crop: wheat
  farmer_name: Asha
  soil: {pH: 4.4, EC: 0.79, OC: 1.78, N: 250, P: 15, K: 150, Zn: 6.5, Cu: 0.1, Fe: 1.11, Mn: 45.27, S: 20}
- crop: paddy
  location: Karnal
  soil: {pH: 6.5, EC: 0.4, OC: 0.4, N: 200, P: 8, K: 100, Zn: 0.5, Cu: 0.3, Fe: 5, Mn: 8, S: 12}
`)
	metricsFile := filepath.Join(t.TempDir(), "fertrec.prom")

	out, logs, err := execute(t, "batch", "--input", input, "--concurrency", "2", "--metrics-file", metricsFile, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, logs, "/batch-1")

	var entries []batchEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "WHEAT", entries[0].Report.Header.Crop)
	assert.Equal(t, "Karnal", entries[1].Report.Header.Location)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fertrec_reports_total")
}

func TestBatchCommandReportsRejectedRecords(t *testing.T) {
	input := writeFile(t, "batch.yaml", `
- crop: wheat
  soil: {pH: 6.8, N: 250}
- crop: wheat
  soil: {pH: -2}
`)

	out, _, err := execute(t, "batch", "--input", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 records rejected")
	assert.Contains(t, out, "Record 1 (wheat) rejected")
	assert.Contains(t, out, "1 reports built, 1 records rejected")
}

func TestCropsCommand(t *testing.T) {
	out, _, err := execute(t, "crops")
	require.NoError(t, err)
	for _, want := range []string{"PADDY", "SOYABEAN", "BOTTLE GOURD", "CEREALS", "N 120"} {
		assert.Contains(t, out, want)
	}
}

func TestDemoCommand(t *testing.T) {
	out, _, err := execute(t, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Farmer Name: Ramesh Kumar")
	assert.Contains(t, out, "Location: Village XYZ, District ABC")
	assert.Contains(t, out, "Ferrous Sulphate")
	assert.Contains(t, out, "Copper Sulphate")
}

func TestTablesOverrideFlag(t *testing.T) {
	tables := writeFile(t, "tables.yaml", "crops:\n  sorghum:\n    category: cereals\n    requirements: {N: 90}\n")

	out, _, err := execute(t, "crops", "--tables", tables)
	require.NoError(t, err)
	assert.Contains(t, out, "SORGHUM")
}
