package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpietrzak/desorb/pkg/models"
)

func sampleSeries() *models.QuantifiedSeries {
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	s := &models.QuantifiedSeries{
		ExperimentName: "steel A36",
		Mode:           models.ModeMass,
		CalibrationID:  "cal_2026-08-01_001",
		Params: models.ProcessParams{
			Mode:          models.ModeMass,
			SampleWeightG: 5,
			FlowRateMLMin: 20,
			CycleTimeMin:  5,
		},
		MissingRuns: []int{3},
		Warnings:    []string{"1 negative release rates calculated"},
	}
	rates := []float64{10, 25, 8, -0.5}
	cumulative := 0.0
	for i, r := range rates {
		s.Runs = append(s.Runs, i+1)
		s.Timestamps = append(s.Timestamps, start.Add(time.Duration(i)*5*time.Minute))
		s.PeakAreas = append(s.PeakAreas, 1000*float64(i+1))
		s.PeakHeights = append(s.PeakHeights, 100*float64(i+1))
		s.TimeMinutes = append(s.TimeMinutes, float64(i)*5)
		s.Rate = append(s.Rate, r)
		s.AmountPerCycle = append(s.AmountPerCycle, r*5)
		cumulative += r * 5
		s.Cumulative = append(s.Cumulative, cumulative)
		s.QualityFlags = append(s.QualityFlags, nil)
	}
	s.QualityFlags[3] = []string{models.PointFlagNegativeRate}
	return s
}

func sampleCalibration() *models.CalibrationRecord {
	return &models.CalibrationRecord{
		ID:                  "cal_2026-08-01_001",
		Date:                "2026-08-01",
		GasConcentrationPPM: 61,
		MeanPeakArea:        50800,
		StdDeviation:        963.1,
		CVPercent:           1.9,
		QualityScore:        85,
		RawPeakAreas:        []float64{50000, 51000, 52000, 51500, 49500},
		OutlierIndices:      []int{2},
		IsValid:             true,
	}
}

// readDataSection parses the CSV rows after the commented metadata header.
func readDataSection(t *testing.T, data []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(data))
	r.Comment = '#'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteQuantifiedTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteQuantifiedTo(&buf, sampleSeries(), sampleCalibration()))
	out := buf.String()

	assert.Contains(t, out, "# Experiment Name: steel A36")
	assert.Contains(t, out, "# Calibration ID: cal_2026-08-01_001")
	assert.Contains(t, out, "# Missing Run Numbers: 3")
	assert.Contains(t, out, "# Warning: 1 negative release rates calculated")

	rows := readDataSection(t, buf.Bytes())
	require.Len(t, rows, 5) // header plus four points
	assert.Equal(t, "H_ppm_per_min", rows[0][5])
	assert.Equal(t, "Cumulative_H_ppm", rows[0][7])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "08/01/2026 09:00:00", rows[1][1])
	assert.Equal(t, "negative_rate", rows[4][8])
}

func TestWriteQuantifiedCumulativeRoundTrip(t *testing.T) {
	series := sampleSeries()
	var buf bytes.Buffer
	require.NoError(t, WriteQuantifiedTo(&buf, series, nil))

	rows := readDataSection(t, buf.Bytes())[1:]
	running := 0.0
	for i, row := range rows {
		perCycle, err := strconv.ParseFloat(row[6], 64)
		require.NoError(t, err)
		cumulative, err := strconv.ParseFloat(row[7], 64)
		require.NoError(t, err)
		running += perCycle
		assert.InDelta(t, running, cumulative, 1e-7, "row %d", i)
	}
}

func TestWriteQuantifiedSurfaceColumns(t *testing.T) {
	series := sampleSeries()
	series.Mode = models.ModeSurface
	series.Params.Mode = models.ModeSurface
	series.Params.SurfaceAreaCM2 = 2.5

	var buf bytes.Buffer
	require.NoError(t, WriteQuantifiedTo(&buf, series, nil))

	rows := readDataSection(t, buf.Bytes())
	assert.Equal(t, "H_mol_cm2_per_min", rows[0][5])
	assert.Equal(t, "Cumulative_H_mol_cm2", rows[0][7])
	assert.Contains(t, buf.String(), "# Surface Area: 2.5 cm²")
}

func TestWriteCalibrationTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCalibrationTo(&buf, sampleCalibration()))

	assert.Contains(t, buf.String(), "# Calibration ID: cal_2026-08-01_001")
	assert.Contains(t, buf.String(), "# CV%: 1.90%")

	rows := readDataSection(t, buf.Bytes())
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Run", "Peak_Area_µVs", "Outlier_Flag"}, rows[0])
	assert.Equal(t, "outlier", rows[3][2])
	assert.Equal(t, "", rows[1][2])
}

func TestExporterUniqueFileNames(t *testing.T) {
	dir := t.TempDir()
	exporter := NewCSVExporter(dir)
	series := sampleSeries()

	first, err := exporter.WriteQuantified(series, nil)
	require.NoError(t, err)
	second, err := exporter.WriteQuantified(series, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "steel_A36_results.csv"), first)
	assert.Equal(t, filepath.Join(dir, "steel_A36_results_1.csv"), second)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# TDA Hydrogen Analysis Results"))
}
