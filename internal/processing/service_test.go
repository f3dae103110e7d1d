package processing

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpietrzak/desorb/internal/diffusion"
	"github.com/mpietrzak/desorb/internal/export"
	"github.com/mpietrzak/desorb/internal/repository"
	"github.com/mpietrzak/desorb/internal/repository/memory"
	"github.com/mpietrzak/desorb/pkg/errs"
	"github.com/mpietrzak/desorb/pkg/models"
)

func newTestService(t *testing.T) (*service, repository.CalibrationRepository, string) {
	t.Helper()
	repo := memory.NewStore()
	dir := t.TempDir()
	svc := NewService(repo, export.NewCSVExporter(dir), 61, zerolog.Nop()).(*service)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	return svc, repo, dir
}

func goodPeakAreas() []float64 {
	return []float64{50000, 51000, 52000, 51500, 49500}
}

func measurementSeries(n int) *models.MeasurementSeries {
	start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	s := &models.MeasurementSeries{ExperimentName: "exp-01"}
	for i := 0; i < n; i++ {
		s.Measurements = append(s.Measurements, models.Measurement{
			Run:        i + 1,
			Timestamp:  start.Add(time.Duration(i) * 5 * time.Minute),
			PeakArea:   50000 / float64(i+1),
			PeakHeight: 5000 / float64(i+1),
		})
	}
	return s
}

func TestProcessCalibration(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	record, err := svc.ProcessCalibration(ctx, CalibrationInput{
		PeakAreas: goodPeakAreas(),
		Operator:  "mp",
	})
	require.NoError(t, err)

	assert.Equal(t, "cal_2026-08-29_001", record.ID)
	assert.Equal(t, 61.0, record.GasConcentrationPPM, "default gas concentration applies")
	assert.Equal(t, "mp", record.Operator)
	assert.True(t, record.IsValid)

	stored, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.QualityScore, stored.QualityScore)

	// Same-day calibrations continue the sequence.
	second, err := svc.ProcessCalibration(ctx, CalibrationInput{PeakAreas: goodPeakAreas()})
	require.NoError(t, err)
	assert.Equal(t, "cal_2026-08-29_002", second.ID)
}

func TestProcessCalibrationWritesCSV(t *testing.T) {
	svc, _, dir := newTestService(t)

	record, err := svc.ProcessCalibration(context.Background(), CalibrationInput{PeakAreas: goodPeakAreas()})
	require.NoError(t, err)

	data, err := os.ReadFile(dir + "/" + record.ID + "_processed.csv")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Calibration ID: "+record.ID)
}

func TestProcessCalibrationEmptyInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ProcessCalibration(context.Background(), CalibrationInput{})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestQuantifySeries(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	record, err := svc.ProcessCalibration(ctx, CalibrationInput{PeakAreas: goodPeakAreas()})
	require.NoError(t, err)

	params := models.ProcessParams{
		Mode:          models.ModeMass,
		SampleWeightG: 5,
		FlowRateMLMin: 20,
		CycleTimeMin:  5,
	}

	quantified, path, err := svc.QuantifySeries(ctx, record.ID, measurementSeries(6), params, false)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, 6, quantified.Len())
	assert.Equal(t, record.ID, quantified.CalibrationID)

	_, err = uuid.Parse(quantified.ResultID)
	assert.NoError(t, err, "result ID must be a UUID")

	quantified, path, err = svc.QuantifySeries(ctx, record.ID, measurementSeries(6), params, true)
	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.Equal(t, 6, quantified.Len())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestQuantifySeriesUnknownCalibration(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.QuantifySeries(context.Background(), "cal_1999-01-01_001", measurementSeries(3), models.ProcessParams{
		Mode:          models.ModeMass,
		SampleWeightG: 5,
		FlowRateMLMin: 20,
		CycleTimeMin:  5,
	}, false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAnalyzeDiffusion(t *testing.T) {
	svc, _, _ := newTestService(t)

	var times, rates []float64
	for tm := 10.0; tm <= 200; tm += 10 {
		times = append(times, tm)
		rates = append(rates, 0.5+200/math.Sqrt(tm*60))
	}

	tailStart := 60.0
	fit, err := svc.AnalyzeDiffusion(context.Background(), times, rates, nil, diffusion.Options{
		TailStartMinutes: &tailStart,
		Transform:        models.TransformInvSqrtT,
	})
	require.NoError(t, err)
	assert.InDelta(t, 200, fit.Slope, 1e-9)
	assert.True(t, fit.GoodFit)
}
