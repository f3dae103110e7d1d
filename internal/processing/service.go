// Package processing wires the calculation packages to storage and export.
// It is the layer the HTTP handlers talk to.
package processing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mpietrzak/desorb/internal/calibration"
	"github.com/mpietrzak/desorb/internal/diffusion"
	"github.com/mpietrzak/desorb/internal/export"
	"github.com/mpietrzak/desorb/internal/quantify"
	"github.com/mpietrzak/desorb/internal/repository"
	"github.com/mpietrzak/desorb/pkg/models"
)

// CalibrationInput carries a calibration submission into the service.
type CalibrationInput struct {
	PeakAreas           []float64
	GasConcentrationPPM float64
	Operator            string
	Notes               string
}

// Service coordinates calibration processing, hydrogen quantification and
// diffusion analysis.
type Service interface {
	ProcessCalibration(ctx context.Context, in CalibrationInput) (*models.CalibrationRecord, error)
	QuantifySeries(ctx context.Context, calibrationID string, series *models.MeasurementSeries, params models.ProcessParams, exportCSV bool) (*models.QuantifiedSeries, string, error)
	AnalyzeDiffusion(ctx context.Context, timeMinutes, rate, cumulative []float64, opts diffusion.Options) (*models.DiffusionFit, error)
}

type service struct {
	repo          repository.CalibrationRepository
	exporter      *export.CSVExporter
	defaultGasPPM float64
	log           zerolog.Logger
	now           func() time.Time
}

// NewService creates the processing service. exporter may be nil to disable
// CSV output entirely.
func NewService(repo repository.CalibrationRepository, exporter *export.CSVExporter, defaultGasPPM float64, log zerolog.Logger) Service {
	return &service{
		repo:          repo,
		exporter:      exporter,
		defaultGasPPM: defaultGasPPM,
		log:           log,
		now:           time.Now,
	}
}

// ProcessCalibration reduces raw peak areas to a record, allocates its ID and
// persists it. A CSV copy is written alongside when an exporter is
// configured; export failures are logged but do not fail the calibration.
func (s *service) ProcessCalibration(ctx context.Context, in CalibrationInput) (*models.CalibrationRecord, error) {
	gasPPM := in.GasConcentrationPPM
	if gasPPM <= 0 {
		gasPPM = s.defaultGasPPM
	}

	record, err := calibration.ComputeStatistics(in.PeakAreas, gasPPM)
	if err != nil {
		return nil, err
	}
	record.Date = s.now().Format("2006-01-02")
	record.ProcessedAt = s.now()
	record.Operator = in.Operator
	record.Notes = in.Notes

	id, err := s.repo.NextID(ctx, record.Date)
	if err != nil {
		return nil, err
	}
	record.ID = id

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("calibration_id", record.ID).
		Int("num_runs", record.NumRuns).
		Float64("cv_percent", record.CVPercent).
		Float64("quality_score", record.QualityScore).
		Bool("is_valid", record.IsValid).
		Msg("calibration processed")

	if s.exporter != nil {
		if path, err := s.exporter.WriteCalibration(record); err != nil {
			s.log.Warn().Err(err).Str("calibration_id", record.ID).Msg("calibration CSV export failed")
		} else {
			s.log.Debug().Str("path", path).Msg("calibration CSV written")
		}
	}

	return record, nil
}

// QuantifySeries loads the calibration, converts the series and optionally
// writes the annotated CSV export. The returned path is empty unless an
// export was requested and written.
func (s *service) QuantifySeries(ctx context.Context, calibrationID string, series *models.MeasurementSeries, params models.ProcessParams, exportCSV bool) (*models.QuantifiedSeries, string, error) {
	cal, err := s.repo.GetByID(ctx, calibrationID)
	if err != nil {
		return nil, "", err
	}

	quantified, err := quantify.Quantify(series, cal, params)
	if err != nil {
		return nil, "", err
	}
	quantified.ResultID = uuid.NewString()

	s.log.Info().
		Str("result_id", quantified.ResultID).
		Str("experiment", series.ExperimentName).
		Str("calibration_id", calibrationID).
		Str("mode", string(params.Mode)).
		Int("points", quantified.Len()).
		Int("warnings", len(quantified.Warnings)).
		Msg("series quantified")

	var exportPath string
	if exportCSV && s.exporter != nil {
		exportPath, err = s.exporter.WriteQuantified(quantified, cal)
		if err != nil {
			return nil, "", err
		}
		s.log.Debug().Str("path", exportPath).Msg("results CSV written")
	}

	return quantified, exportPath, nil
}

// AnalyzeDiffusion runs the tail regression over an already quantified
// series.
func (s *service) AnalyzeDiffusion(_ context.Context, timeMinutes, rate, cumulative []float64, opts diffusion.Options) (*models.DiffusionFit, error) {
	fit, err := diffusion.Analyze(timeMinutes, rate, cumulative, opts)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("transform", string(fit.Transform)).
		Float64("tail_start_minutes", fit.TailStartMinutes).
		Float64("r_squared", fit.RSquared).
		Str("goodness_of_fit", fit.GoodnessOfFit).
		Msg("diffusion analysis complete")

	return fit, nil
}
