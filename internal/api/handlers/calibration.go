package handlers

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mpietrzak/desorb/internal/processing"
	"github.com/mpietrzak/desorb/internal/repository"
	"github.com/mpietrzak/desorb/pkg/models"
)

// CalibrationHandler handles calibration-related HTTP requests
type CalibrationHandler struct {
	repo repository.CalibrationRepository
	svc  processing.Service
}

// NewCalibrationHandler creates a new calibration handler
func NewCalibrationHandler(repo repository.CalibrationRepository, svc processing.Service) *CalibrationHandler {
	return &CalibrationHandler{repo: repo, svc: svc}
}

// CreateCalibration reduces submitted peak areas to a stored calibration record
func (h *CalibrationHandler) CreateCalibration(ctx context.Context, req *models.CreateCalibrationRequest) (*models.CalibrationResponse, error) {
	log.Info().Int("peak_areas", len(req.Body.PeakAreas)).Msg("Processing calibration submission")

	record, err := h.svc.ProcessCalibration(ctx, processing.CalibrationInput{
		PeakAreas:           req.Body.PeakAreas,
		GasConcentrationPPM: req.Body.GasConcentrationPPM,
		Operator:            req.Body.Operator,
		Notes:               req.Body.Notes,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &models.CalibrationResponse{Body: record}, nil
}

// GetCalibration returns a calibration record by ID
func (h *CalibrationHandler) GetCalibration(ctx context.Context, req *models.GetCalibrationRequest) (*models.CalibrationResponse, error) {
	record, err := h.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return &models.CalibrationResponse{Body: record}, nil
}

// ListCalibrations returns recent calibration records, newest first
func (h *CalibrationHandler) ListCalibrations(ctx context.Context, req *models.ListCalibrationsRequest) (*models.ListCalibrationsResponse, error) {
	records, err := h.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}

	resp := &models.ListCalibrationsResponse{}
	resp.Body.Calibrations = records
	return resp, nil
}

// SuggestCalibration returns the valid calibration dated closest to the
// given experiment date
func (h *CalibrationHandler) SuggestCalibration(ctx context.Context, req *models.SuggestCalibrationRequest) (*models.CalibrationResponse, error) {
	record, err := h.repo.SuggestForDate(ctx, req.Date)
	if err != nil {
		return nil, mapError(err)
	}
	return &models.CalibrationResponse{Body: record}, nil
}

// DeleteCalibration removes a calibration record by ID
func (h *CalibrationHandler) DeleteCalibration(ctx context.Context, req *models.DeleteCalibrationRequest) (*models.DeleteCalibrationResponse, error) {
	if err := h.repo.Delete(ctx, req.ID); err != nil {
		return nil, mapError(err)
	}
	log.Info().Str("calibration_id", req.ID).Msg("Calibration deleted")

	resp := &models.DeleteCalibrationResponse{}
	resp.Body.Deleted = true
	return resp, nil
}
