package handlers

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mpietrzak/desorb/internal/diffusion"
	"github.com/mpietrzak/desorb/internal/processing"
	"github.com/mpietrzak/desorb/pkg/models"
)

// AnalysisHandler handles quantification and diffusion analysis requests
type AnalysisHandler struct {
	svc processing.Service
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(svc processing.Service) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

// Quantify converts a measurement series into hydrogen-release units
func (h *AnalysisHandler) Quantify(ctx context.Context, req *models.QuantifyRequest) (*models.QuantifyResponse, error) {
	log.Info().
		Str("calibration_id", req.Body.CalibrationID).
		Str("experiment", req.Body.Series.ExperimentName).
		Int("measurements", req.Body.Series.Len()).
		Msg("Quantification request received")

	series, exportPath, err := h.svc.QuantifySeries(ctx, req.Body.CalibrationID, &req.Body.Series, req.Body.Params, req.Body.Export)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &models.QuantifyResponse{}
	resp.Body.Series = series
	resp.Body.Summary = series.Summary()
	resp.Body.ExportPath = exportPath
	return resp, nil
}

// AnalyzeDiffusion fits the requested linearization to the desorption tail
func (h *AnalysisHandler) AnalyzeDiffusion(ctx context.Context, req *models.DiffusionRequest) (*models.DiffusionResponse, error) {
	log.Info().
		Str("transform", string(req.Body.Transform)).
		Int("points", len(req.Body.TimeMinutes)).
		Msg("Diffusion analysis request received")

	fit, err := h.svc.AnalyzeDiffusion(ctx, req.Body.TimeMinutes, req.Body.Rate, req.Body.Cumulative, diffusion.Options{
		TailStartMinutes:      req.Body.TailStartMinutes,
		Transform:             req.Body.Transform,
		MinPoints:             req.Body.MinPoints,
		Filter:                req.Body.Filter,
		DetectionLimit:        req.Body.DetectionLimit,
		KeepOrigin:            req.Body.KeepOrigin,
		ComputeD:              req.Body.ComputeD,
		ThicknessCM:           req.Body.ThicknessCM,
		DeltaC:                req.Body.DeltaC,
		TemperatureCelsius:    req.Body.TemperatureCelsius,
		ActivationEnergyKJMol: req.Body.ActivationEnergyKJMol,
		LiteratureD:           req.Body.LiteratureD,
		LiteratureTempCelsius: req.Body.LiteratureTempCelsius,
		MeasuredD:             req.Body.MeasuredD,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &models.DiffusionResponse{Body: fit}, nil
}
