package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mpietrzak/desorb/internal/api/handlers"
	"github.com/mpietrzak/desorb/internal/processing"
	"github.com/mpietrzak/desorb/internal/repository"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, repo repository.CalibrationRepository, svc processing.Service) {
	// Initialize handlers
	calibrationHandler := handlers.NewCalibrationHandler(repo, svc)
	analysisHandler := handlers.NewAnalysisHandler(svc)

	// Register calibration routes
	huma.Register(api, huma.Operation{
		OperationID: "createCalibration",
		Method:      http.MethodPost,
		Path:        "/api/calibrations",
		Summary:     "Process a calibration",
		Description: "Reduces raw calibration peak areas to statistics, quality flags and a quality score",
		Tags:        []string{"Calibration"},
	}, calibrationHandler.CreateCalibration)

	huma.Register(api, huma.Operation{
		OperationID: "listCalibrations",
		Method:      http.MethodGet,
		Path:        "/api/calibrations",
		Summary:     "List calibrations",
		Description: "Returns recent calibration records, newest first",
		Tags:        []string{"Calibration"},
	}, calibrationHandler.ListCalibrations)

	huma.Register(api, huma.Operation{
		OperationID: "suggestCalibration",
		Method:      http.MethodGet,
		Path:        "/api/calibrations/suggest",
		Summary:     "Suggest a calibration for a date",
		Description: "Returns the valid calibration whose date is closest to the given experiment date",
		Tags:        []string{"Calibration"},
	}, calibrationHandler.SuggestCalibration)

	huma.Register(api, huma.Operation{
		OperationID: "getCalibration",
		Method:      http.MethodGet,
		Path:        "/api/calibrations/{id}",
		Summary:     "Get a calibration",
		Description: "Returns a calibration record by ID",
		Tags:        []string{"Calibration"},
	}, calibrationHandler.GetCalibration)

	huma.Register(api, huma.Operation{
		OperationID: "deleteCalibration",
		Method:      http.MethodDelete,
		Path:        "/api/calibrations/{id}",
		Summary:     "Delete a calibration",
		Description: "Removes a calibration record by ID",
		Tags:        []string{"Calibration"},
	}, calibrationHandler.DeleteCalibration)

	// Register analysis routes
	huma.Register(api, huma.Operation{
		OperationID: "quantifySeries",
		Method:      http.MethodPost,
		Path:        "/api/quantify",
		Summary:     "Quantify a measurement series",
		Description: "Converts GC peak areas into hydrogen-release units using a stored calibration",
		Tags:        []string{"Analysis"},
	}, analysisHandler.Quantify)

	huma.Register(api, huma.Operation{
		OperationID: "analyzeDiffusion",
		Method:      http.MethodPost,
		Path:        "/api/diffusion",
		Summary:     "Analyze the desorption tail",
		Description: "Fits a linearized diffusion model to the tail region and optionally derives a diffusion coefficient",
		Tags:        []string{"Analysis"},
	}, analysisHandler.AnalyzeDiffusion)
}
