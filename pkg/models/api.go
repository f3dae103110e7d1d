package models

import "time"

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateCalibrationRequest submits raw calibration peak areas for reduction.
type CreateCalibrationRequest struct {
	Body struct {
		PeakAreas           []float64 `json:"peak_areas" minItems:"1" required:"true" doc:"Calibration peak areas in µV·s"`
		GasConcentrationPPM float64   `json:"gas_concentration_ppm,omitempty" minimum:"0" doc:"Standard gas concentration in ppm (default from config)"`
		Operator            string    `json:"operator,omitempty" maxLength:"100"`
		Notes               string    `json:"notes,omitempty" maxLength:"500"`
	}
}

// CalibrationResponse wraps a single calibration record.
type CalibrationResponse struct {
	Body *CalibrationRecord
}

// GetCalibrationRequest addresses a calibration by identifier.
type GetCalibrationRequest struct {
	ID string `path:"id" doc:"Calibration ID, format cal_YYYY-MM-DD_NNN"`
}

// ListCalibrationsRequest asks for recent calibrations.
type ListCalibrationsRequest struct {
	Limit int `query:"limit" default:"10" minimum:"1" maximum:"100" doc:"Maximum records to return"`
}

// ListCalibrationsResponse carries recent calibrations, newest first.
type ListCalibrationsResponse struct {
	Body struct {
		Calibrations []*CalibrationRecord `json:"calibrations"`
	}
}

// SuggestCalibrationRequest asks for the valid calibration closest to a date.
type SuggestCalibrationRequest struct {
	Date string `query:"date" required:"true" pattern:"^\\d{4}-\\d{2}-\\d{2}$" doc:"Experiment date, YYYY-MM-DD"`
}

// DeleteCalibrationRequest addresses a calibration for deletion.
type DeleteCalibrationRequest struct {
	ID string `path:"id" doc:"Calibration ID"`
}

// DeleteCalibrationResponse confirms deletion.
type DeleteCalibrationResponse struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

// QuantifyRequest converts a measurement series into hydrogen-release units.
type QuantifyRequest struct {
	Body struct {
		CalibrationID string            `json:"calibration_id" required:"true" doc:"Calibration to apply"`
		Series        MeasurementSeries `json:"series" required:"true"`
		Params        ProcessParams     `json:"params" required:"true"`
		Export        bool              `json:"export,omitempty" doc:"Write a metadata-annotated CSV export"`
	}
}

// QuantifyResponse carries the quantified series and optional export path.
type QuantifyResponse struct {
	Body struct {
		Series     *QuantifiedSeries `json:"series"`
		Summary    SeriesSummary     `json:"summary"`
		ExportPath string            `json:"export_path,omitempty" doc:"Path of the written CSV, when export was requested"`
	}
}

// DiffusionRequest runs a tail regression over a quantified series.
type DiffusionRequest struct {
	Body struct {
		TimeMinutes []float64 `json:"time_minutes" minItems:"1" required:"true"`
		Rate        []float64 `json:"rate" minItems:"1" required:"true"`
		Cumulative  []float64 `json:"cumulative,omitempty" doc:"Required for the cumulative_vs_sqrt_t transform"`

		Transform        Transform `json:"transform" enum:"rate_vs_inv_sqrt_t,cumulative_vs_sqrt_t,log_log" required:"true"`
		TailStartMinutes *float64  `json:"tail_start_minutes,omitempty" doc:"Tail start; auto-suggested when omitted"`
		MinPoints        int       `json:"min_points,omitempty" minimum:"3" doc:"Minimum tail points (default 10)"`

		Filter         bool    `json:"filter,omitempty" doc:"Apply noise filtering within the tail"`
		DetectionLimit float64 `json:"detection_limit,omitempty" minimum:"0"`
		KeepOrigin     bool    `json:"keep_origin,omitempty" doc:"Retain an explicit (t=0, v=0) origin point"`

		ComputeD    bool    `json:"compute_d,omitempty" doc:"Derive D (1/√t transform only)"`
		ThicknessCM float64 `json:"thickness_cm,omitempty" minimum:"0" doc:"Sample thickness L in cm"`
		DeltaC      float64 `json:"delta_c,omitempty" minimum:"0" doc:"Concentration driving force"`

		TemperatureCelsius    float64  `json:"temperature_celsius,omitempty"`
		ActivationEnergyKJMol float64  `json:"activation_energy_kj_mol,omitempty" minimum:"0" doc:"Arrhenius Q (default 7.5 kJ/mol)"`
		LiteratureD           *float64 `json:"literature_d,omitempty" doc:"Reference D at literature_temperature_celsius, cm²/s"`
		LiteratureTempCelsius float64  `json:"literature_temperature_celsius,omitempty"`
		MeasuredD             *float64 `json:"measured_d,omitempty" doc:"Directly measured D at the test temperature; overrides the regression"`
	}
}

// DiffusionResponse wraps a diffusion fit.
type DiffusionResponse struct {
	Body *DiffusionFit
}
