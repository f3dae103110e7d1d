package models

import (
	"time"

	"github.com/mpietrzak/desorb/pkg/errs"
)

// CalcMode selects the normalization basis of a quantification. It is always
// chosen explicitly by the caller, never inferred.
type CalcMode string

const (
	// ModeMass normalizes hydrogen release by sample mass (ppm).
	ModeMass CalcMode = "mass"
	// ModeSurface normalizes hydrogen release by surface area (mol/cm²).
	ModeSurface CalcMode = "surface"
)

// Per-point quality flag tags on a QuantifiedSeries.
const (
	PointFlagNegativeRate = "negative_rate"
	PointFlagLowSignal    = "low_signal"
	PointFlagCalcError    = "calc_error"
)

// ProcessParams are the validated, explicitly named processing parameters for
// a quantification call.
type ProcessParams struct {
	Mode           CalcMode `json:"mode" enum:"mass,surface" doc:"Normalization mode"`
	SampleWeightG  float64  `json:"sample_weight_g,omitempty" doc:"Sample weight in grams (mass mode)"`
	FlowRateMLMin  float64  `json:"flow_rate_ml_min" doc:"Carrier gas flow rate in ml/min"`
	CycleTimeMin   float64  `json:"cycle_time_min" doc:"GC cycle duration in minutes"`
	SurfaceAreaCM2 float64  `json:"surface_area_cm2,omitempty" doc:"Sample surface area in cm² (surface mode)"`
}

// Validate refuses structurally invalid parameters before any computation.
func (p ProcessParams) Validate() error {
	switch p.Mode {
	case ModeMass:
		if p.SampleWeightG <= 0 {
			return errs.Validationf("sample weight must be positive, got %g g", p.SampleWeightG)
		}
	case ModeSurface:
		if p.SurfaceAreaCM2 <= 0 {
			return errs.Validationf("surface area must be positive, got %g cm²", p.SurfaceAreaCM2)
		}
	default:
		return errs.Validationf("unknown calculation mode %q", p.Mode)
	}
	if p.FlowRateMLMin <= 0 {
		return errs.Validationf("flow rate must be positive, got %g ml/min", p.FlowRateMLMin)
	}
	if p.CycleTimeMin <= 0 {
		return errs.Validationf("cycle time must be positive, got %g min", p.CycleTimeMin)
	}
	return nil
}

// QuantifiedSeries is a hydrogen-release time series in the unit system of
// its CalcMode. All slices are parallel. Cumulative is the prefix sum of
// AmountPerCycle in arrival order; missing runs are absent, never inserted as
// zeros.
type QuantifiedSeries struct {
	ResultID       string        `json:"result_id,omitempty" doc:"Unique identifier of this quantification run"`
	ExperimentName string        `json:"experiment_name,omitempty"`
	Mode           CalcMode      `json:"mode"`
	CalibrationID  string        `json:"calibration_id"`
	Params         ProcessParams `json:"params"`

	Runs        []int       `json:"runs"`
	Timestamps  []time.Time `json:"timestamps"`
	PeakAreas   []float64   `json:"peak_areas"`
	PeakHeights []float64   `json:"peak_heights"`

	TimeMinutes    []float64 `json:"time_minutes" doc:"Elapsed minutes from first measurement"`
	Rate           []float64 `json:"rate" doc:"Release rate, ppm/min or mol/cm²/min"`
	AmountPerCycle []float64 `json:"amount_per_cycle" doc:"Release per cycle, ppm or mol/cm²"`
	Cumulative     []float64 `json:"cumulative" doc:"Running total of amount_per_cycle"`

	QualityFlags [][]string `json:"quality_flags" doc:"Per-point flag tag sets"`
	MissingRuns  []int      `json:"missing_runs,omitempty"`
	Warnings     []string   `json:"warnings,omitempty" doc:"Series-level processing warnings"`
}

// Len returns the number of quantified points.
func (q *QuantifiedSeries) Len() int { return len(q.Rate) }

// SeriesSummary aggregates a quantified series for reports and CSV headers.
type SeriesSummary struct {
	TotalAmount     float64 `json:"total_amount" doc:"Sum of amount_per_cycle"`
	MaxRate         float64 `json:"max_rate"`
	AvgRate         float64 `json:"avg_rate"`
	DurationMinutes float64 `json:"duration_minutes"`
	Points          int     `json:"points"`
	FlaggedPoints   int     `json:"flagged_points"`
}

// Summary computes summary statistics over the series.
func (q *QuantifiedSeries) Summary() SeriesSummary {
	s := SeriesSummary{Points: len(q.Rate)}
	for i, r := range q.Rate {
		s.TotalAmount += q.AmountPerCycle[i]
		s.AvgRate += r
		if r > s.MaxRate {
			s.MaxRate = r
		}
	}
	if len(q.Rate) > 0 {
		s.AvgRate /= float64(len(q.Rate))
	}
	if len(q.TimeMinutes) > 0 {
		s.DurationMinutes = q.TimeMinutes[len(q.TimeMinutes)-1]
	}
	for _, flags := range q.QualityFlags {
		if len(flags) > 0 {
			s.FlaggedPoints++
		}
	}
	return s
}
