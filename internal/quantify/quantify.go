// Package quantify converts gas-chromatograph peak areas into hydrogen
// release time series using a calibration record, in either mass-normalized
// (ppm) or surface-area-normalized (mol/cm²) units.
package quantify

import (
	"fmt"
	"math"
	"time"

	"github.com/mpietrzak/desorb/pkg/errs"
	"github.com/mpietrzak/desorb/pkg/models"
)

// Quantify converts a measurement series to hydrogen-release units.
//
// Structural problems (empty series, non-positive parameters, invalid
// calibration) fail the whole call with a ValidationError before any
// computation. A malformed single measurement becomes a zero-valued point
// tagged calc_error; the rest of the series is unaffected.
func Quantify(series *models.MeasurementSeries, cal *models.CalibrationRecord, params models.ProcessParams) (*models.QuantifiedSeries, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, errs.Validationf("no calibration provided")
	}
	if !cal.IsValid {
		return nil, errs.Validationf("calibration %s is marked invalid", cal.ID)
	}

	n := series.Len()
	out := &models.QuantifiedSeries{
		ExperimentName: series.ExperimentName,
		Mode:           params.Mode,
		CalibrationID:  cal.ID,
		Params:         params,
		Runs:           make([]int, n),
		Timestamps:     make([]time.Time, n),
		PeakAreas:      make([]float64, n),
		PeakHeights:    make([]float64, n),
		TimeMinutes:    series.TimeMinutes(),
		Rate:           make([]float64, n),
		AmountPerCycle: make([]float64, n),
		Cumulative:     make([]float64, n),
		QualityFlags:   make([][]string, n),
		MissingRuns:    append([]int(nil), series.MissingRuns...),
		Warnings:       parameterWarnings(cal, params),
	}

	// Both modes share the calibration factor; they differ only in the
	// unit-conversion multiplier and the normalization divisor.
	calFactor := 0.0
	if cal.MeanPeakArea > 0 {
		calFactor = cal.GasConcentrationPPM / cal.MeanPeakArea
	}

	running := 0.0
	for i, m := range series.Measurements {
		out.Runs[i] = m.Run
		out.Timestamps[i] = m.Timestamp
		out.PeakAreas[i] = m.PeakArea
		out.PeakHeights[i] = m.PeakHeight

		rate, flags := pointRate(m.PeakArea, calFactor, cal.MeanPeakArea, params)
		amount := rate * params.CycleTimeMin
		running += amount

		out.Rate[i] = rate
		out.AmountPerCycle[i] = amount
		out.Cumulative[i] = running
		out.QualityFlags[i] = flags
	}

	if w := resultWarnings(out); len(w) > 0 {
		out.Warnings = append(out.Warnings, w...)
	}
	return out, nil
}

// pointRate computes a single point's release rate and quality flags.
func pointRate(peakArea, calFactor, calMean float64, params models.ProcessParams) (float64, []string) {
	if math.IsNaN(peakArea) || math.IsInf(peakArea, 0) || calMean <= 0 {
		return 0, []string{models.PointFlagCalcError}
	}

	var rate float64
	var lowSignal float64
	switch params.Mode {
	case models.ModeMass:
		rate = peakArea * calFactor * params.FlowRateMLMin * massConversionFactor / params.SampleWeightG
		lowSignal = lowSignalAreaMass
	case models.ModeSurface:
		rate = peakArea * calFactor * params.FlowRateMLMin * molPerMilliliterPPM / params.SurfaceAreaCM2
		lowSignal = lowSignalAreaSurface
	}

	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, []string{models.PointFlagCalcError}
	}

	var flags []string
	if rate < 0 {
		flags = append(flags, models.PointFlagNegativeRate)
	}
	if peakArea < lowSignal {
		flags = append(flags, models.PointFlagLowSignal)
	}
	return rate, flags
}

// parameterWarnings reports unusual-but-legal parameter and calibration
// values before processing.
func parameterWarnings(cal *models.CalibrationRecord, params models.ProcessParams) []string {
	var warnings []string

	if params.Mode == models.ModeMass &&
		(params.SampleWeightG < minTypicalWeightG || params.SampleWeightG > maxTypicalWeightG) {
		warnings = append(warnings, fmt.Sprintf("unusual sample weight (%g g) - verify value", params.SampleWeightG))
	}
	if params.FlowRateMLMin < minTypicalFlowMLMin || params.FlowRateMLMin > maxTypicalFlowMLMin {
		warnings = append(warnings, fmt.Sprintf("unusual flow rate (%g ml/min) - verify value", params.FlowRateMLMin))
	}
	if params.CycleTimeMin < minTypicalCycleMin || params.CycleTimeMin > maxTypicalCycleMin {
		warnings = append(warnings, fmt.Sprintf("unusual cycle time (%g min) - verify value", params.CycleTimeMin))
	}
	if cal.CVPercent > 10 {
		warnings = append(warnings, fmt.Sprintf("calibration CV%% high (%.1f%%) - results may be less accurate", cal.CVPercent))
	}
	return warnings
}

// resultWarnings summarizes per-point anomalies so they are surfaced, never
// silently dropped.
func resultWarnings(q *models.QuantifiedSeries) []string {
	var negative, calcErrors int
	for _, flags := range q.QualityFlags {
		for _, f := range flags {
			switch f {
			case models.PointFlagNegativeRate:
				negative++
			case models.PointFlagCalcError:
				calcErrors++
			}
		}
	}

	var warnings []string
	if negative > 0 {
		warnings = append(warnings, fmt.Sprintf("%d negative release rates calculated", negative))
	}
	if calcErrors > 0 {
		warnings = append(warnings, fmt.Sprintf("%d points failed calculation and were zeroed", calcErrors))
	}
	return warnings
}
