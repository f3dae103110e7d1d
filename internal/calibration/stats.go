// Package calibration reduces raw calibration peak-area measurements to a
// CalibrationRecord: summary statistics, z-score outliers, quality flags and
// a 0–100 quality score.
package calibration

import (
	"fmt"
	"math"
	"time"

	"github.com/mpietrzak/desorb/internal/numeric"
	"github.com/mpietrzak/desorb/pkg/errs"
	"github.com/mpietrzak/desorb/pkg/models"
)

const (
	// outlierZThreshold flags a calibration run as an outlier when its
	// standardized peak area exceeds this magnitude.
	outlierZThreshold = 3.0

	// Typical peak-area range for a healthy instrument; values outside it
	// get a sensitivity/overload warning.
	minTypicalPeakArea = 1000.0
	maxTypicalPeakArea = 100000.0
)

// ComputeStatistics reduces peak areas and the standard gas concentration to
// an immutable CalibrationRecord. Only an empty input fails; every other
// condition degrades to quality flags on the record.
func ComputeStatistics(peakAreas []float64, gasPPM float64) (*models.CalibrationRecord, error) {
	if len(peakAreas) == 0 {
		return nil, errs.Validationf("no peak areas provided for statistics calculation")
	}

	mean := numeric.Mean(peakAreas)
	std := numeric.StdDev(peakAreas)
	lo, hi := numeric.MinMax(peakAreas)

	rec := &models.CalibrationRecord{
		Date:                time.Now().Format("2006-01-02"),
		ProcessedAt:         time.Now(),
		GasConcentrationPPM: gasPPM,
		MeanPeakArea:        mean,
		StdDeviation:        std,
		NumRuns:             len(peakAreas),
		MinPeakArea:         lo,
		MaxPeakArea:         hi,
		MedianPeakArea:      numeric.Median(peakAreas),
		RawPeakAreas:        append([]float64(nil), peakAreas...),
	}

	if mean > 0 {
		rec.CVPercent = std / mean * 100
	} else {
		rec.CVPercent = 100
		rec.QualityFlags = append(rec.QualityFlags, "ERROR: invalid mean peak area")
	}

	for i, z := range numeric.ZScores(peakAreas) {
		if math.Abs(z) > outlierZThreshold {
			rec.OutlierIndices = append(rec.OutlierIndices, i)
		}
	}

	rec.QualityFlags = append(rec.QualityFlags, qualityFlags(rec)...)
	rec.QualityScore = qualityScore(rec.CVPercent, rec.NumRuns)
	rec.IsValid = !rec.HasErrorFlag()
	return rec, nil
}

// qualityFlags evaluates the independent quality rules; several flags may
// co-occur.
func qualityFlags(rec *models.CalibrationRecord) []string {
	var flags []string

	switch {
	case rec.CVPercent > 10:
		flags = append(flags, "ERROR: CV% > 10% - calibration too unstable for reliable use")
	case rec.CVPercent > 5:
		flags = append(flags, "WARNING: CV% > 5% - check calibration stability")
	}

	switch {
	case rec.NumRuns < 3:
		flags = append(flags, "ERROR: < 3 runs - inadequate calibration data")
	case rec.NumRuns < 5:
		flags = append(flags, "WARNING: < 5 runs - limited calibration data")
	}

	outlierPct := float64(len(rec.OutlierIndices)) / float64(rec.NumRuns) * 100
	if outlierPct > 20 {
		flags = append(flags, fmt.Sprintf("WARNING: %.1f%% outliers detected", outlierPct))
	}

	if rec.MeanPeakArea < minTypicalPeakArea {
		flags = append(flags, "WARNING: very low peak areas - check instrument sensitivity")
	} else if rec.MeanPeakArea > maxTypicalPeakArea {
		flags = append(flags, "WARNING: very high peak areas - check for overload")
	}

	return flags
}

// qualityScore starts at 100 and takes the single largest applicable CV
// penalty plus the single largest applicable run-count penalty, floored at 0.
func qualityScore(cvPercent float64, numRuns int) float64 {
	score := 100.0

	switch {
	case cvPercent > 10:
		score -= 50
	case cvPercent > 5:
		score -= 20
	case cvPercent > 2:
		score -= 10
	}

	switch {
	case numRuns < 5:
		score -= 30
	case numRuns < 8:
		score -= 15
	}

	return math.Max(0, score)
}
