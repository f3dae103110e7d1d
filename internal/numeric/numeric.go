// Package numeric provides the small set of statistics shared by the
// calibration and diffusion packages: summary statistics, z-scores and
// ordinary least squares over a single predictor.
package numeric

import (
	"math"
	"sort"

	"github.com/mpietrzak/desorb/pkg/errs"
)

// Mean calculates the arithmetic mean of values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev calculates the sample standard deviation (n−1 denominator).
// For fewer than two values it returns 0.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// Median returns the median value.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// MinMax returns the smallest and largest value.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// ZScores standardizes each value against the sample mean and standard
// deviation. When the standard deviation is zero all scores are zero.
func ZScores(values []float64) []float64 {
	scores := make([]float64, len(values))
	std := StdDev(values)
	if std == 0 {
		return scores
	}
	mean := Mean(values)
	for i, v := range values {
		scores[i] = (v - mean) / std
	}
	return scores
}

// LinearFit holds the result of an ordinary least squares regression
// y = Slope·x + Intercept.
type LinearFit struct {
	Slope     float64
	Intercept float64
	RSquared  float64
	StdErr    float64 // standard error of the slope
	N         int
}

// LinearRegression fits y = a + b·x by ordinary least squares and reports
// slope, intercept, R² and the standard error of the slope. It fails with a
// CalculationError when fewer than three points are supplied, when x is
// degenerate, or when any result is non-finite.
func LinearRegression(x, y []float64) (*LinearFit, error) {
	if len(x) != len(y) {
		return nil, errs.Calculationf("regression inputs have different lengths (%d vs %d)", len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return nil, errs.Calculationf("regression needs at least 3 points, got %d", n)
	}

	var sx, sy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
	}
	xMean := sx / float64(n)
	yMean := sy / float64(n)

	var sxx, sxy float64
	for i := range x {
		dx := x[i] - xMean
		sxx += dx * dx
		sxy += dx * (y[i] - yMean)
	}
	if sxx == 0 {
		return nil, errs.Calculationf("regression predictor is constant")
	}

	slope := sxy / sxx
	intercept := yMean - slope*xMean

	var sse, sst float64
	for i := range x {
		resid := y[i] - (intercept + slope*x[i])
		sse += resid * resid
		dy := y[i] - yMean
		sst += dy * dy
	}

	r2 := 1.0
	if sst > 0 {
		r2 = 1 - sse/sst
	} else if sse > 0 {
		r2 = 0
	}

	stdErr := 0.0
	if n > 2 {
		stdErr = math.Sqrt(sse / float64(n-2) / sxx)
	}

	fit := &LinearFit{Slope: slope, Intercept: intercept, RSquared: r2, StdErr: stdErr, N: n}
	if !isFinite(fit.Slope) || !isFinite(fit.Intercept) || !isFinite(fit.RSquared) || !isFinite(fit.StdErr) {
		return nil, errs.Calculationf("regression produced a non-finite result")
	}
	return fit, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
