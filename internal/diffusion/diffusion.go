// Package diffusion analyzes the late-time desorption tail of a TDA run to
// confirm diffusion-controlled behavior and, for the 1/√t representation,
// derive a diffusion coefficient from the regression slope.
package diffusion

import (
	"math"

	"github.com/mpietrzak/desorb/internal/numeric"
	"github.com/mpietrzak/desorb/pkg/errs"
	"github.com/mpietrzak/desorb/pkg/models"
)

const (
	// gasConstantKJMolK is R in kJ/(mol·K), matching the activation energy
	// unit used throughout.
	gasConstantKJMolK = 0.008314

	defaultMinPoints             = 10
	defaultThicknessCM           = 0.1
	defaultDeltaC                = 1.0
	defaultActivationEnergy      = 7.5
	defaultDetectionLimit        = 0.1
	defaultTailFloorMinutes      = 60.0
	defaultPeakFraction          = 0.1
	rollingWindow                = 5
	rollingThresholdFraction     = 0.02
	detectionLimitMedianFraction = 0.1
)

// Options selects the tail region, the linearization and the optional
// coefficient calculations for Analyze. The zero value is not usable
// directly; withDefaults fills the numeric fields.
type Options struct {
	// TailStartMinutes fixes the start of the tail region. When nil the
	// start is suggested automatically from the rate curve.
	TailStartMinutes *float64
	Transform        models.Transform

	// MinPoints is the minimum number of tail points required.
	MinPoints int

	// Filter enables noise removal before the transform: exact zeros,
	// values below the detection limit and values far below the local
	// rolling mean are dropped.
	Filter         bool
	DetectionLimit float64
	// KeepOrigin retains a (t=0, value=0) point through filtering.
	KeepOrigin bool

	// ComputeD enables the coefficient calculation. Only the 1/√t
	// transform yields one; for other transforms the flag is ignored.
	ComputeD    bool
	ThicknessCM float64
	DeltaC      float64

	TemperatureCelsius    float64
	ActivationEnergyKJMol float64
	// LiteratureD, when set, is Arrhenius-corrected from
	// LiteratureTempCelsius to TemperatureCelsius and reported alongside
	// the fit.
	LiteratureD           *float64
	LiteratureTempCelsius float64
	// MeasuredD overrides the regression-derived coefficient entirely.
	MeasuredD *float64
}

func (o Options) withDefaults() Options {
	if o.MinPoints <= 0 {
		o.MinPoints = defaultMinPoints
	}
	if o.DetectionLimit <= 0 {
		o.DetectionLimit = defaultDetectionLimit
	}
	if o.ThicknessCM <= 0 {
		o.ThicknessCM = defaultThicknessCM
	}
	if o.DeltaC <= 0 {
		o.DeltaC = defaultDeltaC
	}
	if o.ActivationEnergyKJMol <= 0 {
		o.ActivationEnergyKJMol = defaultActivationEnergy
	}
	return o
}

// SuggestTailStart proposes a tail start time: the first time after the
// 60-minute floor where the rate has dropped below 10% of its maximum.
// When no point qualifies it falls back to one third of the way through
// the run, never earlier than the floor.
func SuggestTailStart(timeMinutes, rate []float64) (float64, error) {
	if len(timeMinutes) != len(rate) {
		return 0, errs.Validationf("time and rate have different lengths (%d vs %d)", len(timeMinutes), len(rate))
	}
	if len(timeMinutes) < defaultMinPoints {
		return 0, errs.Validationf("insufficient data for tail analysis: %d points", len(timeMinutes))
	}

	var t, r []float64
	for i := range rate {
		if rate[i] > 0 && isFinite(rate[i]) && isFinite(timeMinutes[i]) {
			t = append(t, timeMinutes[i])
			r = append(r, rate[i])
		}
	}
	if len(t) < 5 {
		return 0, errs.Validationf("insufficient valid data points: %d", len(t))
	}

	_, maxRate := numeric.MinMax(r)
	threshold := maxRate * defaultPeakFraction
	for i := range t {
		if r[i] < threshold && t[i] > defaultTailFloorMinutes {
			return t[i], nil
		}
	}
	return math.Max(defaultTailFloorMinutes, t[len(t)/3]), nil
}

// ArrheniusCorrect shifts a diffusion coefficient from one temperature to
// another: D_target = D·exp(Q/R·(1/T_measured − 1/T_target)), temperatures
// in °C, Q in kJ/mol.
func ArrheniusCorrect(d, measuredCelsius, targetCelsius, activationKJMol float64) float64 {
	tm := measuredCelsius + 273.15
	tt := targetCelsius + 273.15
	exponent := activationKJMol / gasConstantKJMolK * (1/tm - 1/tt)
	return d * math.Exp(exponent)
}

// Analyze fits the selected linearization to the tail region and reports
// the regression together with fit quality and, when requested, a
// diffusion coefficient. cumulative may be nil unless the √t transform is
// selected.
func Analyze(timeMinutes, rate, cumulative []float64, opts Options) (*models.DiffusionFit, error) {
	opts = opts.withDefaults()

	if len(timeMinutes) != len(rate) {
		return nil, errs.Validationf("time and rate have different lengths (%d vs %d)", len(timeMinutes), len(rate))
	}
	switch opts.Transform {
	case models.TransformInvSqrtT, models.TransformLogLog:
	case models.TransformSqrtT:
		if len(cumulative) != len(timeMinutes) {
			return nil, errs.Validationf("cumulative data required for the √t transform")
		}
	default:
		return nil, errs.Validationf("unknown transform %q", opts.Transform)
	}

	tailStart, err := resolveTailStart(timeMinutes, rate, opts)
	if err != nil {
		return nil, err
	}

	t, r, c, removed := selectTail(timeMinutes, rate, cumulative, tailStart, opts)
	if len(t) < opts.MinPoints {
		return nil, errs.Validationf("tail region has %d points, need at least %d", len(t), opts.MinPoints)
	}

	x, y, err := transformTail(t, r, c, opts.Transform)
	if err != nil {
		return nil, err
	}

	lin, err := numeric.LinearRegression(x, y)
	if err != nil {
		return nil, err
	}

	fit := &models.DiffusionFit{
		TailStartMinutes: tailStart,
		Transform:        opts.Transform,
		Slope:            lin.Slope,
		Intercept:        lin.Intercept,
		RSquared:         lin.RSquared,
		StdError:         lin.StdErr,
		NPoints:          lin.N,
		PointsRemoved:    removed,
		GoodFit:          lin.RSquared > 0.9,
		GoodnessOfFit:    assessFit(lin.RSquared, lin.N),
	}

	applyCoefficient(fit, opts)
	return fit, nil
}

func resolveTailStart(timeMinutes, rate []float64, opts Options) (float64, error) {
	var tailStart float64
	if opts.TailStartMinutes != nil {
		tailStart = *opts.TailStartMinutes
	} else {
		suggested, err := SuggestTailStart(timeMinutes, rate)
		if err != nil {
			return 0, err
		}
		tailStart = suggested
	}

	// The tail must begin after the desorption peak, otherwise the
	// regression would span the rise.
	peakTime := timeMinutes[0]
	peakRate := math.Inf(-1)
	for i := range rate {
		if isFinite(rate[i]) && rate[i] > peakRate {
			peakRate = rate[i]
			peakTime = timeMinutes[i]
		}
	}
	if tailStart < peakTime {
		return 0, errs.Validationf("tail start %.1f min precedes the peak rate at %.1f min", tailStart, peakTime)
	}
	return tailStart, nil
}

// selectTail filters the series to t >= tailStart and, when enabled,
// removes noise from the rate channel. It reports how many in-tail points
// the noise filter dropped.
func selectTail(timeMinutes, rate, cumulative []float64, tailStart float64, opts Options) (t, r, c []float64, removed int) {
	keep := make([]bool, len(timeMinutes))
	inTail := 0
	for i := range timeMinutes {
		if timeMinutes[i] >= tailStart {
			keep[i] = true
			inTail++
		}
	}

	if opts.Filter {
		noisy := noiseMask(timeMinutes, rate, opts)
		for i := range keep {
			if keep[i] && noisy[i] {
				keep[i] = false
				removed++
			}
		}
	}

	for i := range keep {
		if !keep[i] {
			continue
		}
		t = append(t, timeMinutes[i])
		r = append(r, rate[i])
		if cumulative != nil {
			c = append(c, cumulative[i])
		}
	}
	return t, r, c, removed
}

// noiseMask marks rate points that are noise rather than signal: exact
// zeros (except a retained origin), values below the detection limit and
// values under 2% of the rolling mean of the surrounding window. The
// detection limit is scaled down automatically when it would swallow the
// bulk of a low-signal dataset.
func noiseMask(timeMinutes, rate []float64, opts Options) []bool {
	mask := make([]bool, len(rate))

	var positive []float64
	for _, v := range rate {
		if v > 0 && isFinite(v) {
			positive = append(positive, v)
		}
	}
	limit := opts.DetectionLimit
	if len(positive) > 0 {
		median := numeric.Median(positive)
		if limit > median*detectionLimitMedianFraction {
			limit = median * 0.01
		}
	}

	for i, v := range rate {
		if opts.KeepOrigin && timeMinutes[i] == 0 && v == 0 {
			continue
		}
		if v == 0 || v < limit {
			mask[i] = true
		}
	}

	// Values far below the local level are detection artifacts even when
	// they clear the absolute limit.
	for i := range rate {
		if mask[i] || timeMinutes[i] == 0 {
			continue
		}
		lo := i - rollingWindow + 1
		if lo < 0 {
			lo = 0
		}
		window := rate[lo : i+1]
		if rate[i] < numeric.Mean(window)*rollingThresholdFraction {
			mask[i] = true
		}
	}
	return mask
}

// transformTail produces the regression inputs for the chosen
// linearization. The square-root transforms work in seconds; the log-log
// transform uses decimal logs of minutes.
func transformTail(t, r, c []float64, transform models.Transform) (x, y []float64, err error) {
	switch transform {
	case models.TransformInvSqrtT:
		for i := range t {
			if t[i] <= 0 || r[i] <= 0 || !isFinite(r[i]) {
				continue
			}
			x = append(x, 1/math.Sqrt(t[i]*60))
			y = append(y, r[i])
		}
	case models.TransformSqrtT:
		for i := range t {
			if t[i] <= 0 || !isFinite(c[i]) {
				continue
			}
			x = append(x, math.Sqrt(t[i]*60))
			y = append(y, c[i])
		}
	case models.TransformLogLog:
		for i := range t {
			if t[i] <= 0 || r[i] <= 0 || !isFinite(r[i]) {
				continue
			}
			x = append(x, math.Log10(t[i]))
			y = append(y, math.Log10(r[i]))
		}
	}
	if len(x) < 3 {
		return nil, nil, errs.Calculationf("insufficient valid data points in tail region: %d", len(x))
	}
	return x, y, nil
}

func assessFit(rSquared float64, n int) string {
	switch {
	case rSquared >= 0.95 && n >= 10:
		return "Excellent"
	case rSquared >= 0.90 && n >= 8:
		return "Good"
	case rSquared >= 0.80 && n >= 5:
		return "Fair"
	default:
		return "Poor"
	}
}

// applyCoefficient fills the coefficient fields. A directly measured value
// takes precedence over the regression-derived one; the literature value,
// when given, is corrected to the experiment temperature.
func applyCoefficient(fit *models.DiffusionFit, opts Options) {
	fit.TemperatureCelsius = opts.TemperatureCelsius
	fit.ActivationEnergyKJMol = opts.ActivationEnergyKJMol

	switch {
	case opts.MeasuredD != nil:
		fit.DiffusionCoefficient = *opts.MeasuredD
	case opts.ComputeD && opts.Transform == models.TransformInvSqrtT:
		// Semi-infinite solid, zero surface concentration:
		// J(t) = ΔC·√(D/(π·t)), so D = π·(slope·L)²/(4·ΔC²).
		d := math.Pi * math.Pow(fit.Slope*opts.ThicknessCM, 2) / (4 * opts.DeltaC * opts.DeltaC)
		fit.DiffusionCoefficient = math.Abs(d)
		fit.ThicknessCM = opts.ThicknessCM
		fit.DeltaC = opts.DeltaC
		fit.Assumptions = []string{
			"semi-infinite solid geometry",
			"constant temperature during desorption",
			"zero hydrogen concentration at the surface",
		}
	}

	if opts.LiteratureD != nil {
		fit.LiteratureD = ArrheniusCorrect(*opts.LiteratureD,
			opts.LiteratureTempCelsius, opts.TemperatureCelsius, opts.ActivationEnergyKJMol)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
