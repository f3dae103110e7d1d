package models

import "time"

// Flag prefixes used in CalibrationRecord.QualityFlags. A record is valid only
// when it carries no ERROR-tagged flag.
const (
	FlagError   = "ERROR"
	FlagWarning = "WARNING"
)

// CalibrationRecord holds the reduced statistics and quality assessment of a
// calibration standard run. Records are immutable once computed: the
// quantifier consumes them read-only and repositories hand out copies.
type CalibrationRecord struct {
	ID          string    `json:"calibration_id" doc:"Identifier, format cal_YYYY-MM-DD_NNN"`
	Date        string    `json:"date" doc:"Calibration date, YYYY-MM-DD"`
	ProcessedAt time.Time `json:"processed_at" doc:"When statistics were computed"`

	GasConcentrationPPM float64 `json:"gas_concentration_ppm" doc:"Standard gas H2 concentration in ppm"`

	MeanPeakArea   float64 `json:"mean_peak_area" doc:"Mean peak area in µV·s"`
	StdDeviation   float64 `json:"std_deviation" doc:"Sample standard deviation in µV·s"`
	CVPercent      float64 `json:"cv_percent" doc:"Coefficient of variation, 100·std/mean"`
	NumRuns        int     `json:"num_runs" doc:"Number of calibration runs"`
	MinPeakArea    float64 `json:"min_peak_area"`
	MaxPeakArea    float64 `json:"max_peak_area"`
	MedianPeakArea float64 `json:"median_peak_area"`

	RawPeakAreas   []float64 `json:"raw_peak_areas" doc:"Raw calibration peak areas"`
	OutlierIndices []int     `json:"outlier_indices,omitempty" doc:"Indices with |z| > 3"`

	QualityFlags []string `json:"quality_flags,omitempty" doc:"ERROR:/WARNING:-tagged quality findings"`
	QualityScore float64  `json:"quality_score" doc:"Composite quality rating, 0-100"`
	IsValid      bool     `json:"is_valid" doc:"True when no ERROR flag is present"`

	Operator string `json:"operator,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Clone returns a deep copy. Repositories return clones so callers always see
// a stable snapshot no matter what happens to the stored record afterwards.
func (c *CalibrationRecord) Clone() *CalibrationRecord {
	if c == nil {
		return nil
	}
	cp := *c
	cp.RawPeakAreas = append([]float64(nil), c.RawPeakAreas...)
	cp.OutlierIndices = append([]int(nil), c.OutlierIndices...)
	cp.QualityFlags = append([]string(nil), c.QualityFlags...)
	return &cp
}

// HasErrorFlag reports whether any quality flag is ERROR-tagged.
func (c *CalibrationRecord) HasErrorFlag() bool {
	for _, f := range c.QualityFlags {
		if len(f) >= len(FlagError) && f[:len(FlagError)] == FlagError {
			return true
		}
	}
	return false
}
