package models

import (
	"time"

	"github.com/mpietrzak/desorb/pkg/errs"
)

// Measurement is a single gas-chromatograph peak measurement from a
// thermal-desorption run.
type Measurement struct {
	Run        int       `json:"run" doc:"Run number from the GC sequence"`
	Timestamp  time.Time `json:"timestamp" doc:"Time of measurement"`
	PeakArea   float64   `json:"peak_area" doc:"Peak area in µV·s"`
	PeakHeight float64   `json:"peak_height" doc:"Peak height in µV"`
}

// MeasurementSeries is an ordered sequence of measurements from one
// experiment. Run numbers need not be contiguous: a gap is a missing run and
// is never materialized as a zero-valued entry.
type MeasurementSeries struct {
	ExperimentName string        `json:"experiment_name,omitempty" doc:"Experiment identifier"`
	Measurements   []Measurement `json:"measurements" doc:"Measurements ordered by run number"`
	MissingRuns    []int         `json:"missing_runs,omitempty" doc:"Run numbers that produced no measurement"`
}

// Len returns the number of measurements in the series.
func (s *MeasurementSeries) Len() int { return len(s.Measurements) }

// TimeMinutes derives the elapsed-minutes axis from the measurement
// timestamps, relative to the first measurement. The result is parallel to
// Measurements and non-decreasing for a valid series.
func (s *MeasurementSeries) TimeMinutes() []float64 {
	if len(s.Measurements) == 0 {
		return nil
	}
	start := s.Measurements[0].Timestamp
	mins := make([]float64, len(s.Measurements))
	for i, m := range s.Measurements {
		mins[i] = m.Timestamp.Sub(start).Minutes()
	}
	return mins
}

// Validate checks ordering invariants: runs strictly increasing, timestamps
// non-decreasing, at least one measurement.
func (s *MeasurementSeries) Validate() error {
	if len(s.Measurements) == 0 {
		return errs.Validationf("measurement series is empty")
	}
	for i := 1; i < len(s.Measurements); i++ {
		prev, cur := s.Measurements[i-1], s.Measurements[i]
		if cur.Run <= prev.Run {
			return errs.Validationf("run numbers not strictly increasing at index %d (%d after %d)", i, cur.Run, prev.Run)
		}
		if cur.Timestamp.Before(prev.Timestamp) {
			return errs.Validationf("timestamps not non-decreasing at index %d (run %d)", i, cur.Run)
		}
	}
	if s.Measurements[0].Run < 0 {
		return errs.Validationf("run numbers must be non-negative")
	}
	return nil
}
