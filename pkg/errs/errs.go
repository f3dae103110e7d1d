// Package errs defines the error taxonomy shared by the calibration,
// quantification and diffusion packages. A ValidationError means the call was
// refused before any computation started; a CalculationError means a numeric
// failure occurred while computing a series-wide result. Per-point anomalies
// are never errors, they become quality flags on the output.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-range call parameters: empty
// series, non-positive physical quantities, invalid calibrations, insufficient
// tail points.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CalculationError reports a numeric failure in a series-wide computation,
// such as a regression over degenerate data or a non-finite scalar result.
type CalculationError struct {
	Msg string
	Err error
}

func (e *CalculationError) Error() string {
	if e.Err != nil {
		return "calculation: " + e.Msg + ": " + e.Err.Error()
	}
	return "calculation: " + e.Msg
}

func (e *CalculationError) Unwrap() error { return e.Err }

// Calculationf builds a CalculationError from a format string.
func Calculationf(format string, args ...any) error {
	return &CalculationError{Msg: fmt.Sprintf(format, args...)}
}

// IsCalculation reports whether err is (or wraps) a CalculationError.
func IsCalculation(err error) bool {
	var ce *CalculationError
	return errors.As(err, &ce)
}
