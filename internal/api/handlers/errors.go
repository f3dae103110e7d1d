package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mpietrzak/desorb/internal/repository"
	"github.com/mpietrzak/desorb/pkg/errs"
)

// mapError translates domain errors into HTTP status errors: missing records
// become 404, rejected inputs 422 and calculation failures 500.
func mapError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return huma.Error404NotFound("calibration not found", err)
	case errs.IsValidation(err):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	case errs.IsCalculation(err):
		return huma.Error500InternalServerError(err.Error(), err)
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}
