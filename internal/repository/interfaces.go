package repository

import (
	"context"
	"errors"

	"github.com/mpietrzak/desorb/pkg/models"
)

// ErrNotFound is returned when no calibration matches the requested ID or
// criteria.
var ErrNotFound = errors.New("calibration not found")

// CalibrationRepository defines the interface for calibration record storage.
// Implementations must hand out defensive copies: a record obtained from the
// repository never aliases stored state.
type CalibrationRepository interface {
	// Save stores a record under its ID, replacing any existing record.
	Save(ctx context.Context, record *models.CalibrationRecord) error
	// GetByID returns the record with the given ID or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.CalibrationRecord, error)
	// List returns all records ordered by date, newest first.
	List(ctx context.Context) ([]*models.CalibrationRecord, error)
	// GetByDateRange returns records with from <= date <= to, newest first.
	// Dates are YYYY-MM-DD strings.
	GetByDateRange(ctx context.Context, from, to string) ([]*models.CalibrationRecord, error)
	// SuggestForDate returns the valid record whose date is closest to the
	// given date, or ErrNotFound when no valid record exists.
	SuggestForDate(ctx context.Context, date string) (*models.CalibrationRecord, error)
	// Delete removes the record with the given ID or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// NextID allocates the next identifier for the given date, in the form
	// cal_YYYY-MM-DD_NNN with NNN counting up from 001 per date.
	NextID(ctx context.Context, date string) (string, error)
}
