package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mpietrzak/desorb/internal/repository"
	"github.com/mpietrzak/desorb/pkg/models"
)

// PostgresCalibrationRepository implements CalibrationRepository for PostgreSQL
type PostgresCalibrationRepository struct {
	db *sql.DB
}

// NewPostgresCalibrationRepository creates a new PostgreSQL calibration repository
func NewPostgresCalibrationRepository(db *sql.DB) repository.CalibrationRepository {
	return &PostgresCalibrationRepository{db: db}
}

const calibrationColumns = `
	id, to_char(date, 'YYYY-MM-DD'), processed_at, gas_concentration_ppm,
	mean_peak_area, std_deviation, cv_percent, num_runs,
	min_peak_area, max_peak_area, median_peak_area,
	raw_peak_areas, outlier_indices, quality_flags,
	quality_score, is_valid, operator, notes`

// Save upserts a calibration record. Slice fields are stored as JSONB.
func (r *PostgresCalibrationRepository) Save(ctx context.Context, record *models.CalibrationRecord) error {
	rawAreas, err := json.Marshal(record.RawPeakAreas)
	if err != nil {
		return fmt.Errorf("encoding raw peak areas: %w", err)
	}
	outliers, err := json.Marshal(record.OutlierIndices)
	if err != nil {
		return fmt.Errorf("encoding outlier indices: %w", err)
	}
	flags, err := json.Marshal(record.QualityFlags)
	if err != nil {
		return fmt.Errorf("encoding quality flags: %w", err)
	}

	query := `
		INSERT INTO calibrations (
			id, date, processed_at, gas_concentration_ppm,
			mean_peak_area, std_deviation, cv_percent, num_runs,
			min_peak_area, max_peak_area, median_peak_area,
			raw_peak_areas, outlier_indices, quality_flags,
			quality_score, is_valid, operator, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			processed_at = EXCLUDED.processed_at,
			gas_concentration_ppm = EXCLUDED.gas_concentration_ppm,
			mean_peak_area = EXCLUDED.mean_peak_area,
			std_deviation = EXCLUDED.std_deviation,
			cv_percent = EXCLUDED.cv_percent,
			num_runs = EXCLUDED.num_runs,
			min_peak_area = EXCLUDED.min_peak_area,
			max_peak_area = EXCLUDED.max_peak_area,
			median_peak_area = EXCLUDED.median_peak_area,
			raw_peak_areas = EXCLUDED.raw_peak_areas,
			outlier_indices = EXCLUDED.outlier_indices,
			quality_flags = EXCLUDED.quality_flags,
			quality_score = EXCLUDED.quality_score,
			is_valid = EXCLUDED.is_valid,
			operator = EXCLUDED.operator,
			notes = EXCLUDED.notes`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.Date,
		record.ProcessedAt,
		record.GasConcentrationPPM,
		record.MeanPeakArea,
		record.StdDeviation,
		record.CVPercent,
		record.NumRuns,
		record.MinPeakArea,
		record.MaxPeakArea,
		record.MedianPeakArea,
		rawAreas,
		outliers,
		flags,
		record.QualityScore,
		record.IsValid,
		record.Operator,
		record.Notes)

	return err
}

// GetByID retrieves a calibration record by ID
func (r *PostgresCalibrationRepository) GetByID(ctx context.Context, id string) (*models.CalibrationRecord, error) {
	query := `
		SELECT ` + calibrationColumns + `
		FROM calibrations
		WHERE id = $1`

	record, err := scanCalibration(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return record, err
}

// List retrieves all calibration records, newest first
func (r *PostgresCalibrationRepository) List(ctx context.Context) ([]*models.CalibrationRecord, error) {
	query := `
		SELECT ` + calibrationColumns + `
		FROM calibrations
		ORDER BY date DESC, id DESC`

	return r.queryCalibrations(ctx, query)
}

// GetByDateRange retrieves calibration records within [from, to], newest first
func (r *PostgresCalibrationRepository) GetByDateRange(ctx context.Context, from, to string) ([]*models.CalibrationRecord, error) {
	query := `
		SELECT ` + calibrationColumns + `
		FROM calibrations
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date DESC, id DESC`

	return r.queryCalibrations(ctx, query, from, to)
}

// SuggestForDate retrieves the valid calibration dated closest to the given
// date. Ties resolve to the earlier record.
func (r *PostgresCalibrationRepository) SuggestForDate(ctx context.Context, date string) (*models.CalibrationRecord, error) {
	query := `
		SELECT ` + calibrationColumns + `
		FROM calibrations
		WHERE is_valid
		ORDER BY ABS(date - $1::date), date, id
		LIMIT 1`

	record, err := scanCalibration(r.db.QueryRowContext(ctx, query, date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return record, err
}

// Delete removes a calibration record by ID
func (r *PostgresCalibrationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calibrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// NextID allocates the next cal_<date>_NNN identifier for the given date.
func (r *PostgresCalibrationRepository) NextID(ctx context.Context, date string) (string, error) {
	prefix := fmt.Sprintf("cal_%s_", date)

	// The numeric suffix is fixed-width, so MAX over the string column
	// yields the highest sequence number.
	query := `
		SELECT COALESCE(MAX(SUBSTRING(id FROM $2::int)::int), 0)
		FROM calibrations
		WHERE id LIKE $1`

	var max int
	err := r.db.QueryRowContext(ctx, query, prefix+"%", len(prefix)+1).Scan(&max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, max+1), nil
}

func (r *PostgresCalibrationRepository) queryCalibrations(ctx context.Context, query string, args ...any) ([]*models.CalibrationRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.CalibrationRecord
	for rows.Next() {
		record, err := scanCalibration(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCalibration(row rowScanner) (*models.CalibrationRecord, error) {
	var record models.CalibrationRecord
	var rawAreas, outliers, flags []byte
	var operator, notes sql.NullString

	err := row.Scan(
		&record.ID,
		&record.Date,
		&record.ProcessedAt,
		&record.GasConcentrationPPM,
		&record.MeanPeakArea,
		&record.StdDeviation,
		&record.CVPercent,
		&record.NumRuns,
		&record.MinPeakArea,
		&record.MaxPeakArea,
		&record.MedianPeakArea,
		&rawAreas,
		&outliers,
		&flags,
		&record.QualityScore,
		&record.IsValid,
		&operator,
		&notes)

	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rawAreas, &record.RawPeakAreas); err != nil {
		return nil, fmt.Errorf("decoding raw peak areas: %w", err)
	}
	if err := json.Unmarshal(outliers, &record.OutlierIndices); err != nil {
		return nil, fmt.Errorf("decoding outlier indices: %w", err)
	}
	if err := json.Unmarshal(flags, &record.QualityFlags); err != nil {
		return nil, fmt.Errorf("decoding quality flags: %w", err)
	}

	if operator.Valid {
		record.Operator = operator.String
	}
	if notes.Valid {
		record.Notes = notes.String
	}

	return &record, nil
}
