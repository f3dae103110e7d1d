package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpietrzak/desorb/internal/repository"
	"github.com/mpietrzak/desorb/pkg/models"
)

func record(id, date string, valid bool) *models.CalibrationRecord {
	return &models.CalibrationRecord{
		ID:                  id,
		Date:                date,
		GasConcentrationPPM: 61,
		MeanPeakArea:        50000,
		NumRuns:             8,
		RawPeakAreas:        []float64{49000, 50000, 51000},
		IsValid:             valid,
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	rec := record("cal_2026-08-01_001", "2026-08-01", true)
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// Mutating either side must not leak into the stored copy.
	rec.RawPeakAreas[0] = -1
	got.QualityFlags = append(got.QualityFlags, "WARNING: mutated")
	fresh, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 49000.0, fresh.RawPeakAreas[0])
	assert.Empty(t, fresh.QualityFlags)
}

func TestStoreGetMissing(t *testing.T) {
	_, err := NewStore().GetByID(context.Background(), "cal_2026-01-01_001")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStoreSaveRequiresID(t *testing.T) {
	err := NewStore().Save(context.Background(), &models.CalibrationRecord{})
	assert.Error(t, err)
}

func TestStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Save(ctx, record("cal_2026-08-01_001", "2026-08-01", true)))
	require.NoError(t, store.Save(ctx, record("cal_2026-08-10_001", "2026-08-10", true)))
	require.NoError(t, store.Save(ctx, record("cal_2026-08-10_002", "2026-08-10", false)))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "cal_2026-08-10_002", records[0].ID)
	assert.Equal(t, "cal_2026-08-10_001", records[1].ID)
	assert.Equal(t, "cal_2026-08-01_001", records[2].ID)
}

func TestStoreGetByDateRange(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Save(ctx, record("cal_2026-07-01_001", "2026-07-01", true)))
	require.NoError(t, store.Save(ctx, record("cal_2026-08-05_001", "2026-08-05", true)))
	require.NoError(t, store.Save(ctx, record("cal_2026-08-20_001", "2026-08-20", true)))

	records, err := store.GetByDateRange(ctx, "2026-08-01", "2026-08-10")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "cal_2026-08-05_001", records[0].ID)
}

func TestStoreSuggestForDate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Save(ctx, record("cal_2026-08-01_001", "2026-08-01", true)))
	require.NoError(t, store.Save(ctx, record("cal_2026-08-15_001", "2026-08-15", true)))
	// An invalid record closer to the target must never be suggested.
	require.NoError(t, store.Save(ctx, record("cal_2026-08-09_001", "2026-08-09", false)))

	got, err := store.SuggestForDate(ctx, "2026-08-10")
	require.NoError(t, err)
	assert.Equal(t, "cal_2026-08-15_001", got.ID)

	_, err = store.SuggestForDate(ctx, "10-08-2026")
	assert.Error(t, err)

	empty := NewStore()
	_, err = empty.SuggestForDate(ctx, "2026-08-10")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Save(ctx, record("cal_2026-08-01_001", "2026-08-01", true)))

	require.NoError(t, store.Delete(ctx, "cal_2026-08-01_001"))
	assert.ErrorIs(t, store.Delete(ctx, "cal_2026-08-01_001"), repository.ErrNotFound)
}

func TestStoreNextID(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	id, err := store.NextID(ctx, "2026-08-01")
	require.NoError(t, err)
	assert.Equal(t, "cal_2026-08-01_001", id)

	require.NoError(t, store.Save(ctx, record(id, "2026-08-01", true)))
	require.NoError(t, store.Save(ctx, record("cal_2026-08-01_007", "2026-08-01", true)))

	id, err = store.NextID(ctx, "2026-08-01")
	require.NoError(t, err)
	assert.Equal(t, "cal_2026-08-01_008", id)

	// Other dates keep independent sequences.
	id, err = store.NextID(ctx, "2026-08-02")
	require.NoError(t, err)
	assert.Equal(t, "cal_2026-08-02_001", id)

	_, err = store.NextID(ctx, "bad-date")
	assert.Error(t, err)
}
