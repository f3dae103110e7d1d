// Package memory provides an in-memory CalibrationRepository used for
// development and tests. All methods copy records on the way in and out, so
// callers never share state with the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mpietrzak/desorb/internal/repository"
	"github.com/mpietrzak/desorb/pkg/errs"
	"github.com/mpietrzak/desorb/pkg/models"
)

// Store is a mutex-guarded map of calibration records keyed by ID.
type Store struct {
	mu      sync.RWMutex
	records map[string]*models.CalibrationRecord
}

// NewStore creates an empty in-memory repository.
func NewStore() *Store {
	return &Store{records: make(map[string]*models.CalibrationRecord)}
}

var _ repository.CalibrationRepository = (*Store)(nil)

// Save stores a copy of the record under its ID, replacing any existing one.
func (s *Store) Save(_ context.Context, record *models.CalibrationRecord) error {
	if record == nil || record.ID == "" {
		return errs.Validationf("calibration record must have an ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record.Clone()
	return nil
}

// GetByID returns a copy of the record or repository.ErrNotFound.
func (s *Store) GetByID(_ context.Context, id string) (*models.CalibrationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return record.Clone(), nil
}

// List returns all records ordered by date descending, then ID descending so
// the ordering is stable for same-day records.
func (s *Store) List(_ context.Context) ([]*models.CalibrationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(*models.CalibrationRecord) bool { return true }), nil
}

// GetByDateRange returns records with from <= date <= to, newest first.
func (s *Store) GetByDateRange(_ context.Context, from, to string) ([]*models.CalibrationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(r *models.CalibrationRecord) bool {
		return r.Date >= from && r.Date <= to
	}), nil
}

// SuggestForDate returns the valid record dated closest to the given date.
// Ties resolve to the earlier record.
func (s *Store) SuggestForDate(_ context.Context, date string) (*models.CalibrationRecord, error) {
	target, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, errs.Validationf("invalid date %q: expected YYYY-MM-DD", date)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *models.CalibrationRecord
	bestDist := time.Duration(0)
	for _, r := range s.records {
		if !r.IsValid {
			continue
		}
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			continue
		}
		dist := target.Sub(d)
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist || (dist == bestDist && r.Date < best.Date) {
			best = r
			bestDist = dist
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return best.Clone(), nil
}

// Delete removes the record or returns repository.ErrNotFound.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// NextID allocates cal_<date>_NNN, continuing the per-date sequence.
func (s *Store) NextID(_ context.Context, date string) (string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", errs.Validationf("invalid date %q: expected YYYY-MM-DD", date)
	}
	prefix := fmt.Sprintf("cal_%s_", date)

	s.mu.RLock()
	defer s.mu.RUnlock()
	max := 0
	for id := range s.records {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(strings.TrimPrefix(id, prefix), "%d", &n); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, max+1), nil
}

// snapshot copies all records matching the filter, newest date first.
// Callers must hold at least the read lock.
func (s *Store) snapshot(match func(*models.CalibrationRecord) bool) []*models.CalibrationRecord {
	out := make([]*models.CalibrationRecord, 0, len(s.records))
	for _, r := range s.records {
		if match(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out
}
