// Package memory provides process-local repositories for tests and the
// STORE_DRIVER=memory mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/domain/valuation"
)

// StockRepository is an in-memory implementation of repository.StockRepository.
type StockRepository struct {
	mu      sync.RWMutex
	records map[string]models.StockRecord
	now     func() time.Time
}

// NewStockRepository creates an empty store.
func NewStockRepository() *StockRepository {
	return &StockRepository{
		records: make(map[string]models.StockRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create assigns id, timestamps and version, then stores the record.
func (r *StockRepository) Create(_ context.Context, record models.StockRecord) (models.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	record.ID = primitive.NewObjectIDFromTimestamp(now).Hex()
	record.TotalValue = valuation.TotalValue(record.Quantity, record.UnitPrice)
	record.Version = 1
	record.CreatedAt = now
	record.UpdatedAt = now

	r.records[record.ID] = record
	return record, nil
}

// List filters, sorts newest first with id as tie-break, and paginates.
func (r *StockRepository) List(_ context.Context, filter models.StockFilter) ([]models.StockRecord, int64, error) {
	r.mu.RLock()
	matched := make([]models.StockRecord, 0, len(r.records))
	for _, rec := range r.records {
		if matchesFilter(rec, filter) {
			matched = append(matched, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := clamp(filter.Offset(), 0, len(matched))
	end := len(matched)
	if filter.Limit > 0 {
		end = clamp(start+filter.Limit, start, len(matched))
	}

	return matched[start:end], total, nil
}

// GetByID returns a record or models.ErrNotFound.
func (r *StockRepository) GetByID(_ context.Context, id string) (models.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return models.StockRecord{}, models.ErrNotFound
	}
	return rec, nil
}

// Update merges the patch under the write lock so the read and write are one step.
func (r *StockRepository) Update(_ context.Context, id string, patch models.StockPatch, expectedVersion int64) (models.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return models.StockRecord{}, models.ErrNotFound
	}
	if expectedVersion > 0 && rec.Version != expectedVersion {
		return models.StockRecord{}, models.ErrConflict
	}

	if patch.Name != nil {
		rec.Name = *patch.Name
	}
	if patch.LocationTag != nil {
		rec.LocationTag = *patch.LocationTag
	}
	if patch.Quantity != nil {
		rec.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		rec.UnitPrice = *patch.UnitPrice
	}
	if patch.Notes != nil {
		rec.Notes = *patch.Notes
	}
	if patch.CategoryID != nil {
		rec.CategoryID = *patch.CategoryID
	}
	rec.TotalValue = valuation.TotalValue(rec.Quantity, rec.UnitPrice)
	rec.Version++
	rec.UpdatedAt = r.now()

	r.records[id] = rec
	return rec, nil
}

// Delete removes a record; a second delete reports models.ErrNotFound.
func (r *StockRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

// CountByCategory counts records referencing the category.
func (r *StockRepository) CountByCategory(_ context.Context, categoryID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, rec := range r.records {
		if rec.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// DeleteAll drops every record.
func (r *StockRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.records))
	r.records = make(map[string]models.StockRecord)
	return n, nil
}

func matchesFilter(rec models.StockRecord, f models.StockFilter) bool {
	if f.Location != "" && rec.LocationTag != f.Location {
		return false
	}
	if f.LocationContains != "" && !strings.Contains(strings.ToLower(rec.LocationTag), strings.ToLower(f.LocationContains)) {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.CategoryID != "" && rec.CategoryID != f.CategoryID {
		return false
	}
	if f.MinQuantity != nil && rec.Quantity < *f.MinQuantity {
		return false
	}
	if f.MaxQuantity != nil && rec.Quantity >= *f.MaxQuantity {
		return false
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
