// Package repository declares the persistence contracts shared by the MongoDB
// and in-memory stores.
//
// Every implementation reports a missing or malformed id as models.ErrNotFound,
// a lost optimistic-concurrency race as models.ErrConflict, a taken unique key
// as models.ErrDuplicate, and wraps store failures in *models.PersistenceError.
package repository

import (
	"context"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// StockRepository owns persisted stock records.
type StockRepository interface {
	Create(ctx context.Context, record models.StockRecord) (models.StockRecord, error)
	// List returns one page of matches, newest first, and the total number of matches.
	List(ctx context.Context, filter models.StockFilter) ([]models.StockRecord, int64, error)
	GetByID(ctx context.Context, id string) (models.StockRecord, error)
	// Update applies the patch and recomputes total_value in a single atomic write.
	// expectedVersion <= 0 skips the version check.
	Update(ctx context.Context, id string, patch models.StockPatch, expectedVersion int64) (models.StockRecord, error)
	Delete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
}

// CategoryRepository owns persisted categories.
type CategoryRepository interface {
	Create(ctx context.Context, category models.Category) (models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (models.Category, error)
	Update(ctx context.Context, id string, in models.CategoryInput) (models.Category, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository owns operator accounts.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}
