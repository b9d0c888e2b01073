package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// CategoryRepository is an in-memory implementation of repository.CategoryRepository.
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]models.Category
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[string]models.Category)}
}

func (r *CategoryRepository) Create(_ context.Context, category models.Category) (models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	category.ID = primitive.NewObjectIDFromTimestamp(now).Hex()
	category.CreatedAt = now
	category.UpdatedAt = now
	r.categories[category.ID] = category
	return category, nil
}

// List returns categories sorted by name.
func (r *CategoryRepository) List(_ context.Context) ([]models.Category, error) {
	r.mu.RLock()
	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id string) (models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return models.Category{}, models.ErrNotFound
	}
	return c, nil
}

func (r *CategoryRepository) Update(_ context.Context, id string, in models.CategoryInput) (models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return models.Category{}, models.ErrNotFound
	}
	c.Name = in.Name
	c.Description = in.Description
	c.UpdatedAt = time.Now().UTC()
	r.categories[id] = c
	return c, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}
