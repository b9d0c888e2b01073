package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// UserRepository keeps accounts keyed by username.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]models.User)}
}

func (r *UserRepository) Create(_ context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return models.User{}, models.ErrDuplicate
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectIDFromTimestamp(now).Hex()
	user.CreatedAt = now
	r.users[user.Username] = user
	return user, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}
