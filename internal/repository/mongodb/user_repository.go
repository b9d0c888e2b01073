package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

type userDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	models.User `bson:",inline"`
}

// UserRepository implements repository.UserRepository. Username uniqueness
// is enforced by the index created in ensureIndexes.
type UserRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := nowMillis()
	user.CreatedAt = now

	doc := userDocument{ID: primitive.NewObjectIDFromTimestamp(now), User: user}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, models.ErrDuplicate
		}
		return models.User{}, &models.PersistenceError{Op: "insert user", Err: err}
	}

	user.ID = doc.ID.Hex()
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, models.ErrNotFound
		}
		return models.User{}, &models.PersistenceError{Op: "find user", Err: err}
	}

	user := doc.User
	user.ID = doc.ID.Hex()
	return user, nil
}
