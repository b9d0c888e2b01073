package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

type categoryDocument struct {
	ID              primitive.ObjectID `bson:"_id"`
	models.Category `bson:",inline"`
}

func (d categoryDocument) category() models.Category {
	c := d.Category
	c.ID = d.ID.Hex()
	return c
}

// CategoryRepository implements repository.CategoryRepository.
type CategoryRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func (r *CategoryRepository) Create(ctx context.Context, category models.Category) (models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := nowMillis()
	category.CreatedAt = now
	category.UpdatedAt = now

	doc := categoryDocument{ID: primitive.NewObjectIDFromTimestamp(now), Category: category}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return models.Category{}, &models.PersistenceError{Op: "insert category", Err: err}
	}
	return doc.category(), nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, &models.PersistenceError{Op: "find categories", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &models.PersistenceError{Op: "decode categories", Err: err}
	}

	out := make([]models.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.category())
	}
	return out, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (models.Category, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.Category{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc categoryDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Category{}, models.ErrNotFound
		}
		return models.Category{}, &models.PersistenceError{Op: "find category", Err: err}
	}
	return doc.category(), nil
}

func (r *CategoryRepository) Update(ctx context.Context, id string, in models.CategoryInput) (models.Category, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.Category{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: in.Name},
		{Key: "description", Value: in.Description},
		{Key: "updated_at", Value: nowMillis()},
	}}}

	var doc categoryDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Category{}, models.ErrNotFound
		}
		return models.Category{}, &models.PersistenceError{Op: "update category", Err: err}
	}
	return doc.category(), nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return &models.PersistenceError{Op: "delete category", Err: err}
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
