package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/domain/valuation"
)

type stockDocument struct {
	ID                 primitive.ObjectID `bson:"_id"`
	models.StockRecord `bson:",inline"`
}

func (d stockDocument) record() models.StockRecord {
	rec := d.StockRecord
	rec.ID = d.ID.Hex()
	return rec
}

// StockRepository implements repository.StockRepository on a MongoDB collection.
type StockRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
	logger  *zap.Logger
}

// Create inserts a new document with server-side identity and timestamps.
func (r *StockRepository) Create(ctx context.Context, record models.StockRecord) (models.StockRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := nowMillis()
	record.TotalValue = valuation.TotalValue(record.Quantity, record.UnitPrice)
	record.Version = 1
	record.CreatedAt = now
	record.UpdatedAt = now

	doc := stockDocument{ID: primitive.NewObjectIDFromTimestamp(now), StockRecord: record}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return models.StockRecord{}, &models.PersistenceError{Op: "insert stock record", Err: err}
	}

	r.logger.Debug("stock record inserted", zap.String("id", doc.ID.Hex()))
	return doc.record(), nil
}

// List returns one page of matching records and the total match count.
func (r *StockRepository) List(ctx context.Context, filter models.StockFilter) ([]models.StockRecord, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := stockQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, &models.PersistenceError{Op: "count stock records", Err: err}
	}

	cursor, err := r.coll.Find(ctx, query, stockFindOptions(filter))
	if err != nil {
		return nil, 0, &models.PersistenceError{Op: "find stock records", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []stockDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, &models.PersistenceError{Op: "decode stock records", Err: err}
	}

	records := make([]models.StockRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.record())
	}
	return records, total, nil
}

// GetByID loads one record.
func (r *StockRepository) GetByID(ctx context.Context, id string) (models.StockRecord, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.StockRecord{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc stockDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.StockRecord{}, models.ErrNotFound
		}
		return models.StockRecord{}, &models.PersistenceError{Op: "find stock record", Err: err}
	}
	return doc.record(), nil
}

// Update runs the patch as a single FindOneAndUpdate with a pipeline update,
// so total_value always reflects the quantity and unit_price it is stored with.
func (r *StockRepository) Update(ctx context.Context, id string, patch models.StockPatch, expectedVersion int64) (models.StockRecord, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.StockRecord{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.D{{Key: "_id", Value: oid}}
	if expectedVersion > 0 {
		filter = append(filter, bson.E{Key: "version", Value: expectedVersion})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc stockDocument
	err = r.coll.FindOneAndUpdate(ctx, filter, stockUpdatePipeline(patch, nowMillis()), opts).Decode(&doc)
	if err == nil {
		return doc.record(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.StockRecord{}, &models.PersistenceError{Op: "update stock record", Err: err}
	}
	if expectedVersion <= 0 {
		return models.StockRecord{}, models.ErrNotFound
	}

	// The versioned filter missed: tell a stale version apart from a missing record.
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}}, options.Count().SetLimit(1))
	if err != nil {
		return models.StockRecord{}, &models.PersistenceError{Op: "check stock record", Err: err}
	}
	if n > 0 {
		return models.StockRecord{}, models.ErrConflict
	}
	return models.StockRecord{}, models.ErrNotFound
}

// Delete removes a record by id.
func (r *StockRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return &models.PersistenceError{Op: "delete stock record", Err: err}
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountByCategory counts records referencing a category.
func (r *StockRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "category_id", Value: categoryID}})
	if err != nil {
		return 0, &models.PersistenceError{Op: "count category records", Err: err}
	}
	return n, nil
}

// nowMillis matches the millisecond precision of BSON dates.
func nowMillis() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// DeleteAll empties the collection and reports how many records were removed.
func (r *StockRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, &models.PersistenceError{Op: "delete stock records", Err: err}
	}
	return res.DeletedCount, nil
}
