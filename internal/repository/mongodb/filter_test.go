package mongodb

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository"
)

var _ repository.StockRepository = (*StockRepository)(nil)
var _ repository.CategoryRepository = (*CategoryRepository)(nil)
var _ repository.UserRepository = (*UserRepository)(nil)

func lookup(d bson.D, key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func TestStockQuery_Empty(t *testing.T) {
	assert.Empty(t, stockQuery(models.StockFilter{}))
}

func TestStockQuery_Fields(t *testing.T) {
	min, max := 10.0, 50.0
	q := stockQuery(models.StockFilter{
		Location:    "Punjab",
		Name:        "ur.a",
		CategoryID:  "cat-1",
		MinQuantity: &min,
		MaxQuantity: &max,
	})

	loc, ok := lookup(q, "location_tag")
	require.True(t, ok)
	assert.Equal(t, "Punjab", loc)

	name, ok := lookup(q, "name")
	require.True(t, ok)
	assert.Equal(t, primitive.Regex{Pattern: `ur\.a`, Options: "i"}, name)

	cat, _ := lookup(q, "category_id")
	assert.Equal(t, "cat-1", cat)

	qty, ok := lookup(q, "quantity")
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "$gte", Value: 10.0}, {Key: "$lt", Value: 50.0}}, qty)
}

func TestStockQuery_ExactAndContainsLocation(t *testing.T) {
	q := stockQuery(models.StockFilter{Location: "Punjab", LocationContains: "jab", Name: "urea"})

	require.Len(t, q, 1)
	assert.Equal(t, "$and", q[0].Key)
	clauses, ok := q[0].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, clauses, 3)

	rest := clauses[2].(bson.D)
	_, hasLoc := lookup(rest, "location_tag")
	assert.False(t, hasLoc)
	_, hasName := lookup(rest, "name")
	assert.True(t, hasName)
}

func TestStockFindOptions(t *testing.T) {
	opts := stockFindOptions(models.StockFilter{Page: 3, Limit: 20})
	require.NotNil(t, opts.Limit)
	require.NotNil(t, opts.Skip)
	assert.Equal(t, int64(20), *opts.Limit)
	assert.Equal(t, int64(40), *opts.Skip)
	assert.Equal(t, newestFirst, opts.Sort)

	unpaged := stockFindOptions(models.StockFilter{})
	assert.Nil(t, unpaged.Limit)
}

func TestStockUpdatePipeline(t *testing.T) {
	name := "$quantity"
	qty := 42.0
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	pipeline := stockUpdatePipeline(models.StockPatch{Name: &name, Quantity: &qty}, now)
	require.Len(t, pipeline, 2)

	first, ok := lookup(pipeline[0], "$set")
	require.True(t, ok)
	set := first.(bson.D)

	gotName, _ := lookup(set, "name")
	assert.Equal(t, bson.D{{Key: "$literal", Value: "$quantity"}}, gotName)
	gotQty, _ := lookup(set, "quantity")
	assert.Equal(t, bson.D{{Key: "$literal", Value: 42.0}}, gotQty)
	gotUpdated, _ := lookup(set, "updated_at")
	assert.Equal(t, now, gotUpdated)
	_, hasPrice := lookup(set, "unit_price")
	assert.False(t, hasPrice)
	_, hasVersion := lookup(set, "version")
	assert.True(t, hasVersion)

	second, _ := lookup(pipeline[1], "$set")
	total, ok := lookup(second.(bson.D), "total_value")
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "$multiply", Value: bson.A{"$quantity", "$unit_price"}}}, total)
}

func TestObjectID_Malformed(t *testing.T) {
	_, err := objectID("not-an-id")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	oid := primitive.NewObjectID()
	got, err := objectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)
}
