package mongodb

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// newestFirst orders by creation time with _id as the tie-break.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// stockQuery translates a listing filter into a MongoDB query document.
func stockQuery(f models.StockFilter) bson.D {
	q := bson.D{}
	if f.Location != "" {
		q = append(q, bson.E{Key: "location_tag", Value: f.Location})
	}
	if f.LocationContains != "" {
		q = append(q, bson.E{Key: "location_tag", Value: containsRegex(f.LocationContains)})
	}
	if f.Name != "" {
		q = append(q, bson.E{Key: "name", Value: containsRegex(f.Name)})
	}
	if f.CategoryID != "" {
		q = append(q, bson.E{Key: "category_id", Value: f.CategoryID})
	}

	qty := bson.D{}
	if f.MinQuantity != nil {
		qty = append(qty, bson.E{Key: "$gte", Value: *f.MinQuantity})
	}
	if f.MaxQuantity != nil {
		qty = append(qty, bson.E{Key: "$lt", Value: *f.MaxQuantity})
	}
	if len(qty) > 0 {
		q = append(q, bson.E{Key: "quantity", Value: qty})
	}

	if f.Location != "" && f.LocationContains != "" {
		// Two location_tag keys in one document would shadow each other.
		return bson.D{{Key: "$and", Value: bson.A{
			bson.D{{Key: "location_tag", Value: f.Location}},
			bson.D{{Key: "location_tag", Value: containsRegex(f.LocationContains)}},
			removeKey(q, "location_tag"),
		}}}
	}
	return q
}

// stockFindOptions applies ordering and pagination.
func stockFindOptions(f models.StockFilter) *options.FindOptions {
	opts := options.Find().SetSort(newestFirst)
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit)).SetSkip(int64(f.Offset()))
	}
	return opts
}

// stockUpdatePipeline builds an update pipeline: the first stage sets the
// patched fields, the second recomputes total_value from the values the first
// stage left behind. Both run inside one document write.
func stockUpdatePipeline(p models.StockPatch, now time.Time) mongo.Pipeline {
	set := bson.D{}
	if p.Name != nil {
		set = append(set, bson.E{Key: "name", Value: literal(*p.Name)})
	}
	if p.LocationTag != nil {
		set = append(set, bson.E{Key: "location_tag", Value: literal(*p.LocationTag)})
	}
	if p.Quantity != nil {
		set = append(set, bson.E{Key: "quantity", Value: literal(*p.Quantity)})
	}
	if p.UnitPrice != nil {
		set = append(set, bson.E{Key: "unit_price", Value: literal(*p.UnitPrice)})
	}
	if p.Notes != nil {
		set = append(set, bson.E{Key: "notes", Value: literal(*p.Notes)})
	}
	if p.CategoryID != nil {
		set = append(set, bson.E{Key: "category_id", Value: literal(*p.CategoryID)})
	}
	set = append(set,
		bson.E{Key: "updated_at", Value: now},
		bson.E{Key: "version", Value: bson.D{{Key: "$add", Value: bson.A{"$version", 1}}}},
	)

	return mongo.Pipeline{
		{{Key: "$set", Value: set}},
		{{Key: "$set", Value: bson.D{
			{Key: "total_value", Value: bson.D{{Key: "$multiply", Value: bson.A{"$quantity", "$unit_price"}}}},
		}}},
	}
}

// literal stops client strings such as "$quantity" being read as field paths.
func literal(v any) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func removeKey(d bson.D, key string) bson.D {
	out := bson.D{}
	for _, e := range d {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

// objectID parses a hex id; malformed ids cannot exist in the store.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.ErrNotFound
	}
	return oid, nil
}
