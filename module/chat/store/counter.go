package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketchat/module/chat/model"
	"marketchat/tools/errs"
)

// CounterRepo mints monotonically increasing sequences. The booking service
// uses it for human booking ids; kept here because the messaging gateway
// owns the counters collection schema.
type CounterRepo struct {
	DB *mongo.Database
}

func (r *CounterRepo) coll() *mongo.Collection {
	return r.DB.Collection(model.CounterTableName)
}

// NextSequence upserts the counter document and returns the incremented
// value in one atomic round trip.
func (r *CounterRepo) NextSequence(ctx context.Context, key string) (int64, error) {
	after := options.After
	var c model.Counter
	err := r.coll().FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"sequence_value": 1}},
		&options.FindOneAndUpdateOptions{
			ReturnDocument: &after,
			Upsert:         boolPtr(true),
		},
	).Decode(&c)
	if err != nil {
		return 0, errs.Wrapf(err, "next sequence key=%s", key)
	}
	return c.Sequence, nil
}

func boolPtr(b bool) *bool { return &b }
