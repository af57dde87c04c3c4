package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"marketchat/module/chat/model"
	"marketchat/tools/errs"
)

type BookingRepo struct {
	DB *mongo.Database
}

func (r *BookingRepo) coll() *mongo.Collection {
	return r.DB.Collection(model.BookingTableName)
}

func (r *BookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFound("booking " + id)
	}
	if err != nil {
		return nil, errs.Wrapf(err, "find booking id=%s", id)
	}
	return &b, nil
}

func (r *BookingRepo) SetStatus(ctx context.Context, id, status string) error {
	res, err := r.coll().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
	if err != nil {
		return errs.Wrapf(err, "set booking status id=%s", id)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("booking " + id)
	}
	return nil
}

// RecordOffer bumps offers_count and appends the amount to the offer history
// in a single write. Handlers may suspend between their own store calls, so
// this never reads-then-writes; $inc+$push in one UpdateOne keeps the tally
// safe under interleaving.
func (r *BookingRepo) RecordOffer(ctx context.Context, id string, amount float64) error {
	res, err := r.coll().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc":  bson.M{"offers_count": 1},
			"$push": bson.M{"offers": amount},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return errs.Wrapf(err, "record offer booking=%s", id)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("booking " + id)
	}
	return nil
}
