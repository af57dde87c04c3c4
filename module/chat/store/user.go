package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"marketchat/module/chat/model"
	"marketchat/tools/errs"
)

type UserRepo struct {
	DB *mongo.Database
}

func (r *UserRepo) coll() *mongo.Collection {
	return r.DB.Collection(model.UserTableName)
}

// SetPresence flips the user's online flag and stamps last-seen.
func (r *UserRepo) SetPresence(ctx context.Context, userID string, online bool, at time.Time) error {
	res, err := r.coll().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"online": online, "last_seen": at}})
	if err != nil {
		return errs.Wrapf(err, "set presence user=%s", userID)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("user " + userID)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	err := r.coll().FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFound("user " + userID)
	}
	if err != nil {
		return nil, errs.Wrapf(err, "find user id=%s", userID)
	}
	return &u, nil
}
