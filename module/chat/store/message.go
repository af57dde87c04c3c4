package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketchat/module/chat/model"
	"marketchat/tools/errs"
)

// MessageRepo persists chat and offer messages. Every status write filters
// on the prior status, so the sent -> delivered -> seen order can never
// regress no matter how calls interleave.
type MessageRepo struct {
	DB *mongo.Database
}

func (r *MessageRepo) coll() *mongo.Collection {
	return r.DB.Collection(model.MessageTableName)
}

func (r *MessageRepo) Insert(ctx context.Context, msg *model.Message) error {
	now := time.Now()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.UpdatedAt = now
	if _, err := r.coll().InsertOne(ctx, msg); err != nil {
		return errs.Wrapf(err, "insert message id=%s", msg.ID)
	}
	return nil
}

// FindUndelivered returns all status=sent messages addressed to the user.
func (r *MessageRepo) FindUndelivered(ctx context.Context, recipient string) ([]*model.Message, error) {
	return r.find(ctx, bson.M{"recipient": recipient, "status": model.StatusSent})
}

// FindDeliveredInConversation returns the status=delivered messages addressed
// to the user within one conversation (the mark-seen candidates).
func (r *MessageRepo) FindDeliveredInConversation(ctx context.Context, conversationID, recipient string) ([]*model.Message, error) {
	return r.find(ctx, bson.M{
		"conversation_id": conversationID,
		"recipient":       recipient,
		"status":          model.StatusDelivered,
	})
}

func (r *MessageRepo) find(ctx context.Context, filter bson.M) ([]*model.Message, error) {
	cur, err := r.coll().Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, errs.Wrap(err, "find messages")
	}
	defer cur.Close(ctx)
	var out []*model.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err, "decode messages")
	}
	return out, nil
}

// MarkDelivered advances every status=sent message addressed to the user to
// delivered and returns the number advanced.
func (r *MessageRepo) MarkDelivered(ctx context.Context, recipient string) (int64, error) {
	res, err := r.coll().UpdateMany(ctx,
		bson.M{"recipient": recipient, "status": model.StatusSent},
		bson.M{"$set": bson.M{"status": model.StatusDelivered, "updated_at": time.Now()}})
	if err != nil {
		return 0, errs.Wrapf(err, "mark delivered recipient=%s", recipient)
	}
	return res.ModifiedCount, nil
}

// MarkSeen advances the delivered messages of one conversation addressed to
// the user to seen.
func (r *MessageRepo) MarkSeen(ctx context.Context, conversationID, recipient string) (int64, error) {
	res, err := r.coll().UpdateMany(ctx,
		bson.M{
			"conversation_id": conversationID,
			"recipient":       recipient,
			"status":          model.StatusDelivered,
		},
		bson.M{"$set": bson.M{"status": model.StatusSeen, "updated_at": time.Now()}})
	if err != nil {
		return 0, errs.Wrapf(err, "mark seen conversation=%s", conversationID)
	}
	return res.ModifiedCount, nil
}

// DeliverByID advances one message from sent to delivered and returns the
// updated record. A message already past sent comes back unchanged.
func (r *MessageRepo) DeliverByID(ctx context.Context, id string) (*model.Message, error) {
	after := options.After
	var updated model.Message
	err := r.coll().FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": model.StatusSent},
		bson.M{"$set": bson.M{"status": model.StatusDelivered, "updated_at": time.Now()}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		// Already delivered or seen; return the current record untouched.
		return r.FindByID(ctx, id)
	}
	if err != nil {
		return nil, errs.Wrapf(err, "deliver message id=%s", id)
	}
	return &updated, nil
}

func (r *MessageRepo) FindByID(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFound("message " + id)
	}
	if err != nil {
		return nil, errs.Wrapf(err, "find message id=%s", id)
	}
	return &msg, nil
}

// LatestInConversation returns the newest message of a conversation, or
// not-found when the conversation has no messages yet.
func (r *MessageRepo) LatestInConversation(ctx context.Context, conversationID string) (*model.Message, error) {
	var msg model.Message
	err := r.coll().FindOne(ctx,
		bson.M{"conversation_id": conversationID},
		options.FindOne().SetSort(bson.M{"created_at": -1}),
	).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFound("conversation " + conversationID)
	}
	if err != nil {
		return nil, errs.Wrapf(err, "latest message conversation=%s", conversationID)
	}
	return &msg, nil
}

// EnsureIndexes creates the lookup indexes the pipeline depends on.
func (r *MessageRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return errs.Wrap(err, "create message indexes")
}
