package chat

import (
	"context"
	"time"

	"marketchat/module/chat/model"
)

// The persistence gateway as this core consumes it. Implemented by the
// mongo repos in module/chat/store; tests use in-memory fakes. Not-found
// outcomes are errs.ErrNotFound-wrapped and distinguishable from failures.

type MessageStore interface {
	Insert(ctx context.Context, msg *model.Message) error
	FindUndelivered(ctx context.Context, recipient string) ([]*model.Message, error)
	MarkDelivered(ctx context.Context, recipient string) (int64, error)
	FindDeliveredInConversation(ctx context.Context, conversationID, recipient string) ([]*model.Message, error)
	MarkSeen(ctx context.Context, conversationID, recipient string) (int64, error)
	DeliverByID(ctx context.Context, id string) (*model.Message, error)
	LatestInConversation(ctx context.Context, conversationID string) (*model.Message, error)
}

type UserStore interface {
	SetPresence(ctx context.Context, userID string, online bool, at time.Time) error
}

type BookingStore interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	SetStatus(ctx context.Context, id, status string) error
	RecordOffer(ctx context.Context, id string, amount float64) error
}

// OnlineMirror reflects presence changes into a shared store for sibling
// services. Best-effort: failures are logged, never surfaced.
type OnlineMirror interface {
	SetOnline(ctx context.Context, userID, connID string) error
	SetOffline(ctx context.Context, userID string) error
}

// EventPublisher emits integration events for the rest of the platform.
// Best-effort, same as the mirror.
type EventPublisher interface {
	MessageSent(msg *model.Message)
	OfferMade(msg *model.Message)
	OfferResponded(msg *model.Message, response string)
	BookingNegotiated(bookingID string)
}

// TokenParser resolves an authentication token to a user id.
type TokenParser func(token string) (string, error)
