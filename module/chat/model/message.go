package model

import "time"

const MessageTableName = "messages"

// Message kinds.
const (
	TypeMessage = "message"
	TypeOffer   = "offer"
)

// Delivery status lifecycle. Transitions only move forward
// (sent -> delivered -> seen); every status write filters on the
// prior status so a regression is unrepresentable in the store.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusSeen      = "seen"
)

// Offer statuses. Pending marks a fresh offer; accepted/rejected are
// terminal responses; countered (or any free-form counter response)
// keeps the negotiation open.
const (
	OfferPending   = "pending"
	OfferAccepted  = "accepted"
	OfferRejected  = "rejected"
	OfferCountered = "countered"
)

// Offer is the negotiation payload embedded in a Message of type offer.
// A negotiation round is always a new Message record; the history of a
// negotiation is the ordered offer-messages sharing a conversation id.
type Offer struct {
	Amount       float64 `bson:"amount" json:"amount"`
	CounterOffer float64 `bson:"counter_offer,omitempty" json:"counterOffer,omitempty"`
	Terms        string  `bson:"terms,omitempty" json:"terms,omitempty"`
	Status       string  `bson:"status" json:"status"`
}

type Message struct {
	ID             string    `bson:"_id" json:"id"`
	Sender         string    `bson:"sender" json:"sender"`
	Recipient      string    `bson:"recipient" json:"recipient"`
	Booking        string    `bson:"booking" json:"booking"`
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	Type           string    `bson:"type" json:"type"`
	Content        string    `bson:"content,omitempty" json:"content,omitempty"`
	Offer          *Offer    `bson:"offer,omitempty" json:"offer,omitempty"`
	Status         string    `bson:"status" json:"status"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

func (*Message) TableName() string { return MessageTableName }

func (m *Message) IsOffer() bool { return m.Type == TypeOffer }

// TerminalOfferResponse reports whether a response closes the round so it
// does not count toward the booking's running offer tally.
func TerminalOfferResponse(response string) bool {
	return response == OfferAccepted || response == OfferRejected
}
