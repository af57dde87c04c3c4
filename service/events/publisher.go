package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"marketchat/logger"
	"marketchat/module/chat/model"
	"marketchat/tools/errs"
)

// Integration event subjects. Consumed by the rest of the platform
// (booking service, analytics); nothing in the gateway subscribes.
const (
	SubjectMessageSent       = "marketchat.message.sent"
	SubjectOfferMade         = "marketchat.offer.made"
	SubjectOfferResponded    = "marketchat.offer.responded"
	SubjectBookingNegotiated = "marketchat.booking.negotiated"
)

// Publisher emits integration events over NATS, best-effort: a publish
// failure is logged and never fails the handler that triggered it.
type Publisher struct {
	nc *nats.Conn
}

func NewPublisher(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("marketchat-gateway"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats url=%s", url)
	}
	return &Publisher{nc: nc}, nil
}

type messageEvent struct {
	MessageID      string    `json:"messageId"`
	Sender         string    `json:"sender"`
	Recipient      string    `json:"recipient"`
	Booking        string    `json:"booking"`
	ConversationID string    `json:"conversationId"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Amount         float64   `json:"amount,omitempty"`
	Response       string    `json:"response,omitempty"`
	At             time.Time `json:"at"`
}

func (p *Publisher) MessageSent(msg *model.Message) {
	p.publish(SubjectMessageSent, eventFromMessage(msg, ""))
}

func (p *Publisher) OfferMade(msg *model.Message) {
	p.publish(SubjectOfferMade, eventFromMessage(msg, ""))
}

func (p *Publisher) OfferResponded(msg *model.Message, response string) {
	p.publish(SubjectOfferResponded, eventFromMessage(msg, response))
}

func (p *Publisher) BookingNegotiated(bookingID string) {
	p.publish(SubjectBookingNegotiated, map[string]any{
		"bookingId": bookingID,
		"at":        time.Now(),
	})
}

func (p *Publisher) publish(subject string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("[events] marshal subject=%s: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, raw); err != nil {
		logger.Warnf("[events] publish subject=%s: %v", subject, err)
	}
}

func (p *Publisher) Close() {
	if err := p.nc.Drain(); err != nil {
		logger.Warnf("[events] drain: %v", err)
	}
}

func eventFromMessage(msg *model.Message, response string) messageEvent {
	ev := messageEvent{
		MessageID:      msg.ID,
		Sender:         msg.Sender,
		Recipient:      msg.Recipient,
		Booking:        msg.Booking,
		ConversationID: msg.ConversationID,
		Type:           msg.Type,
		Status:         msg.Status,
		Response:       response,
		At:             time.Now(),
	}
	if msg.Offer != nil {
		ev.Amount = msg.Offer.Amount
	}
	return ev
}
