package chat

import (
	"github.com/mitchellh/mapstructure"

	"marketchat/module/chat/model"
	"marketchat/tools/errs"
)

// Inbound event names.
const (
	EvAuthenticate = "authenticate"
	EvSendMessage  = "send-message"
	EvMessageSeen  = "message-seen"
	EvMakeOffer    = "make-offer"
	EvRespondOffer = "respond-offer"
	EvTyping       = "typing"
)

// Outbound event names.
const (
	EvAck                = "ack"
	EvUserOnline         = "user-online"
	EvUserOffline        = "user-offline"
	EvNewMessage         = "new-message"
	EvMessageDelivered   = "message-delivered"
	EvSeen               = "seen"
	EvNewOffer           = "new-offer"
	EvOfferSent          = "offer-sent"
	EvUpdatedOffer       = "updated-offer"
	EvOfferReplied       = "offer-replied"
	EvOfferResponseError = "offer-response-error"
	EvTypingStatus       = "typing-status"
)

// Envelope is the wire frame in both directions. Inbound frames may carry
// an AckID; the reply is an "ack" event echoing the same AckID.
type Envelope struct {
	Event string         `json:"event"`
	AckID string         `json:"ackId,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// ===== Typed requests (decoded and validated at the boundary) =====

type AuthenticateRequest struct {
	UserID string `mapstructure:"userId"`
	Token  string `mapstructure:"token"`
}

func (r *AuthenticateRequest) Validate() error {
	if r.UserID == "" && r.Token == "" {
		return errs.New("authenticate: userId or token required")
	}
	return nil
}

type SendMessageRequest struct {
	Sender         string `mapstructure:"sender"`
	Recipient      string `mapstructure:"recipient"`
	ConversationID string `mapstructure:"conversationId"`
	Booking        string `mapstructure:"booking"`
	Content        string `mapstructure:"content"`
}

func (r *SendMessageRequest) Validate() error {
	switch {
	case r.Sender == "":
		return errs.New("send-message: sender required")
	case r.Recipient == "":
		return errs.New("send-message: recipient required")
	case r.ConversationID == "":
		return errs.New("send-message: conversationId required")
	case r.Booking == "":
		return errs.New("send-message: booking required")
	case r.Content == "":
		return errs.New("send-message: content required")
	}
	return nil
}

type MessageSeenRequest struct {
	ConversationID string `mapstructure:"conversationId"`
	UserID         string `mapstructure:"userId"`
}

func (r *MessageSeenRequest) Validate() error {
	if r.ConversationID == "" || r.UserID == "" {
		return errs.New("message-seen: conversationId and userId required")
	}
	return nil
}

type MakeOfferRequest struct {
	Sender         string  `mapstructure:"sender"`
	Recipient      string  `mapstructure:"recipient"`
	Booking        string  `mapstructure:"booking"`
	Amount         float64 `mapstructure:"amount"`
	Terms          string  `mapstructure:"terms"`
	ConversationID string  `mapstructure:"conversationId"`
}

func (r *MakeOfferRequest) Validate() error {
	switch {
	case r.Sender == "":
		return errs.New("make-offer: sender required")
	case r.Recipient == "":
		return errs.New("make-offer: recipient required")
	case r.Booking == "":
		return errs.New("make-offer: booking required")
	case r.ConversationID == "":
		return errs.New("make-offer: conversationId required")
	case r.Amount <= 0:
		return errs.New("make-offer: amount must be positive")
	}
	return nil
}

type RespondOfferRequest struct {
	Sender         string  `mapstructure:"sender"`
	Recipient      string  `mapstructure:"recipient"`
	Booking        string  `mapstructure:"booking"`
	ConversationID string  `mapstructure:"conversationId"`
	Response       string  `mapstructure:"response"`
	CounterOffer   float64 `mapstructure:"counterOffer"`
	Terms          string  `mapstructure:"terms"`
}

func (r *RespondOfferRequest) Validate() error {
	switch {
	case r.Sender == "":
		return errs.New("respond-offer: sender required")
	case r.Recipient == "":
		return errs.New("respond-offer: recipient required")
	case r.Booking == "":
		return errs.New("respond-offer: booking required")
	case r.ConversationID == "":
		return errs.New("respond-offer: conversationId required")
	case r.Response == "":
		return errs.New("respond-offer: response required")
	}
	return nil
}

type TypingRequest struct {
	ConversationID string `mapstructure:"conversationId"`
	UserID         string `mapstructure:"userId"`
	IsTyping       bool   `mapstructure:"isTyping"`
}

func (r *TypingRequest) Validate() error {
	if r.ConversationID == "" || r.UserID == "" {
		return errs.New("typing: conversationId and userId required")
	}
	return nil
}

// Decode maps a raw frame payload onto a typed request. Unknown keys are
// ignored (clients ship extra fields); type mismatches are an error.
func Decode(data map[string]any, out any) error {
	if data == nil {
		data = map[string]any{}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return errs.Wrap(err, "build payload decoder")
	}
	if err := dec.Decode(data); err != nil {
		return errs.Wrap(err, "decode payload")
	}
	return nil
}

// ===== Acknowledgment and notification payloads =====

type AuthenticateAck struct {
	Status              string           `json:"status"`
	UndeliveredMessages []*model.Message `json:"undeliveredMessages"`
}

type MessageAck struct {
	Status    string         `json:"status"`
	MessageID string         `json:"messageId"`
	Message   *model.Message `json:"message"`
}

type ErrorAck struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type MessagePush struct {
	Message *model.Message `json:"message"`
	Status  string         `json:"status"`
}

type DeliveredBatch struct {
	DeliveredMessages []*model.Message `json:"deliveredMessages"`
}

type SeenBatch struct {
	SeenMessages []*model.Message `json:"seenMessages"`
}

type PresencePush struct {
	UserID string `json:"userId"`
}

type TypingPush struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	IsTyping       bool   `json:"isTyping"`
}
