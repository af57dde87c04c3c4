package chat

import (
	"context"
	"time"

	"marketchat/logger"
	"marketchat/module/chat/model"
	"marketchat/tools/errs"
	"marketchat/tools/ids"
)

// Offer negotiation. Each round is a new offer-message; the booking carries
// the aggregate view (status, offers_count, offer amount history). Booking
// status moves no-offer -> negotiating on any offer and negotiating ->
// negotiated on acceptance.
//
// Both offer handlers report failures through a structured error ack.
// RespondOffer additionally emits the legacy offer-response-error event so
// older clients that listen for it keep working.

// MakeOffer opens or continues a negotiation round.
func (s *Service) MakeOffer(ctx context.Context, sess Session, req MakeOfferRequest) (*MessageAck, *ErrorAck) {
	msg := &model.Message{
		ID:             ids.GenerateString(),
		Sender:         req.Sender,
		Recipient:      req.Recipient,
		Booking:        req.Booking,
		ConversationID: req.ConversationID,
		Type:           model.TypeOffer,
		Offer: &model.Offer{
			Amount: req.Amount,
			Terms:  req.Terms,
			Status: model.OfferPending,
		},
		Status:    model.StatusSent,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		logger.Errorf("[offer] persist booking=%s sender=%s: %v", req.Booking, req.Sender, err)
		return nil, &ErrorAck{Status: "error", Error: err.Error()}
	}

	booking, err := s.bookings.FindByID(ctx, req.Booking)
	if err != nil {
		logger.Errorf("[offer] load booking=%s: %v", req.Booking, err)
		return nil, offerError(err)
	}
	if err := s.bookings.SetStatus(ctx, booking.ID, model.BookingNegotiating); err != nil {
		logger.Errorf("[offer] set negotiating booking=%s: %v", booking.ID, err)
		return nil, offerError(err)
	}

	// The owner replying on their own booking does not count toward the
	// running tally; only the counterparty's offers do.
	if req.Sender != booking.User {
		if err := s.bookings.RecordOffer(ctx, booking.ID, req.Amount); err != nil {
			logger.Errorf("[offer] record booking=%s: %v", booking.ID, err)
			return nil, offerError(err)
		}
	}

	msg = s.deliverOffer(ctx, msg, req.Recipient, EvNewOffer)
	sess.Emit(EvOfferSent, msg)
	s.publishOfferMade(msg)

	return &MessageAck{Status: "ok", MessageID: msg.ID, Message: msg}, nil
}

// RespondOffer records a response round: accepted, rejected, countered, or a
// free-form counter-status. Acceptance settles the booking's negotiation.
func (s *Service) RespondOffer(ctx context.Context, sess Session, req RespondOfferRequest) (*MessageAck, *ErrorAck) {
	msg := &model.Message{
		ID:             ids.GenerateString(),
		Sender:         req.Sender,
		Recipient:      req.Recipient,
		Booking:        req.Booking,
		ConversationID: req.ConversationID,
		Type:           model.TypeOffer,
		Offer: &model.Offer{
			Amount: req.CounterOffer,
			Terms:  req.Terms,
			Status: req.Response,
		},
		Status:    model.StatusSent,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		logger.Errorf("[offer-response] persist booking=%s sender=%s: %v", req.Booking, req.Sender, err)
		return nil, s.respondError(sess, err)
	}

	booking, err := s.bookings.FindByID(ctx, req.Booking)
	if err != nil {
		logger.Errorf("[offer-response] load booking=%s: %v", req.Booking, err)
		return nil, s.respondError(sess, err)
	}

	if req.Response == model.OfferAccepted {
		if err := s.bookings.SetStatus(ctx, booking.ID, model.BookingNegotiated); err != nil {
			logger.Errorf("[offer-response] settle booking=%s: %v", booking.ID, err)
			return nil, s.respondError(sess, err)
		}
		s.publishBookingNegotiated(booking.ID)
	}

	// Counters from the non-owning party extend the tally; terminal
	// responses (accepted/rejected) never do.
	if req.Sender != booking.User && !model.TerminalOfferResponse(req.Response) {
		if err := s.bookings.RecordOffer(ctx, booking.ID, req.CounterOffer); err != nil {
			logger.Errorf("[offer-response] record booking=%s: %v", booking.ID, err)
			return nil, s.respondError(sess, err)
		}
	}

	msg = s.deliverOffer(ctx, msg, req.Recipient, EvUpdatedOffer)
	sess.Emit(EvOfferReplied, msg)
	s.publishOfferResponded(msg, req.Response)

	return &MessageAck{Status: "ok", MessageID: msg.ID, Message: msg}, nil
}

// deliverOffer pushes the offer-message to the recipient if connected,
// advancing its delivery status first. Delivery trouble downgrades to the
// persisted record rather than failing the round.
func (s *Service) deliverOffer(ctx context.Context, msg *model.Message, recipient, event string) *model.Message {
	if !s.notify.Online(recipient) {
		return msg
	}
	delivered, err := s.messages.DeliverByID(ctx, msg.ID)
	if err != nil {
		logger.Errorf("[offer] deliver id=%s: %v", msg.ID, err)
		return msg
	}
	s.notify.ToUser(recipient, event, MessagePush{Message: delivered, Status: delivered.Status})
	return delivered
}

func (s *Service) respondError(sess Session, err error) *ErrorAck {
	sess.Emit(EvOfferResponseError, ErrorAck{Status: "error", Error: "Failed to process offer response"})
	return offerError(err)
}

func offerError(err error) *ErrorAck {
	if errs.IsNotFound(err) {
		return &ErrorAck{Status: "error", Error: "booking not found"}
	}
	return &ErrorAck{Status: "error", Error: err.Error()}
}
