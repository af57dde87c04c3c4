package chat

import (
	"context"
	"time"

	"marketchat/logger"
	"marketchat/module/chat/model"
	"marketchat/tools/ids"
)

// SendMessage persists a chat message and, when the recipient is connected,
// advances it to delivered in the same round trip and pushes it out. The
// returned ack carries the final record (delivered or sent). A nil ack with
// nil error means the failure was logged and swallowed.
func (s *Service) SendMessage(ctx context.Context, req SendMessageRequest) (*MessageAck, error) {
	msg := &model.Message{
		ID:             ids.GenerateString(),
		Sender:         req.Sender,
		Recipient:      req.Recipient,
		Booking:        req.Booking,
		ConversationID: req.ConversationID,
		Type:           model.TypeMessage,
		Content:        req.Content,
		Status:         model.StatusSent,
		CreatedAt:      time.Now(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		logger.Errorf("[send] persist sender=%s recipient=%s: %v", req.Sender, req.Recipient, err)
		return nil, nil
	}

	if s.notify.Online(req.Recipient) {
		delivered, err := s.messages.DeliverByID(ctx, msg.ID)
		if err != nil {
			logger.Errorf("[send] deliver id=%s: %v", msg.ID, err)
			return nil, nil
		}
		msg = delivered
		s.notify.ToUser(req.Recipient, EvNewMessage, MessagePush{Message: msg, Status: msg.Status})
	}

	s.publishMessageSent(msg)
	return &MessageAck{Status: "ok", MessageID: msg.ID, Message: msg}, nil
}

// MarkSeen batch-advances the user's delivered messages of one conversation
// to seen and tells each distinct online sender once, carrying the whole
// updated batch. Nothing delivered means nothing happens.
func (s *Service) MarkSeen(ctx context.Context, req MessageSeenRequest) {
	unseen, err := s.messages.FindDeliveredInConversation(ctx, req.ConversationID, req.UserID)
	if err != nil {
		logger.Errorf("[seen] find conversation=%s user=%s: %v", req.ConversationID, req.UserID, err)
		return
	}
	if len(unseen) == 0 {
		return
	}

	if _, err := s.messages.MarkSeen(ctx, req.ConversationID, req.UserID); err != nil {
		logger.Errorf("[seen] advance conversation=%s user=%s: %v", req.ConversationID, req.UserID, err)
		return
	}
	for _, msg := range unseen {
		msg.Status = model.StatusSeen
	}

	for _, sender := range distinctSenders(unseen) {
		s.notify.ToUser(sender, EvSeen, SeenBatch{SeenMessages: unseen})
	}
}
