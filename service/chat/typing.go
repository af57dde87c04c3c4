package chat

import (
	"context"

	"marketchat/logger"
	"marketchat/tools/errs"
)

// Typing forwards the flag to the conversation counterparty, inferred from
// the newest message (whichever side is not the typist). A conversation with
// no messages yet has no counterparty to infer, so nothing is sent. Fully
// stateless: no debounce, no persistence.
func (s *Service) Typing(ctx context.Context, req TypingRequest) {
	last, err := s.messages.LatestInConversation(ctx, req.ConversationID)
	if err != nil {
		if !errs.IsNotFound(err) {
			logger.Errorf("[typing] latest conversation=%s: %v", req.ConversationID, err)
		}
		return
	}

	counterparty := last.Sender
	if last.Sender == req.UserID {
		counterparty = last.Recipient
	}

	s.notify.ToUser(counterparty, EvTypingStatus, TypingPush{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		IsTyping:       req.IsTyping,
	})
}
