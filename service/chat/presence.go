package chat

import (
	"context"
	"time"

	"marketchat/logger"
	"marketchat/module/chat/model"
	"marketchat/tools/errs"
)

// Authenticate resolves the user, marks them online, registers the session,
// flushes the undelivered backlog and broadcasts presence. Repeat calls from
// the same user are harmless: re-registering is idempotent and only
// status=sent messages qualify for the flush, so nothing is re-delivered.
//
// A nil ack with a nil error means the failure was swallowed per the error
// policy; the caller's ack callback is simply never invoked.
func (s *Service) Authenticate(ctx context.Context, sess Session, req AuthenticateRequest) (*AuthenticateAck, error) {
	userID, err := s.resolveUser(req)
	if err != nil {
		logger.Warnf("[auth] resolve user conn=%s: %v", sess.ConnID(), err)
		return nil, nil
	}

	if err := s.users.SetPresence(ctx, userID, true, time.Now()); err != nil {
		if !errs.IsNotFound(err) {
			logger.Errorf("[auth] mark online user=%s: %v", userID, err)
			return nil, nil
		}
		// Unknown user id: keep going, matching the store's lenient
		// find-and-update semantics. The session still gets registered.
		logger.Warnf("[auth] user record missing user=%s", userID)
	}

	if old := s.reg.Register(userID, sess); old != nil {
		// Last-writer-wins: the newer device replaces the older one.
		logger.Infof("[auth] replacing connection user=%s old=%s new=%s", userID, old.ConnID(), sess.ConnID())
		old.Close()
	}
	s.mirrorOnline(ctx, userID, sess.ConnID())

	backlog, err := s.flushBacklog(ctx, userID)
	if err != nil {
		logger.Errorf("[auth] backlog flush user=%s: %v", userID, err)
		return nil, nil
	}

	s.notify.Broadcast(EvUserOnline, PresencePush{UserID: userID}, sess.ConnID())

	return &AuthenticateAck{Status: "ok", UndeliveredMessages: backlog}, nil
}

// flushBacklog advances the user's status=sent messages to delivered and
// tells each distinct online sender, one event per sender carrying the full
// updated batch.
func (s *Service) flushBacklog(ctx context.Context, userID string) ([]*model.Message, error) {
	undelivered, err := s.messages.FindUndelivered(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(undelivered) == 0 {
		return nil, nil
	}
	if _, err := s.messages.MarkDelivered(ctx, userID); err != nil {
		return nil, err
	}
	for _, msg := range undelivered {
		msg.Status = model.StatusDelivered
	}

	for _, sender := range distinctSenders(undelivered) {
		s.notify.ToUser(sender, EvMessageDelivered, DeliveredBatch{DeliveredMessages: undelivered})
	}
	return undelivered, nil
}

// Disconnect tears down whatever the connection registered. A connection
// that never authenticated, or that was already replaced by a newer one,
// is a silent no-op.
func (s *Service) Disconnect(ctx context.Context, connID string) {
	userID, ok := s.reg.UnregisterConn(connID)
	if !ok {
		return
	}

	if err := s.users.SetPresence(ctx, userID, false, time.Now()); err != nil && !errs.IsNotFound(err) {
		logger.Errorf("[disconnect] mark offline user=%s: %v", userID, err)
	}
	s.mirrorOffline(ctx, userID)

	s.notify.Broadcast(EvUserOffline, PresencePush{UserID: userID}, connID)
	logger.Infof("[disconnect] user=%s conn=%s", userID, connID)
}

func (s *Service) resolveUser(req AuthenticateRequest) (string, error) {
	if req.Token != "" && s.parseToken != nil {
		return s.parseToken(req.Token)
	}
	if req.UserID == "" {
		return "", errs.New("empty user id")
	}
	return req.UserID, nil
}

func distinctSenders(msgs []*model.Message) []string {
	seen := make(map[string]struct{}, len(msgs))
	var out []string
	for _, m := range msgs {
		if _, ok := seen[m.Sender]; ok {
			continue
		}
		seen[m.Sender] = struct{}{}
		out = append(out, m.Sender)
	}
	return out
}
