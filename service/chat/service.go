package chat

import (
	"context"

	"marketchat/logger"
	"marketchat/module/chat/model"
)

// Service holds the handlers behind the websocket events. All dependencies
// are injected; nothing here touches a global, so every handler is testable
// without a live transport.
type Service struct {
	reg      *Registry
	notify   *Notifier
	messages MessageStore
	users    UserStore
	bookings BookingStore

	mirror     OnlineMirror   // may be nil
	events     EventPublisher // may be nil
	parseToken TokenParser    // may be nil; then only plain userId auth works
}

type ServiceDeps struct {
	Registry   *Registry
	Messages   MessageStore
	Users      UserStore
	Bookings   BookingStore
	Mirror     OnlineMirror
	Events     EventPublisher
	ParseToken TokenParser
}

func NewService(d ServiceDeps) *Service {
	return &Service{
		reg:        d.Registry,
		notify:     NewNotifier(d.Registry),
		messages:   d.Messages,
		users:      d.Users,
		bookings:   d.Bookings,
		mirror:     d.Mirror,
		events:     d.Events,
		parseToken: d.ParseToken,
	}
}

func (s *Service) Notifier() *Notifier { return s.notify }

func (s *Service) mirrorOnline(ctx context.Context, userID, connID string) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SetOnline(ctx, userID, connID); err != nil {
		logMirrorErr("online", userID, err)
	}
}

func (s *Service) mirrorOffline(ctx context.Context, userID string) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SetOffline(ctx, userID); err != nil {
		logMirrorErr("offline", userID, err)
	}
}

func (s *Service) publishMessageSent(msg *model.Message) {
	if s.events != nil {
		s.events.MessageSent(msg)
	}
}

func (s *Service) publishOfferMade(msg *model.Message) {
	if s.events != nil {
		s.events.OfferMade(msg)
	}
}

func (s *Service) publishOfferResponded(msg *model.Message, response string) {
	if s.events != nil {
		s.events.OfferResponded(msg, response)
	}
}

func (s *Service) publishBookingNegotiated(bookingID string) {
	if s.events != nil {
		s.events.BookingNegotiated(bookingID)
	}
}

func logMirrorErr(op, userID string, err error) {
	logger.Warnf("[presence] mirror %s user=%s: %v", op, userID, err)
}
