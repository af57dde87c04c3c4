package chat

import (
	"context"
	"time"

	"marketchat/module/chat/model"
	"marketchat/tools/errs"
)

// In-memory stand-ins for the persistence gateway and sessions.

type emittedEvent struct {
	event string
	data  any
}

type fakeSession struct {
	id     string
	events []emittedEvent
	closed bool
}

func (s *fakeSession) ConnID() string { return s.id }
func (s *fakeSession) Emit(event string, data any) {
	s.events = append(s.events, emittedEvent{event: event, data: data})
}
func (s *fakeSession) Close() { s.closed = true }

func (s *fakeSession) named(event string) []emittedEvent {
	var out []emittedEvent
	for _, e := range s.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeMessages struct {
	msgs      []*model.Message
	insertErr error
	findErr   error
	updateErr error
}

func (f *fakeMessages) Insert(_ context.Context, msg *model.Message) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeMessages) FindUndelivered(_ context.Context, recipient string) ([]*model.Message, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*model.Message
	for _, m := range f.msgs {
		if m.Recipient == recipient && m.Status == model.StatusSent {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) MarkDelivered(_ context.Context, recipient string) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	var n int64
	for _, m := range f.msgs {
		if m.Recipient == recipient && m.Status == model.StatusSent {
			m.Status = model.StatusDelivered
			n++
		}
	}
	return n, nil
}

func (f *fakeMessages) FindDeliveredInConversation(_ context.Context, conversationID, recipient string) ([]*model.Message, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*model.Message
	for _, m := range f.msgs {
		if m.ConversationID == conversationID && m.Recipient == recipient && m.Status == model.StatusDelivered {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) MarkSeen(_ context.Context, conversationID, recipient string) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	var n int64
	for _, m := range f.msgs {
		if m.ConversationID == conversationID && m.Recipient == recipient && m.Status == model.StatusDelivered {
			m.Status = model.StatusSeen
			n++
		}
	}
	return n, nil
}

func (f *fakeMessages) DeliverByID(_ context.Context, id string) (*model.Message, error) {
	for _, m := range f.msgs {
		if m.ID == id {
			if m.Status == model.StatusSent {
				m.Status = model.StatusDelivered
			}
			return m, nil
		}
	}
	return nil, errs.NotFound("message " + id)
}

func (f *fakeMessages) LatestInConversation(_ context.Context, conversationID string) (*model.Message, error) {
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if f.msgs[i].ConversationID == conversationID {
			return f.msgs[i], nil
		}
	}
	return nil, errs.NotFound("conversation " + conversationID)
}

func (f *fakeMessages) byID(id string) *model.Message {
	for _, m := range f.msgs {
		if m.ID == id {
			return m
		}
	}
	return nil
}

type presenceCall struct {
	userID string
	online bool
}

type fakeUsers struct {
	known map[string]bool
	calls []presenceCall
}

func (f *fakeUsers) SetPresence(_ context.Context, userID string, online bool, _ time.Time) error {
	if f.known != nil && !f.known[userID] {
		return errs.NotFound("user " + userID)
	}
	f.calls = append(f.calls, presenceCall{userID: userID, online: online})
	return nil
}

type fakeBookings struct {
	m         map[string]*model.Booking
	recordErr error
	statusErr error
}

func (f *fakeBookings) FindByID(_ context.Context, id string) (*model.Booking, error) {
	b, ok := f.m[id]
	if !ok {
		return nil, errs.NotFound("booking " + id)
	}
	return b, nil
}

func (f *fakeBookings) SetStatus(_ context.Context, id, status string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	b, ok := f.m[id]
	if !ok {
		return errs.NotFound("booking " + id)
	}
	b.Status = status
	return nil
}

func (f *fakeBookings) RecordOffer(_ context.Context, id string, amount float64) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	b, ok := f.m[id]
	if !ok {
		return errs.NotFound("booking " + id)
	}
	b.OffersCount++
	b.Offers = append(b.Offers, amount)
	return nil
}

type fixture struct {
	svc      *Service
	reg      *Registry
	messages *fakeMessages
	users    *fakeUsers
	bookings *fakeBookings
}

func newFixture() *fixture {
	f := &fixture{
		reg:      NewRegistry(),
		messages: &fakeMessages{},
		users:    &fakeUsers{},
		bookings: &fakeBookings{m: make(map[string]*model.Booking)},
	}
	f.svc = NewService(ServiceDeps{
		Registry: f.reg,
		Messages: f.messages,
		Users:    f.users,
		Bookings: f.bookings,
	})
	return f
}

// connect registers a session for the user directly, bypassing the
// authenticate flow, for tests that only care about routing.
func (f *fixture) connect(userID, connID string) *fakeSession {
	sess := &fakeSession{id: connID}
	f.reg.Register(userID, sess)
	return sess
}

func (f *fixture) seedMessage(m *model.Message) *model.Message {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	f.messages.msgs = append(f.messages.msgs, m)
	return m
}
