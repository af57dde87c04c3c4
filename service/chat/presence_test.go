package chat

import (
	"context"
	"testing"

	"marketchat/module/chat/model"
	"marketchat/tools/errs"
)

func TestAuthenticateFlushesSentBacklog(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// bob and carol are online to observe delivery receipts.
	bobSess := f.connect("bob", "c-bob")
	carolSess := f.connect("carol", "c-carol")

	f.seedMessage(&model.Message{ID: "m1", Sender: "bob", Recipient: "alice", ConversationID: "v1", Status: model.StatusSent})
	f.seedMessage(&model.Message{ID: "m2", Sender: "bob", Recipient: "alice", ConversationID: "v1", Status: model.StatusSent})
	f.seedMessage(&model.Message{ID: "m3", Sender: "carol", Recipient: "alice", ConversationID: "v2", Status: model.StatusSent})
	f.seedMessage(&model.Message{ID: "m4", Sender: "bob", Recipient: "alice", ConversationID: "v1", Status: model.StatusDelivered})
	f.seedMessage(&model.Message{ID: "m5", Sender: "bob", Recipient: "alice", ConversationID: "v1", Status: model.StatusSeen})

	sess := &fakeSession{id: "c-alice"}
	ack, err := f.svc.Authenticate(ctx, sess, AuthenticateRequest{UserID: "alice"})
	if err != nil || ack == nil {
		t.Fatalf("Authenticate = %v, %v; want ack", ack, err)
	}
	if ack.Status != "ok" {
		t.Fatalf("ack status = %q", ack.Status)
	}
	if len(ack.UndeliveredMessages) != 3 {
		t.Fatalf("backlog size = %d; want 3", len(ack.UndeliveredMessages))
	}
	for _, m := range ack.UndeliveredMessages {
		if m.Status != model.StatusDelivered {
			t.Fatalf("backlog message %s status = %q; want delivered", m.ID, m.Status)
		}
	}

	// Already-delivered/seen messages stay untouched.
	if got := f.messages.byID("m4").Status; got != model.StatusDelivered {
		t.Fatalf("m4 status = %q; want delivered", got)
	}
	if got := f.messages.byID("m5").Status; got != model.StatusSeen {
		t.Fatalf("m5 status = %q; want seen", got)
	}

	// One message-delivered event per distinct sender, carrying the batch.
	bobReceipts := bobSess.named(EvMessageDelivered)
	if len(bobReceipts) != 1 {
		t.Fatalf("bob receipts = %d; want 1", len(bobReceipts))
	}
	batch := bobReceipts[0].data.(DeliveredBatch)
	if len(batch.DeliveredMessages) != 3 {
		t.Fatalf("bob batch size = %d; want 3", len(batch.DeliveredMessages))
	}
	if got := len(carolSess.named(EvMessageDelivered)); got != 1 {
		t.Fatalf("carol receipts = %d; want 1", got)
	}

	// user-online broadcast reaches others, not the authenticating session.
	if got := len(bobSess.named(EvUserOnline)); got != 1 {
		t.Fatalf("bob user-online = %d; want 1", got)
	}
	if got := len(sess.named(EvUserOnline)); got != 0 {
		t.Fatalf("alice saw her own user-online broadcast")
	}

	// Presence write happened.
	if len(f.users.calls) == 0 || !f.users.calls[0].online || f.users.calls[0].userID != "alice" {
		t.Fatalf("presence calls = %+v; want alice online", f.users.calls)
	}
}

func TestAuthenticateIdempotentOnRepeat(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedMessage(&model.Message{ID: "m1", Sender: "bob", Recipient: "alice", ConversationID: "v1", Status: model.StatusSent})

	sess := &fakeSession{id: "c-alice"}
	if ack, _ := f.svc.Authenticate(ctx, sess, AuthenticateRequest{UserID: "alice"}); len(ack.UndeliveredMessages) != 1 {
		t.Fatalf("first authenticate backlog = %d; want 1", len(ack.UndeliveredMessages))
	}

	ack, err := f.svc.Authenticate(ctx, sess, AuthenticateRequest{UserID: "alice"})
	if err != nil || ack == nil {
		t.Fatalf("repeat Authenticate = %v, %v", ack, err)
	}
	if len(ack.UndeliveredMessages) != 0 {
		t.Fatalf("repeat backlog = %d; want 0 (nothing re-delivered)", len(ack.UndeliveredMessages))
	}
	if got := f.messages.byID("m1").Status; got != model.StatusDelivered {
		t.Fatalf("m1 status = %q; want delivered (no regression)", got)
	}
}

func TestAuthenticateReplacesOlderConnection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := &fakeSession{id: "c1"}
	second := &fakeSession{id: "c2"}

	f.svc.Authenticate(ctx, first, AuthenticateRequest{UserID: "alice"})
	f.svc.Authenticate(ctx, second, AuthenticateRequest{UserID: "alice"})

	if !first.closed {
		t.Fatal("older connection was not closed on re-authenticate")
	}
	got, _ := f.reg.Lookup("alice")
	if got.ConnID() != "c2" {
		t.Fatalf("active conn = %s; want c2", got.ConnID())
	}
}

func TestAuthenticateUnknownUserStillRegisters(t *testing.T) {
	f := newFixture()
	f.users.known = map[string]bool{} // every user missing

	sess := &fakeSession{id: "c1"}
	ack, err := f.svc.Authenticate(context.Background(), sess, AuthenticateRequest{UserID: "ghost"})
	if err != nil || ack == nil {
		t.Fatalf("Authenticate = %v, %v; want ack despite missing user record", ack, err)
	}
	if _, ok := f.reg.Lookup("ghost"); !ok {
		t.Fatal("session not registered")
	}
}

func TestAuthenticateWithToken(t *testing.T) {
	f := newFixture()
	f.svc.parseToken = func(token string) (string, error) {
		if token != "good-token" {
			return "", errs.New("bad token")
		}
		return "alice", nil
	}

	sess := &fakeSession{id: "c1"}
	ack, err := f.svc.Authenticate(context.Background(), sess, AuthenticateRequest{Token: "good-token"})
	if err != nil || ack == nil {
		t.Fatalf("token Authenticate = %v, %v", ack, err)
	}
	if _, ok := f.reg.Lookup("alice"); !ok {
		t.Fatal("token-resolved user not registered")
	}

	bad := &fakeSession{id: "c2"}
	if ack, _ := f.svc.Authenticate(context.Background(), bad, AuthenticateRequest{Token: "wrong"}); ack != nil {
		t.Fatal("bad token produced an ack")
	}
}

func TestDisconnect(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sess := &fakeSession{id: "c-alice"}
	f.svc.Authenticate(ctx, sess, AuthenticateRequest{UserID: "alice"})
	bobSess := f.connect("bob", "c-bob")

	f.svc.Disconnect(ctx, "c-alice")

	if _, ok := f.reg.Lookup("alice"); ok {
		t.Fatal("alice still registered after disconnect")
	}
	if _, ok := f.reg.Lookup("bob"); !ok {
		t.Fatal("bob evicted by alice's disconnect")
	}
	if got := len(bobSess.named(EvUserOffline)); got != 1 {
		t.Fatalf("bob user-offline events = %d; want 1", got)
	}

	last := f.users.calls[len(f.users.calls)-1]
	if last.userID != "alice" || last.online {
		t.Fatalf("last presence call = %+v; want alice offline", last)
	}
}

func TestDisconnectUnauthenticatedConnIsNoop(t *testing.T) {
	f := newFixture()
	bobSess := f.connect("bob", "c-bob")

	f.svc.Disconnect(context.Background(), "never-authenticated")

	if len(f.users.calls) != 0 {
		t.Fatalf("presence calls = %+v; want none", f.users.calls)
	}
	if len(bobSess.events) != 0 {
		t.Fatalf("broadcast events = %+v; want none", bobSess.events)
	}
}
