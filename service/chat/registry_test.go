package chat

import "testing"

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	sess := &fakeSession{id: "c1"}

	if old := reg.Register("alice", sess); old != nil {
		t.Fatalf("first register returned replaced session %v", old)
	}
	got, ok := reg.Lookup("alice")
	if !ok || got.ConnID() != "c1" {
		t.Fatalf("lookup = %v, %v; want c1 session", got, ok)
	}
	if _, ok := reg.Lookup("bob"); ok {
		t.Fatal("lookup for unregistered user should miss")
	}
}

func TestRegistryLastWriterWins(t *testing.T) {
	reg := NewRegistry()
	first := &fakeSession{id: "c1"}
	second := &fakeSession{id: "c2"}

	reg.Register("alice", first)
	old := reg.Register("alice", second)
	if old == nil || old.ConnID() != "c1" {
		t.Fatalf("replaced session = %v; want c1", old)
	}

	got, _ := reg.Lookup("alice")
	if got.ConnID() != "c2" {
		t.Fatalf("active session = %s; want c2", got.ConnID())
	}

	// The replaced connection no longer owns a mapping: its disconnect
	// must be a no-op and must not evict the newer session.
	if user, ok := reg.UnregisterConn("c1"); ok {
		t.Fatalf("stale conn unregistered user %q", user)
	}
	if _, ok := reg.Lookup("alice"); !ok {
		t.Fatal("newer session was evicted by stale disconnect")
	}
}

func TestRegistryReauthenticateSameConn(t *testing.T) {
	reg := NewRegistry()
	sess := &fakeSession{id: "c1"}

	reg.Register("alice", sess)
	if old := reg.Register("alice", sess); old != nil {
		t.Fatalf("re-register on same conn returned %v; want nil", old)
	}
	if reg.Len() != 1 {
		t.Fatalf("Len = %d; want 1", reg.Len())
	}
}

func TestRegistryUnregisterPrecision(t *testing.T) {
	reg := NewRegistry()
	reg.Register("alice", &fakeSession{id: "c1"})
	reg.Register("bob", &fakeSession{id: "c2"})

	user, ok := reg.UnregisterConn("c1")
	if !ok || user != "alice" {
		t.Fatalf("UnregisterConn = %q, %v; want alice", user, ok)
	}
	if _, ok := reg.Lookup("alice"); ok {
		t.Fatal("alice still registered after unregister")
	}
	if _, ok := reg.Lookup("bob"); !ok {
		t.Fatal("bob was evicted by alice's unregister")
	}

	if _, ok := reg.UnregisterConn("never-seen"); ok {
		t.Fatal("unknown conn should be a no-op")
	}
}

func TestRegistrySnapshot(t *testing.T) {
	reg := NewRegistry()
	reg.Register("alice", &fakeSession{id: "c1"})
	reg.Register("bob", &fakeSession{id: "c2"})

	if got := len(reg.Snapshot()); got != 2 {
		t.Fatalf("snapshot size = %d; want 2", got)
	}
}
