package chat

// Notifier pushes one-way events to whichever session a user currently
// holds. Absent users are a silent no-op; eventual delivery for them is the
// authenticate backlog flush.
type Notifier struct {
	reg *Registry
}

func NewNotifier(reg *Registry) *Notifier {
	return &Notifier{reg: reg}
}

// ToUser emits the event to the user's active session. Returns false when
// the user is not connected.
func (n *Notifier) ToUser(userID, event string, data any) bool {
	sess, ok := n.reg.Lookup(userID)
	if !ok {
		return false
	}
	sess.Emit(event, data)
	return true
}

// Online reports whether the user has an active session.
func (n *Notifier) Online(userID string) bool {
	_, ok := n.reg.Lookup(userID)
	return ok
}

// Broadcast emits the event to every registered session except the named
// connection (pass "" to include everyone).
func (n *Notifier) Broadcast(event string, data any, exceptConnID string) {
	for _, sess := range n.reg.Snapshot() {
		if sess.ConnID() == exceptConnID {
			continue
		}
		sess.Emit(event, data)
	}
}
