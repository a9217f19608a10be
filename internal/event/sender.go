package event

import "github.com/google/uuid"

// Sender identifies the object a handler is bound to.
// Senders are compared by value only; the registry never resolves them back
// to the object they stand for.
type Sender uuid.UUID

// NoSender is the zero sender. Global events are usually fired with it.
var NoSender Sender

// NewSender returns a fresh sender token.
func NewSender() Sender {
	return Sender(uuid.New())
}

// IsZero reports whether s is NoSender.
func (s Sender) IsZero() bool {
	return s == NoSender
}

// String returns the canonical textual form of the token.
func (s Sender) String() string {
	if s.IsZero() {
		return "none"
	}
	return uuid.UUID(s).String()
}
