package event

import (
	"math"
	"slices"
	"sync/atomic"
)

// HandlerID identifies one registration on one Event.
//
// The high 32 bits hold a tag unique to the issuing Event and the low 32 bits
// a sequence number starting at 1. Ids are never reused, and an id issued by
// one Event is never valid on another. The zero id is never issued.
type HandlerID uint64

// owners issues Event tags. Tag 0 is never used.
var owners atomic.Uint32

func makeID(owner, seq uint32) HandlerID {
	return HandlerID(uint64(owner)<<32 | uint64(seq))
}

// Owner returns the tag of the Event that issued id.
func (id HandlerID) Owner() uint32 {
	return uint32(id >> 32)
}

// Seq returns the per-Event sequence number of id.
func (id HandlerID) Seq() uint32 {
	return uint32(id)
}

// Handler is invoked by Fire with the firing sender, the args passed to Fire,
// and the data value given at registration.
type Handler func(sender Sender, args, data any)

// Option configures an Event.
type Option func(*Event)

// WithGlobal makes Fire invoke every handler regardless of its sender.
func WithGlobal() Option {
	return func(e *Event) {
		e.global = true
	}
}

// entry is one registered handler.
type entry struct {
	id      HandlerID
	handler Handler
	sender  Sender
	data    any
	blocked bool
	dead    bool

	// deleted is set by Delete so that an in-progress Fire holding this entry
	// in its snapshot skips it.
	deleted bool
}

// runnable reports whether the entry may run for a Fire from sender.
func (en *entry) runnable(global bool, sender Sender) bool {
	if en.deleted || en.dead || en.blocked {
		return false
	}
	return global || en.sender == sender
}

// Event is an ordered registry of handlers.
type Event struct {
	global  bool
	entries []*entry
	byID    map[HandlerID]*entry
	owner   uint32
	lastSeq uint32

	// firing counts the Fire calls currently on the stack. While it is
	// non-zero the backing array of entries is shared with a dispatch
	// snapshot and must not be modified in place.
	firing int
}

// New creates an empty Event.
func New(opts ...Option) *Event {
	e := &Event{
		byID:  make(map[HandlerID]*entry),
		owner: owners.Add(1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsGlobal reports whether the event ignores senders when firing.
func (e *Event) IsGlobal() bool {
	return e.global
}

// Len returns the number of registered handlers, dead ones included.
func (e *Event) Len() int {
	return len(e.entries)
}

// Firing reports whether a Fire call is in progress.
func (e *Event) Firing() bool {
	return e.firing > 0
}

// Register appends a handler bound to sender and returns its id.
// The handler takes part in every Fire that starts after Register returns.
// Register panics if h is nil or if the Event has issued every id it can.
func (e *Event) Register(sender Sender, data any, h Handler) HandlerID {
	if h == nil {
		panic("event: Register with nil handler")
	}
	if e.lastSeq == math.MaxUint32 {
		panic("event: handler ids exhausted")
	}

	e.lastSeq++
	en := &entry{
		id:      makeID(e.owner, e.lastSeq),
		handler: h,
		sender:  sender,
		data:    data,
	}

	// Appending never touches the elements a snapshot can see.
	e.entries = append(e.entries, en)
	e.byID[en.id] = en
	return en.id
}

// Delete removes the handler with the given id. The order of the remaining
// handlers is unchanged and the id is retired for good.
func (e *Event) Delete(id HandlerID) error {
	en, err := e.lookup("delete", id)
	if err != nil {
		return err
	}

	en.deleted = true
	delete(e.byID, id)

	i := slices.Index(e.entries, en)
	if e.firing > 0 {
		// Copy on write; the running dispatch keeps the old array.
		e.entries = slices.Concat(e.entries[:i], e.entries[i+1:])
	} else {
		e.entries = slices.Delete(e.entries, i, i+1)
	}
	return nil
}

// SetBlocked sets the blocked flag of a handler. Blocked handlers are skipped
// by Fire. Setting the flag to its current value has no effect.
func (e *Event) SetBlocked(id HandlerID, blocked bool) error {
	en, err := e.lookup("set blocked", id)
	if err != nil {
		return err
	}
	en.blocked = blocked
	return nil
}

// Blocked returns the blocked flag of a handler.
func (e *Event) Blocked(id HandlerID) (bool, error) {
	en, err := e.lookup("blocked", id)
	if err != nil {
		return false, err
	}
	return en.blocked, nil
}

// Dead reports whether a handler was disabled by InvalidateSender.
func (e *Event) Dead(id HandlerID) (bool, error) {
	en, err := e.lookup("dead", id)
	if err != nil {
		return false, err
	}
	return en.dead, nil
}

// lookup returns the live entry for id. Ids issued by another Event fail
// even when their sequence number matches one of ours.
func (e *Event) lookup(op string, id HandlerID) (*entry, error) {
	if id.Owner() != e.owner {
		return nil, &InvalidHandlerError{Op: op, ID: id}
	}
	en, ok := e.byID[id]
	if !ok {
		return nil, &InvalidHandlerError{Op: op, ID: id}
	}
	return en, nil
}

// InvalidateSender marks every handler currently bound to sender as dead.
// Dead handlers stay registered and keep their blocked flag, but never run.
// Handlers registered later with the same sender are not affected.
func (e *Event) InvalidateSender(sender Sender) {
	for _, en := range e.entries {
		if en.sender == sender {
			en.dead = true
		}
	}
}
