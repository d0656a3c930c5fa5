package loopkit

import "time"

// Runnable is a zero-argument, no-return unit of work posted to a Looper.
type Runnable func()

// Message carries a user-defined discriminator and optional payload to a
// Handler, or a Runnable to be invoked directly. Construction sets
// Code/Arg1/Arg2/Payload/the callback/the target; Deadline is opaque to
// callers and is assigned only by the enqueue path (Handler.SendMessageAtTime
// and friends), never at construction.
type Message struct {
	// Code is a user-defined discriminator, meaningless when the message
	// carries a callback.
	Code int
	Arg1 int
	Arg2 int

	// Payload is a dynamically-typed opaque value. HasPayload
	// distinguishes an explicitly-set nil payload from an absent one.
	Payload    any
	hasPayload bool

	callback Runnable
	target   *Handler

	deadline time.Time
}

// SetPayload sets Payload and marks it as present. Returns m for chaining.
func (m *Message) SetPayload(v any) *Message {
	m.Payload = v
	m.hasPayload = true
	return m
}

// HasPayload reports whether Payload was explicitly set.
func (m *Message) HasPayload() bool { return m.hasPayload }

// Deadline returns the time at which this message becomes eligible for
// dispatch. It is the zero time.Time until the message has been enqueued.
func (m *Message) Deadline() time.Time { return m.deadline }

// Target returns the Handler this message will dispatch to, or nil for a
// Message built directly (not through ObtainMessage) and not yet sent.
func (m *Message) Target() *Handler { return m.target }

// IsCallback reports whether this message carries a Runnable rather than
// being dispatched through a Handler's HandleMessage.
func (m *Message) IsCallback() bool { return m.callback != nil }

// SendToTarget enqueues the message for immediate dispatch (deadline =
// now) on its target Handler's Looper. It fails with ErrNoTarget if no
// target is set or the target has been released, and with ErrQuitting if
// the target's queue has quit.
func (m *Message) SendToTarget() error {
	if m.target == nil || m.target.isReleased() {
		return ErrNoTarget
	}
	if !m.target.SendMessageAtTime(m, time.Now()) {
		return ErrQuitting
	}
	return nil
}
