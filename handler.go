package loopkit

import (
	"sync/atomic"
	"time"
)

// MessageHandler is implemented by types that want to react to messages
// dispatched through a Handler. The idiomatic Go rendition of a
// subclass-overridden handle-message method is a single-method interface a
// caller implements and hands to NewHandler, the same shape as
// bollywood.Actor's Receive(ctx Context) method.
type MessageHandler interface {
	HandleMessage(msg *Message)
}

// Handler is the public API for posting messages and runnables to a
// Looper, and for removing pending work. It is always used via a shared
// *Handler so that Messages in flight can safely reference their target
// across threads; Release lets a caller explicitly invalidate that
// reference early, after which dispatch drops (and logs at warn level)
// any non-callback message still targeting it, while runnables posted
// through it still run (an explicit stand-in for a weak-reference drop, since Go's
// garbage collector would otherwise keep the Handler alive for as long as
// an in-flight Message points at it).
type Handler struct {
	id       ID
	looper   *Looper
	impl     MessageHandler
	released atomic.Bool
}

// NewHandler binds a Handler to looper. impl may be nil for a Handler
// used purely to carry runnables (its HandleMessage is never reached).
// Returns ErrNullLooper if looper is nil.
func NewHandler(looper *Looper, impl MessageHandler) (*Handler, error) {
	if looper == nil {
		return nil, ErrNullLooper
	}
	return &Handler{id: NewID(), looper: looper, impl: impl}, nil
}

// NewHandlerOnCurrentLooper binds a Handler to the calling thread's
// prepared Looper. Returns ErrNoLooper if none was prepared.
func NewHandlerOnCurrentLooper(impl MessageHandler) (*Handler, error) {
	l := MyLooper()
	if l == nil {
		return nil, ErrNoLooper
	}
	return NewHandler(l, impl)
}

// ID returns the identifier assigned to this Handler at construction.
func (h *Handler) ID() ID { return h.id }

// Looper returns the Looper this Handler is bound to.
func (h *Handler) Looper() *Looper { return h.looper }

// Release invalidates this Handler as a dispatch target. Any non-callback
// message still in the queue targeting it is dropped (with a warn-level
// log) instead of reaching HandleMessage; runnables posted through it
// still run, and a message already being dispatched completes.
func (h *Handler) Release() { h.released.Store(true) }

func (h *Handler) isReleased() bool { return h.released.Load() }

// dispatchMessage wraps HandleMessage; panic recovery happens one level
// up, in Looper.dispatch, so that both the callback and the HandleMessage
// path share one recovery point.
func (h *Handler) dispatchMessage(msg *Message) {
	if h.impl == nil {
		return
	}
	h.impl.HandleMessage(msg)
}

// ObtainMessage returns a Message with Target preset to h and Code set.
func (h *Handler) ObtainMessage(code int) *Message {
	return &Message{Code: code, target: h}
}

// ObtainMessageWithPayload is ObtainMessage plus a payload.
func (h *Handler) ObtainMessageWithPayload(code int, payload any) *Message {
	return h.ObtainMessage(code).SetPayload(payload)
}

// ObtainMessageWithArgs is ObtainMessage plus arg1/arg2.
func (h *Handler) ObtainMessageWithArgs(code, arg1, arg2 int) *Message {
	m := h.ObtainMessage(code)
	m.Arg1, m.Arg2 = arg1, arg2
	return m
}

// ObtainMessageFull is ObtainMessage plus arg1/arg2 and a payload.
func (h *Handler) ObtainMessageFull(code, arg1, arg2 int, payload any) *Message {
	return h.ObtainMessageWithArgs(code, arg1, arg2).SetPayload(payload)
}

// SendMessage enqueues msg for immediate dispatch (deadline = now).
// Returns false only when the queue is quitting.
func (h *Handler) SendMessage(msg *Message) bool {
	return h.SendMessageAtTime(msg, time.Now())
}

// SendMessageDelayed enqueues msg for dispatch no earlier than delay from
// now. Negative delays are clamped to zero.
func (h *Handler) SendMessageDelayed(msg *Message, delay time.Duration) bool {
	if delay < 0 {
		delay = 0
	}
	return h.SendMessageAtTime(msg, time.Now().Add(delay))
}

// SendMessageAtTime enqueues msg for dispatch at the given deadline,
// rebinding msg's target to h regardless of what target it already
// carried (e.g. from ObtainMessage on a different Handler): whichever
// Handler actually sends a Message is the one it dispatches to.
func (h *Handler) SendMessageAtTime(msg *Message, deadline time.Time) bool {
	msg.target = h
	return h.looper.queue.enqueue(msg, deadline) == nil
}

// Post enqueues r for immediate dispatch as a callback message.
func (h *Handler) Post(r Runnable) bool {
	return h.PostAtTime(r, time.Now())
}

// PostDelayed enqueues r for dispatch no earlier than delay from now.
// Negative delays are clamped to zero.
func (h *Handler) PostDelayed(r Runnable, delay time.Duration) bool {
	if delay < 0 {
		delay = 0
	}
	return h.PostAtTime(r, time.Now().Add(delay))
}

// PostAtTime enqueues r for dispatch at the given deadline.
func (h *Handler) PostAtTime(r Runnable, deadline time.Time) bool {
	return h.SendMessageAtTime(&Message{callback: r, target: h}, deadline)
}

// RemoveMessages removes every pending non-callback message targeted at
// this Handler with the given code. Best-effort and idempotent.
func (h *Handler) RemoveMessages(code int) {
	h.looper.queue.removeMessages(h, code)
}

// RemoveCallbacks removes every pending runnable message targeted at
// this Handler. Best-effort and idempotent.
func (h *Handler) RemoveCallbacks() {
	h.looper.queue.removeCallbacks(h)
}
