// Package loopkit is a per-thread message-loop concurrency runtime: a
// time-ordered MessageQueue, a Looper that drains it on one pinned
// goroutine, Handlers that post into it, and HandlerThread/WorkerThread
// facades that manage the owning goroutine's lifecycle.
package loopkit

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// LoopState identifies where a Looper is in its lifecycle.
type LoopState int32

const (
	StatePrepared LoopState = iota
	StateLooping
	StateQuit
)

// Looper owns exactly one MessageQueue and drives its dispatch loop on
// one goroutine, pinned to one OS thread for its lifetime via
// runtime.LockOSThread. It is published into a thread-local slot by
// Prepare, and into other threads' hands via HandlerThread's one-shot
// channel.
type Looper struct {
	id       ID
	queue    *MessageQueue
	threadID goroutineID
	state    atomic.Int32
	ranOnce  sync.Once
}

var (
	looperRegistryMu sync.Mutex
	looperRegistry   = make(map[goroutineID]*Looper)
)

// Prepare installs a new Looper into the calling goroutine's thread-local
// slot, pinning the goroutine to its current OS thread for the remainder
// of its life. It fails with ErrAlreadyPrepared if a Looper is already
// installed on this thread.
func Prepare() (*Looper, error) {
	return PrepareWithConfig(DefaultConfig())
}

// PrepareWithConfig is Prepare with an explicit Config, used to size the
// new MessageQueue's initial capacity.
func PrepareWithConfig(cfg Config) (*Looper, error) {
	runtime.LockOSThread()
	gid := currentGoroutineID()

	looperRegistryMu.Lock()
	defer looperRegistryMu.Unlock()

	if _, exists := looperRegistry[gid]; exists {
		return nil, ErrAlreadyPrepared
	}

	l := &Looper{
		id:       NewID(),
		queue:    newMessageQueue(cfg.QueueCapacityHint),
		threadID: gid,
	}
	l.state.Store(int32(StatePrepared))
	looperRegistry[gid] = l
	return l, nil
}

// MyLooper returns the Looper prepared on the calling goroutine, or nil
// if none was prepared.
func MyLooper() *Looper {
	gid := currentGoroutineID()
	looperRegistryMu.Lock()
	defer looperRegistryMu.Unlock()
	return looperRegistry[gid]
}

// ID returns the identifier assigned to this Looper at Prepare time.
func (l *Looper) ID() ID { return l.id }

// ThreadID returns the identifier of the owning thread.
func (l *Looper) ThreadID() uint64 { return uint64(l.threadID) }

// State reports the Looper's current lifecycle state.
func (l *Looper) State() LoopState { return LoopState(l.state.Load()) }

// Loop pumps messages until the MessageQueue reports quit. It must be
// called on the Looper's owning thread (the one that called Prepare) and
// may be called at most once per Looper.
func (l *Looper) Loop() error {
	gid := currentGoroutineID()
	if gid != l.threadID {
		return &WrongThreadError{Want: uint64(l.threadID), Got: uint64(gid)}
	}

	alreadyRan := true
	l.ranOnce.Do(func() { alreadyRan = false })
	if alreadyRan {
		return ErrLoopAlreadyRun
	}

	l.state.Store(int32(StateLooping))
	defer func() {
		l.state.Store(int32(StateQuit))
		looperRegistryMu.Lock()
		delete(looperRegistry, l.threadID)
		looperRegistryMu.Unlock()
	}()

	for {
		msg, ok := l.queue.next()
		if !ok {
			return nil
		}
		l.dispatch(msg)
	}
}

// dispatch invokes msg's callback, or its target's HandleMessage, or logs
// and discards it if the target has been released. A panic raised by
// user code is recovered and logged; one bad task never kills the loop.
func (l *Looper) dispatch(msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			logUserHandlerFault(l, msg, r)
		}
	}()

	switch {
	case msg.callback != nil:
		msg.callback()
	case msg.target != nil && !msg.target.isReleased():
		msg.target.dispatchMessage(msg)
	default:
		logDroppedMessage(l, msg)
	}
}

// Quit requests the dispatch loop stop. It may be called from any thread,
// before or during Loop, and is idempotent. Pending messages are dropped.
func (l *Looper) Quit() {
	l.queue.quit()
}

// IsQuitting reports whether Quit has been called.
func (l *Looper) IsQuitting() bool {
	return l.queue.isQuitting()
}
