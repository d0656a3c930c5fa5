package loopkit

import (
	"sync"
	"time"
)

// WorkerThread is a HandlerThread specialized down to a runnable-only
// API: Post, PostDelayed, and two shutdown modes. Internally it builds a
// Handler bound to the published Looper purely to carry runnables; that
// Handler's HandleMessage is never expected to run in steady state, since
// every WorkerThread message is a callback message.
type WorkerThread struct {
	*HandlerThread

	handlerOnce sync.Once
	handler     *Handler
	handlerErr  error
}

// NewWorkerThread creates a WorkerThread with the given name. Call Start
// to spawn its goroutine.
func NewWorkerThread(name string) *WorkerThread {
	return &WorkerThread{HandlerThread: NewHandlerThread(name)}
}

// NewWorkerThreadWithConfig is NewWorkerThread with an explicit Config.
func NewWorkerThreadWithConfig(name string, cfg Config) *WorkerThread {
	return &WorkerThread{HandlerThread: NewHandlerThreadWithConfig(name, cfg)}
}

func (w *WorkerThread) ensureHandler() (*Handler, error) {
	looper, err := w.GetLooper()
	if err != nil {
		return nil, err
	}
	if looper == nil {
		return nil, ErrNoLooper
	}
	w.handlerOnce.Do(func() {
		w.handler, w.handlerErr = NewHandler(looper, nil)
	})
	return w.handler, w.handlerErr
}

// Post enqueues r for immediate execution on the worker's thread.
func (w *WorkerThread) Post(r Runnable) bool {
	h, err := w.ensureHandler()
	if err != nil {
		return false
	}
	return h.Post(r)
}

// PostDelayed enqueues r for execution no earlier than delay from now.
func (w *WorkerThread) PostDelayed(r Runnable, delay time.Duration) bool {
	h, err := w.ensureHandler()
	if err != nil {
		return false
	}
	return h.PostDelayed(r, delay)
}

// Finish requests a graceful shutdown: it enqueues a terminal runnable
// (no deadline, so it sorts at or after now) whose effect is
// Looper.Quit. Because the MessageQueue dispatches FIFO at equal
// deadlines, every runnable already posted with a deadline at or before
// this one is guaranteed to run first; anything posted after Finish with
// a later deadline is dropped by the Quit that follows. Returns false if
// the worker's queue is already quitting.
func (w *WorkerThread) Finish() bool {
	h, err := w.ensureHandler()
	if err != nil {
		return false
	}
	looper := h.Looper()
	return h.Post(func() { looper.Quit() })
}

// FinishNow shuts down immediately: it calls Looper.Quit directly,
// discarding every pending runnable except the one currently executing,
// which completes. Returns false if the worker's Looper was never
// published.
func (w *WorkerThread) FinishNow() bool {
	l, err := w.GetLooper()
	if err != nil || l == nil {
		return false
	}
	l.Quit()
	return true
}

// Close is Finish followed by Join, the graceful equivalent of a
// destructor, since Go has none. Use FinishNow + Join for an immediate
// shutdown instead.
func (w *WorkerThread) Close() {
	w.Finish()
	w.Join()
}

// sharedWorker backs SharedWorker: one process-wide WorkerThread, created
// lazily and started on first use, for peripheral collaborators that each
// want one long-lived background thread rather than rolling their own.
var (
	sharedWorkerOnce sync.Once
	sharedWorkerInst *WorkerThread
)

// SharedWorker returns a process-wide WorkerThread, created and started
// lazily on first call. The core runtime stays correct whether callers
// use SharedWorker or construct their own WorkerThreads; this exists only
// because peripheral collaborators outside this module's scope are
// expected to share one.
func SharedWorker() *WorkerThread {
	sharedWorkerOnce.Do(func() {
		sharedWorkerInst = NewWorkerThread("shared-worker")
		sharedWorkerInst.Start()
	})
	return sharedWorkerInst
}
