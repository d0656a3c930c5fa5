package loopkit

import "sync"

// looperResult is what the HandlerThread's goroutine publishes: either a
// live Looper or the error that kept it from preparing one. It is cached
// under mu, and closing readyCh then signals waiters that it is there.
type looperResult struct {
	looper *Looper
	err    error
}

// HandlerThread owns a goroutine that prepares a Looper, publishes it
// through a one-shot channel, and then pumps it. Other goroutines learn
// the published Looper (or its failure) through GetLooper.
type HandlerThread struct {
	name string
	cfg  Config

	mu      sync.Mutex
	started bool
	cached  bool
	looper  *Looper
	err     error

	readyCh chan struct{}
	wg      sync.WaitGroup
}

// NewHandlerThread creates a HandlerThread with the given name. Call
// Start to spawn its goroutine.
func NewHandlerThread(name string) *HandlerThread {
	return NewHandlerThreadWithConfig(name, DefaultConfig())
}

// NewHandlerThreadWithConfig is NewHandlerThread with an explicit Config,
// passed through to PrepareWithConfig on the owned goroutine.
func NewHandlerThreadWithConfig(name string, cfg Config) *HandlerThread {
	return &HandlerThread{name: name, cfg: cfg, readyCh: make(chan struct{})}
}

// Start spawns the owned goroutine, which prepares a Looper, publishes it
// (or a failure), then loops. Calling Start more than once is a no-op.
func (t *HandlerThread) Start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run()
}

func (t *HandlerThread) run() {
	defer t.wg.Done()

	looper, err := PrepareWithConfig(t.cfg)
	t.publish(looperResult{looper: looper, err: err})
	close(t.readyCh)

	if err != nil {
		logger().Error("handler thread failed to prepare looper", "thread", t.name, "err", err)
		return
	}

	if err := looper.Loop(); err != nil {
		logger().Error("handler thread loop exited with an error", "thread", t.name, "err", err)
	}
}

func (t *HandlerThread) publish(result looperResult) {
	t.mu.Lock()
	if !t.cached {
		t.looper = result.looper
		if result.err != nil {
			t.err = &PublicationError{Cause: result.err}
		}
		t.cached = true
	}
	t.mu.Unlock()
}

// GetLooper blocks until the owned goroutine has published its Looper
// (or a publication failure), then returns it; subsequent calls return
// the cached value without blocking. If the thread was never started, it
// returns (nil, nil) without blocking.
func (t *HandlerThread) GetLooper() (*Looper, error) {
	t.mu.Lock()
	if t.cached {
		l, err := t.looper, t.err
		t.mu.Unlock()
		return l, err
	}
	started := t.started
	t.mu.Unlock()

	if !started {
		return nil, nil
	}

	<-t.readyCh

	t.mu.Lock()
	l, err := t.looper, t.err
	t.mu.Unlock()
	return l, err
}

// Quit forwards to the owned Looper's Quit. Non-blocking once the Looper
// has been published; if the thread never started, this is a no-op.
func (t *HandlerThread) Quit() {
	l, _ := t.GetLooper()
	if l != nil {
		l.Quit()
	}
}

// Join waits for the owned goroutine to exit.
func (t *HandlerThread) Join() {
	t.wg.Wait()
}

// Close quits then joins. Go has no destructors, so callers that need the
// owned goroutine reclaimed deterministically must call Close (or Quit +
// Join) themselves; nothing does this automatically when a HandlerThread
// goes out of scope.
func (t *HandlerThread) Close() {
	t.Quit()
	t.Join()
}
