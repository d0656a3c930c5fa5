package loopkit

import (
	"sync"
	"testing"
	"time"
)

// waitTimeout waits for wg with a timeout, failing the test if it isn't
// satisfied in time. Adapted from lguibr-bollywood/engine_test.go's
// helper of the same name and signature.
func waitTimeout(wg *sync.WaitGroup, timeout time.Duration, t *testing.T, failMsg string) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("%s within %v", failMsg, timeout)
	}
}

// timeoutCh returns a channel that fires after a generous default test
// timeout, used where a test waits on exactly one event.
func timeoutCh() <-chan time.Time {
	return time.After(2 * time.Second)
}

// runLooperInGoroutine prepares a Looper on a fresh goroutine and returns
// it once published, along with a function that quits and joins it.
func runLooperInGoroutine(t *testing.T) (*Looper, func()) {
	t.Helper()
	ht := NewHandlerThread("test-thread")
	ht.Start()
	looper, err := ht.GetLooper()
	if err != nil {
		t.Fatalf("GetLooper failed: %v", err)
	}
	return looper, ht.Close
}
