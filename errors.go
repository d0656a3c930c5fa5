package loopkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for the runtime's programming-error and setup-failure
// cases. Hot-path "is the queue still alive" checks are reported as a
// plain bool (see Handler and WorkerThread); these sentinels cover the
// cases that are worth an explicit error value.
var (
	// ErrAlreadyPrepared is returned by Prepare when a Looper is already
	// installed on the calling thread.
	ErrAlreadyPrepared = errors.New("loopkit: a looper is already prepared on this thread")

	// ErrNoLooper is returned when an operation that requires a
	// thread-local Looper finds none prepared.
	ErrNoLooper = errors.New("loopkit: no looper is prepared on this thread")

	// ErrNullLooper is returned by NewHandler when given a nil Looper.
	ErrNullLooper = errors.New("loopkit: handler requires a non-nil looper")

	// ErrQuitting is returned when an enqueue is rejected because the
	// MessageQueue has quit.
	ErrQuitting = errors.New("loopkit: message queue is quitting")

	// ErrNoTarget is returned by Message.SendToTarget when the message
	// carries no live target Handler.
	ErrNoTarget = errors.New("loopkit: message has no live target")

	// ErrLoopAlreadyRun is returned by a second call to Looper.Loop on
	// the same Looper.
	ErrLoopAlreadyRun = errors.New("loopkit: loop has already run on this looper")
)

// WrongThreadError is returned by Looper.Loop when called from a goroutine
// other than the one that called Prepare.
type WrongThreadError struct {
	Want, Got uint64
}

func (e *WrongThreadError) Error() string {
	return fmt.Sprintf("loopkit: loop called from the wrong thread (owner=%d, caller=%d)", e.Want, e.Got)
}

// PublicationError wraps the failure a HandlerThread's goroutine hit while
// preparing its Looper, surfaced from GetLooper to every caller.
type PublicationError struct {
	Cause error
}

func (e *PublicationError) Error() string {
	return fmt.Sprintf("loopkit: looper publication failed: %v", e.Cause)
}

func (e *PublicationError) Unwrap() error { return e.Cause }
