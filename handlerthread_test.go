package loopkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerThread_GetLooperBeforeStart(t *testing.T) {
	ht := NewHandlerThread("never-started")
	looper, err := ht.GetLooper()
	assert.NoError(t, err)
	assert.Nil(t, looper)
}

func TestHandlerThread_PublicationAndMyLooper(t *testing.T) {
	ht := NewHandlerThread("publish-test")
	ht.Start()
	defer ht.Close()

	looper, err := ht.GetLooper()
	require.NoError(t, err)
	require.NotNil(t, looper)

	seenThreadID := make(chan uint64, 1)
	seenSame := make(chan bool, 1)
	h, err := NewHandler(looper, nil)
	require.NoError(t, err)
	h.Post(func() {
		seenThreadID <- MyLooper().ThreadID()
		seenSame <- (MyLooper() == looper)
	})

	select {
	case id := <-seenThreadID:
		assert.Equal(t, looper.ThreadID(), id)
	case <-time.After(2 * time.Second):
		t.Fatal("runnable never ran")
	}
	assert.True(t, <-seenSame, "the looper seen via my_looper on the owning thread must be the same handle GetLooper returned")
}

func TestHandlerThread_GetLooperCachesResult(t *testing.T) {
	ht := NewHandlerThread("cache-test")
	ht.Start()
	defer ht.Close()

	l1, err1 := ht.GetLooper()
	require.NoError(t, err1)
	l2, err2 := ht.GetLooper()
	require.NoError(t, err2)
	assert.Same(t, l1, l2)
}

func TestHandlerThread_StartTwiceIsNoop(t *testing.T) {
	ht := NewHandlerThread("double-start")
	ht.Start()
	ht.Start()
	defer ht.Close()

	l, err := ht.GetLooper()
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestHandlerThread_CloseJoins(t *testing.T) {
	ht := NewHandlerThread("close-test")
	ht.Start()
	_, err := ht.GetLooper()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		ht.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}
