package loopkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageQueue_FIFOAtEqualDeadline(t *testing.T) {
	q := newMessageQueue(0)
	now := time.Now()

	for i := 0; i < 5; i++ {
		msg := &Message{Code: i}
		require.NoError(t, q.enqueue(msg, now))
	}

	for i := 0; i < 5; i++ {
		msg, ok := q.next()
		require.True(t, ok)
		assert.Equal(t, i, msg.Code, "dispatch order must equal enqueue order at equal deadlines")
	}
}

func TestMessageQueue_EarliestDeadlineFirst(t *testing.T) {
	q := newMessageQueue(0)
	now := time.Now()

	// Enqueue B (later deadline) before A (earlier deadline).
	msgB := &Message{Code: 2}
	require.NoError(t, q.enqueue(msgB, now.Add(50*time.Millisecond)))
	msgA := &Message{Code: 1}
	require.NoError(t, q.enqueue(msgA, now.Add(10*time.Millisecond)))

	first, ok := q.next()
	require.True(t, ok)
	assert.Equal(t, 1, first.Code, "earlier deadline must dispatch first regardless of enqueue order")

	second, ok := q.next()
	require.True(t, ok)
	assert.Equal(t, 2, second.Code)
}

func TestMessageQueue_DelayFloor(t *testing.T) {
	q := newMessageQueue(0)
	start := time.Now()
	require.NoError(t, q.enqueue(&Message{}, start.Add(200*time.Millisecond)))

	_, ok := q.next()
	require.True(t, ok)
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestMessageQueue_QuitDropsPending(t *testing.T) {
	q := newMessageQueue(0)
	require.NoError(t, q.enqueue(&Message{Code: 1}, time.Now()))
	require.NoError(t, q.enqueue(&Message{Code: 2}, time.Now().Add(time.Hour)))

	q.quit()

	_, ok := q.next()
	assert.False(t, ok)
	assert.True(t, q.isQuitting())

	err := q.enqueue(&Message{Code: 3}, time.Now())
	assert.ErrorIs(t, err, ErrQuitting)
}

func TestMessageQueue_Quit_Idempotent(t *testing.T) {
	q := newMessageQueue(0)
	q.quit()
	q.quit() // must not panic or block
	assert.True(t, q.isQuitting())
}

func TestMessageQueue_RemoveMessages_Idempotent(t *testing.T) {
	q := newMessageQueue(0)
	target := &Handler{id: NewID()}
	far := time.Now().Add(time.Hour)

	require.NoError(t, q.enqueue(&Message{Code: 9, target: target}, far))
	require.NoError(t, q.enqueue(&Message{Code: 10, target: target}, far))

	q.removeMessages(target, 9)
	q.removeMessages(target, 9) // second call has no further effect

	remaining := drainWithoutBlocking(q)
	require.Len(t, remaining, 1)
	assert.Equal(t, 10, remaining[0].Code)
}

func TestMessageQueue_RemoveCallbacks(t *testing.T) {
	q := newMessageQueue(0)
	target := &Handler{id: NewID()}
	far := time.Now().Add(time.Hour)

	ran := false
	require.NoError(t, q.enqueue(&Message{target: target, callback: func() { ran = true }}, far))
	require.NoError(t, q.enqueue(&Message{Code: 1, target: target}, far))

	q.removeCallbacks(target)

	remaining := drainWithoutBlocking(q)
	require.Len(t, remaining, 1)
	assert.Equal(t, 1, remaining[0].Code)
	assert.False(t, ran)
}

// drainWithoutBlocking returns the messages still pending in q's heap,
// read directly under the lock without removing them, so tests can
// inspect far-future entries without blocking in next().
func drainWithoutBlocking(q *MessageQueue) []*Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Message, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e.msg)
	}
	return out
}
