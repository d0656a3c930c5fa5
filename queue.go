package loopkit

import (
	"container/heap"
	"sync"
	"time"
)

// queueEntry is one slot in the MessageQueue's min-heap, ordered by
// (deadline, seq).
type queueEntry struct {
	msg      *Message
	deadline time.Time
	seq      uint64
}

// entryHeap is a container/heap.Interface over queueEntry, smallest
// (deadline, seq) at index 0. Using the standard library's heap here
// mirrors epochq's own choice: despite a rich third-party stack, epochq
// reaches for container/heap for exactly this kind of time-ordered
// priority queue, and no example repo in the pack imports a third-party
// priority-queue library.
type entryHeap []*queueEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(*queueEntry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// MessageQueue is a thread-safe, time-ordered handoff from N posting
// goroutines to one consuming goroutine, with block-until-ready and
// cooperative shutdown. It is owned exclusively by one Looper.
//
// The single mutex + condition variable this kind of queue needs is
// realized here as a mutex guarding the heap plus a buffered (capacity 1)
// notify channel paired with a time.Timer, the same shape as
// epochq/internal/scheduler/scheduler.go's run loop, which blocks on
// exactly this pattern to wake either on a new earliest deadline or on
// shutdown.
type MessageQueue struct {
	mu       sync.Mutex
	entries  entryHeap
	seq      uint64
	quitting bool
	notify   chan struct{}
}

func newMessageQueue(capacityHint int) *MessageQueue {
	if capacityHint <= 0 {
		capacityHint = 16
	}
	h := make(entryHeap, 0, capacityHint)
	heap.Init(&h)
	return &MessageQueue{
		entries: h,
		notify:  make(chan struct{}, 1),
	}
}

// wake signals the consumer to re-evaluate its wait. Always signals:
// simplicity dominates micro-optimization here and spurious wakeups are
// benign.
func (q *MessageQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// enqueue sets msg's deadline and inserts it at the position preserving
// (ascending deadline, then FIFO). It fails with ErrQuitting once the
// queue has quit.
func (q *MessageQueue) enqueue(msg *Message, deadline time.Time) error {
	q.mu.Lock()
	if q.quitting {
		q.mu.Unlock()
		return ErrQuitting
	}
	msg.deadline = deadline
	q.seq++
	heap.Push(&q.entries, &queueEntry{msg: msg, deadline: deadline, seq: q.seq})
	q.mu.Unlock()

	q.wake()
	return nil
}

// next blocks until a message is ready to dispatch or the queue quits. It
// must only be called by the queue's single consumer (the owning
// Looper's goroutine).
func (q *MessageQueue) next() (*Message, bool) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		q.mu.Lock()
		if q.quitting {
			q.mu.Unlock()
			return nil, false
		}

		if len(q.entries) > 0 {
			front := q.entries[0]
			now := time.Now()
			if !front.deadline.After(now) {
				heap.Pop(&q.entries)
				q.mu.Unlock()
				return front.msg, true
			}

			wait := front.deadline.Sub(now)
			q.mu.Unlock()

			if timer == nil {
				timer = time.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}

			select {
			case <-timer.C:
			case <-q.notify:
				timer.Stop()
				select {
				case <-timer.C:
				default:
				}
			}
			continue
		}

		q.mu.Unlock()
		<-q.notify
	}
}

// quit marks the queue as quitting, drops every pending message, and
// wakes the consumer. Idempotent and safe from any thread.
func (q *MessageQueue) quit() {
	q.mu.Lock()
	if q.quitting {
		q.mu.Unlock()
		return
	}
	q.quitting = true
	q.entries = nil
	q.mu.Unlock()

	q.wake()
}

func (q *MessageQueue) isQuitting() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.quitting
}

// removeMessages excises every pending non-callback message targeted at
// target with the given code. Best-effort: a message already dispatched
// cannot be revoked.
func (q *MessageQueue) removeMessages(target *Handler, code int) {
	q.filter(func(e *queueEntry) bool {
		return e.msg.target == target && e.msg.callback == nil && e.msg.Code == code
	})
}

// removeCallbacks excises every pending runnable message targeted at
// target.
func (q *MessageQueue) removeCallbacks(target *Handler) {
	q.filter(func(e *queueEntry) bool {
		return e.msg.target == target && e.msg.callback != nil
	})
}

// filter removes every entry for which drop returns true, re-heapifying
// once rather than doing N individual heap.Remove calls.
func (q *MessageQueue) filter(drop func(*queueEntry) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := make(entryHeap, 0, len(q.entries))
	for _, e := range q.entries {
		if !drop(e) {
			kept = append(kept, e)
		}
	}
	q.entries = kept
	heap.Init(&q.entries)
}
