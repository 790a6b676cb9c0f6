package controller

import (
	"sync"
	"time"
)

// Queue is the FIFO link between the speech/GUI producers and the single
// controller consumer. Enqueue never blocks and never fails: the producer
// must not be held back by the consumer's execution speed, so the queue is
// unbounded.
type Queue struct {
	mu     sync.Mutex
	items  []MotionBatch
	notify chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Enqueue appends a batch. Always succeeds.
func (q *Queue) Enqueue(b MotionBatch) {
	q.mu.Lock()
	q.items = append(q.items, b)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue pops the oldest batch, waiting up to timeout for one to arrive.
// The short timeout keeps the consumer responsive to stop requests.
func (q *Queue) Dequeue(timeout time.Duration) (MotionBatch, bool) {
	if b, ok := q.pop(); ok {
		return b, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-q.notify:
		return q.pop()
	case <-timer.C:
		return MotionBatch{}, false
	}
}

// Drain discards and returns everything currently queued.
func (q *Queue) Drain() []MotionBatch {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len returns the number of queued batches.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) pop() (MotionBatch, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return MotionBatch{}, false
	}
	b := q.items[0]
	q.items = q.items[1:]
	return b, true
}
