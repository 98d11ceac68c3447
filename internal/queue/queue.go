// Package queue implements the hand-off between the acceptor and the worker
// pool: a bounded, thread-safe FIFO of connection handles with a blocking
// dequeue.
package queue

import (
	"sync"

	"github.com/pscheid92/sockpulse/internal/conn"
)

// Queue is a bounded FIFO ring buffer of connection handles.
//
// Enqueue wakes exactly one blocked consumer per item. Every waiter re-checks
// the non-empty condition in a loop after waking, so a consumer that loses
// the race to a concurrent dequeuer simply goes back to sleep.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	buf      []*conn.Handle
	head     int
	count    int
	closed   bool
}

// New creates a queue with the given capacity. Capacity must be positive.
func New(capacity int) *Queue {
	if capacity < 1 {
		panic("queue: capacity must be positive")
	}
	q := &Queue{buf: make([]*conn.Handle, capacity)}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// TryEnqueue appends h to the tail and wakes one blocked consumer.
// It returns false without blocking when the queue is full or closed;
// the caller decides what to do with the rejected handle.
func (q *Queue) TryEnqueue(h *conn.Handle) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || q.count == len(q.buf) {
		return false
	}

	q.buf[(q.head+q.count)%len(q.buf)] = h
	q.count++
	q.notEmpty.Signal()
	return true
}

// Dequeue blocks until a handle is available or the queue is closed.
// It returns ok=false only after Close, at which point no further handles
// will be delivered. Concurrent dequeuers never receive the same handle.
func (q *Queue) Dequeue() (*conn.Handle, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if q.closed {
		return nil, false
	}

	h := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return h, true
}

// Close marks the queue closed, wakes all blocked consumers and returns any
// handles still waiting so the caller can release them.
func (q *Queue) Close() []*conn.Handle {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true

	leftover := make([]*conn.Handle, 0, q.count)
	for q.count > 0 {
		leftover = append(leftover, q.buf[q.head])
		q.buf[q.head] = nil
		q.head = (q.head + 1) % len(q.buf)
		q.count--
	}

	q.notEmpty.Broadcast()
	return leftover
}

// Len returns the current number of queued handles.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return len(q.buf)
}
