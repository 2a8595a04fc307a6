// Package ringqueue is a bounded single-producer/single-consumer ring buffer.
package ringqueue

import (
	"fmt"
	"sync/atomic"
)

// Ring transports values from exactly one producer goroutine to exactly one
// consumer goroutine without locks. Push and Pop never block.
//
// The backing slice holds capacity+1 slots so that full (tail+1 == head) and
// empty (tail == head) are distinguishable without a counter. The producer
// writes the slot before storing tail; the consumer loads tail before reading
// the slot. head is published the same way in the other direction.
type Ring[T any] struct {
	head atomic.Uint64 // next slot to read, owned by the consumer
	_    [56]byte
	tail atomic.Uint64 // next slot to write, owned by the producer
	_    [56]byte

	buf []T
}

// New returns a ring that holds up to capacity values.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("ringqueue: invalid capacity %d", capacity))
	}
	return &Ring[T]{buf: make([]T, capacity+1)}
}

func (r *Ring[T]) increment(i uint64) uint64 {
	i++
	if i == uint64(len(r.buf)) {
		return 0
	}
	return i
}

// Push appends v. It returns false when the ring is full. Producer only.
func (r *Ring[T]) Push(v T) bool {
	tail := r.tail.Load()
	next := r.increment(tail)
	if next == r.head.Load() {
		return false
	}
	r.buf[tail] = v
	r.tail.Store(next)
	return true
}

// Pop removes the oldest value. It returns false when the ring is empty. Consumer only.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	head := r.head.Load()
	if head == r.tail.Load() {
		return zero, false
	}
	v := r.buf[head]
	r.buf[head] = zero
	r.head.Store(r.increment(head))
	return v, true
}

// Cap is the number of values the ring can hold.
func (r *Ring[T]) Cap() int {
	return len(r.buf) - 1
}

// The snapshots below race with the other side and are only good for
// diagnostics.

// Len is the number of queued values at some recent instant.
func (r *Ring[T]) Len() int {
	head, tail := r.head.Load(), r.tail.Load()
	if tail >= head {
		return int(tail - head)
	}
	return int(tail + uint64(len(r.buf)) - head)
}

func (r *Ring[T]) WasEmpty() bool {
	return r.head.Load() == r.tail.Load()
}

func (r *Ring[T]) WasFull() bool {
	return r.increment(r.tail.Load()) == r.head.Load()
}
