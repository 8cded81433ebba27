// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msq

import (
	"sync/atomic"

	"code.hybscloud.com/spin"
)

// Queue is an unbounded, lock-free, multi-producer multi-consumer FIFO
// queue. The zero value is not usable; construct one with [New].
//
// Queue never blocks. Push always succeeds (short of allocation
// failure, which Go reports by crashing the process rather than by a
// recoverable error, so Push has no error return). Pop returns
// [ErrEmpty] when the queue is observed empty; under concurrent pushes
// this can be a momentary false negative (spec §4.4, §8, §9) rather
// than a linearized "truly empty".
type Queue[T any] struct {
	head atomic.Pointer[countedNodePtr[T]]
	tail atomic.Pointer[countedNodePtr[T]]
}

// New constructs an empty queue, allocating its single sentinel dummy
// node.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	dummy := newNode[T]()
	slot := &countedNodePtr[T]{ptr: dummy, externalCount: 1}
	q.head.Store(slot)
	q.tail.Store(slot)
	return q
}

// Push adds v to the tail of the queue. It is safe for any number of
// goroutines to call Push and [Queue.Pop] concurrently.
func (q *Queue[T]) Push(v T) {
	newData := new(T)
	*newData = v
	newNext := &countedNodePtr[T]{ptr: newNode[T](), externalCount: 1}

	sw := spin.Wait{}
	for {
		claimedTail := increaseExternalCount(&q.tail)

		if claimedTail.ptr.data.CompareAndSwap(nil, newData) {
			claimedTail.ptr.next = newNext
			oldTail := q.tail.Swap(newNext)
			oldTail.ptr.freeExternalCounter(oldTail.externalCount)
			return
		}

		claimedTail.ptr.releaseRef()
		sw.Once()
	}
}

// Pop removes and returns the value at the head of the queue. It
// returns [ErrEmpty] if the queue was observed to be empty. Pop never
// blocks and is safe for any number of goroutines to call concurrently
// with each other and with [Queue.Push].
func (q *Queue[T]) Pop() (T, error) {
	sw := spin.Wait{}
	for {
		claimedHead := increaseExternalCount(&q.head)
		ptr := claimedHead.ptr

		if ptr == q.tail.Load().ptr {
			ptr.releaseRef()
			var zero T
			return zero, ErrEmpty
		}

		if q.head.CompareAndSwap(claimedHead, ptr.next) {
			// data is read, not cleared: a dequeued node keeps a non-nil
			// data so that a producer still holding a stale claim on it
			// fails its install CAS instead of reusing the node.
			val := ptr.data.Load()
			ptr.freeExternalCounter(claimedHead.externalCount)
			return *val, nil
		}

		ptr.releaseRef()
		sw.Once()
	}
}

// Close drains the queue by popping until empty, discarding whatever
// it finds. Callers must guarantee quiescence: Close does not fence
// against a producer or consumer that is still operating on the queue
// (spec §4.5, §7). After Close returns, the queue is empty and holds
// only its sentinel node; letting go of the *Queue[T] itself is enough
// for the garbage collector to reclaim it — there is no separate free
// step to call, unlike the manually managed reference this algorithm
// was translated from.
func (q *Queue[T]) Close() {
	for {
		if _, err := q.Pop(); err != nil {
			return
		}
	}
}
