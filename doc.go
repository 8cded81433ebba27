// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package msq provides an unbounded, lock-free, multi-producer
// multi-consumer FIFO queue for in-process message passing.
//
// The queue is a Michael-Scott linked list: push installs a value into
// the current tail node and links a fresh dummy node behind it; pop
// advances head past a node and takes its value. Each node keeps the
// split reference count of the original algorithm (an external count
// that travels with each head/tail claim, an internal count that
// persists on the node) — the scheme you'd reach for in a language
// without a GC — translated here with Go's own atomics where pointers
// are involved and code.hybscloud.com/atomix's explicit-ordering atomics
// everywhere else. The counts are maintained but do not free memory:
// nodes are reclaimed by the garbage collector once unreachable.
//
// # Quick Start
//
//	q := msq.New[int]()
//
//	q.Push(42)
//
//	v, err := q.Pop()
//	if err == nil {
//	    fmt.Println(v)
//	}
//
// # Basic Usage
//
// Push never blocks and never returns an error: the queue is unbounded,
// so there is no backpressure to signal. Pop never blocks either; it
// returns [ErrEmpty] when it observes the queue empty.
//
//	q := msq.New[string]()
//
//	q.Push("hello")
//
//	v, err := q.Pop()
//	if msq.IsEmpty(err) {
//	    // nothing available right now
//	}
//
// # Producer/Consumer Pattern
//
// Any number of goroutines may call Push and Pop concurrently:
//
//	q := msq.New[Job]()
//
//	// Producers
//	for _, j := range jobs {
//	    go q.Push(j)
//	}
//
//	// Workers
//	for range numWorkers {
//	    go func() {
//	        backoff := iox.Backoff{}
//	        for {
//	            job, err := q.Pop()
//	            if err != nil {
//	                backoff.Wait()
//	                continue
//	            }
//	            backoff.Reset()
//	            job.Run()
//	        }
//	    }()
//	}
//
// # Error Handling
//
// Pop returns [ErrEmpty] when it cannot proceed. This error is sourced
// from [code.hybscloud.com/iox] for ecosystem consistency with the
// queue implementations in code.hybscloud.com/lfq.
//
//	backoff := iox.Backoff{}
//	for {
//	    v, err := q.Pop()
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if !msq.IsEmpty(err) {
//	        panic(err) // unreachable: Pop has no other error
//	    }
//	    backoff.Wait()
//	}
//
// Pop can return ErrEmpty even when a push is concurrently in flight:
// a producer that has installed its value but not yet linked the new
// tail node leaves head == tail for a moment, which Pop treats as
// empty. This is a deliberate, documented weakening (a node is never
// lost — the next Pop will find it), not a bug.
//
// # Shutdown
//
// [Queue.Close] drains the queue. It assumes the caller has already
// quiesced every producer and consumer; it does not fence against
// concurrent access.
//
//	producersWg.Wait()
//	q.Close()
//
// # Length
//
// Length is intentionally not provided. An accurate count in a
// lock-free structure like this one requires expensive cross-core
// synchronization that the rest of the design goes out of its way to
// avoid; track counts in application logic if you need them.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives
// (mutex, channel, WaitGroup) but cannot observe happens-before
// relationships established through atomic memory ordering alone. This
// package's reference-count arithmetic and CountedNodePtr protocol use
// acquire-release atomics to order non-atomic reads; the race detector
// may report false positives on them. Concurrent tests that the race
// detector cannot reason about skip themselves when [RaceEnabled] is
// true, and the concurrent example is excluded via //go:build !race.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives
// with explicit memory ordering, [code.hybscloud.com/iox] for semantic
// errors, and [code.hybscloud.com/spin] for CPU pause instructions
// during CAS retry, matching the conventions of code.hybscloud.com/lfq.
package msq
