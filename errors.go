// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msq

import "code.hybscloud.com/iox"

// ErrEmpty indicates that Pop observed the queue empty.
//
// ErrEmpty is a control flow signal, not a failure: under concurrent
// pushes it can also mean a producer is mid-way through linking a new
// tail node (spec §4.4, §9 of the design notes this package implements).
// Callers should retry, optionally with backoff, rather than treating
// it as terminal.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency —
// "nothing for you right now" is exactly the would-block condition the
// rest of the code.hybscloud.com stack already models.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    v, err := q.Pop()
//	    if err == nil {
//	        backoff.Reset()
//	        process(v)
//	        continue
//	    }
//	    if msq.IsEmpty(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	}
var ErrEmpty = iox.ErrWouldBlock

// IsEmpty reports whether err indicates Pop found the queue empty.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsEmpty(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsNonFailure reports whether err represents a non-failure condition
// (nil or ErrEmpty). Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
