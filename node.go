// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// node is a single cell of the queue's singly linked list.
//
// A freshly allocated node is always a dummy: data is nil and next is
// unset. A producer's successful CAS into data makes it "real"; it is
// linked forward exactly once by that same producer before tail is
// advanced past it. next is therefore never written concurrently and
// needs no atomic of its own — the tail swap that publishes the node
// supplies the happens-before edge a reader needs.
type node[T any] struct {
	data atomic.Pointer[T]
	next *countedNodePtr[T]

	// count packs the split reference count from spec §4.2 into one
	// CAS-able word: lo is internalCount (an int64 bit pattern), hi is
	// externalHolders, the number of {head, tail} slots that may still
	// name this node (0, 1, or 2).
	count atomix.Uint128
}

// countedNodePtr is the (external_count, ptr) pair that must move as a
// single unit for the slot CAS to be ABA-safe. sync/atomic has no
// pointer-aware double-word primitive, so each distinct (ptr,
// externalCount) combination is boxed as its own immutable value and
// head/tail hold a *countedNodePtr[T] swapped atomically via
// sync/atomic.Pointer (node.next holds one as a plain field, written
// once) — see DESIGN.md for why this, rather than atomix.Uint128, owns
// the pointer-carrying slots.
type countedNodePtr[T any] struct {
	ptr           *node[T]
	externalCount uint64
}

// newNode allocates a fresh dummy node. A node is, at construction,
// assumed reachable from both head and tail over its lifetime, so
// externalHolders starts at 2 regardless of how many slots actually
// come to name it (spec §4.2, §9).
func newNode[T any]() *node[T] {
	n := &node[T]{}
	n.count.StoreRelaxed(0, 2)
	return n
}

// releaseRef drops this goroutine's hold on the node's internal count
// without having replaced a slot. Used when a producer or consumer
// loses a CAS race after claiming the node and must back off.
//
// retired reports whether both halves of the split count reached zero
// as a result of this release — the point at which, in a manually
// managed runtime, the node would be freed. Here it simply means the
// node is no longer reachable through the queue; the garbage collector
// reclaims it whenever it is no longer reachable through anything else
// either.
func (n *node[T]) releaseRef() (retired bool) {
	lo, hi := n.count.LoadAcquire()
	for {
		internal := int64(lo) - 1
		if n.count.CompareAndSwapAcqRel(lo, hi, uint64(internal), hi) {
			return internal == 0 && hi == 0
		}
		lo, hi = n.count.LoadAcquire()
	}
}

// freeExternalCounter reconciles a departing CountedNodePtr slot into
// this node's count (spec §4.2): externalCount-2 is folded into
// internalCount (the "-2" accounts for the pair of claims implicitly
// set up when the node was first published into two slots), and
// externalHolders drops by one since one fewer slot may still name this
// node.
func (n *node[T]) freeExternalCounter(externalCount uint64) (retired bool) {
	countIncrease := int64(externalCount) - 2
	lo, hi := n.count.LoadAcquire()
	for {
		internal := int64(lo) + countIncrease
		holders := hi - 1
		if n.count.CompareAndSwapAcqRel(lo, hi, uint64(internal), holders) {
			return internal == 0 && holders == 0
		}
		lo, hi = n.count.LoadAcquire()
	}
}

// increaseExternalCount claims slot by incrementing its externalCount,
// retrying against whatever the current (ptr, externalCount) pair
// turns out to be. If another producer has already advanced the slot
// to a different node, the CAS naturally picks that up: the whole pair
// is compared as one unit, so a stale ptr can never be mistaken for the
// current one (spec §4.1).
func increaseExternalCount[T any](slot *atomic.Pointer[countedNodePtr[T]]) *countedNodePtr[T] {
	sw := spin.Wait{}
	old := slot.Load()
	for {
		claimed := &countedNodePtr[T]{ptr: old.ptr, externalCount: old.externalCount + 1}
		if slot.CompareAndSwap(old, claimed) {
			return claimed
		}
		sw.Once()
		old = slot.Load()
	}
}
