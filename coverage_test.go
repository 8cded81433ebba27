// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msq_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"go.seastorm.dev/msq"
)

// TestConservation is spec §8's conservation invariant: at any quiescent
// observation, pushed_count == popped_count + currently_in_queue. Here
// "currently in queue" is measured by draining to empty after producers
// finish, so the check reduces to pushed_count == popped_count once both
// sides have quiesced.
func TestConservation(t *testing.T) {
	if msq.RaceEnabled {
		t.Skip("skip: lock-free reclamation uses cross-variable memory ordering")
	}

	const (
		numProducers = 6
		itemsPerProd = 1_500
		total        = numProducers * itemsPerProd
	)

	q := msq.New[int]()

	var wg sync.WaitGroup
	for range numProducers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range itemsPerProd {
				q.Push(i)
			}
		}()
	}
	wg.Wait()

	var popped int
	for {
		if _, err := q.Pop(); err != nil {
			break
		}
		popped++
	}

	if popped != total {
		t.Fatalf("conservation violated: pushed %d, popped %d", total, popped)
	}
}

// TestInterleavedPopSetIsSubsetOfPushSet is scenario 5 from spec §8: while
// producers and a consumer run concurrently, every successful pop must
// return a value in the pushed range that a producer has already marked
// as pushed (no phantom values), and the consumer must drain all pushed
// values within the deadline.
func TestInterleavedPopSetIsSubsetOfPushSet(t *testing.T) {
	if msq.RaceEnabled {
		t.Skip("skip: lock-free reclamation uses cross-variable memory ordering")
	}

	const (
		numProducers = 3
		itemsPerProd = 5_000
		total        = numProducers * itemsPerProd
	)

	q := msq.New[int]()
	pushed := make([]atomix.Int32, total)
	var pushedCount atomix.Int64

	var wg sync.WaitGroup
	for p := range numProducers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			base := id * itemsPerProd
			for i := range itemsPerProd {
				v := base + i
				// Mark before Push: once Push installs v a consumer may
				// pop it before Push has even returned.
				pushed[v].Add(1)
				pushedCount.Add(1)
				q.Push(v)
			}
		}(p)
	}

	var consumed atomix.Int64
	var cwg sync.WaitGroup
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		backoff := iox.Backoff{}
		for consumed.Load() < int64(total) {
			v, err := q.Pop()
			if err != nil {
				backoff.Wait()
				continue
			}
			backoff.Reset()
			if v < 0 || v >= total {
				t.Errorf("popped phantom value %d outside pushed range 0..%d", v, total)
				consumed.Add(1)
				continue
			}
			if pushed[v].Load() == 0 {
				t.Errorf("popped value %d before it was observed pushed", v)
			}
			consumed.Add(1)
		}
	}()

	wg.Wait()
	waitForCount(t, 30*time.Second, &consumed, int64(total), "consumer did not drain all pushed values")
	cwg.Wait()
}

// TestDrainOnDestroy is scenario 4 from spec §8: push a batch, never pop,
// then Close. Expected: no panics in Close itself and no residual values
// visible afterward.
func TestDrainOnDestroy(t *testing.T) {
	q := msq.New[int]()
	for i := range 1_000 {
		q.Push(i)
	}

	q.Close()

	if _, err := q.Pop(); !msq.IsEmpty(err) {
		t.Fatalf("Pop after Close: got err %v, want ErrEmpty", err)
	}
}
