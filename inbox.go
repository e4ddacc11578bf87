// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"sync"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// inbox carries callbacks from other goroutines to the kernel goroutine.
// The transport is a bounded lock-free SPSC queue: the kernel is the single
// consumer and mu serializes producers into a single logical producer.
type inbox struct {
	mu   sync.Mutex
	q    lfq.SPSC[func()]
	slot func()
}

func (b *inbox) init(capacity int) {
	if capacity <= 0 {
		capacity = defaultInboxCapacity
	}
	b.q.Init(capacity)
}

// post enqueues fn, waiting past iox.ErrWouldBlock with adaptive backoff
// while the queue is full.
func (b *inbox) post(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slot = fn
	var bo iox.Backoff
	for {
		err := b.q.Enqueue(&b.slot)
		if err == nil {
			break
		}
		if !iox.IsWouldBlock(err) {
			panic("recoil: inbox enqueue: " + err.Error())
		}
		bo.Wait()
	}
	b.slot = nil
}

// drain runs every queued callback and reports how many ran.
// Non-blocking: stops at the first iox.ErrWouldBlock.
func (b *inbox) drain() int {
	n := 0
	for {
		fn, err := b.q.Dequeue()
		if err != nil {
			return n
		}
		n++
		if fn != nil {
			fn()
		}
	}
}
