// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

// Step drains the inbox and advances the strand at the head of the ready
// queue by one resumption. It reports whether a strand ran, and returns the
// *PanicError if that step caused a kernel panic.
//
// Step is the integration point for an external loop that owns the
// goroutine: call it until it reports false, then wait for external events.
// It must not be called while Run or a synchronous entry point is pumping.
func (k *Kernel) Step() (bool, error) {
	if k.running {
		return false, ErrKernelRunning
	}
	k.running = true
	defer func() { k.running = false }()
	return k.tick()
}

// Pending reports whether a strand is queued or an external wait is held.
func (k *Kernel) Pending() bool {
	return k.ready.len() > 0 || k.holds > 0
}

// tick is one pump iteration.
func (k *Kernel) tick() (bool, error) {
	k.inbox.drain()
	s := k.ready.pop()
	if s == nil {
		return false, nil
	}
	s.step()
	if p := k.panic; p != nil {
		k.panic = nil
		return true, p
	}
	return true, nil
}
