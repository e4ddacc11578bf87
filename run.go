// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"code.hybscloud.com/iox"
)

// Run pumps the ready queue until no strand is runnable and no external
// wait is held, Stop is called, or a kernel panic occurs. It returns the
// *PanicError in the last case. Run returns nil immediately if the kernel
// is already running.
func (k *Kernel) Run() error {
	if k.running {
		return nil
	}
	_, err := k.pump(nil)
	return err
}

// Stop asks the pump to exit after the current step. Queued strands stay
// queued and continue on the next Run. Safe to call from any goroutine;
// a request made while the kernel is idle is discarded when it next starts.
func (k *Kernel) Stop() {
	k.stopping.Store(1)
}

// pump drives strands one step at a time until until reports true, the
// queue runs dry with no holds, Stop is requested, or a kernel panic
// occurs. It waits with iox.Backoff while only external events can make
// progress.
func (k *Kernel) pump(until func() bool) (stopped bool, err error) {
	k.running = true
	k.stopping.Store(0)
	defer func() {
		k.running = false
		k.stopping.Store(0)
	}()

	var bo iox.Backoff
	for {
		if until != nil && until() {
			return false, nil
		}
		if k.stopping.Load() != 0 {
			return true, nil
		}
		ran, err := k.tick()
		if err != nil {
			return false, err
		}
		if ran {
			bo.Reset()
			continue
		}
		if k.holds == 0 {
			return false, nil
		}
		bo.Wait()
	}
}
