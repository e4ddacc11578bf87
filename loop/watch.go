// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loop

import (
	"time"

	"code.hybscloud.com/recoil"
)

const defaultBufferSize = 4096

// watcher ties one external event to one parked strand.
//
// All fields are touched on the kernel goroutine only: fire crosses
// goroutines through Kernel.Post, and the closure it posts checks dead
// before resuming.
type watcher struct {
	s       *recoil.Strand
	release func()
	cancel  func()
	dead    bool
}

// watch holds s's kernel and installs a terminator that releases the hold
// and cancels the event source.
func watch(s *recoil.Strand) *watcher {
	w := &watcher{s: s, release: s.Kernel().Hold()}
	s.SetTerminator(func() {
		w.dead = true
		w.release()
		if w.cancel != nil {
			w.cancel()
		}
	})
	return w
}

// fire delivers the event. Safe to call from any goroutine; fn runs on the
// kernel goroutine unless the strand was terminated first.
func (w *watcher) fire(fn func()) {
	w.s.Kernel().Post(func() {
		if w.dead {
			return
		}
		w.dead = true
		w.release()
		fn()
	})
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// expire unblocks a pending Read or Write on v when v supports deadlines.
func expire(v any) {
	now := time.Now()
	switch d := v.(type) {
	case readDeadliner:
		_ = d.SetReadDeadline(now)
	case writeDeadliner:
		_ = d.SetWriteDeadline(now)
	}
}
