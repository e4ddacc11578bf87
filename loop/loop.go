// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package loop adapts timers and blocking I/O to strand resumptions.
//
// Every operation follows the suspension-provider contract of
// [code.hybscloud.com/recoil]: it parks the calling strand, registers a
// terminator that makes the external resource safe to abandon, holds the
// kernel so [recoil.Kernel.Run] keeps waiting, and posts exactly one
// resumption back through [recoil.Kernel.Post] when the event fires.
package loop

import (
	"errors"
	"io"
	"time"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/recoil"
)

// ErrTimeout is the failure of a Timeout whose deadline passed first.
var ErrTimeout = errors.New("loop: timeout")

// Cooperate resumes the calling strand on a future tick.
func Cooperate() kont.Eff[struct{}] {
	return recoil.Cooperate()
}

// Sleep suspends the calling strand for d. A non-positive d cooperates
// instead of arming a timer.
func Sleep(d time.Duration) kont.Eff[struct{}] {
	if d <= 0 {
		return recoil.Cooperate()
	}
	return recoil.SuspendWith[struct{}](func(s *recoil.Strand) {
		w := watch(s)
		t := time.AfterFunc(d, func() {
			w.fire(func() { s.ResumeWithValue(nil) })
		})
		w.cancel = func() { t.Stop() }
	})
}

// Timeout runs body on a substrand and returns its result, or fails with
// ErrTimeout and terminates the substrand if d elapses first. The timer is
// stopped as soon as the substrand finishes.
func Timeout[T any](d time.Duration, body kont.Eff[T]) kont.Eff[T] {
	return kont.Bind(recoil.Go(body), func(sub *recoil.Strand) kont.Eff[T] {
		k := sub.Kernel()
		release := k.Hold()
		expired, done := false, false
		t := time.AfterFunc(d, func() {
			k.Post(func() {
				if done {
					return
				}
				done, expired = true, true
				release()
				sub.Terminate()
			})
		})
		sub.AddAwaiter(recoil.SinkFunc(func(recoil.Outcome) {
			if done {
				return
			}
			done = true
			t.Stop()
			release()
		}))
		return kont.Bind(recoil.Try(recoil.Adopt[T](sub)), func(e kont.Either[error, T]) kont.Eff[T] {
			if err, ok := e.GetLeft(); ok {
				if expired && errors.Is(err, recoil.ErrTerminated) {
					return recoil.Fail[T](ErrTimeout)
				}
				return recoil.Fail[T](err)
			}
			v, _ := e.GetRight()
			return kont.Pure(v)
		})
	})
}

// Callback returns a function that executes c on a new strand of the
// calling strand's kernel each time it is called. The function is safe to
// call from any goroutine.
func Callback(c kont.Eff[any]) kont.Eff[func()] {
	return kont.Bind(recoil.Current(), func(s *recoil.Strand) kont.Eff[func()] {
		k := s.Kernel()
		return kont.Pure(func() {
			k.Post(func() { k.Execute(c) })
		})
	})
}

// Read reads at most n bytes from r on a helper goroutine and resumes the
// calling strand with them. A non-positive n selects a 4 KiB buffer.
// If the strand is terminated first, the result is discarded and, when r
// supports it, its read deadline is moved to now to unblock the goroutine.
func Read(r io.Reader, n int) kont.Eff[[]byte] {
	if n <= 0 {
		n = defaultBufferSize
	}
	return recoil.SuspendWith[[]byte](func(s *recoil.Strand) {
		w := watch(s)
		w.cancel = func() { expire(r) }
		go func() {
			buf := make([]byte, n)
			m, err := r.Read(buf)
			w.fire(func() {
				if m == 0 && err != nil {
					s.ResumeWithFailure(err)
					return
				}
				s.ResumeWithValue(buf[:m])
			})
		}()
	})
}

// Write writes at most n bytes of p to w on a helper goroutine and resumes
// the calling strand with the number of bytes written. A non-positive n
// writes all of p.
func Write(wr io.Writer, p []byte, n int) kont.Eff[int] {
	if n > 0 && n < len(p) {
		p = p[:n]
	}
	return recoil.SuspendWith[int](func(s *recoil.Strand) {
		w := watch(s)
		w.cancel = func() { expire(wr) }
		go func() {
			m, err := wr.Write(p)
			w.fire(func() {
				if err != nil {
					s.ResumeWithFailure(err)
					return
				}
				s.ResumeWithValue(m)
			})
		}()
	})
}
