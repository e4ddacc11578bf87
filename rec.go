// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"errors"

	"code.hybscloud.com/kont"
)

// Loop runs a recursive strand computation.
// step returns Left(nextState) to continue or Right(result) to finish.
// step is called when the strand reaches each iteration, never while the
// loop is being constructed.
func Loop[S, A any](initial S, step func(S) kont.Eff[kont.Either[S, A]]) kont.Eff[A] {
	first := Defer(func() kont.Eff[kont.Either[S, A]] { return step(initial) })
	return kont.Bind(first, func(e kont.Either[S, A]) kont.Eff[A] {
		if next, ok := e.GetLeft(); ok {
			return Loop(next, step)
		}
		result, _ := e.GetRight()
		return kont.Pure(result)
	})
}

// Drain reads from ch until it is closed, passing each value to f, and
// returns the number of values read. Failures other than ErrChannelClosed
// propagate.
func Drain[T any](ch ReadableChannel[T], f func(T)) kont.Eff[int] {
	return Loop(0, func(n int) kont.Eff[kont.Either[int, int]] {
		return kont.Bind(Try(ch.Read()), func(e kont.Either[error, T]) kont.Eff[kont.Either[int, int]] {
			if err, ok := e.GetLeft(); ok {
				if errors.Is(err, ErrChannelClosed) {
					return kont.Pure(kont.Right[int, int](n))
				}
				return Fail[kont.Either[int, int]](err)
			}
			v, _ := e.GetRight()
			f(v)
			return kont.Pure(kont.Left[int, int](n + 1))
		})
	})
}
