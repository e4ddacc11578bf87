// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"code.hybscloud.com/kont"
)

// unwrap converts a strand outcome into the computation's result: a failure
// is re-raised in the current frame, a value is asserted to T. A nil value
// yields the zero T.
func unwrap[T any](m kont.Eff[Outcome]) kont.Eff[T] {
	return kont.Bind(m, func(o Outcome) kont.Eff[T] {
		if o.Err != nil {
			return Fail[T](o.Err)
		}
		v, _ := o.Value.(T)
		return kont.Pure(v)
	})
}

// Fail fails the current frame with err.
// Fuses Perform(Raise[T]{Err: err}).
func Fail[T any](err error) kont.Eff[T] {
	return kont.Perform(Raise[T]{Err: err})
}

// Defer builds the computation with f when the strand reaches it rather
// than when the computation is constructed.
func Defer[T any](f func() kont.Eff[T]) kont.Eff[T] {
	return kont.Bind(kont.Pure(struct{}{}), func(struct{}) kont.Eff[T] {
		return f()
	})
}

// SuspendWith parks the strand and hands it to fn, which must arrange one
// resumption. The resumed value is asserted to T; a failure is raised.
// Fuses Perform(Suspend{Fn: fn}) + unwrap.
func SuspendWith[T any](fn func(s *Strand)) kont.Eff[T] {
	return unwrap[T](kont.Perform(Suspend{Fn: fn}))
}

// Cooperate yields to the other ready strands.
// Fuses Perform(Yield{}) + unwrap.
func Cooperate() kont.Eff[struct{}] {
	return unwrap[struct{}](kont.Perform(Yield{}))
}

// YieldThen yields to the other ready strands and continues with next.
// Fuses Perform(Yield{}) + unwrap + Then.
func YieldThen[B any](next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(Cooperate(), next)
}

// Call runs body as a nested frame of the current strand and returns its
// result; body's failure propagates to the caller.
// Fuses Perform(Nest{Body: body}) + unwrap.
func Call[T any](body kont.Eff[T]) kont.Eff[T] {
	return unwrap[T](kont.Perform(Nest{Body: Erase(body)}))
}

// Try runs body as a nested frame and returns its failure as Left instead
// of propagating it. A terminated strand still ends terminated whatever
// the caller does with the Left.
func Try[T any](body kont.Eff[T]) kont.Eff[kont.Either[error, T]] {
	return kont.Bind(kont.Perform(Nest{Body: Erase(body)}), func(o Outcome) kont.Eff[kont.Either[error, T]] {
		if o.Err != nil {
			return kont.Pure(kont.Left[error, T](o.Err))
		}
		v, _ := o.Value.(T)
		return kont.Pure(kont.Right[error, T](v))
	})
}

// Go executes body on a new strand of the current kernel and returns the
// strand without waiting for it.
// Fuses Perform(Spawn{Body: body}) + unwrap.
func Go[T any](body kont.Eff[T]) kont.Eff[*Strand] {
	return unwrap[*Strand](kont.Perform(Spawn{Body: Erase(body)}))
}

// Join waits for s to finish and returns its result; s's failure, or
// ErrTerminated, is raised in the caller. s still reaches the exception
// handler if it fails.
// Fuses Perform(Await{Target: s}) + unwrap.
func Join[T any](s *Strand) kont.Eff[T] {
	return unwrap[T](kont.Perform(Await{Target: s}))
}

// Adopt is Join that takes over s's failure: the kernel's exception handler
// is bypassed for s, and s is terminated if the caller is terminated while
// waiting.
// Fuses Perform(Await{Target: s, Adopt: true}) + unwrap.
func Adopt[T any](s *Strand) kont.Eff[T] {
	return unwrap[T](kont.Perform(Await{Target: s, Adopt: true}))
}

// Current returns the strand running the computation.
// Fuses Perform(Self{}) + unwrap.
func Current() kont.Eff[*Strand] {
	return unwrap[*Strand](kont.Perform(Self{}))
}
