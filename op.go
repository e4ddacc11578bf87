// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"code.hybscloud.com/kont"
)

// Outcome is the value or failure a suspended strand is resumed with.
// Err is non-nil for a failure, in which case Value is ignored.
type Outcome struct {
	Value any
	Err   error
}

// Suspend is the effect operation for parking a strand on an external event.
// Perform(Suspend{Fn: fn}) parks the strand and hands it to fn, which must
// arrange for exactly one resumption.
type Suspend struct {
	kont.Phantom[Outcome]
	Fn func(s *Strand)
}

// DispatchStrand parks the frame and calls Fn with the parked strand.
func (op Suspend) DispatchStrand(s *Strand, susp *kont.Suspension[any]) advance {
	s.park(susp)
	op.Fn(s)
	return parked
}

// Yield is the effect operation for cooperating with other strands.
// Perform(Yield{}) moves the strand to the back of the ready queue.
type Yield struct {
	kont.Phantom[Outcome]
}

// DispatchStrand parks the frame and re-enqueues the strand.
func (Yield) DispatchStrand(s *Strand, susp *kont.Suspension[any]) advance {
	s.park(susp)
	s.ResumeWithValue(nil)
	return parked
}

// Nest is the effect operation for delegating to a nested computation.
// Perform(Nest{Body: c}) pushes a frame for c; its result or failure is fed
// back to the performing frame.
type Nest struct {
	kont.Phantom[Outcome]
	Body kont.Eff[any]
}

// DispatchStrand pushes the performing frame and enters Body.
func (op Nest) DispatchStrand(s *Strand, susp *kont.Suspension[any]) advance {
	s.frames = append(s.frames, susp)
	return s.enter(func() kont.Expr[any] { return reifyFrame(op.Body) })
}

// Await is the effect operation for waiting on another strand.
// Perform(Await{Target: t}) parks until t is terminal and resumes with its
// outcome. With Adopt set, t bypasses the kernel's exception handler and is
// terminated if the awaiting strand is terminated first.
type Await struct {
	kont.Phantom[Outcome]
	Target *Strand
	Adopt  bool
}

// DispatchStrand parks the frame as an awaiter of Target.
func (op Await) DispatchStrand(s *Strand, susp *kont.Suspension[any]) advance {
	t := op.Target
	if t == s {
		return s.feed(susp, Outcome{Err: ErrSelfAwait})
	}
	if op.Adopt {
		t.adopted = true
	}
	s.park(susp)
	s.SetTerminator(func() {
		t.removeAwaiter(s)
		if op.Adopt {
			t.Terminate()
		}
	})
	t.AddAwaiter(s)
	return parked
}

// Spawn is the effect operation for executing a computation on a new strand.
// Perform(Spawn{Body: c}) resumes immediately with the new *Strand.
type Spawn struct {
	kont.Phantom[Outcome]
	Body kont.Eff[any]
}

// DispatchStrand executes Body on the strand's kernel.
func (op Spawn) DispatchStrand(s *Strand, susp *kont.Suspension[any]) advance {
	return s.feed(susp, Outcome{Value: s.kernel.Execute(op.Body)})
}

// Self is the effect operation for obtaining the current strand.
// Perform(Self{}) resumes immediately with the performing *Strand.
type Self struct {
	kont.Phantom[Outcome]
}

// DispatchStrand resumes with s.
func (Self) DispatchStrand(s *Strand, susp *kont.Suspension[any]) advance {
	return s.feed(susp, Outcome{Value: s})
}

// Raise is the effect operation for failing the current frame.
// Perform(Raise[T]{Err: err}) never resumes; err propagates to the parent frame.
type Raise[T any] struct {
	kont.Phantom[T]
	Err error
}

// DispatchStrand discards the frame's continuation and fails it with Err.
func (op Raise[T]) DispatchStrand(_ *Strand, susp *kont.Suspension[any]) advance {
	susp.Discard()
	if op.Err == nil {
		return advance{err: errNilThrow}
	}
	return advance{err: op.Err}
}

func (Raise[T]) raises() {}

// strandDispatcher is the structural interface for strand operations.
// DispatchStrand either advances the frame synchronously or parks it and
// returns parked; the advance type keeps the set of implementations closed
// to this package.
type strandDispatcher interface {
	DispatchStrand(s *Strand, susp *kont.Suspension[any]) advance
}

// raiser marks Raise, the one operation still dispatched while terminating.
type raiser interface {
	raises()
}
