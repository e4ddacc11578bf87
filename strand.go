// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"runtime/debug"

	"code.hybscloud.com/kont"
)

// State is the lifecycle state of a strand.
type State uint8

const (
	// StateReady: queued for its next step.
	StateReady State = iota
	// StateRunning: being advanced by the kernel.
	StateRunning
	// StateSuspended: parked on a suspension request.
	StateSuspended
	// StateExited: completed with a value.
	StateExited
	// StateFailed: completed with an unhandled failure.
	StateFailed
	// StateTerminated: cancelled by Terminate.
	StateTerminated
)

var stateNames = [...]string{
	StateReady:      "ready",
	StateRunning:    "running",
	StateSuspended:  "suspended",
	StateExited:     "exited",
	StateFailed:     "failed",
	StateTerminated: "terminated",
}

func (st State) String() string {
	if int(st) < len(stateNames) {
		return stateNames[st]
	}
	return "unknown"
}

// Terminal reports whether st is Exited, Failed or Terminated.
func (st State) Terminal() bool {
	return st >= StateExited
}

// Sink is the capability to deliver exactly one outcome to a suspended
// computation. [*Strand] implements it; so does [SinkFunc].
type Sink interface {
	ResumeWithValue(v any)
	ResumeWithFailure(err error)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(o Outcome)

// ResumeWithValue calls f with a value outcome.
func (f SinkFunc) ResumeWithValue(v any) { f(Outcome{Value: v}) }

// ResumeWithFailure calls f with a failure outcome.
func (f SinkFunc) ResumeWithFailure(err error) { f(Outcome{Err: err}) }

// Strand is one cooperatively scheduled unit of execution.
//
// A strand is owned by the kernel that executed it. Its methods must be
// called on the goroutine pumping that kernel.
type Strand struct {
	id     ID
	kernel *Kernel
	state  State

	entry   func() kont.Expr[any]
	started bool
	frames  []*kont.Suspension[any]
	pending Outcome

	terminating bool
	notified    bool // ErrTerminated delivered
	terminator  func()
	awaiters    []Sink
	adopted     bool

	value any
	err   error
}

// advance is the result of feeding a frame: completion with value, failure
// with err, or a new suspension susp. parked reports that the strand is
// now waiting and the step is over.
type advance struct {
	value  any
	err    error
	susp   *kont.Suspension[any]
	parked bool
}

var parked = advance{parked: true}

// ID returns the strand's identifier, unique within its kernel.
func (s *Strand) ID() ID { return s.id }

// Kernel returns the kernel that owns the strand.
func (s *Strand) Kernel() *Kernel { return s.kernel }

// State returns the strand's current lifecycle state.
func (s *Strand) State() State { return s.state }

// Result returns the strand's terminal outcome. It is (nil, nil) until the
// strand is terminal; a terminated strand reports ErrTerminated.
func (s *Strand) Result() (any, error) {
	return s.value, s.err
}

// ResumeWithValue resumes the suspended strand with v.
// It panics with a *ContractError unless the strand is suspended.
func (s *Strand) ResumeWithValue(v any) {
	s.resume("resume with value", Outcome{Value: v})
}

// ResumeWithFailure resumes the suspended strand with err, raised at the
// point of suspension. It panics with a *ContractError unless the strand is
// suspended.
func (s *Strand) ResumeWithFailure(err error) {
	if err == nil {
		err = errNilThrow
	}
	s.resume("resume with failure", Outcome{Err: err})
}

func (s *Strand) resume(op string, o Outcome) {
	if s.state != StateSuspended {
		panic(&ContractError{Op: op, Strand: s.id, State: s.state})
	}
	s.terminator = nil
	s.pending = o
	s.state = StateReady
	s.kernel.ready.push(s)
}

// SetTerminator replaces the strand's cancellation hook. fn runs at most
// once, when the strand is terminated while suspended. A normal resumption
// clears it.
func (s *Strand) SetTerminator(fn func()) {
	s.terminator = fn
}

// Terminate cancels the strand. A suspended strand has its terminator
// invoked and is resumed with ErrTerminated; a running or queued strand is
// marked and observes ErrTerminated at its next suspension request.
// A strand that catches ErrTerminated may clean up and raise, but its next
// suspension request ends it. Terminating a terminal strand does nothing.
func (s *Strand) Terminate() {
	switch s.state {
	case StateExited, StateFailed, StateTerminated:
		return
	case StateRunning:
		s.terminating = true
	case StateReady:
		s.terminating = true
		s.pending = Outcome{Err: ErrTerminated}
	case StateSuspended:
		s.terminating = true
		if fn := s.terminator; fn != nil {
			s.terminator = nil
			fn()
		}
		if s.state == StateSuspended {
			s.resume("terminate", Outcome{Err: ErrTerminated})
		}
	}
}

// AddAwaiter registers a sink to be notified once when the strand reaches a
// terminal state. If it already has, the outcome is delivered immediately.
func (s *Strand) AddAwaiter(a Sink) {
	if s.state.Terminal() {
		s.deliver(a)
		return
	}
	s.awaiters = append(s.awaiters, a)
}

func (s *Strand) removeAwaiter(a Sink) {
	for i, w := range s.awaiters {
		if w == a {
			s.awaiters = append(s.awaiters[:i], s.awaiters[i+1:]...)
			return
		}
	}
}

func (s *Strand) deliver(a Sink) {
	if s.state == StateExited {
		a.ResumeWithValue(s.value)
		return
	}
	a.ResumeWithFailure(s.err)
}

// park makes susp the strand's innermost frame and suspends the strand.
func (s *Strand) park(susp *kont.Suspension[any]) {
	s.frames = append(s.frames, susp)
	s.state = StateSuspended
}

// step advances the strand by one resumption: it feeds the pending outcome
// to the innermost frame and keeps advancing until the strand parks again
// or reaches a terminal state.
func (s *Strand) step() {
	s.state = StateRunning
	if !s.started {
		s.started = true
		if s.terminating {
			s.finish(Outcome{Err: ErrTerminated})
			return
		}
		entry := s.entry
		s.entry = nil
		s.drive(s.enter(entry))
		return
	}
	o := s.pending
	s.pending = Outcome{}
	if s.terminating {
		s.notified = true
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	s.drive(s.feed(top, o))
}

// drive interprets advances until the strand parks or finishes. Frame
// unwinding is strictly stack-ordered: a frame's result reaches its parent
// before anything else runs.
func (s *Strand) drive(a advance) {
	for {
		if a.parked {
			return
		}
		if a.err != nil || a.susp == nil {
			o := Outcome{Value: frameValue(a.value), Err: a.err}
			if s.terminating {
				o = Outcome{Err: ErrTerminated}
			}
			n := len(s.frames)
			if n == 0 {
				s.finish(o)
				return
			}
			parent := s.frames[n-1]
			s.frames = s.frames[:n-1]
			a = s.feed(parent, o)
			continue
		}
		a = s.dispatch(a.susp)
	}
}

// dispatch interprets the operation a frame is suspended on.
func (s *Strand) dispatch(susp *kont.Suspension[any]) advance {
	op := susp.Op()
	if sop, ok := op.(strandDispatcher); ok {
		if _, ok := op.(raiser); !ok && s.terminating {
			if s.notified {
				return s.abandon(susp)
			}
			s.notified = true
			return s.feed(susp, Outcome{Err: ErrTerminated})
		}
		return sop.DispatchStrand(s, susp)
	}
	if eop, ok := op.(errorDispatcher); ok {
		return s.dispatchError(eop, susp)
	}
	panic("recoil: unhandled effect in strand")
}

// abandon discards every frame of a terminating strand that ignored
// ErrTerminated and finishes it.
func (s *Strand) abandon(susp *kont.Suspension[any]) advance {
	susp.Discard()
	for i := len(s.frames) - 1; i >= 0; i-- {
		s.frames[i].Discard()
	}
	s.frames = nil
	s.finish(Outcome{Err: ErrTerminated})
	return parked
}

// enter builds a new frame and steps it to its first suspension or
// completion. Building runs under the frame's panic recovery since reifying
// a Cont-world computation evaluates it up to its first effect.
func (s *Strand) enter(build func() kont.Expr[any]) (a advance) {
	defer s.recoverFrame(&a)
	v, next := kont.StepExpr(build())
	return advance{value: v, susp: next}
}

// feed resumes a frame with v.
func (s *Strand) feed(susp *kont.Suspension[any], v kont.Resumed) (a advance) {
	defer s.recoverFrame(&a)
	v2, next := susp.Resume(v)
	return advance{value: v2, susp: next}
}

// recoverFrame converts a panic raised by frame code into a failure of that
// frame. Contract violations keep panicking.
func (s *Strand) recoverFrame(a *advance) {
	if !s.kernel.opts.PanicAsError {
		return
	}
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(*ContractError); ok {
		panic(r)
	}
	*a = advance{err: &StrandPanic{Value: r, Stack: debug.Stack()}}
}

// finish commits the terminal state, notifies awaiters and retires the
// strand from its kernel.
func (s *Strand) finish(o Outcome) {
	switch {
	case s.terminating:
		s.state = StateTerminated
		s.err = ErrTerminated
	case o.Err != nil:
		s.state = StateFailed
		s.err = o.Err
	default:
		s.state = StateExited
		s.value = o.Value
	}
	s.terminator = nil
	s.frames = nil
	awaiters := s.awaiters
	s.awaiters = nil
	for _, a := range awaiters {
		s.deliver(a)
	}
	s.kernel.retire(s)
}
