// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"errors"
	"fmt"

	"code.hybscloud.com/kont"
)

var (
	// ErrTerminated is the failure injected into a strand by [Strand.Terminate].
	// A strand that observes it always ends in [StateTerminated].
	ErrTerminated = errors.New("recoil: strand terminated")

	// ErrKernelStopped is returned by the synchronous entry points when the
	// kernel stops, or runs out of work, before the awaited strand exits.
	ErrKernelStopped = errors.New("recoil: kernel stopped")

	// ErrKernelRunning is returned by Kernel.Step when the kernel is already
	// pumping. The synchronous entry points wrap it together with
	// ErrKernelStopped when called from a running strand.
	ErrKernelRunning = errors.New("recoil: kernel already running")

	// ErrChannelClosed is the failure of an operation on a closed channel.
	ErrChannelClosed = errors.New("recoil: channel closed")

	// ErrChannelLocked is the failure of a read (write) while another read
	// (write) is already pending on the same channel.
	ErrChannelLocked = errors.New("recoil: channel locked")

	// ErrSelfAwait is the failure of a strand awaiting its own completion.
	ErrSelfAwait = errors.New("recoil: strand awaits itself")

	errNilThrow = errors.New("recoil: nil error thrown")

	errNestedSync = fmt.Errorf("%w: %w", ErrKernelStopped, ErrKernelRunning)
)

// PanicError is a kernel panic: a strand failed and no exception handler
// was installed, or the handler itself failed.
type PanicError struct {
	Strand     ID
	Err        error
	HandlerErr error
}

func (e *PanicError) Error() string {
	if e.HandlerErr != nil {
		return fmt.Sprintf("recoil: kernel panic: strand %d failed: %v: exception handler failed: %v", e.Strand, e.Err, e.HandlerErr)
	}
	return fmt.Sprintf("recoil: kernel panic: strand %d failed: %v", e.Strand, e.Err)
}

// Unwrap returns the strand's failure and, if present, the handler's.
func (e *PanicError) Unwrap() []error {
	if e.HandlerErr != nil {
		return []error{e.Err, e.HandlerErr}
	}
	return []error{e.Err}
}

// StrandPanic is the failure of a frame whose code panicked.
type StrandPanic struct {
	Value any
	Stack []byte
}

func (e *StrandPanic) Error() string {
	return fmt.Sprintf("recoil: strand panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *StrandPanic) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// ContractError reports misuse of the strand protocol, such as resuming a
// strand that is not suspended. It is raised with panic, never returned.
type ContractError struct {
	Op     string
	Strand ID
	State  State
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("recoil: %s on strand %d while %s", e.Op, e.Strand, e.State)
}

// errorDispatcher is the structural interface of kont's error effects
// (Throw, Catch) instantiated with Go's error type.
type errorDispatcher interface {
	DispatchError(ctx *kont.ErrorContext[error]) (kont.Resumed, bool)
}

// dispatchError evaluates a kont error effect eagerly.
// Throw discards the suspension and fails the frame; a Catch whose body
// succeeds resumes the frame with the body's result.
func (s *Strand) dispatchError(eop errorDispatcher, susp *kont.Suspension[any]) advance {
	var ctx kont.ErrorContext[error]
	v, _ := eop.DispatchError(&ctx)
	if ctx.HasErr {
		susp.Discard()
		if ctx.Err == nil {
			return advance{err: errNilThrow}
		}
		return advance{err: ctx.Err}
	}
	return s.feed(susp, v)
}
