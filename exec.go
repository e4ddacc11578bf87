// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"fmt"

	"code.hybscloud.com/kont"
)

// ExecuteSync executes c on a new strand and blocks until it exits.
// It is equivalent to AdoptSync(Execute(c)), except that no strand is
// created when called while the kernel is running.
func (k *Kernel) ExecuteSync(c kont.Eff[any]) (any, error) {
	if k.running {
		return nil, errNestedSync
	}
	return k.AdoptSync(k.Execute(c))
}

// AdoptSync blocks until s is terminal, pumping the kernel meanwhile.
// The exception handler is bypassed for s: its failure is returned
// directly, and termination is reported as ErrTerminated. If the kernel
// stops, or nothing can resume s any more, ErrKernelStopped is returned;
// a panic caused by another strand is returned as its *PanicError.
//
// Called from a strand while the kernel is running, AdoptSync cannot pump:
// a terminal s still reports its outcome, otherwise the error matches both
// ErrKernelStopped and ErrKernelRunning and s keeps its normal failure
// escalation.
func (k *Kernel) AdoptSync(s *Strand) (any, error) {
	if s.kernel != k {
		panic(&ContractError{Op: "adopt from foreign kernel", Strand: s.id, State: s.state})
	}
	if k.running && !s.state.Terminal() {
		return nil, errNestedSync
	}
	s.adopted = true
	w := &syncWaiter{}
	s.AddAwaiter(w)
	if w.done {
		return w.value, w.err
	}
	stopped, err := k.pump(func() bool { return w.done })
	if err != nil {
		s.removeAwaiter(w)
		return nil, err
	}
	if w.done {
		return w.value, w.err
	}
	s.removeAwaiter(w)
	if stopped {
		return nil, ErrKernelStopped
	}
	return nil, fmt.Errorf("%w: strand %d can no longer be resumed", ErrKernelStopped, s.id)
}

// syncWaiter captures a strand's outcome for the synchronous entry points.
type syncWaiter struct {
	done  bool
	value any
	err   error
}

func (w *syncWaiter) ResumeWithValue(v any) {
	w.done, w.value = true, v
}

func (w *syncWaiter) ResumeWithFailure(err error) {
	w.done, w.err = true, err
}

// Exec runs a Cont-world computation on a new strand of k and blocks until
// it exits, pumping the kernel meanwhile. See Kernel.AdoptSync for the
// error cases.
func Exec[T any](k *Kernel, c kont.Eff[T]) (T, error) {
	return typed[T](k.ExecuteSync(Erase(c)))
}

// ExecExpr runs an Expr-world computation on a new strand of k and blocks
// until it exits.
func ExecExpr[T any](k *Kernel, c kont.Expr[T]) (T, error) {
	return typed[T](k.AdoptSync(k.ExecuteExpr(EraseExpr(c))))
}

func typed[T any](v any, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}
