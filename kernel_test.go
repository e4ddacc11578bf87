// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/recoil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestKernelRunsInExecutionOrder(t *testing.T) {
	k := recoil.New()
	var order []int
	for i := range 4 {
		k.Execute(effect(func() { order = append(order, i) }))
	}
	if err := k.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v", order)
		}
	}
}

func TestKernelCooperateInterleaves(t *testing.T) {
	k := recoil.New()
	var order []string
	step := func(name string) kont.Eff[struct{}] {
		return recoil.Defer(func() kont.Eff[struct{}] {
			order = append(order, name)
			return kont.Pure(struct{}{})
		})
	}
	k.Execute(recoil.Erase(kont.Then(step("a1"), recoil.YieldThen(step("a2")))))
	k.Execute(recoil.Erase(kont.Then(step("b1"), recoil.YieldThen(step("b2")))))
	if err := k.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Join(order, ","); got != "a1,b1,a2,b2" {
		t.Fatalf("order = %s", got)
	}
}

func TestKernelExceptionHandler(t *testing.T) {
	boom := errors.New("E")
	calls := 0
	var seen *recoil.Strand
	k := recoil.New()
	k.SetExceptionHandler(func(s *recoil.Strand, err error) error {
		calls++
		seen = s
		if !errors.Is(err, boom) {
			t.Errorf("handler got %v", err)
		}
		return nil
	})
	s := k.Execute(recoil.Erase(recoil.Fail[int](boom)))
	if err := k.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 1 || seen != s {
		t.Fatalf("handler calls=%d strand=%v", calls, seen)
	}
	if s.State() != recoil.StateFailed {
		t.Fatalf("state %v, want failed", s.State())
	}
}

func TestKernelHandlerFailureIsKernelPanic(t *testing.T) {
	boom := errors.New("E")
	h := errors.New("H")
	k := recoil.New(recoil.WithExceptionHandler(func(*recoil.Strand, error) error { return h }))
	s := k.Execute(recoil.Erase(recoil.Fail[int](boom)))
	next := k.Execute(recoil.Erase(kont.Pure(1)))

	err := k.Run()
	var pe *recoil.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("run returned %v, want *PanicError", err)
	}
	if pe.Strand != s.ID() || !errors.Is(err, boom) || !errors.Is(err, h) {
		t.Fatalf("panic error %+v", pe)
	}
	if next.State() != recoil.StateReady {
		t.Fatalf("strand after the panic ran: %v", next.State())
	}
	if err := k.Run(); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if next.State() != recoil.StateExited {
		t.Fatalf("queued strand state %v after resuming run", next.State())
	}
}

func TestKernelHandlerPanicIsKernelPanic(t *testing.T) {
	k := recoil.New(recoil.WithExceptionHandler(func(*recoil.Strand, error) error { panic("handler broke") }))
	k.Execute(recoil.Erase(recoil.Fail[int](errors.New("E"))))
	var pe *recoil.PanicError
	if err := k.Run(); !errors.As(err, &pe) || pe.HandlerErr == nil {
		t.Fatalf("run returned %v", err)
	}
}

func TestKernelNoHandlerIsKernelPanic(t *testing.T) {
	boom := errors.New("E")
	k := recoil.New()
	s := k.Execute(recoil.Erase(recoil.Fail[int](boom)))
	err := k.Run()
	var pe *recoil.PanicError
	if !errors.As(err, &pe) || pe.Strand != s.ID() || !errors.Is(err, boom) {
		t.Fatalf("run returned %v", err)
	}
}

func TestKernelExecuteSyncBypassesHandler(t *testing.T) {
	boom := errors.New("E")
	calls := 0
	k := recoil.New(recoil.WithExceptionHandler(func(*recoil.Strand, error) error {
		calls++
		return nil
	}))
	_, err := k.ExecuteSync(recoil.Erase(kont.Then(recoil.Cooperate(), recoil.Fail[int](boom))))
	if err != boom {
		t.Fatalf("got %v, want exactly E", err)
	}
	if calls != 0 {
		t.Fatalf("handler called %d times", calls)
	}
}

func TestKernelExecuteSyncValue(t *testing.T) {
	k := recoil.New()
	v, err := k.ExecuteSync(recoil.Erase(recoil.YieldThen(kont.Pure("v"))))
	if err != nil || v != "v" {
		t.Fatalf("got (%v, %v)", v, err)
	}
}

func TestKernelExecuteSyncSurfacesOtherPanic(t *testing.T) {
	k := recoil.New()
	k.Execute(recoil.Erase(recoil.Fail[int](errors.New("other"))))
	_, err := k.ExecuteSync(recoil.Erase(kont.Pure(1)))
	var pe *recoil.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want *PanicError", err)
	}
}

func TestKernelAdoptSyncUnresolvable(t *testing.T) {
	k := recoil.New()
	_, err := recoil.Exec(k, recoil.SuspendWith[int](func(*recoil.Strand) {}))
	if !errors.Is(err, recoil.ErrKernelStopped) {
		t.Fatalf("got %v, want ErrKernelStopped", err)
	}
}

func TestKernelAdoptSyncTerminal(t *testing.T) {
	k := recoil.New()
	s := k.Execute(recoil.Erase(kont.Pure(5)))
	_ = k.Run()
	v, err := k.AdoptSync(s)
	if err != nil || v != 5 {
		t.Fatalf("got (%v, %v)", v, err)
	}
}

func TestKernelAdoptSyncForeignStrandPanics(t *testing.T) {
	a, b := recoil.New(), recoil.New()
	s := a.Execute(recoil.Erase(kont.Pure(1)))
	r := mustPanic(t, func() { _, _ = b.AdoptSync(s) })
	if _, ok := r.(*recoil.ContractError); !ok {
		t.Fatalf("panic value %v", r)
	}
}

func TestKernelStop(t *testing.T) {
	k := recoil.New()
	body := recoil.Defer(func() kont.Eff[int] {
		k.Stop()
		return recoil.YieldThen(kont.Pure(9))
	})
	s := k.Execute(recoil.Erase(body))
	_, err := k.AdoptSync(s)
	if !errors.Is(err, recoil.ErrKernelStopped) {
		t.Fatalf("got %v, want ErrKernelStopped", err)
	}
	if s.State().Terminal() {
		t.Fatalf("strand finished despite stop: %v", s.State())
	}
	if err := k.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if v, _ := s.Result(); v != 9 {
		t.Fatalf("result after resuming = %v", v)
	}
}

func TestKernelStopWhileIdleIsDiscarded(t *testing.T) {
	k := recoil.New()
	k.Stop()
	v, err := k.ExecuteSync(recoil.Erase(kont.Pure(1)))
	if err != nil || v != 1 {
		t.Fatalf("got (%v, %v)", v, err)
	}
}

func TestKernelReentrantEntryPoints(t *testing.T) {
	k := recoil.New()
	var syncErr, runErr error
	k.Execute(effect(func() {
		_, syncErr = k.ExecuteSync(recoil.Erase(kont.Pure(1)))
		runErr = k.Run()
	}))
	if err := k.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !errors.Is(syncErr, recoil.ErrKernelRunning) || !errors.Is(syncErr, recoil.ErrKernelStopped) {
		t.Fatalf("nested ExecuteSync: %v", syncErr)
	}
	if runErr != nil {
		t.Fatalf("nested Run: %v", runErr)
	}
	if k.Len() != 0 {
		t.Fatalf("%d strands left", k.Len())
	}
}

func TestKernelNestedAdoptSyncKeepsEscalation(t *testing.T) {
	boom := errors.New("E")
	k := recoil.New()
	var held *recoil.Strand
	done := k.Execute(recoil.Erase(kont.Pure(5)))
	target := k.Execute(recoil.Erase(capture[int](&held)))
	var doneVal any
	var doneErr, syncErr error
	k.Execute(effect(func() {
		doneVal, doneErr = k.AdoptSync(done)
		_, syncErr = k.AdoptSync(target)
		held.ResumeWithFailure(boom)
	}))

	err := k.Run()
	if doneErr != nil || doneVal != 5 {
		t.Fatalf("nested AdoptSync of exited strand = (%v, %v)", doneVal, doneErr)
	}
	if !errors.Is(syncErr, recoil.ErrKernelStopped) || !errors.Is(syncErr, recoil.ErrKernelRunning) {
		t.Fatalf("nested AdoptSync: %v", syncErr)
	}
	var pe *recoil.PanicError
	if !errors.As(err, &pe) || pe.Strand != target.ID() || !errors.Is(err, boom) {
		t.Fatalf("run returned %v, want the target's failure escalated", err)
	}
}

func TestKernelNestedExecuteSyncCreatesNoStrand(t *testing.T) {
	started := 0
	k := recoil.New(recoil.WithObserver(&countingObserver{started: &started}))
	var before, after int
	var syncErr error
	k.Execute(effect(func() {
		before = k.Len()
		_, syncErr = k.ExecuteSync(recoil.Erase(recoil.Fail[int](errors.New("E"))))
		after = k.Len()
	}))
	if err := k.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !errors.Is(syncErr, recoil.ErrKernelStopped) {
		t.Fatalf("nested ExecuteSync: %v", syncErr)
	}
	if before != after || started != 1 {
		t.Fatalf("nested ExecuteSync queued a strand: len %d -> %d, started %d", before, after, started)
	}
}

type countingObserver struct{ started *int }

func (o *countingObserver) StrandStarted(*recoil.Strand) { *o.started++ }
func (o *countingObserver) StrandFinished(*recoil.Strand) {}
func (o *countingObserver) KernelPanicked(*recoil.PanicError) {}

func TestKernelPostFromGoroutine(t *testing.T) {
	skipRace(t)
	k := recoil.New(recoil.WithInboxCapacity(2))
	release := k.Hold()
	body := recoil.SuspendWith[int](func(s *recoil.Strand) {
		go func() {
			for range 8 {
				k.Post(func() {})
			}
			k.Post(func() {
				release()
				s.ResumeWithValue(11)
			})
		}()
	})
	v, err := recoil.Exec(k, body)
	if err != nil || v != 11 {
		t.Fatalf("got (%v, %v)", v, err)
	}
	if k.Pending() {
		t.Fatal("kernel still pending")
	}
}

func TestKernelHoldRelease(t *testing.T) {
	k := recoil.New()
	release := k.Hold()
	if !k.Pending() {
		t.Fatal("hold not reported as pending")
	}
	release()
	release()
	if k.Pending() {
		t.Fatal("idempotent release left the kernel pending")
	}
}

func TestKernelPanicAsError(t *testing.T) {
	var got error
	k := recoil.New(recoil.WithExceptionHandler(func(_ *recoil.Strand, err error) error {
		got = err
		return nil
	}))
	k.Execute(effect(func() { panic("boom") }))
	if err := k.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	var sp *recoil.StrandPanic
	if !errors.As(got, &sp) || sp.Value != "boom" || len(sp.Stack) == 0 {
		t.Fatalf("handler got %v", got)
	}
}

func TestKernelPanicPropagates(t *testing.T) {
	k := recoil.New(recoil.WithPanicAsError(false))
	k.Execute(effect(func() { panic("boom") }))
	if r := mustPanic(t, func() { _ = k.Run() }); r != "boom" {
		t.Fatalf("panic value %v", r)
	}
}

type recordingObserver struct {
	started, finished []recoil.ID
	states            []recoil.State
	panics            int
}

func (o *recordingObserver) StrandStarted(s *recoil.Strand) { o.started = append(o.started, s.ID()) }

func (o *recordingObserver) StrandFinished(s *recoil.Strand) {
	o.finished = append(o.finished, s.ID())
	o.states = append(o.states, s.State())
}

func (o *recordingObserver) KernelPanicked(*recoil.PanicError) { o.panics++ }

func TestKernelObserver(t *testing.T) {
	obs := &recordingObserver{}
	k := recoil.New(recoil.WithObserver(obs))
	a := k.Execute(recoil.Erase(kont.Pure(1)))
	b := k.Execute(recoil.Erase(recoil.Fail[int](errors.New("E"))))
	_ = k.Run()

	if len(obs.started) != 2 || obs.started[0] != a.ID() || obs.started[1] != b.ID() {
		t.Fatalf("started %v", obs.started)
	}
	if len(obs.states) != 2 || obs.states[0] != recoil.StateExited || obs.states[1] != recoil.StateFailed {
		t.Fatalf("finished states %v", obs.states)
	}
	if obs.panics != 1 {
		t.Fatalf("panics %d", obs.panics)
	}
}

func TestKernelLogger(t *testing.T) {
	var buf bytes.Buffer
	id := uuid.New()
	k := recoil.New(recoil.WithID(id), recoil.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	if k.ID() != id {
		t.Fatalf("kernel id %v, want %v", k.ID(), id)
	}
	k.Execute(recoil.Erase(kont.Pure(1)))
	_ = k.Run()

	out := buf.String()
	for _, want := range []string{`"strand started"`, `"strand finished"`, `"state":"exited"`, id.String()} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestKernelIDGenerated(t *testing.T) {
	if recoil.New().ID() == uuid.Nil {
		t.Fatal("kernel id not generated")
	}
}
