// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package recoil provides a cooperative-multitasking runtime for computations
// written with algebraic effects on [code.hybscloud.com/kont].
//
// A [Kernel] drives many [Strand] values to completion on a single goroutine.
// A strand suspends by performing an effect operation and is resumed later
// with an [Outcome], a value or a failure, through the [Sink] capability.
//
// # Architecture
//
//   - Frames: each strand owns a stack of [code.hybscloud.com/kont.Suspension] frames.
//     Nested computations push frames; completion and failure unwind them in order.
//   - Operations: [Suspend], [Yield], [Nest], [Await], [Spawn], [Self], [Raise].
//     kont's error effects ([code.hybscloud.com/kont.ThrowError], [code.hybscloud.com/kont.CatchError]) are honoured.
//   - Scheduling: a FIFO ready queue pumped by [Kernel.Run]. Resumptions never recurse; they enqueue.
//   - Cross-goroutine entry: [Kernel.Post] feeds a lock-free SPSC inbox via [code.hybscloud.com/lfq],
//     waiting past [code.hybscloud.com/iox.ErrWouldBlock] with adaptive backoff.
//   - Failure: a failed strand is routed to the [ExceptionHandler]; without one, or if the handler
//     fails, the kernel panics and [Kernel.Run] returns a [*PanicError].
//   - Termination: [Strand.Terminate] injects [ErrTerminated] at the suspension point.
//     It cannot be caught and converted into a normal result.
//
// # API Topologies
//
//   - Cont-world: [SuspendWith], [Cooperate], [Call], [Try], [Go], [Join], [Adopt], [Current], [Fail], [Defer], [Loop].
//   - Expr-world: [ExprYieldThen], [Kernel.ExecuteExpr], [ExecExpr]. Bridge via [Erase] and [EraseExpr].
//   - Synchronous: [Kernel.ExecuteSync], [Kernel.AdoptSync], [Exec].
//   - Channels: [Channel] is an unbuffered rendezvous with at most one pending reader and one pending writer.
//
// # Integration
//
//   - Stepping: [Kernel.Step] and [Kernel.Pending] advance one strand at a time for embedding in an outer loop.
//   - Event sources: package loop adapts timers and blocking I/O, package stream exposes an [io.Reader] as a channel.
//   - Observability: [WithLogger] takes a zerolog logger; package observe/prom implements [Observer] with Prometheus metrics.
//
// # Example
//
//	k := recoil.New()
//	ch := recoil.NewChannel[string]()
//	k.Execute(recoil.Erase(ch.Write("x")))
//	v, err := recoil.Exec(k, ch.Read())
//	// v == "x", err == nil
package recoil
