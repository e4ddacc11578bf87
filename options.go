// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultInboxCapacity bounds the cross-goroutine inbox.
// Producers wait with backoff while it is full.
const defaultInboxCapacity = 64

// Observer receives kernel lifecycle events. Methods run on the kernel
// goroutine and must not block.
type Observer interface {
	StrandStarted(s *Strand)
	StrandFinished(s *Strand)
	KernelPanicked(p *PanicError)
}

// ExceptionHandler is invoked when a strand fails and nothing adopted it.
// Returning an error, or panicking, causes a kernel panic.
type ExceptionHandler func(s *Strand, err error) error

// Options configures a Kernel.
type Options struct {
	ID            uuid.UUID
	Logger        zerolog.Logger
	Observer      Observer
	InboxCapacity int
	PanicAsError  bool
	Handler       ExceptionHandler
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Logger:        zerolog.Nop(),
		InboxCapacity: defaultInboxCapacity,
		PanicAsError:  true,
	}
}

// WithID sets the kernel's instance identifier. By default New generates a
// random one.
func WithID(id uuid.UUID) Option { return func(o *Options) { o.ID = id } }

// WithLogger sets the kernel's logger.
func WithLogger(l zerolog.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithObserver sets the observer notified of strand and kernel events.
func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

// WithInboxCapacity sets the capacity of the queue behind Kernel.Post.
func WithInboxCapacity(n int) Option { return func(o *Options) { o.InboxCapacity = n } }

// WithPanicAsError controls whether a panic in strand code fails the strand
// with a *StrandPanic (true, the default) or propagates out of Run.
func WithPanicAsError(v bool) Option { return func(o *Options) { o.PanicAsError = v } }

// WithExceptionHandler installs the initial exception handler.
func WithExceptionHandler(fn ExceptionHandler) Option { return func(o *Options) { o.Handler = fn } }
