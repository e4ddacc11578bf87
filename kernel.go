// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"fmt"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/kont"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Kernel schedules strands on the goroutine that calls Run or one of the
// synchronous entry points. Only Post and Stop may be called from other
// goroutines.
type Kernel struct {
	id   uuid.UUID
	opts Options
	log  zerolog.Logger

	ids     serial
	strands map[ID]*Strand
	ready   readyQueue
	handler ExceptionHandler

	running  bool
	stopping atomix.Uint32
	panic    *PanicError

	inbox inbox
	holds int
}

// New creates a kernel with no strands.
func New(optFns ...Option) *Kernel {
	k := &Kernel{
		opts:    defaultOptions(),
		strands: make(map[ID]*Strand),
	}
	for _, fn := range optFns {
		fn(&k.opts)
	}
	k.id = k.opts.ID
	if k.id == uuid.Nil {
		k.id = uuid.New()
	}
	k.handler = k.opts.Handler
	k.log = k.opts.Logger.With().Str("kernel", k.id.String()).Logger()
	k.inbox.init(k.opts.InboxCapacity)
	return k
}

// ID returns the kernel's instance identifier.
func (k *Kernel) ID() uuid.UUID { return k.id }

// Len returns the number of live strands.
func (k *Kernel) Len() int { return len(k.strands) }

// Execute schedules c on a new strand and returns it without running it.
// Nothing in c is evaluated until the strand first runs.
func (k *Kernel) Execute(c kont.Eff[any]) *Strand {
	return k.spawn(func() kont.Expr[any] { return reifyFrame(c) })
}

// ExecuteExpr schedules an Expr-world computation on a new strand.
func (k *Kernel) ExecuteExpr(c kont.Expr[any]) *Strand {
	return k.spawn(func() kont.Expr[any] { return c })
}

func (k *Kernel) spawn(entry func() kont.Expr[any]) *Strand {
	s := &Strand{
		id:     k.ids.next(),
		kernel: k,
		state:  StateReady,
		entry:  entry,
	}
	k.strands[s.id] = s
	k.ready.push(s)
	if k.opts.Observer != nil {
		k.opts.Observer.StrandStarted(s)
	}
	k.log.Debug().Uint64("strand", s.id).Msg("strand started")
	return s
}

// SetExceptionHandler installs fn, or removes the handler when fn is nil.
func (k *Kernel) SetExceptionHandler(fn ExceptionHandler) {
	k.handler = fn
}

// Post runs fn on the kernel goroutine during the next pump iteration.
// Safe to call from any goroutine. Post waits while the inbox is full.
func (k *Kernel) Post(fn func()) {
	k.inbox.post(fn)
}

// Hold registers an outstanding external wait. While any hold is
// outstanding, Run keeps waiting for posted callbacks instead of returning
// on an empty ready queue. The returned release is idempotent and must be
// called on the kernel goroutine.
func (k *Kernel) Hold() (release func()) {
	k.holds++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		k.holds--
	}
}

// retire drops a terminal strand and routes an unadopted failure to the
// exception handler.
func (k *Kernel) retire(s *Strand) {
	delete(k.strands, s.id)
	if k.opts.Observer != nil {
		k.opts.Observer.StrandFinished(s)
	}
	k.log.Debug().Uint64("strand", s.id).Stringer("state", s.state).Msg("strand finished")
	if s.state != StateFailed || s.adopted {
		return
	}
	if k.handler == nil {
		k.raise(&PanicError{Strand: s.id, Err: s.err})
		return
	}
	k.log.Warn().Uint64("strand", s.id).Err(s.err).Msg("strand failed")
	if herr := k.handle(s); herr != nil {
		k.raise(&PanicError{Strand: s.id, Err: s.err, HandlerErr: herr})
	}
}

// handle invokes the exception handler, treating a panic as its failure.
func (k *Kernel) handle(s *Strand) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("recoil: exception handler panicked: %v", r)
		}
	}()
	return k.handler(s, s.err)
}

func (k *Kernel) raise(p *PanicError) {
	if k.panic == nil {
		k.panic = p
	}
	k.log.Error().Uint64("strand", p.Strand).Err(p).Msg("kernel panic")
	if k.opts.Observer != nil {
		k.opts.Observer.KernelPanicked(p)
	}
}
