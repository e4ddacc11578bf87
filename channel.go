// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

import (
	"code.hybscloud.com/kont"
)

// ReadableChannel is the read side of a channel.
type ReadableChannel[T any] interface {
	Read() kont.Eff[T]
	Close()
	IsClosed() bool
}

// WritableChannel is the write side of a channel.
type WritableChannel[T any] interface {
	Write(v T) kont.Eff[struct{}]
	Close()
	IsClosed() bool
}

// Channel is an unbuffered rendezvous between strands. At most one read
// and one write may be pending at a time; a second concurrent read or
// write fails with ErrChannelLocked instead of queuing.
//
// Whichever side arrives second performs the handoff: a reader finding a
// parked writer takes its value and acknowledges the writer, and a writer
// finding a parked reader resumes it with the value. Neither second
// arrival suspends.
//
// A Channel holds no goroutine or timer; it must be used from strands of
// kernels pumped on the same goroutine.
type Channel[T any] struct {
	closed bool
	reader *Strand
	writer *Strand
	value  T
}

// NewChannel returns an open channel.
func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{}
}

// Read receives the next value written to the channel.
func (c *Channel[T]) Read() kont.Eff[T] {
	return Defer(func() kont.Eff[T] {
		if c.closed {
			return Fail[T](ErrChannelClosed)
		}
		if c.reader != nil {
			return Fail[T](ErrChannelLocked)
		}
		if w := c.writer; w != nil {
			v := c.takeWriter()
			w.ResumeWithValue(nil)
			return kont.Pure(v)
		}
		return SuspendWith[T](func(s *Strand) {
			c.reader = s
			s.SetTerminator(func() {
				if c.reader == s {
					c.reader = nil
				}
			})
		})
	})
}

// Write hands v to a reader, waiting for one if none is parked.
func (c *Channel[T]) Write(v T) kont.Eff[struct{}] {
	return Defer(func() kont.Eff[struct{}] {
		if c.closed {
			return Fail[struct{}](ErrChannelClosed)
		}
		if c.writer != nil {
			return Fail[struct{}](ErrChannelLocked)
		}
		if r := c.reader; r != nil {
			c.reader = nil
			r.ResumeWithValue(v)
			return kont.Pure(struct{}{})
		}
		return SuspendWith[struct{}](func(s *Strand) {
			c.writer = s
			c.value = v
			s.SetTerminator(func() {
				if c.writer == s {
					c.takeWriter()
				}
			})
		})
	})
}

// Close closes the channel. A parked reader or writer is resumed with
// ErrChannelClosed. Closing a closed channel does nothing.
func (c *Channel[T]) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if w := c.writer; w != nil {
		c.takeWriter()
		w.ResumeWithFailure(ErrChannelClosed)
	}
	if r := c.reader; r != nil {
		c.reader = nil
		r.ResumeWithFailure(ErrChannelClosed)
	}
}

// IsClosed reports whether Close has been called.
func (c *Channel[T]) IsClosed() bool {
	return c.closed
}

// takeWriter clears the writer slot and returns the value it held.
func (c *Channel[T]) takeWriter() T {
	v := c.value
	var zero T
	c.writer, c.value = nil, zero
	return v
}
