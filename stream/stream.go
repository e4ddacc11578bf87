// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stream exposes blocking byte sources as recoil channels.
package stream

import (
	"errors"
	"io"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/recoil"
)

const defaultChunkSize = 4096

// ReadChannel is a [recoil.ReadableChannel] of byte chunks read from an
// io.Reader. A helper goroutine reads one chunk at a time, and only while
// a strand is waiting for it or a previous read is still in flight, so the
// source is never read ahead of demand by more than one chunk.
//
// End of input closes the channel. Any other read error fails the waiting
// reader once and then closes the channel.
//
// Read, Close and IsClosed must be called on the kernel goroutine.
type ReadChannel struct {
	k    *recoil.Kernel
	r    io.Reader
	size int

	reqs chan struct{}
	done chan struct{}

	reader  *recoil.Strand
	release func()
	reading bool
	buf     []byte
	fail    error
	closed  bool
	shut    bool
}

var _ recoil.ReadableChannel[[]byte] = (*ReadChannel)(nil)

// NewReadChannel starts reading r in chunks of at most size bytes on behalf
// of strands of k. A non-positive size selects 4 KiB. The helper goroutine
// lives until end of input, a read error, or Close.
func NewReadChannel(k *recoil.Kernel, r io.Reader, size int) *ReadChannel {
	if size <= 0 {
		size = defaultChunkSize
	}
	c := &ReadChannel{
		k:    k,
		r:    r,
		size: size,
		reqs: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Read receives the next chunk.
func (c *ReadChannel) Read() kont.Eff[[]byte] {
	return recoil.Defer(func() kont.Eff[[]byte] {
		if c.reader != nil {
			return recoil.Fail[[]byte](recoil.ErrChannelLocked)
		}
		if len(c.buf) > 0 {
			v := c.buf
			c.buf = nil
			return kont.Pure(v)
		}
		if err := c.fail; err != nil {
			c.fail = nil
			return recoil.Fail[[]byte](err)
		}
		if c.closed {
			return recoil.Fail[[]byte](recoil.ErrChannelClosed)
		}
		return recoil.SuspendWith[[]byte](c.park)
	})
}

// Close closes the channel and, when the reader is an io.Closer, the
// reader. A parked strand is resumed with ErrChannelClosed.
func (c *ReadChannel) Close() {
	c.closed = true
	c.buf, c.fail = nil, nil
	if !c.shut {
		c.shut = true
		close(c.done)
		if cl, ok := c.r.(io.Closer); ok {
			_ = cl.Close()
		}
	}
	if r := c.unpark(); r != nil {
		r.ResumeWithFailure(recoil.ErrChannelClosed)
	}
}

// IsClosed reports whether the channel was closed or reached end of input.
func (c *ReadChannel) IsClosed() bool {
	return c.closed
}

func (c *ReadChannel) park(s *recoil.Strand) {
	c.reader = s
	c.release = c.k.Hold()
	s.SetTerminator(func() {
		if c.reader == s {
			c.unpark()
		}
	})
	if !c.reading {
		c.reading = true
		c.reqs <- struct{}{}
	}
}

// unpark clears the reader slot, releases its hold and returns the strand
// that was parked there.
func (c *ReadChannel) unpark() *recoil.Strand {
	r := c.reader
	if r == nil {
		return nil
	}
	c.reader = nil
	c.release()
	c.release = nil
	return r
}

// deliver handles one completed read on the kernel goroutine.
func (c *ReadChannel) deliver(data []byte, err error) {
	c.reading = false
	if c.shut {
		return
	}
	if len(data) > 0 {
		c.buf = data
	}
	if err != nil {
		c.closed = true
		if !errors.Is(err, io.EOF) {
			c.fail = err
		}
	}
	if c.reader == nil {
		return
	}
	switch {
	case len(c.buf) > 0:
		v := c.buf
		c.buf = nil
		c.unpark().ResumeWithValue(v)
	case c.fail != nil:
		ferr := c.fail
		c.fail = nil
		c.unpark().ResumeWithFailure(ferr)
	case c.closed:
		c.unpark().ResumeWithFailure(recoil.ErrChannelClosed)
	default:
		// Empty read: the reader stays parked and the helper reads again.
		c.reading = true
		c.reqs <- struct{}{}
	}
}

func (c *ReadChannel) loop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.reqs:
		}
		buf := make([]byte, c.size)
		n, err := c.r.Read(buf)
		c.k.Post(func() { c.deliver(buf[:n], err) })
		if err != nil {
			return
		}
	}
}
