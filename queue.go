// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recoil

// readyQueue is the unbounded FIFO of strands due for a step.
// Only the kernel goroutine touches it.
type readyQueue struct {
	buf  []*Strand
	head int
}

func (q *readyQueue) push(s *Strand) {
	q.buf = append(q.buf, s)
}

func (q *readyQueue) pop() *Strand {
	if q.head == len(q.buf) {
		return nil
	}
	s := q.buf[q.head]
	q.buf[q.head] = nil
	q.head++
	if q.head == len(q.buf) {
		q.buf = q.buf[:0]
		q.head = 0
	} else if q.head >= 64 && q.head*2 >= len(q.buf) {
		n := copy(q.buf, q.buf[q.head:])
		clear(q.buf[n:])
		q.buf = q.buf[:n]
		q.head = 0
	}
	return s
}

func (q *readyQueue) len() int {
	return len(q.buf) - q.head
}
