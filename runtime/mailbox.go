/*
 * MIT License
 *
 * Copyright (c) 2022-2026  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package runtime

import (
	gods "github.com/Workiva/go-datastructures/queue"

	gerrors "github.com/tochemey/goray/errors"
	"github.com/tochemey/goray/internal/queue"
)

// Mailbox is the ordered invocation queue of an actor slot. Many callers may
// enqueue concurrently; exactly one consumer (the slot loop) dequeues.
// FIFO ordering across all producers is what gives actor methods their
// submission-order execution guarantee.
type Mailbox interface {
	// Enqueue places the given task in the mailbox.
	Enqueue(t *task) error
	// Dequeue removes and returns the next task, or nil when the mailbox is empty.
	Dequeue() *task
	// Len returns the number of queued tasks.
	Len() int64
	// IsEmpty returns true when the mailbox is empty.
	IsEmpty() bool
	// Dispose releases resources held by the mailbox.
	Dispose()
}

// unboundedMailbox is the default lock-free MPSC mailbox.
type unboundedMailbox struct {
	underlying *queue.MpscQueue[*task]
}

// enforce compilation error
var _ Mailbox = (*unboundedMailbox)(nil)

// NewUnboundedMailbox creates the default unbounded mailbox. Enqueue never
// blocks and never fails, which keeps actor method calls non-suspending.
func NewUnboundedMailbox() Mailbox {
	return &unboundedMailbox{
		underlying: queue.NewMpscQueue[*task](),
	}
}

func (m *unboundedMailbox) Enqueue(t *task) error {
	m.underlying.Push(t)
	return nil
}

func (m *unboundedMailbox) Dequeue() *task {
	t, ok := m.underlying.Pop()
	if !ok {
		return nil
	}
	return t
}

func (m *unboundedMailbox) Len() int64 {
	return m.underlying.Len()
}

func (m *unboundedMailbox) IsEmpty() bool {
	return m.underlying.IsEmpty()
}

func (m *unboundedMailbox) Dispose() {}

// boundedMailbox is a bounded mailbox backed by a ring buffer. Enqueue fails
// with ErrMailboxFull when the capacity is reached instead of blocking the
// caller.
type boundedMailbox struct {
	underlying *gods.RingBuffer
}

// enforce compilation error
var _ Mailbox = (*boundedMailbox)(nil)

// NewBoundedMailbox creates a bounded mailbox with the given capacity.
// Use it to put backpressure on callers that outpace an actor.
func NewBoundedMailbox(capacity int) Mailbox {
	return &boundedMailbox{
		underlying: gods.NewRingBuffer(uint64(capacity)),
	}
}

func (m *boundedMailbox) Enqueue(t *task) error {
	ok, err := m.underlying.Offer(t)
	if err != nil {
		// the ring buffer only errors once disposed, and disposal happens
		// when the owning slot terminates
		return gerrors.ErrActorTerminated
	}
	if !ok {
		return gerrors.ErrMailboxFull
	}
	return nil
}

func (m *boundedMailbox) Dequeue() *task {
	if m.underlying.Len() > 0 {
		item, _ := m.underlying.Get()
		if t, ok := item.(*task); ok {
			return t
		}
	}
	return nil
}

func (m *boundedMailbox) Len() int64 {
	return int64(m.underlying.Len())
}

func (m *boundedMailbox) IsEmpty() bool {
	return m.underlying.Len() == 0
}

func (m *boundedMailbox) Dispose() {
	m.underlying.Dispose()
}
