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

package queue

import (
	"sync/atomic"
)

// node returns the queue node
type node[T any] struct {
	next  atomic.Pointer[node[T]]
	value T
}

// MpscQueue is a Multi-Producer-Single-Consumer Queue.
// Many goroutines may call Push concurrently, but exactly one goroutine
// must call Pop. FIFO ordering is preserved across all producers.
// reference: https://concurrencyfreaks.blogspot.com/2014/04/multi-producer-single-consumer-queue.html
type MpscQueue[T any] struct {
	head   atomic.Pointer[node[T]] // consumer only
	tail   atomic.Pointer[node[T]] // producers only
	length atomic.Int64
}

// NewMpscQueue creates an instance of MpscQueue. The queue starts with a
// dummy node so that producers can append by swapping tail and linking
// through the previous node.
func NewMpscQueue[T any]() *MpscQueue[T] {
	dummy := new(node[T])
	q := new(MpscQueue[T])
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Push places the given value at the queue tail. Never blocks; always
// returns true. Safe for concurrent calls by multiple producers.
func (q *MpscQueue[T]) Push(value T) bool {
	tnode := &node[T]{value: value}
	prev := q.tail.Swap(tnode)
	prev.next.Store(tnode)
	q.length.Add(1)
	return true
}

// Pop takes the value from the queue head. Returns false when the queue is
// empty. Must be called from a single consumer goroutine.
func (q *MpscQueue[T]) Pop() (T, bool) {
	var tnil T
	head := q.head.Load()
	next := head.next.Load()
	if next == nil {
		return tnil, false
	}

	q.head.Store(next)
	value := next.value
	next.value = tnil
	q.length.Add(-1)
	return value, true
}

// Len returns queue length
func (q *MpscQueue[T]) Len() int64 {
	return q.length.Load()
}

// IsEmpty returns true when the queue is empty.
// Must be called from the single consumer goroutine.
func (q *MpscQueue[T]) IsEmpty() bool {
	head := q.head.Load()
	return head.next.Load() == nil
}
