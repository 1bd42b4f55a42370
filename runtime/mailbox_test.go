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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/goray/errors"
	"github.com/tochemey/goray/store"
)

func TestUnboundedMailbox(t *testing.T) {
	mailbox := NewUnboundedMailbox()
	assert.True(t, mailbox.IsEmpty())
	assert.Nil(t, mailbox.Dequeue())

	for i := 0; i < 10; i++ {
		require.NoError(t, mailbox.Enqueue(&task{id: store.ObjectID(fmt.Sprintf("task-%d", i))}))
	}
	assert.EqualValues(t, 10, mailbox.Len())

	for i := 0; i < 10; i++ {
		next := mailbox.Dequeue()
		require.NotNil(t, next)
		assert.EqualValues(t, fmt.Sprintf("task-%d", i), next.id)
	}
	assert.True(t, mailbox.IsEmpty())
	mailbox.Dispose()
}

func TestBoundedMailbox(t *testing.T) {
	mailbox := NewBoundedMailbox(2)
	require.NoError(t, mailbox.Enqueue(&task{id: "first"}))
	require.NoError(t, mailbox.Enqueue(&task{id: "second"}))
	assert.EqualValues(t, 2, mailbox.Len())

	err := mailbox.Enqueue(&task{id: "third"})
	require.ErrorIs(t, err, gerrors.ErrMailboxFull)

	next := mailbox.Dequeue()
	require.NotNil(t, next)
	assert.EqualValues(t, "first", next.id)
	// a seat freed up
	require.NoError(t, mailbox.Enqueue(&task{id: "third"}))
	assert.EqualValues(t, "second", mailbox.Dequeue().id)
	assert.EqualValues(t, "third", mailbox.Dequeue().id)
	assert.True(t, mailbox.IsEmpty())

	// a call racing the owning slot's termination gets the refusal error,
	// not the ring buffer internals
	mailbox.Dispose()
	err = mailbox.Enqueue(&task{id: "late"})
	require.ErrorIs(t, err, gerrors.ErrActorTerminated)
}
