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

package store

import (
	"context"
	goerrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/goray/errors"
	"github.com/tochemey/goray/log"
)

func TestWait(t *testing.T) {
	t.Run("With already published targets", func(t *testing.T) {
		s := New(log.DiscardLogger)
		ids := make([]ObjectID, 3)
		for i := range ids {
			ids[i] = s.Allocate()
		}
		require.NoError(t, s.Put(ids[1], 1))
		require.NoError(t, s.Put(ids[2], 2))

		ready, remaining, err := s.Wait(context.TODO(), ids, 2, 0)
		require.NoError(t, err)
		// ready is ordered by completion, not by target order
		assert.Equal(t, []ObjectID{ids[1], ids[2]}, ready)
		assert.Equal(t, []ObjectID{ids[0]}, remaining)
	})
	t.Run("With blocking until threshold", func(t *testing.T) {
		s := New(log.DiscardLogger)
		ids := []ObjectID{s.Allocate(), s.Allocate()}

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = s.Put(ids[1], "late")
		}()

		ready, remaining, err := s.Wait(context.TODO(), ids, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, []ObjectID{ids[1]}, ready)
		assert.Equal(t, []ObjectID{ids[0]}, remaining)
	})
	t.Run("With timeout shortfall", func(t *testing.T) {
		s := New(log.DiscardLogger)
		ids := []ObjectID{s.Allocate(), s.Allocate()}
		require.NoError(t, s.Put(ids[0], 1))

		ready, remaining, err := s.Wait(context.TODO(), ids, 2, 50*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, []ObjectID{ids[0]}, ready)
		assert.Equal(t, []ObjectID{ids[1]}, remaining)
	})
	t.Run("With more published than requested", func(t *testing.T) {
		s := New(log.DiscardLogger)
		ids := []ObjectID{s.Allocate(), s.Allocate(), s.Allocate()}
		for i, id := range ids {
			require.NoError(t, s.Put(id, i))
		}

		ready, remaining, err := s.Wait(context.TODO(), ids, 1, 0)
		require.NoError(t, err)
		require.Len(t, ready, 1)
		assert.Len(t, remaining, 2)
		assert.Equal(t, ids[0], ready[0])
	})
	t.Run("With zero numReturns", func(t *testing.T) {
		s := New(log.DiscardLogger)
		ids := []ObjectID{s.Allocate()}
		ready, remaining, err := s.Wait(context.TODO(), ids, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, ready)
		assert.Equal(t, ids, remaining)
	})
	t.Run("With failed entry counted as done", func(t *testing.T) {
		s := New(log.DiscardLogger)
		ids := []ObjectID{s.Allocate()}
		require.NoError(t, s.Fail(ids[0], goerrors.New("boom")))

		ready, remaining, err := s.Wait(context.TODO(), ids, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, ids, ready)
		assert.Empty(t, remaining)
	})
	t.Run("With numReturns out of range", func(t *testing.T) {
		s := New(log.DiscardLogger)
		ids := []ObjectID{s.Allocate()}
		_, _, err := s.Wait(context.TODO(), ids, 2, 0)
		assert.ErrorIs(t, err, gerrors.ErrInvalidArgument)

		_, _, err = s.Wait(context.TODO(), ids, -1, 0)
		assert.ErrorIs(t, err, gerrors.ErrInvalidArgument)
	})
	t.Run("With duplicate targets", func(t *testing.T) {
		s := New(log.DiscardLogger)
		id := s.Allocate()
		_, _, err := s.Wait(context.TODO(), []ObjectID{id, id}, 1, 0)
		assert.ErrorIs(t, err, gerrors.ErrInvalidArgument)
	})
	t.Run("With unknown target", func(t *testing.T) {
		s := New(log.DiscardLogger)
		_, _, err := s.Wait(context.TODO(), []ObjectID{NewObjectID()}, 1, 0)
		assert.ErrorIs(t, err, gerrors.ErrUnknownObject)
	})
	t.Run("With canceled context", func(t *testing.T) {
		s := New(log.DiscardLogger)
		ids := []ObjectID{s.Allocate()}
		ctx, cancel := context.WithCancel(context.TODO())
		cancel()
		_, _, err := s.Wait(ctx, ids, 1, 0)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// rolling wait: repeatedly take the first completed future out of the
// working set and replace it with a fresh one. Terminates after exactly as
// many iterations as there are initial futures, and no future is ever seen
// ready twice.
func TestWaitRolling(t *testing.T) {
	s := New(log.DiscardLogger)

	outstanding := make([]ObjectID, 10)
	for i := range outstanding {
		outstanding[i] = s.Allocate()
		require.NoError(t, s.Put(outstanding[i], i))
	}

	seen := make(map[ObjectID]bool)
	for iteration := 0; iteration < 10; iteration++ {
		ready, remaining, err := s.Wait(context.TODO(), outstanding, 1, 0)
		require.NoError(t, err)
		require.Len(t, ready, 1)
		require.Len(t, remaining, 9)

		require.False(t, seen[ready[0]], "future appeared ready twice")
		seen[ready[0]] = true

		replacement := s.Allocate()
		outstanding = append(remaining, replacement)
	}

	assert.Len(t, seen, 10)
}
