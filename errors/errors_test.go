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

package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapHelpers(t *testing.T) {
	t.Run("With invalid argument", func(t *testing.T) {
		cause := errors.New("numReturns out of range")
		err := NewErrInvalidArgument(cause)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.ErrorIs(t, err, cause)
	})
	t.Run("With duplicate write", func(t *testing.T) {
		err := NewErrDuplicateWrite("0bd7ba5c")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateWrite)
		assert.Contains(t, err.Error(), "0bd7ba5c")
	})
	t.Run("With unknown object", func(t *testing.T) {
		err := NewErrUnknownObject("0bd7ba5c")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownObject)
	})
	t.Run("With infeasible resource request", func(t *testing.T) {
		err := NewErrInfeasibleResourceRequest(4, 1, 2, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInfeasibleResourceRequest)
		assert.Contains(t, err.Error(), "requested=(cpu=4 gpu=1)")
	})
	t.Run("With task failed", func(t *testing.T) {
		cause := errors.New("division by zero")
		err := NewErrTaskFailed(cause)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTaskFailed)
		assert.ErrorIs(t, err, cause)
	})
	t.Run("With actor init failed", func(t *testing.T) {
		cause := errors.New("no such model")
		err := NewErrActorInitFailed(cause)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrActorInitFailed)
		assert.ErrorIs(t, err, cause)
	})
	t.Run("With unknown method", func(t *testing.T) {
		err := NewErrUnknownMethod("counter", "decrement")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownMethod)
		assert.Contains(t, err.Error(), "counter")
		assert.Contains(t, err.Error(), "decrement")
	})
	t.Run("With already registered", func(t *testing.T) {
		err := NewErrAlreadyRegistered("counter")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})
}

func TestPanicError(t *testing.T) {
	cause := errors.New("index out of range")
	err := NewPanicError(cause)
	require.Error(t, err)
	assert.EqualError(t, err, "panic: index out of range")
	assert.ErrorIs(t, err, cause)

	var panicErr *PanicError
	assert.True(t, errors.As(err, &panicErr))
}
