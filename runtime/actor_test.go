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
	"context"
	goerrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/goray/errors"
	"github.com/tochemey/goray/registry"
	"github.com/tochemey/goray/store"
)

// counter is the canonical stateful actor used across the tests.
type counter struct {
	value int
}

func registerCounter(t *testing.T, rt *Runtime) {
	t.Helper()
	require.NoError(t, rt.RegisterActor("counter",
		func(_ context.Context, args []any) (any, error) {
			c := new(counter)
			if len(args) > 0 {
				c.value = args[0].(int)
			}
			return c, nil
		},
		map[string]registry.Method{
			"increment": func(_ context.Context, state any, _ []any) (any, error) {
				c := state.(*counter)
				c.value++
				return c.value, nil
			},
			"get": func(_ context.Context, state any, _ []any) (any, error) {
				return state.(*counter).value, nil
			},
		}))
}

func TestSpawn(t *testing.T) {
	t.Run("With serialized state mutation", func(t *testing.T) {
		rt := newTestRuntime(t, WithWorkers(2))
		registerCounter(t, rt)

		handle, err := rt.Spawn(context.TODO(), "counter", nil)
		require.NoError(t, err)
		require.NotEmpty(t, handle.ID())
		require.Equal(t, "counter", handle.Kind())

		ids := make([]store.ObjectID, 5)
		for i := range ids {
			id, err := handle.Call(context.TODO(), "increment")
			require.NoError(t, err)
			ids[i] = id
		}

		results := make([]int, 5)
		for i, id := range ids {
			value, err := rt.Get(context.TODO(), id)
			require.NoError(t, err)
			results[i] = value.(int)
		}
		assert.Equal(t, []int{1, 2, 3, 4, 5}, results)
		assert.NoError(t, rt.Stop(context.TODO()))
	})
	t.Run("With constructor arguments", func(t *testing.T) {
		rt := newTestRuntime(t, WithWorkers(2))
		registerCounter(t, rt)

		handle, err := rt.Spawn(context.TODO(), "counter", []any{100})
		require.NoError(t, err)
		id, err := handle.Call(context.TODO(), "get")
		require.NoError(t, err)
		value, err := rt.Get(context.TODO(), id)
		require.NoError(t, err)
		assert.Equal(t, 100, value)
		assert.NoError(t, rt.Stop(context.TODO()))
	})
	t.Run("With two actors overlapping in time", func(t *testing.T) {
		rt := newTestRuntime(t, WithWorkers(2))
		// both methods block on the same barrier; the test only finishes
		// if the two actors execute at the same time on distinct workers
		var barrier sync.WaitGroup
		barrier.Add(2)
		require.NoError(t, rt.RegisterActor("meeter",
			func(context.Context, []any) (any, error) { return struct{}{}, nil },
			map[string]registry.Method{
				"meet": func(context.Context, any, []any) (any, error) {
					barrier.Done()
					barrier.Wait()
					return nil, nil
				},
			}))

		first, err := rt.Spawn(context.TODO(), "meeter", nil)
		require.NoError(t, err)
		second, err := rt.Spawn(context.TODO(), "meeter", nil)
		require.NoError(t, err)

		one, err := first.Call(context.TODO(), "meet")
		require.NoError(t, err)
		two, err := second.Call(context.TODO(), "meet")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err = rt.Get(ctx, one)
		require.NoError(t, err)
		_, err = rt.Get(ctx, two)
		require.NoError(t, err)
		assert.NoError(t, rt.Stop(context.TODO()))
	})
	t.Run("With a failed constructor poisoning the handle", func(t *testing.T) {
		rt := newTestRuntime(t, WithWorkers(2))
		require.NoError(t, rt.RegisterActor("broken",
			func(context.Context, []any) (any, error) {
				return nil, goerrors.New("bad init")
			},
			map[string]registry.Method{
				"touch": func(context.Context, any, []any) (any, error) { return nil, nil },
			}))

		handle, err := rt.Spawn(context.TODO(), "broken", nil)
		require.NoError(t, err)

		// the slot terminates as soon as the constructor fails
		require.NoError(t, handle.Release(context.TODO()))
		_, err = handle.Call(context.TODO(), "touch")
		assert.ErrorIs(t, err, gerrors.ErrActorInitFailed)
		assert.NoError(t, rt.Stop(context.TODO()))
	})
	t.Run("With calls queued before a failed constructor failing the same way", func(t *testing.T) {
		rt := newTestRuntime(t, WithWorkers(2))
		release := make(chan struct{})
		require.NoError(t, rt.RegisterActor("slowBroken",
			func(context.Context, []any) (any, error) {
				<-release
				return nil, goerrors.New("bad init")
			},
			map[string]registry.Method{
				"touch": func(context.Context, any, []any) (any, error) { return nil, nil },
			}))

		handle, err := rt.Spawn(context.TODO(), "slowBroken", nil)
		require.NoError(t, err)
		queued, err := handle.Call(context.TODO(), "touch")
		require.NoError(t, err)
		close(release)

		_, err = rt.Get(context.TODO(), queued)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrActorInitFailed)
		assert.NoError(t, rt.Stop(context.TODO()))
	})
	t.Run("With release draining queued methods", func(t *testing.T) {
		rt := newTestRuntime(t, WithWorkers(2))
		registerCounter(t, rt)

		handle, err := rt.Spawn(context.TODO(), "counter", nil)
		require.NoError(t, err)
		ids := make([]store.ObjectID, 5)
		for i := range ids {
			id, err := handle.Call(context.TODO(), "increment")
			require.NoError(t, err)
			ids[i] = id
		}

		require.NoError(t, handle.Release(context.TODO()))
		for i, id := range ids {
			value, err := rt.Get(context.TODO(), id)
			require.NoError(t, err)
			assert.Equal(t, i+1, value)
		}

		_, err = handle.Call(context.TODO(), "increment")
		assert.ErrorIs(t, err, gerrors.ErrActorTerminated)
		// idempotent
		assert.NoError(t, handle.Release(context.TODO()))
		assert.NoError(t, rt.Stop(context.TODO()))
	})
	t.Run("With the released worker returned to the pool", func(t *testing.T) {
		rt := newTestRuntime(t, WithWorkers(1))
		registerCounter(t, rt)
		require.NoError(t, rt.RegisterFunc("noop", func(context.Context, []any) (any, error) { return nil, nil }))

		handle, err := rt.Spawn(context.TODO(), "counter", nil)
		require.NoError(t, err)
		// the single worker is reserved; this free task must wait for it
		id, err := rt.Submit(context.TODO(), "noop")
		require.NoError(t, err)
		require.NoError(t, handle.Release(context.TODO()))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err = rt.Get(ctx, id)
		require.NoError(t, err)
		assert.NoError(t, rt.Stop(context.TODO()))
	})
	t.Run("With an unknown actor type", func(t *testing.T) {
		rt := newTestRuntime(t, WithWorkers(1))
		_, err := rt.Spawn(context.TODO(), "missing", nil)
		assert.ErrorIs(t, err, gerrors.ErrUnknownActorType)
		assert.NoError(t, rt.Stop(context.TODO()))
	})
	t.Run("With an unknown method", func(t *testing.T) {
		rt := newTestRuntime(t, WithWorkers(2))
		registerCounter(t, rt)
		handle, err := rt.Spawn(context.TODO(), "counter", nil)
		require.NoError(t, err)
		_, err = handle.Call(context.TODO(), "missing")
		assert.ErrorIs(t, err, gerrors.ErrUnknownMethod)
		assert.NoError(t, rt.Stop(context.TODO()))
	})
	t.Run("With a full bounded mailbox rejecting the call", func(t *testing.T) {
		rt := newTestRuntime(t, WithWorkers(2))
		started := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		require.NoError(t, rt.RegisterActor("slow",
			func(context.Context, []any) (any, error) { return struct{}{}, nil },
			map[string]registry.Method{
				"work": func(context.Context, any, []any) (any, error) {
					once.Do(func() { close(started) })
					<-release
					return nil, nil
				},
			}))

		handle, err := rt.Spawn(context.TODO(), "slow", nil, WithMailbox(NewBoundedMailbox(1)))
		require.NoError(t, err)

		// first call is dequeued and blocks the slot
		blocker, err := handle.Call(context.TODO(), "work")
		require.NoError(t, err)
		<-started
		// second call fills the single mailbox seat
		queued, err := handle.Call(context.TODO(), "work")
		require.NoError(t, err)
		// third call is rejected
		_, err = handle.Call(context.TODO(), "work")
		require.ErrorIs(t, err, gerrors.ErrMailboxFull)

		close(release)
		_, err = rt.Get(context.TODO(), blocker)
		require.NoError(t, err)
		_, err = rt.Get(context.TODO(), queued)
		require.NoError(t, err)
		assert.NoError(t, rt.Stop(context.TODO()))
	})
}
