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
	"fmt"

	gerrors "github.com/tochemey/goray/errors"
	"github.com/tochemey/goray/log"
	"github.com/tochemey/goray/registry"
	"github.com/tochemey/goray/store"
)

// completion tells the scheduler a free task finished and its worker is idle
// again. Actor tasks report to their slot instead.
type completion struct {
	workerID int
	task     *task
}

// worker is one execution slot of the pool. It executes at most one task at
// a time regardless of task kind. A worker is either free (dispatched to by
// the scheduler) or reserved by an actor slot for that slot's lifetime.
type worker struct {
	id       int
	capacity Resources
	taskCh   chan *task
	doneCh   chan<- completion
	stopCh   <-chan struct{}
	store    *store.Store
	registry *registry.Registry
	logger   log.Logger
}

func newWorker(id int, capacity Resources, doneCh chan<- completion, stopCh <-chan struct{}, objects *store.Store, callables *registry.Registry, logger log.Logger) *worker {
	return &worker{
		id:       id,
		capacity: capacity,
		taskCh:   make(chan *task),
		doneCh:   doneCh,
		stopCh:   stopCh,
		store:    objects,
		registry: callables,
		logger:   logger,
	}
}

// run consumes tasks until the runtime stops. A task that is already
// executing always runs to completion; only the idle wait is interruptible.
func (w *worker) run(ctx context.Context) {
	for {
		select {
		case <-w.stopCh:
			return
		case t := <-w.taskCh:
			w.execute(ctx, t)
			if t.slot != nil {
				// the slot loop is blocked on this send
				t.slot.completionCh <- t
				continue
			}
			select {
			case w.doneCh <- completion{workerID: w.id, task: t}:
			case <-w.stopCh:
				return
			}
		}
	}
}

// execute resolves the task arguments, invokes the opaque body and publishes
// the outcome under the task's future id. A body failure or panic is
// isolated to that future; it never crashes the worker.
func (w *worker) execute(ctx context.Context, t *task) {
	args, err := w.resolveArgs(ctx, t)
	if err != nil {
		w.fail(t, err)
		return
	}

	result, err := w.invoke(ctx, t, args)
	if err != nil {
		w.fail(t, err)
		return
	}

	if t.ctor {
		t.slot.state = result
		result = nil
	}
	if putErr := w.store.Put(t.id, result); putErr != nil {
		w.logger.Errorf("worker=(%d) failed to publish result of task=(%s): %v", w.id, t.id, putErr)
	}
}

// resolveArgs replaces every ObjectID argument with its materialized value.
// A failed dependency fails the dependent task without invoking its body.
func (w *worker) resolveArgs(ctx context.Context, t *task) ([]any, error) {
	args := make([]any, len(t.args))
	for i, arg := range t.args {
		id, ok := arg.(store.ObjectID)
		if !ok {
			args[i] = arg
			continue
		}
		value, err := w.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("dependency=(%s) %w", id, err)
		}
		args[i] = value
	}
	return args, nil
}

// invoke runs the task body with panic isolation.
func (w *worker) invoke(ctx context.Context, t *task, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gerrors.NewPanicError(fmt.Errorf("%v", r))
		}
	}()

	switch {
	case t.ctor:
		return t.slot.actorType.Factory()(ctx, args)
	case t.slot != nil:
		method, merr := t.slot.actorType.Method(t.method)
		if merr != nil {
			return nil, merr
		}
		return method(ctx, t.slot.state, args)
	default:
		fn, ferr := w.registry.Func(t.function)
		if ferr != nil {
			return nil, ferr
		}
		return fn(ctx, args)
	}
}

func (w *worker) fail(t *task, cause error) {
	wrapped := gerrors.NewErrTaskFailed(cause)
	if t.ctor {
		wrapped = gerrors.NewErrActorInitFailed(cause)
		t.slot.initErr = wrapped
	}
	w.logger.Warnf("worker=(%d) task=(%s) failed: %v", w.id, t.id, cause)
	if failErr := w.store.Fail(t.id, wrapped); failErr != nil {
		w.logger.Errorf("worker=(%d) failed to record failure of task=(%s): %v", w.id, t.id, failErr)
	}
}
