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

// Package runtime implements a single-node task and actor scheduling core.
// Drivers register plain Go functions and actor types, submit invocations
// that return futures immediately, and resolve those futures with Get or
// Wait. Free tasks run in parallel across a fixed worker pool as soon as
// their arguments are published; actors reserve one worker and execute their
// methods serially on it.
package runtime

import (
	"context"
	goerrors "errors"
	goruntime "runtime"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/goray/errors"
	"github.com/tochemey/goray/log"
	"github.com/tochemey/goray/registry"
	"github.com/tochemey/goray/store"
)

// Runtime is the driver-facing entry point. Create one with New, Start it,
// submit work, Stop it. All methods are safe for concurrent use. Submit,
// Put, Spawn and Call return without waiting for execution; only Get and
// Wait suspend the caller.
type Runtime struct {
	numWorkers      int
	workerCapacity  Resources
	shutdownTimeout time.Duration
	logger          log.Logger

	registry  *registry.Registry
	store     *store.Store
	workers   []*worker
	scheduler *scheduler

	doneCh    chan completion
	stopCh    chan struct{}
	runCtx    context.Context
	runCancel context.CancelFunc

	startMu sync.Mutex
	started *atomic.Bool
	stopped *atomic.Bool

	slotsMu sync.Mutex
	slots   []*actorSlot

	workerWg sync.WaitGroup
	slotWg   sync.WaitGroup
}

// New creates a Runtime with the given options. The registry is usable right
// away; the pool does not exist until Start.
func New(opts ...Option) (*Runtime, error) {
	rt := &Runtime{
		numWorkers:     goruntime.NumCPU(),
		workerCapacity: Resources{CPU: 1},
		logger:         log.DefaultLogger,
		registry:       registry.New(),
		started:        atomic.NewBool(false),
		stopped:        atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt.Apply(rt)
	}
	if rt.numWorkers <= 0 {
		return nil, gerrors.NewErrInvalidArgument(goerrors.New("worker count must be positive"))
	}
	if rt.workerCapacity.CPU == 0 && rt.workerCapacity.GPU == 0 {
		return nil, gerrors.NewErrInvalidArgument(goerrors.New("worker capacity must not be empty"))
	}
	if rt.logger == nil {
		rt.logger = log.DiscardLogger
	}
	rt.store = store.New(rt.logger)
	return rt, nil
}

// RegisterFunc registers a named task function. Registration must happen
// before the first Submit of that name; registering a name twice fails with
// ErrAlreadyRegistered.
func (rt *Runtime) RegisterFunc(name string, fn registry.Func) error {
	return rt.registry.RegisterFunc(name, fn)
}

// RegisterActor registers a named actor type with its constructor and method
// table.
func (rt *Runtime) RegisterActor(name string, factory registry.Factory, methods map[string]registry.Method) error {
	return rt.registry.RegisterActor(name, factory, methods)
}

// Start brings up the worker pool and the scheduler.
func (rt *Runtime) Start(ctx context.Context) error {
	rt.startMu.Lock()
	defer rt.startMu.Unlock()
	if rt.started.Load() {
		return gerrors.ErrRuntimeAlreadyStarted
	}

	rt.runCtx, rt.runCancel = context.WithCancel(context.WithoutCancel(ctx))
	rt.stopCh = make(chan struct{})
	// buffered so a worker finishing during shutdown never blocks on a
	// scheduler that already exited
	rt.doneCh = make(chan completion, rt.numWorkers)

	rt.workers = make([]*worker, rt.numWorkers)
	for i := range rt.workers {
		rt.workers[i] = newWorker(i, rt.workerCapacity, rt.doneCh, rt.stopCh, rt.store, rt.registry, rt.logger)
	}
	rt.scheduler = newScheduler(rt.workers, rt.doneCh, rt.store, rt.logger)

	for _, w := range rt.workers {
		rt.workerWg.Add(1)
		go func(w *worker) {
			defer rt.workerWg.Done()
			w.run(rt.runCtx)
		}(w)
	}
	rt.workerWg.Add(1)
	go func() {
		defer rt.workerWg.Done()
		rt.scheduler.run()
	}()

	// only flipped once the pool is fully built, so a Submit or Spawn racing
	// Start never observes a half-constructed runtime
	rt.started.Store(true)
	rt.logger.Infof("runtime started: workers=(%d) capacity=(%s)", rt.numWorkers, rt.workerCapacity.String())
	return nil
}

// Stop drains the runtime: actors are released and finish their queued
// methods, queued free tasks fail with ErrRuntimeStopped, running tasks get
// until the shutdown timeout to finish. Stop is idempotent.
func (rt *Runtime) Stop(ctx context.Context) error {
	if !rt.started.Load() {
		return gerrors.ErrRuntimeNotStarted
	}
	if !rt.stopped.CompareAndSwap(false, true) {
		return nil
	}
	rt.logger.Info("runtime stopping")

	drainCtx := ctx
	if rt.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		drainCtx, cancel = context.WithTimeout(ctx, rt.shutdownTimeout)
		defer cancel()
	}

	rt.slotsMu.Lock()
	slots := make([]*actorSlot, len(rt.slots))
	copy(slots, rt.slots)
	rt.slotsMu.Unlock()

	var releases errgroup.Group
	for _, slot := range slots {
		slot := slot
		releases.Go(func() error {
			return slot.release(drainCtx)
		})
	}
	err := releases.Wait()

	close(rt.scheduler.stopCh)
	<-rt.scheduler.stopped
	close(rt.stopCh)

	done := make(chan struct{})
	go func() {
		rt.workerWg.Wait()
		rt.slotWg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-drainCtx.Done():
		err = multierr.Append(err, drainCtx.Err())
		rt.runCancel()
		<-done
	}
	rt.runCancel()

	rt.logger.Info("runtime stopped")
	return err
}

// Submit schedules one invocation of a registered function with the default
// request of one CPU. It returns the future of the result immediately.
func (rt *Runtime) Submit(ctx context.Context, function string, args ...any) (store.ObjectID, error) {
	return rt.SubmitWithResources(ctx, function, Resources{CPU: 1}, args...)
}

// SubmitWithResources schedules one invocation with an explicit resource
// request. Arguments may be ObjectIDs of earlier results; the task stays
// pending until all of them are published and is dispatched as soon as a
// fitting worker is free. A request no worker can ever satisfy fails
// immediately with ErrInfeasibleResourceRequest.
func (rt *Runtime) SubmitWithResources(ctx context.Context, function string, resources Resources, args ...any) (store.ObjectID, error) {
	if err := rt.ensureStarted(); err != nil {
		return "", err
	}
	if _, err := rt.registry.Func(function); err != nil {
		return "", err
	}
	if err := rt.checkFeasible(resources); err != nil {
		return "", err
	}
	if err := validateArgs(rt.store, args); err != nil {
		return "", err
	}

	id := rt.store.Allocate()
	t := &task{id: id, function: function, args: args, resources: resources}
	select {
	case rt.scheduler.submitCh <- t:
		return id, nil
	case <-rt.scheduler.stopped:
		rt.failUnscheduled(id, gerrors.ErrRuntimeStopped)
		return "", gerrors.ErrRuntimeStopped
	case <-ctx.Done():
		rt.failUnscheduled(id, ctx.Err())
		return "", ctx.Err()
	}
}

// Put publishes a driver-side value and returns its id, usable as an
// argument to later submissions.
func (rt *Runtime) Put(value any) (store.ObjectID, error) {
	if err := rt.ensureStarted(); err != nil {
		return "", err
	}
	id := rt.store.Allocate()
	if err := rt.store.Put(id, value); err != nil {
		return "", err
	}
	return id, nil
}

// Get blocks until the object is published and returns its value, or the
// error it failed with. Get never consumes the object; any number of callers
// may get the same id.
func (rt *Runtime) Get(ctx context.Context, id store.ObjectID) (any, error) {
	if !rt.started.Load() {
		return nil, gerrors.ErrRuntimeNotStarted
	}
	return rt.store.Get(ctx, id)
}

// Wait blocks until at least numReturns of the ids are published or the
// timeout elapses. See store.Store.Wait for the partition contract.
func (rt *Runtime) Wait(ctx context.Context, ids []store.ObjectID, numReturns int, timeout time.Duration) (ready []store.ObjectID, remaining []store.ObjectID, err error) {
	if !rt.started.Load() {
		return nil, nil, gerrors.ErrRuntimeNotStarted
	}
	return rt.store.Wait(ctx, ids, numReturns, timeout)
}

// Spawn creates one actor instance of a registered type and returns its
// handle immediately. The constructor runs on the reserved worker as soon as
// the scheduler can place the reservation; a constructor failure terminates
// the slot and every call on the handle fails with ErrActorInitFailed.
func (rt *Runtime) Spawn(ctx context.Context, actorType string, args []any, opts ...SpawnOption) (*ActorHandle, error) {
	if err := rt.ensureStarted(); err != nil {
		return nil, err
	}
	kind, err := rt.registry.Actor(actorType)
	if err != nil {
		return nil, err
	}
	config := newSpawnConfig(opts...)
	if err := rt.checkFeasible(config.resources); err != nil {
		return nil, err
	}
	if err := validateArgs(rt.store, args); err != nil {
		return nil, err
	}

	slot := newActorSlot(kind, args, config.resources, config.mailbox, rt.scheduler.freedCh, rt.stopCh, rt.store, rt.logger)
	rt.slotsMu.Lock()
	rt.slots = append(rt.slots, slot)
	rt.slotsMu.Unlock()

	rt.slotWg.Add(1)
	go func() {
		defer rt.slotWg.Done()
		slot.run()
	}()

	select {
	case rt.scheduler.spawnCh <- slot:
		return &ActorHandle{slot: slot, runtime: rt}, nil
	case <-rt.scheduler.stopped:
		return nil, gerrors.ErrRuntimeStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// NumWorkers returns the size of the worker pool.
func (rt *Runtime) NumWorkers() int {
	return rt.numWorkers
}

// Store returns the object store backing the runtime.
func (rt *Runtime) Store() *store.Store {
	return rt.store
}

// Registry returns the callable registry backing the runtime.
func (rt *Runtime) Registry() *registry.Registry {
	return rt.registry
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() log.Logger {
	return rt.logger
}

func (rt *Runtime) ensureStarted() error {
	if !rt.started.Load() {
		return gerrors.ErrRuntimeNotStarted
	}
	if rt.stopped.Load() {
		return gerrors.ErrRuntimeStopped
	}
	return nil
}

// checkFeasible rejects requests the pool can never satisfy. A task occupies
// exactly one worker, so a request larger than one worker's capacity would
// wait forever even when it fits the pool total.
func (rt *Runtime) checkFeasible(resources Resources) error {
	if !resources.Fits(rt.workerCapacity) {
		return gerrors.NewErrInfeasibleResourceRequest(resources.CPU, resources.GPU, rt.workerCapacity.CPU, rt.workerCapacity.GPU)
	}
	return nil
}

func (rt *Runtime) failUnscheduled(id store.ObjectID, cause error) {
	if err := rt.store.Fail(id, cause); err != nil {
		rt.logger.Errorf("failed to fail unscheduled task=(%s): %v", id, err)
	}
}

// validateArgs rejects argument ObjectIDs that were never allocated by this
// runtime's store.
func validateArgs(objects *store.Store, args []any) error {
	for _, arg := range args {
		if id, ok := arg.(store.ObjectID); ok && !objects.Contains(id) {
			return gerrors.NewErrUnknownObject(id.String())
		}
	}
	return nil
}
