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

	"github.com/google/uuid"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/goray/errors"
	"github.com/tochemey/goray/log"
	"github.com/tochemey/goray/registry"
	"github.com/tochemey/goray/store"
)

// slot phases. The order matters: a phase only ever moves forward.
const (
	slotCreating int32 = iota
	slotIdle
	slotBusy
	slotDraining
	slotTerminated
)

// actorSlot binds one actor instance to one reserved worker for the slot's
// whole lifetime. The slot loop is the only mailbox consumer, which is what
// serializes method execution: methods run one at a time, in the order their
// Call enqueued them, all on the reserved worker.
type actorSlot struct {
	id        string
	actorType *registry.ActorType
	resources Resources

	ctorID   store.ObjectID
	ctorArgs []any
	state    any
	initErr  error

	mailbox      Mailbox
	notifyCh     chan struct{}
	workerCh     chan *worker
	completionCh chan *task

	phase       *atomic.Int32
	termCause   error
	terminated  chan struct{}
	releaseOnce sync.Once
	failMu      sync.Mutex

	freedCh chan<- int
	stopCh  <-chan struct{}
	store   *store.Store
	logger  log.Logger
}

func newActorSlot(actorType *registry.ActorType, ctorArgs []any, resources Resources, mailbox Mailbox, freedCh chan<- int, stopCh <-chan struct{}, objects *store.Store, logger log.Logger) *actorSlot {
	return &actorSlot{
		id:           uuid.NewString(),
		actorType:    actorType,
		resources:    resources,
		ctorID:       objects.Allocate(),
		ctorArgs:     ctorArgs,
		mailbox:      mailbox,
		notifyCh:     make(chan struct{}, 1),
		workerCh:     make(chan *worker, 1),
		completionCh: make(chan *task, 1),
		phase:        atomic.NewInt32(slotCreating),
		terminated:   make(chan struct{}),
		freedCh:      freedCh,
		stopCh:       stopCh,
		store:        objects,
		logger:       logger,
	}
}

// run is the slot loop. It waits for the scheduler to hand over a reserved
// worker, runs the constructor on it, then feeds the mailbox to the worker
// one task at a time until the slot drains or the runtime stops.
func (slot *actorSlot) run() {
	var w *worker
	select {
	case w = <-slot.workerCh:
	case <-slot.stopCh:
		// the constructor never ran; its future must not stay empty
		if err := slot.store.Fail(slot.ctorID, gerrors.ErrRuntimeStopped); err != nil && !goerrors.Is(err, gerrors.ErrDuplicateWrite) {
			slot.logger.Errorf("actor=(%s) failed to fail constructor=(%s): %v", slot.id, slot.ctorID, err)
		}
		slot.terminate(nil, gerrors.ErrRuntimeStopped)
		return
	}

	ctor := &task{id: slot.ctorID, args: slot.ctorArgs, resources: slot.resources, slot: slot, ctor: true}
	if !slot.dispatch(w, ctor) {
		slot.terminate(w, gerrors.ErrRuntimeStopped)
		return
	}
	if slot.initErr != nil {
		slot.terminate(w, slot.initErr)
		return
	}
	// a Release during construction wins the race and moves straight to draining
	slot.phase.CompareAndSwap(slotCreating, slotIdle)

	for {
		if !slot.drainMailbox(w) {
			slot.terminate(w, gerrors.ErrRuntimeStopped)
			return
		}
		if slot.phase.Load() == slotDraining && slot.mailbox.IsEmpty() {
			slot.terminate(w, gerrors.ErrActorTerminated)
			return
		}
		select {
		case <-slot.notifyCh:
		case <-slot.stopCh:
			slot.terminate(w, gerrors.ErrRuntimeStopped)
			return
		}
	}
}

// dispatch hands one task to the reserved worker and waits for its
// completion. It reports false when the worker pool shut down before the
// worker could take the task; the task is failed with ErrRuntimeStopped and
// the slot must terminate. Once the worker has taken the task, completion is
// guaranteed: a worker always finishes the task in hand before exiting.
func (slot *actorSlot) dispatch(w *worker, t *task) bool {
	select {
	case w.taskCh <- t:
	case <-slot.stopCh:
		if err := slot.store.Fail(t.id, gerrors.ErrRuntimeStopped); err != nil && !goerrors.Is(err, gerrors.ErrDuplicateWrite) {
			slot.logger.Errorf("actor=(%s) failed to fail task=(%s) on stop: %v", slot.id, t.id, err)
		}
		return false
	}
	<-slot.completionCh
	return true
}

// drainMailbox runs queued methods on the reserved worker until the mailbox
// is empty. Strictly one at a time; the slot blocks on the completion of each
// before dequeuing the next. It reports false when the runtime stopped
// mid-drain.
func (slot *actorSlot) drainMailbox(w *worker) bool {
	for {
		t := slot.mailbox.Dequeue()
		if t == nil {
			return true
		}
		slot.phase.CompareAndSwap(slotIdle, slotBusy)
		if !slot.dispatch(w, t) {
			return false
		}
		slot.phase.CompareAndSwap(slotBusy, slotIdle)
	}
}

// call mints a future for one method invocation and enqueues it. It never
// waits for execution. The post-enqueue phase check closes the race with a
// concurrent termination: whoever loses the race fails the leftovers.
func (slot *actorSlot) call(method string, args []any) (store.ObjectID, error) {
	if _, err := slot.actorType.Method(method); err != nil {
		return "", err
	}
	if slot.phase.Load() >= slotDraining {
		return "", slot.refusal()
	}

	id := slot.store.Allocate()
	t := &task{id: id, method: method, args: args, resources: slot.resources, slot: slot}
	if err := slot.mailbox.Enqueue(t); err != nil {
		if failErr := slot.store.Fail(id, err); failErr != nil {
			slot.logger.Errorf("actor=(%s) failed to fail call=(%s): %v", slot.id, id, failErr)
		}
		return "", err
	}
	slot.notify()

	if slot.phase.Load() == slotTerminated {
		slot.failLeftovers()
	}
	return id, nil
}

// refusal is the error a refused call gets: the constructor failure when
// there was one, ErrActorTerminated otherwise.
func (slot *actorSlot) refusal() error {
	if slot.initErr != nil {
		return slot.initErr
	}
	return gerrors.ErrActorTerminated
}

// release moves the slot to draining exactly once and waits until the slot
// loop has finished the queued work and returned the worker to the pool.
func (slot *actorSlot) release(ctx context.Context) error {
	slot.releaseOnce.Do(func() {
		for {
			phase := slot.phase.Load()
			if phase >= slotDraining {
				return
			}
			if slot.phase.CompareAndSwap(phase, slotDraining) {
				slot.notify()
				return
			}
		}
	})
	select {
	case <-slot.terminated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// terminate finalizes the slot: records the cause, fails whatever is still
// queued and gives the reserved worker back to the scheduler.
func (slot *actorSlot) terminate(w *worker, cause error) {
	slot.termCause = cause
	slot.phase.Store(slotTerminated)
	slot.failLeftovers()
	slot.mailbox.Dispose()
	if w != nil {
		slot.freedCh <- w.id
	}
	close(slot.terminated)
}

// failLeftovers fails every task still in the mailbox with the termination
// cause. Both the terminating slot loop and racing callers run it; the mutex
// and the duplicate-write tolerance make that safe.
func (slot *actorSlot) failLeftovers() {
	slot.failMu.Lock()
	defer slot.failMu.Unlock()
	cause := slot.termCause
	if slot.initErr != nil {
		cause = slot.initErr
	}
	for {
		t := slot.mailbox.Dequeue()
		if t == nil {
			return
		}
		if err := slot.store.Fail(t.id, cause); err != nil && !goerrors.Is(err, gerrors.ErrDuplicateWrite) {
			slot.logger.Errorf("actor=(%s) failed to fail queued call=(%s): %v", slot.id, t.id, err)
		}
	}
}

func (slot *actorSlot) notify() {
	select {
	case slot.notifyCh <- struct{}{}:
	default:
	}
}

// ActorHandle is the driver-side reference to a spawned actor. Handles are
// safe for concurrent use; calls from multiple goroutines interleave at
// mailbox granularity and still execute one at a time.
type ActorHandle struct {
	slot    *actorSlot
	runtime *Runtime
}

// ID returns the unique id of the actor instance.
func (h *ActorHandle) ID() string {
	return h.slot.id
}

// Kind returns the registered actor type name.
func (h *ActorHandle) Kind() string {
	return h.slot.actorType.Name()
}

// Call enqueues one method invocation and returns the future of its result.
// It does not wait for execution; resolve the returned id with Get or Wait.
// Arguments may be ObjectIDs of earlier results; they are resolved before
// the method runs.
func (h *ActorHandle) Call(ctx context.Context, method string, args ...any) (store.ObjectID, error) {
	if err := h.runtime.ensureStarted(); err != nil {
		return "", err
	}
	if err := validateArgs(h.runtime.store, args); err != nil {
		return "", err
	}
	return h.slot.call(method, args)
}

// Release drains the actor and returns its worker to the scheduling pool.
// Queued methods still run; methods called after Release fail with
// ErrActorTerminated. Release is idempotent and blocks until the drain
// completes or ctx fires.
func (h *ActorHandle) Release(ctx context.Context) error {
	return h.slot.release(ctx)
}
