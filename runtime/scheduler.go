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
	gerrors "github.com/tochemey/goray/errors"
	"github.com/tochemey/goray/log"
	"github.com/tochemey/goray/store"
)

// scheduler is the single decision point of the runtime. It owns the free/busy
// state of every worker and runs as one event-loop goroutine, so no lock
// guards its queues. Free tasks wait in pending until their argument futures
// are published, then move to ready and are dispatched in submission order to
// the free worker with the lowest id whose capacity fits. Actor spawns
// reserve a worker the same way and hand it to the slot for exclusive use
// until the slot terminates and returns it through freedCh.
type scheduler struct {
	workers []*worker
	free    []bool

	pending []*task
	ready   []*task
	spawns  []*actorSlot

	submitCh chan *task
	spawnCh  chan *actorSlot
	freedCh  chan int
	doneCh   chan completion
	watcher  chan struct{}
	stopCh   chan struct{}
	stopped  chan struct{}

	store  *store.Store
	logger log.Logger
}

func newScheduler(workers []*worker, doneCh chan completion, objects *store.Store, logger log.Logger) *scheduler {
	free := make([]bool, len(workers))
	for i := range free {
		free[i] = true
	}
	return &scheduler{
		workers:  workers,
		free:     free,
		submitCh: make(chan *task),
		spawnCh:  make(chan *actorSlot),
		freedCh:  make(chan int, len(workers)),
		doneCh:   doneCh,
		watcher:  objects.AddWatcher(),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
		store:    objects,
		logger:   logger,
	}
}

// run is the scheduler event loop. Every state transition of the pool goes
// through here: submissions, spawns, publishes that may unblock pending
// tasks, completions and slot terminations that free workers.
func (s *scheduler) run() {
	defer close(s.stopped)
	defer s.store.RemoveWatcher(s.watcher)
	for {
		select {
		case <-s.stopCh:
			s.drain()
			return
		case t := <-s.submitCh:
			s.admit(t)
			s.dispatch()
		case slot := <-s.spawnCh:
			s.spawns = append(s.spawns, slot)
			s.dispatch()
		case id := <-s.freedCh:
			s.free[id] = true
			s.dispatch()
		case done := <-s.doneCh:
			s.free[done.workerID] = true
			s.dispatch()
		case <-s.watcher:
			s.promote()
			s.dispatch()
		}
	}
}

// admit routes a newly submitted free task to the ready queue when all of its
// argument futures are already published, to pending otherwise. A failed
// dependency still counts as published; the worker fails the task when it
// resolves the argument.
func (s *scheduler) admit(t *task) {
	for _, dep := range t.deps() {
		if !s.store.IsReady(dep) {
			s.pending = append(s.pending, t)
			return
		}
	}
	s.ready = append(s.ready, t)
}

// promote moves every pending task whose dependencies are now all published
// to the tail of the ready queue, keeping submission order among promoted
// tasks.
func (s *scheduler) promote() {
	remaining := s.pending[:0]
	for _, t := range s.pending {
		satisfied := true
		for _, dep := range t.deps() {
			if !s.store.IsReady(dep) {
				satisfied = false
				break
			}
		}
		if satisfied {
			s.ready = append(s.ready, t)
			continue
		}
		remaining = append(remaining, t)
	}
	s.pending = remaining
}

// dispatch assigns as much queued work as the free workers allow. Spawn
// requests are served before free tasks because a reservation shrinks the
// pool and deciding them first keeps placement deterministic.
func (s *scheduler) dispatch() {
	spawns := s.spawns[:0]
	for _, slot := range s.spawns {
		w := s.pick(slot.resources)
		if w == nil {
			spawns = append(spawns, slot)
			continue
		}
		s.free[w.id] = false
		slot.workerCh <- w
	}
	s.spawns = spawns

	ready := s.ready[:0]
	for _, t := range s.ready {
		w := s.pick(t.resources)
		if w == nil {
			ready = append(ready, t)
			continue
		}
		s.free[w.id] = false
		w.taskCh <- t
	}
	s.ready = ready
}

// pick returns the free worker with the lowest id whose capacity fits the
// request, or nil when none does.
func (s *scheduler) pick(req Resources) *worker {
	for _, w := range s.workers {
		if s.free[w.id] && req.Fits(w.capacity) {
			return w
		}
	}
	return nil
}

// drain fails everything still queued when the runtime stops. Tasks already
// running on a worker finish and publish normally.
func (s *scheduler) drain() {
	for _, t := range s.pending {
		s.failQueued(t)
	}
	for _, t := range s.ready {
		s.failQueued(t)
	}
	for _, slot := range s.spawns {
		if err := s.store.Fail(slot.ctorID, gerrors.ErrRuntimeStopped); err != nil {
			s.logger.Errorf("failed to fail spawn=(%s) on stop: %v", slot.ctorID, err)
		}
	}
	s.pending = nil
	s.ready = nil
	s.spawns = nil
}

func (s *scheduler) failQueued(t *task) {
	if err := s.store.Fail(t.id, gerrors.ErrRuntimeStopped); err != nil {
		s.logger.Errorf("failed to fail task=(%s) on stop: %v", t.id, err)
	}
}
