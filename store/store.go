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

// Package store implements the shared object store backing the runtime's
// futures. Every entry transitions at most once, Empty to Ready or Failed,
// so readers only synchronize on the entry's done channel.
package store

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	gerrors "github.com/tochemey/goray/errors"
	"github.com/tochemey/goray/log"
)

// entryState tracks the single Empty->Ready|Failed transition of an entry.
type entryState int32

const (
	stateEmpty entryState = iota
	stateReady
	stateFailed
)

// entry holds one materialized (or pending) value. The done channel is
// closed exactly once, atomically with the value/err assignment under the
// store lock, so concurrent Get and Wait observers never see a partial publish.
type entry struct {
	state entryState
	value any
	err   error
	seq   uint64
	done  chan struct{}
}

// Store is the content-addressed holder of materialized values, keyed by
// object id. It is the only structure in the runtime mutated by multiple
// workers concurrently.
type Store struct {
	mu       sync.RWMutex
	entries  map[ObjectID]*entry
	watchers map[chan struct{}]struct{}
	seq      *atomic.Uint64
	logger   log.Logger
}

// New creates an instance of Store
func New(logger log.Logger) *Store {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Store{
		entries:  make(map[ObjectID]*entry),
		watchers: make(map[chan struct{}]struct{}),
		seq:      atomic.NewUint64(0),
		logger:   logger,
	}
}

// Allocate reserves a new, Empty object id. The producing task publishes
// into it later with Put or Fail.
func (s *Store) Allocate() ObjectID {
	id := NewObjectID()
	s.mu.Lock()
	s.entries[id] = &entry{
		state: stateEmpty,
		done:  make(chan struct{}),
	}
	s.mu.Unlock()
	return id
}

// Put transitions the entry from Empty to Ready exactly once and records the
// value. It fails with ErrDuplicateWrite when the entry was already published
// and ErrUnknownObject when the id was never allocated. Completion wakes
// every blocked Get and registered watcher.
func (s *Store) Put(id ObjectID, value any) error {
	return s.publish(id, value, nil)
}

// Fail transitions the entry from Empty to Failed exactly once and records
// the error. Get re-raises the error to every caller; Wait still counts the
// entry as done.
func (s *Store) Fail(id ObjectID, cause error) error {
	return s.publish(id, nil, cause)
}

func (s *Store) publish(id ObjectID, value any, cause error) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return gerrors.NewErrUnknownObject(id.String())
	}
	if entry.state != stateEmpty {
		s.mu.Unlock()
		return gerrors.NewErrDuplicateWrite(id.String())
	}

	entry.value = value
	entry.err = cause
	entry.seq = s.seq.Inc()
	entry.state = stateReady
	if cause != nil {
		entry.state = stateFailed
	}
	// closing under the lock makes the publish atomic for Get/Wait observers
	close(entry.done)
	s.mu.Unlock()

	s.notifyWatchers()
	return nil
}

// Get blocks the caller until the entry is Ready, then returns its value.
// A Failed entry re-raises the recorded error. Get never consumes the entry;
// repeated calls return the same value.
func (s *Store) Get(ctx context.Context, id ObjectID) (any, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, gerrors.NewErrUnknownObject(id.String())
	}

	select {
	case <-entry.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if entry.err != nil {
		return nil, entry.err
	}
	return entry.value, nil
}

// IsReady reports whether the entry has been published. A Failed entry
// counts as ready. The check never blocks.
func (s *Store) IsReady(id ObjectID) bool {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	select {
	case <-entry.done:
		return true
	default:
		return false
	}
}

// Done returns the channel closed when the entry is published. Schedulers
// select on it to learn about dependency readiness.
func (s *Store) Done(id ObjectID) (<-chan struct{}, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, gerrors.NewErrUnknownObject(id.String())
	}
	return entry.done, nil
}

// Sequence returns the completion sequence number of the entry, and zero
// while the entry is still Empty. Sequence numbers order published entries
// by true completion time.
func (s *Store) Sequence(id ObjectID) uint64 {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || !isClosed(entry.done) {
		return 0
	}
	return entry.seq
}

// Contains reports whether the id was allocated by this store.
func (s *Store) Contains(id ObjectID) bool {
	s.mu.RLock()
	_, ok := s.entries[id]
	s.mu.RUnlock()
	return ok
}

// Len returns the number of allocated entries.
func (s *Store) Len() int {
	s.mu.RLock()
	l := len(s.entries)
	s.mu.RUnlock()
	return l
}

// AddWatcher registers a wake-up channel signaled after every publish.
// The channel has a one-slot buffer; coalesced signals are expected and the
// receiver must re-scan whatever it is waiting on.
func (s *Store) AddWatcher() chan struct{} {
	watcher := make(chan struct{}, 1)
	s.mu.Lock()
	s.watchers[watcher] = struct{}{}
	s.mu.Unlock()
	return watcher
}

// RemoveWatcher deregisters a watcher previously returned by AddWatcher.
func (s *Store) RemoveWatcher(watcher chan struct{}) {
	s.mu.Lock()
	delete(s.watchers, watcher)
	s.mu.Unlock()
}

func (s *Store) notifyWatchers() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for watcher := range s.watchers {
		select {
		case watcher <- struct{}{}:
		default:
		}
	}
}

func isClosed(done chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
