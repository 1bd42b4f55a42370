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
	"sort"
	"time"

	goset "github.com/deckarep/golang-set/v2"

	gerrors "github.com/tochemey/goray/errors"
)

// Wait blocks the caller until at least numReturns of the targets are
// published or the timeout elapses. It returns the first numReturns published
// ids in completion order (first completed first) and the rest in remaining,
// preserving the input order of targets. A timeout of zero or less means
// no timeout. On timeout ready may hold fewer than numReturns ids; that is
// not an error.
//
// The union of ready and remaining always equals targets. A Failed entry
// counts as published; Get on its id surfaces the failure.
func (s *Store) Wait(ctx context.Context, targets []ObjectID, numReturns int, timeout time.Duration) (ready []ObjectID, remaining []ObjectID, err error) {
	if numReturns < 0 || numReturns > len(targets) {
		return nil, nil, gerrors.NewErrInvalidArgument(goerrors.New("numReturns must be between 0 and the number of targets"))
	}

	targetSet := goset.NewSet(targets...)
	if targetSet.Cardinality() != len(targets) {
		return nil, nil, gerrors.NewErrInvalidArgument(goerrors.New("duplicate wait targets"))
	}

	for _, id := range targets {
		if !s.Contains(id) {
			return nil, nil, gerrors.NewErrUnknownObject(id.String())
		}
	}

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	watcher := s.AddWatcher()
	defer s.RemoveWatcher(watcher)

	for {
		ready = s.published(targets)
		if len(ready) >= numReturns {
			return s.partition(targets, ready[:numReturns])
		}

		select {
		case <-watcher:
		case <-deadline:
			ready = s.published(targets)
			if len(ready) > numReturns {
				ready = ready[:numReturns]
			}
			return s.partition(targets, ready)
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
}

// published returns the subset of targets already published, ordered by
// completion sequence.
func (s *Store) published(targets []ObjectID) []ObjectID {
	ready := make([]ObjectID, 0, len(targets))
	for _, id := range targets {
		if s.IsReady(id) {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		return s.Sequence(ready[i]) < s.Sequence(ready[j])
	})
	return ready
}

// partition splits targets into the given ready ids and the remaining ones,
// the latter in input order.
func (s *Store) partition(targets, ready []ObjectID) ([]ObjectID, []ObjectID, error) {
	readySet := goset.NewSet(ready...)
	remaining := make([]ObjectID, 0, len(targets)-len(ready))
	for _, id := range targets {
		if !readySet.Contains(id) {
			remaining = append(remaining, id)
		}
	}
	return ready, remaining, nil
}
