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
	"github.com/tochemey/goray/store"
)

// task is the immutable description of one remote invocation. Its id is the
// id of its future result, minted at submission time. A task with a slot is
// an actor-method (or constructor) task pinned to that slot's worker; any
// other task is free and runs on whichever worker the scheduler picks.
type task struct {
	id        store.ObjectID
	function  string
	method    string
	args      []any
	resources Resources
	slot      *actorSlot
	ctor      bool
}

// deps returns the object ids among the task arguments. The scheduler holds
// a free task back until every one of them is published.
func (t *task) deps() []store.ObjectID {
	var deps []store.ObjectID
	for _, arg := range t.args {
		if id, ok := arg.(store.ObjectID); ok {
			deps = append(deps, id)
		}
	}
	return deps
}
