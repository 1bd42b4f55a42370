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
	"time"

	"github.com/tochemey/goray/log"
)

// Option is the interface that applies a configuration option to the Runtime.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(rt *Runtime)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(rt *Runtime)

// Apply applies the options to the Runtime.
func (f OptionFunc) Apply(rt *Runtime) {
	f(rt)
}

// WithWorkers sets the number of workers in the pool. The default is the
// number of CPUs reported by the Go runtime.
func WithWorkers(n int) Option {
	return OptionFunc(func(rt *Runtime) {
		rt.numWorkers = n
	})
}

// WithWorkerResources sets the capacity of every worker in the pool. The
// default is one CPU and no GPU per worker.
func WithWorkerResources(capacity Resources) Option {
	return OptionFunc(func(rt *Runtime) {
		rt.workerCapacity = capacity
	})
}

// WithLogger sets the runtime logger.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(rt *Runtime) {
		rt.logger = logger
	})
}

// WithShutdownTimeout bounds how long Stop waits for running tasks and
// draining actors before canceling whatever is left. Zero means no bound.
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(rt *Runtime) {
		rt.shutdownTimeout = timeout
	})
}

// spawnConfig carries the per-actor settings of one Spawn call.
type spawnConfig struct {
	resources Resources
	mailbox   Mailbox
}

func newSpawnConfig(opts ...SpawnOption) *spawnConfig {
	config := &spawnConfig{
		resources: Resources{CPU: 1},
		mailbox:   NewUnboundedMailbox(),
	}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// SpawnOption is the interface that applies a configuration option to a
// Spawn call.
type SpawnOption interface {
	// Apply sets the Option value of a config.
	Apply(config *spawnConfig)
}

var _ SpawnOption = spawnOption(nil)

type spawnOption func(config *spawnConfig)

func (f spawnOption) Apply(config *spawnConfig) {
	f(config)
}

// WithActorResources sets the capacity the actor reserves on its worker for
// its whole lifetime. The default is one CPU and no GPU.
func WithActorResources(resources Resources) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.resources = resources
	})
}

// WithMailbox sets the actor mailbox. The default is the unbounded MPSC
// mailbox; pass NewBoundedMailbox to put backpressure on callers.
func WithMailbox(mailbox Mailbox) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.mailbox = mailbox
	})
}
