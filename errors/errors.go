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
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a request is malformed and is rejected
	// synchronously before any state change.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateWrite is returned when a result is published twice for the same
	// object id. Entries transition Empty to Ready exactly once.
	ErrDuplicateWrite = errors.New("duplicate write")

	// ErrUnknownObject is returned when an object id was never allocated by the store.
	ErrUnknownObject = errors.New("unknown object")

	// ErrInfeasibleResourceRequest is returned at submission time when a task or
	// actor requests more of a resource than the cluster can ever provide. The
	// request is never enqueued.
	ErrInfeasibleResourceRequest = errors.New("infeasible resource request")

	// ErrTaskFailed indicates that the opaque task body returned an error or
	// panicked. The failure is recorded on the task's future; every Get on that
	// id surfaces it.
	ErrTaskFailed = errors.New("task execution failed")

	// ErrActorInitFailed indicates that an actor constructor failed. The actor
	// handle is permanently unusable and every pending and future call on it
	// fails the same way.
	ErrActorInitFailed = errors.New("actor initialization failed")

	// ErrActorTerminated is returned when a method call is made on an actor that
	// is draining or already terminated.
	ErrActorTerminated = errors.New("actor is terminated")

	// ErrUnknownFunction is returned when submitting a task whose function was
	// never registered.
	ErrUnknownFunction = errors.New("function is not registered")

	// ErrUnknownActorType is returned when spawning an actor whose type was never
	// registered.
	ErrUnknownActorType = errors.New("actor type is not registered")

	// ErrUnknownMethod is returned when calling a method the actor type does not
	// define.
	ErrUnknownMethod = errors.New("method is not registered")

	// ErrAlreadyRegistered is returned when registering a function or actor type
	// under a name that is already taken.
	ErrAlreadyRegistered = errors.New("name is already registered")

	// ErrMailboxFull is returned when a bounded actor mailbox has reached its
	// capacity.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrRuntimeNotStarted is returned when the runtime is used before Start or
	// after Stop.
	ErrRuntimeNotStarted = errors.New("runtime is not running")

	// ErrRuntimeAlreadyStarted is returned when Start is called on a running runtime.
	ErrRuntimeAlreadyStarted = errors.New("runtime has already started")

	// ErrRuntimeStopped is recorded on the futures of tasks that were still
	// queued when the runtime shut down.
	ErrRuntimeStopped = errors.New("runtime stopped before task ran")
)

// NewErrInvalidArgument wraps a base error with ErrInvalidArgument.
func NewErrInvalidArgument(err error) error {
	return errors.Join(ErrInvalidArgument, err)
}

// NewErrDuplicateWrite formats an ErrDuplicateWrite with the given object id.
func NewErrDuplicateWrite(id string) error {
	return fmt.Errorf("object=(%s) %w", id, ErrDuplicateWrite)
}

// NewErrUnknownObject formats an ErrUnknownObject with the given object id.
func NewErrUnknownObject(id string) error {
	return fmt.Errorf("object=(%s) %w", id, ErrUnknownObject)
}

// NewErrInfeasibleResourceRequest formats an ErrInfeasibleResourceRequest with
// the requested and available amounts.
func NewErrInfeasibleResourceRequest(cpu, gpu, maxCPU, maxGPU uint) error {
	return fmt.Errorf("requested=(cpu=%d gpu=%d) available=(cpu=%d gpu=%d) %w", cpu, gpu, maxCPU, maxGPU, ErrInfeasibleResourceRequest)
}

// NewErrTaskFailed wraps the task body error with ErrTaskFailed.
func NewErrTaskFailed(err error) error {
	return errors.Join(ErrTaskFailed, err)
}

// NewErrActorInitFailed wraps the constructor error with ErrActorInitFailed.
func NewErrActorInitFailed(err error) error {
	return errors.Join(ErrActorInitFailed, err)
}

// NewErrUnknownFunction formats an ErrUnknownFunction with the given name.
func NewErrUnknownFunction(name string) error {
	return fmt.Errorf("function=(%s) %w", name, ErrUnknownFunction)
}

// NewErrUnknownActorType formats an ErrUnknownActorType with the given name.
func NewErrUnknownActorType(name string) error {
	return fmt.Errorf("actor type=(%s) %w", name, ErrUnknownActorType)
}

// NewErrUnknownMethod formats an ErrUnknownMethod with the given actor type and method name.
func NewErrUnknownMethod(actorType, method string) error {
	return fmt.Errorf("actor type=(%s) method=(%s) %w", actorType, method, ErrUnknownMethod)
}

// NewErrAlreadyRegistered formats an ErrAlreadyRegistered with the given name.
func NewErrAlreadyRegistered(name string) error {
	return fmt.Errorf("name=(%s) %w", name, ErrAlreadyRegistered)
}

// PanicError wraps the value recovered from a panicking task body.
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}
