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

// Package registry holds the explicit mapping between names and the opaque
// callables the runtime executes. Task bodies and actor types are registered
// up front; the runtime never reflects on user code.
package registry

import (
	"context"
	goerrors "errors"
	"strings"

	gerrors "github.com/tochemey/goray/errors"
	"github.com/tochemey/goray/internal/syncmap"
)

// Func is the opaque body of a free task. The runtime resolves any argument
// object ids to their materialized values before invoking it.
type Func func(ctx context.Context, args []any) (any, error)

// Factory constructs the initial state of an actor. The returned state is
// exclusively owned by the actor's slot; the runtime never introspects it.
type Factory func(ctx context.Context, args []any) (any, error)

// Method is the opaque body of an actor method. It receives the actor state
// and may mutate it freely; only one method runs on a given actor at a time.
type Method func(ctx context.Context, state any, args []any) (any, error)

// ActorType describes a registered actor: its constructor and its method table.
type ActorType struct {
	name    string
	factory Factory
	methods map[string]Method
}

// Name returns the registered name of the actor type.
func (a *ActorType) Name() string {
	return a.name
}

// Factory returns the actor constructor.
func (a *ActorType) Factory() Factory {
	return a.factory
}

// Method returns the named method of the actor type.
func (a *ActorType) Method(name string) (Method, error) {
	method, ok := a.methods[name]
	if !ok {
		return nil, gerrors.NewErrUnknownMethod(a.name, name)
	}
	return method, nil
}

// Registry holds the registered task functions and actor types.
// All methods are safe for concurrent use.
type Registry struct {
	funcs  *syncmap.SyncMap[string, Func]
	actors *syncmap.SyncMap[string, *ActorType]
}

// New creates a new callables registry
func New() *Registry {
	return &Registry{
		funcs:  syncmap.New[string, Func](),
		actors: syncmap.New[string, *ActorType](),
	}
}

// RegisterFunc registers a task function under the given name.
// Registering an empty name or a nil function fails with ErrInvalidArgument;
// registering a taken name fails with ErrAlreadyRegistered.
func (r *Registry) RegisterFunc(name string, fn Func) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return gerrors.NewErrInvalidArgument(goerrors.New("function name and body are required"))
	}
	if !r.funcs.SetIfAbsent(name, fn) {
		return gerrors.NewErrAlreadyRegistered(name)
	}
	return nil
}

// Func returns the task function registered under the given name.
func (r *Registry) Func(name string) (Func, error) {
	fn, ok := r.funcs.Get(name)
	if !ok {
		return nil, gerrors.NewErrUnknownFunction(name)
	}
	return fn, nil
}

// RegisterActor registers an actor type with its constructor and method table.
// The method table is copied; later mutations of the argument map have no effect.
func (r *Registry) RegisterActor(name string, factory Factory, methods map[string]Method) error {
	if strings.TrimSpace(name) == "" || factory == nil {
		return gerrors.NewErrInvalidArgument(goerrors.New("actor type name and factory are required"))
	}
	for method, body := range methods {
		if strings.TrimSpace(method) == "" || body == nil {
			return gerrors.NewErrInvalidArgument(goerrors.New("actor methods require a name and a body"))
		}
	}

	table := make(map[string]Method, len(methods))
	for method, body := range methods {
		table[method] = body
	}

	actorType := &ActorType{
		name:    name,
		factory: factory,
		methods: table,
	}
	if !r.actors.SetIfAbsent(name, actorType) {
		return gerrors.NewErrAlreadyRegistered(name)
	}
	return nil
}

// Actor returns the actor type registered under the given name.
func (r *Registry) Actor(name string) (*ActorType, error) {
	actorType, ok := r.actors.Get(name)
	if !ok {
		return nil, gerrors.NewErrUnknownActorType(name)
	}
	return actorType, nil
}
