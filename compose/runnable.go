/*
 * Copyright 2025 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package compose

import (
	"context"
	"reflect"

	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/components"
	"github.com/cloudwego/lcel/schema"
)

// Runnable is the unit of composition.
// Values flow between runnables dynamically typed, each step asserts what it needs.
//
// Runnables implemented outside this package can rely on DefaultBatch, DefaultStream
// and DefaultPipe for everything but Invoke.
type Runnable interface {
	// Invoke runs on one input and returns its output.
	Invoke(ctx context.Context, input any, opts ...Option) (any, error)
	// Batch runs on every input, concurrently, and returns the outputs in input order.
	Batch(ctx context.Context, inputs []any, opts ...BatchOption) ([]any, error)
	// Stream runs on one input and returns its output as a stream of chunks.
	Stream(ctx context.Context, input any, opts ...Option) (*schema.StreamReader[any], error)
	// Pipe composes the runnable with next, coerced with Coerce, into a new Sequence.
	Pipe(next any) (*Sequence, error)
}

// Serializable is implemented by runnables describing themselves in callback events.
type Serializable interface {
	Serialize() *callbacks.Serialized
}

var lcNamespace = []string{"schema", "runnable"}

// DefaultBatch runs r.Invoke for every input with the configs of opts,
// at most the configured concurrency at a time.
// The first failure cancels the batch and is returned, no later invocation starts.
func DefaultBatch(ctx context.Context, r Runnable, inputs []any, opts ...BatchOption) ([]any, error) {
	bo := newBatchOptions(opts)
	cfgs, err := bo.configs(len(inputs))
	if err != nil {
		return nil, err
	}

	return runBatch(ctx, len(inputs), bo.concurrency(), func(ctx context.Context, i int) (any, error) {
		return r.Invoke(ctx, inputs[i], WithConfig(cfgs[i]))
	})
}

// DefaultStream yields the output of r.Invoke as a single chunk.
func DefaultStream(ctx context.Context, r Runnable, input any, opts ...Option) (*schema.StreamReader[any], error) {
	out, err := r.Invoke(ctx, input, opts...)
	if err != nil {
		return nil, err
	}

	return schema.StreamReaderFromArray([]any{out}), nil
}

// DefaultPipe returns the sequence running r then next. A sequence passed as next is flattened.
func DefaultPipe(r Runnable, next any) (*Sequence, error) {
	n, err := Coerce(next)
	if err != nil {
		return nil, err
	}

	if s, ok := n.(*Sequence); ok {
		return newSequence(r, append([]Runnable{s.first}, s.middle...), s.last), nil
	}
	return newSequence(r, nil, n), nil
}

type invokeFunc func(ctx context.Context, input any, cfg *Config, rm *callbacks.RunManager) (any, error)

// callWithConfig wraps fn in the lifecycle of a chain run configured from cfg.
// Errors of fn are reported and returned unchanged.
func callWithConfig(ctx context.Context, r Runnable, input any, cfg *Config, fn invokeFunc) (any, error) {
	ctx, rm := cfg.CallbackManager().OnChainStart(ctx, serialize(r), chainInput(input),
		callbacks.WithRunName(cfg.RunName))

	out, err := fn(ctx, input, cfg, rm)
	if err != nil {
		rm.OnChainError(ctx, err)
		return nil, err
	}

	rm.OnChainEnd(ctx, chainOutput(out))
	return out, nil
}

// chainInput is the payload of a chain start: maps as they are, anything else as {"input": v}.
func chainInput(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{"input": v}
}

// chainOutput is the payload of a chain end: maps as they are, anything else as {"output": v}.
func chainOutput(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{"output": v}
}

// serialize describes r for callbacks. Runnables that are not Serializable
// are described by their Typer type or their Go type name.
func serialize(r Runnable) *callbacks.Serialized {
	if s, ok := r.(Serializable); ok {
		return s.Serialize()
	}

	name, ok := components.GetType(r)
	if !ok {
		t := reflect.TypeOf(r)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		name = t.Name()
	}
	return &callbacks.Serialized{
		LC:   1,
		Type: "not_implemented",
		ID:   append(append([]string{}, lcNamespace...), name),
	}
}
