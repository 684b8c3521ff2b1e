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
	"fmt"
	"reflect"

	"github.com/eino-contrib/jsonschema"

	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/internal/generic"
	"github.com/cloudwego/lcel/internal/safe"
	"github.com/cloudwego/lcel/schema"
)

// LambdaFunc is the set of plain function shapes a Lambda can wrap.
type LambdaFunc interface {
	func(ctx context.Context, input any) (any, error) | func(input any) (any, error) | func(input any) any
}

type lambdaOpts struct {
	name string
}

// LambdaOpt is the option for creating a Lambda.
type LambdaOpt func(o *lambdaOpts)

// WithLambdaName sets the name the lambda reports its runs under, RunnableLambda by default.
func WithLambdaName(name string) LambdaOpt {
	return func(o *lambdaOpts) {
		o.name = name
	}
}

// Lambda wraps a user function as a Runnable.
// Every call of the function is one chain run, and a panic inside it is returned as an error.
//
//	upper := compose.NewLambda(func(input any) any {
//		return strings.ToUpper(input.(string))
//	})
type Lambda struct {
	invoke func(ctx context.Context, input any) (any, error)
	stream func(ctx context.Context, input any) (*schema.StreamReader[any], error)

	inputType  reflect.Type
	outputType reflect.Type

	name string
}

var _ Runnable = (*Lambda)(nil)

// NewLambda creates a Lambda from a plain function taking and returning any.
func NewLambda[F LambdaFunc](fn F, opts ...LambdaOpt) *Lambda {
	var invoke func(ctx context.Context, input any) (any, error)
	switch f := any(fn).(type) {
	case func(ctx context.Context, input any) (any, error):
		invoke = f
	case func(input any) (any, error):
		invoke = func(_ context.Context, input any) (any, error) {
			return f(input)
		}
	case func(input any) any:
		invoke = func(_ context.Context, input any) (any, error) {
			return f(input), nil
		}
	}

	return newLambda(invoke, nil, generic.TypeOf[any](), generic.TypeOf[any](), opts)
}

// InvokableLambda creates a Lambda from a typed function.
// Inputs that are not an I fail with ErrUnexpectedInputType, a nil input is passed as the zero I.
//
//	parse := compose.InvokableLambda(func(ctx context.Context, s string) (int, error) {
//		return strconv.Atoi(s)
//	})
func InvokableLambda[I, O any](fn func(ctx context.Context, input I) (O, error), opts ...LambdaOpt) *Lambda {
	invoke := func(ctx context.Context, input any) (any, error) {
		in, err := assertInput[I](input)
		if err != nil {
			return nil, err
		}
		return fn(ctx, in)
	}

	return newLambda(invoke, nil, generic.TypeOf[I](), generic.TypeOf[O](), opts)
}

// StreamableLambda creates a Lambda from a typed function producing a stream.
// Stream forwards the chunks as they come, Invoke returns their concatenation.
func StreamableLambda[I, O any](fn func(ctx context.Context, input I) (*schema.StreamReader[O], error),
	opts ...LambdaOpt) *Lambda {
	stream := func(ctx context.Context, input any) (*schema.StreamReader[any], error) {
		in, err := assertInput[I](input)
		if err != nil {
			return nil, err
		}
		sr, err := fn(ctx, in)
		if err != nil {
			return nil, err
		}
		return schema.StreamReaderWithConvert(sr, func(o O) (any, error) {
			return o, nil
		}), nil
	}

	return newLambda(nil, stream, generic.TypeOf[I](), generic.TypeOf[O](), opts)
}

func newLambda(invoke func(ctx context.Context, input any) (any, error),
	stream func(ctx context.Context, input any) (*schema.StreamReader[any], error),
	in, out reflect.Type, opts []LambdaOpt) *Lambda {
	o := &lambdaOpts{}
	for _, opt := range opts {
		opt(o)
	}

	return &Lambda{
		invoke:     invoke,
		stream:     stream,
		inputType:  in,
		outputType: out,
		name:       o.name,
	}
}

func assertInput[I any](input any) (I, error) {
	var zero I
	if input == nil {
		return zero, nil
	}
	in, ok := input.(I)
	if !ok {
		return zero, fmt.Errorf("%w: expected %v, got %T", ErrUnexpectedInputType, generic.TypeOf[I](), input)
	}
	return in, nil
}

// Invoke runs the function on input.
func (l *Lambda) Invoke(ctx context.Context, input any, opts ...Option) (any, error) {
	return callWithConfig(ctx, l, input, NewConfig(opts...),
		func(ctx context.Context, input any, _ *Config, _ *callbacks.RunManager) (any, error) {
			return l.call(ctx, input)
		})
}

func (l *Lambda) call(ctx context.Context, input any) (out any, err error) {
	if l.invoke != nil {
		err = safe.Call(func() error {
			out, err = l.invoke(ctx, input)
			return err
		})
		return out, err
	}

	sr, err := l.callStream(ctx, input)
	if err != nil {
		return nil, err
	}
	return concatStreamReader(sr)
}

func (l *Lambda) callStream(ctx context.Context, input any) (sr *schema.StreamReader[any], err error) {
	err = safe.Call(func() error {
		sr, err = l.stream(ctx, input)
		return err
	})
	return sr, err
}

// Batch runs the function on every input.
func (l *Lambda) Batch(ctx context.Context, inputs []any, opts ...BatchOption) ([]any, error) {
	return DefaultBatch(ctx, l, inputs, opts...)
}

// Stream runs the function on input. Lambdas created with StreamableLambda forward
// their chunks as they come, the others yield their output as a single chunk.
func (l *Lambda) Stream(ctx context.Context, input any, opts ...Option) (*schema.StreamReader[any], error) {
	if l.stream == nil {
		return DefaultStream(ctx, l, input, opts...)
	}

	cfg := NewConfig(opts...)
	ctx, rm := cfg.CallbackManager().OnChainStart(ctx, l.Serialize(), chainInput(input),
		callbacks.WithRunName(cfg.RunName))

	sr, err := l.callStream(ctx, input)
	if err != nil {
		rm.OnChainError(ctx, err)
		return nil, err
	}
	return forwardStream(ctx, rm, sr), nil
}

// Pipe returns the sequence running the lambda then next.
func (l *Lambda) Pipe(next any) (*Sequence, error) {
	return DefaultPipe(l, next)
}

// InputType returns the type the lambda accepts.
func (l *Lambda) InputType() reflect.Type {
	return l.inputType
}

// OutputType returns the type the lambda returns.
func (l *Lambda) OutputType() reflect.Type {
	return l.outputType
}

// InputSchema returns the JSON schema of the input type.
func (l *Lambda) InputSchema() *jsonschema.Schema {
	return reflectSchema(l.inputType)
}

// OutputSchema returns the JSON schema of the output type.
func (l *Lambda) OutputSchema() *jsonschema.Schema {
	return reflectSchema(l.outputType)
}

func reflectSchema(t reflect.Type) *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}

	js := r.ReflectFromType(t)
	js.Version = ""
	return js
}

// Serialize describes the lambda.
func (l *Lambda) Serialize() *callbacks.Serialized {
	return &callbacks.Serialized{
		LC:   1,
		Type: "not_implemented",
		ID:   append(append([]string{}, lcNamespace...), "RunnableLambda"),
		Name: l.name,
	}
}
