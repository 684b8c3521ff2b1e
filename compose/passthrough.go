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

	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/schema"
)

// Passthrough returns its input unchanged, as a traced chain run.
// It is mostly used as a Map entry forwarding the original input next to computed values.
type Passthrough struct{}

var _ Runnable = (*Passthrough)(nil)

// NewPassthrough creates a Passthrough.
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

// Invoke returns input.
func (p *Passthrough) Invoke(ctx context.Context, input any, opts ...Option) (any, error) {
	return callWithConfig(ctx, p, input, NewConfig(opts...),
		func(_ context.Context, input any, _ *Config, _ *callbacks.RunManager) (any, error) {
			return input, nil
		})
}

// Batch returns inputs.
func (p *Passthrough) Batch(ctx context.Context, inputs []any, opts ...BatchOption) ([]any, error) {
	return DefaultBatch(ctx, p, inputs, opts...)
}

// Stream yields input as a single chunk.
func (p *Passthrough) Stream(ctx context.Context, input any, opts ...Option) (*schema.StreamReader[any], error) {
	return DefaultStream(ctx, p, input, opts...)
}

// Pipe returns the sequence running the passthrough then next.
func (p *Passthrough) Pipe(next any) (*Sequence, error) {
	return DefaultPipe(p, next)
}

// Serialize describes the passthrough.
func (p *Passthrough) Serialize() *callbacks.Serialized {
	return &callbacks.Serialized{
		LC:   1,
		Type: "constructor",
		ID:   append(append([]string{}, lcNamespace...), "RunnablePassthrough"),
	}
}
