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

// Binding is a runnable with part of its config fixed.
// The config of each call is laid over the bound one: tags are appended, metadata merged,
// and callbacks, run name and concurrency set by the call win.
// A binding starts no run of its own.
type Binding struct {
	bound Runnable
	cfg   *Config
}

var _ Runnable = (*Binding)(nil)

// Bind fixes the config described by opts on r.
//
//	tagged := compose.Bind(seq, compose.WithTags("prod"), compose.WithRunName("qa"))
func Bind(r Runnable, opts ...Option) *Binding {
	if b, ok := r.(*Binding); ok {
		return &Binding{bound: b.bound, cfg: mergeConfigs(b.cfg, NewConfig(opts...))}
	}
	return &Binding{bound: r, cfg: NewConfig(opts...)}
}

// Unwrap returns the bound runnable.
func (b *Binding) Unwrap() Runnable {
	return b.bound
}

// Invoke invokes the bound runnable with the merged config.
func (b *Binding) Invoke(ctx context.Context, input any, opts ...Option) (any, error) {
	return b.bound.Invoke(ctx, input, WithConfig(mergeConfigs(b.cfg, NewConfig(opts...))))
}

// Batch runs the bound runnable's batch with the merged configs.
func (b *Binding) Batch(ctx context.Context, inputs []any, opts ...BatchOption) ([]any, error) {
	bo := newBatchOptions(opts)
	cfgs, err := bo.configs(len(inputs))
	if err != nil {
		return nil, err
	}

	limit := bo.concurrency()
	if limit <= 0 {
		limit = b.cfg.MaxConcurrency
	}
	for i := range cfgs {
		cfgs[i] = mergeConfigs(b.cfg, cfgs[i])
	}
	return b.bound.Batch(ctx, inputs, WithBatchConfigs(cfgs...), WithBatchConcurrency(limit))
}

// Stream streams the bound runnable with the merged config.
func (b *Binding) Stream(ctx context.Context, input any, opts ...Option) (*schema.StreamReader[any], error) {
	return b.bound.Stream(ctx, input, WithConfig(mergeConfigs(b.cfg, NewConfig(opts...))))
}

// Pipe returns the sequence running the binding then next.
func (b *Binding) Pipe(next any) (*Sequence, error) {
	return DefaultPipe(b, next)
}

// Serialize describes the bound runnable.
func (b *Binding) Serialize() *callbacks.Serialized {
	return serialize(b.bound)
}
