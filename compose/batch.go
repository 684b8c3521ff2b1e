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

	"golang.org/x/sync/errgroup"
)

type batchOptions struct {
	common         []Option
	perInput       []*Config
	hasPerInput    bool
	maxConcurrency int
}

// BatchOption is a functional option for Batch.
type BatchOption func(o *batchOptions)

// WithBatchOptions applies opts to the call of every input.
func WithBatchOptions(opts ...Option) BatchOption {
	return func(o *batchOptions) {
		o.common = append(o.common, opts...)
	}
}

// WithBatchConfigs gives every input its own config, cfgs[i] is used for inputs[i].
// Batch fails with ErrBatchConfigLength when the counts differ.
func WithBatchConfigs(cfgs ...*Config) BatchOption {
	return func(o *batchOptions) {
		o.perInput = cfgs
		o.hasPerInput = true
	}
}

// WithBatchConcurrency bounds the inputs in flight at once, <= 0 means unbounded.
// Without it the MaxConcurrency of the options given with WithBatchOptions applies.
func WithBatchConcurrency(n int) BatchOption {
	return func(o *batchOptions) {
		o.maxConcurrency = n
	}
}

func newBatchOptions(opts []BatchOption) *batchOptions {
	o := &batchOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// configs returns one config per input.
func (o *batchOptions) configs(n int) ([]*Config, error) {
	cfgs := make([]*Config, n)
	if o.hasPerInput {
		if len(o.perInput) != n {
			return nil, fmt.Errorf("%w: got %d configs for %d inputs", ErrBatchConfigLength, len(o.perInput), n)
		}
		for i, c := range o.perInput {
			cfgs[i] = mergeConfigs(c, NewConfig(o.common...))
		}
		return cfgs, nil
	}

	base := NewConfig(o.common...)
	for i := range cfgs {
		cfgs[i] = base.copy()
	}
	return cfgs, nil
}

func (o *batchOptions) concurrency() int {
	if o.maxConcurrency > 0 {
		return o.maxConcurrency
	}
	return NewConfig(o.common...).MaxConcurrency
}

// runBatch runs fn for 0..n-1 with at most limit calls in flight and collects the outputs by index.
// No call starts once one has failed or ctx is done.
func runBatch(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) (any, error)) ([]any, error) {
	outputs := make([]any, n)
	if n == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return outputs, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := fn(gctx, i)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outputs, nil
}
