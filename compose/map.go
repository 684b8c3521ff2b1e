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
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/schema"
)

// Map runs every entry on the same input and returns a map[string]any of the outputs by key.
// Entries run concurrently, at most Config.MaxConcurrency at a time, unless
// the map was created WithSequentialMap.
//
//	m, err := compose.NewMap(map[string]any{
//		"question": compose.NewPassthrough(),
//		"context":  retriever,
//	})
type Map struct {
	steps      *orderedmap.OrderedMap[string, Runnable]
	sequential bool
}

var _ Runnable = (*Map)(nil)

type mapOpts struct {
	sequential bool
}

// MapOpt is the option for creating a Map.
type MapOpt func(o *mapOpts)

// WithSequentialMap makes the map run its entries one after another in key order.
func WithSequentialMap() MapOpt {
	return func(o *mapOpts) {
		o.sequential = true
	}
}

// NewMap creates a map from steps, ordered by key. Every value is coerced with Coerce,
// so nested map[string]any values become nested maps.
func NewMap(steps map[string]any, opts ...MapOpt) (*Map, error) {
	keys := make([]string, 0, len(steps))
	for k := range steps {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	om := orderedmap.New[string, any](len(keys))
	for _, k := range keys {
		om.Set(k, steps[k])
	}
	return NewOrderedMap(om, opts...)
}

// NewOrderedMap creates a map from steps, keeping their order.
func NewOrderedMap(steps *orderedmap.OrderedMap[string, any], opts ...MapOpt) (*Map, error) {
	o := &mapOpts{}
	for _, opt := range opts {
		opt(o)
	}

	m := &Map{
		steps:      orderedmap.New[string, Runnable](steps.Len()),
		sequential: o.sequential,
	}
	for pair := steps.Oldest(); pair != nil; pair = pair.Next() {
		r, err := Coerce(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("map key %q: %w", pair.Key, err)
		}
		m.steps.Set(pair.Key, r)
	}
	return m, nil
}

// Keys returns the keys of the map in order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, m.steps.Len())
	for pair := m.steps.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Get returns the runnable of key.
func (m *Map) Get(key string) (Runnable, bool) {
	return m.steps.Get(key)
}

// Invoke runs every entry on input. The first failing entry fails the map,
// the entries still running see their context cancelled.
func (m *Map) Invoke(ctx context.Context, input any, opts ...Option) (any, error) {
	return callWithConfig(ctx, m, input, NewConfig(opts...),
		func(ctx context.Context, input any, cfg *Config, rm *callbacks.RunManager) (any, error) {
			keys := m.Keys()
			outputs := make([]any, len(keys))

			run := func(ctx context.Context, i int) error {
				step, _ := m.steps.Get(keys[i])
				out, err := step.Invoke(ctx, input, WithConfig(patchConfig(cfg, rm.Child(mapKeyTag(keys[i])))))
				if err != nil {
					return err
				}
				outputs[i] = out
				return nil
			}

			if m.sequential {
				for i := range keys {
					if err := run(ctx, i); err != nil {
						return nil, err
					}
				}
			} else {
				g, gctx := errgroup.WithContext(ctx)
				if cfg.MaxConcurrency > 0 {
					g.SetLimit(cfg.MaxConcurrency)
				}
				for i := range keys {
					g.Go(func() error {
						if err := gctx.Err(); err != nil {
							return err
						}
						return run(gctx, i)
					})
				}
				if err := g.Wait(); err != nil {
					return nil, err
				}
			}

			ret := make(map[string]any, len(keys))
			for i, k := range keys {
				ret[k] = outputs[i]
			}
			return ret, nil
		})
}

// Batch runs the map on every input.
func (m *Map) Batch(ctx context.Context, inputs []any, opts ...BatchOption) ([]any, error) {
	return DefaultBatch(ctx, m, inputs, opts...)
}

// Stream yields the output map as a single chunk.
func (m *Map) Stream(ctx context.Context, input any, opts ...Option) (*schema.StreamReader[any], error) {
	return DefaultStream(ctx, m, input, opts...)
}

// Pipe returns the sequence running the map then next.
func (m *Map) Pipe(next any) (*Sequence, error) {
	return DefaultPipe(m, next)
}

// Serialize describes the map and its entries.
func (m *Map) Serialize() *callbacks.Serialized {
	steps := make(map[string]any, m.steps.Len())
	for pair := m.steps.Oldest(); pair != nil; pair = pair.Next() {
		steps[pair.Key] = serialize(pair.Value)
	}

	return &callbacks.Serialized{
		LC:   1,
		Type: "constructor",
		ID:   append(append([]string{}, lcNamespace...), "RunnableMap"),
		Kwargs: map[string]any{
			"steps": steps,
		},
	}
}

func mapKeyTag(key string) string {
	return "map:key:" + key
}
