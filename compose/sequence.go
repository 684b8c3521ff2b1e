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

	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/schema"
)

// Sequence runs its steps in order, the output of each step is the input of the next.
// The run of a sequence is the parent of the runs of its steps.
//
//	seq, err := trim.Pipe(upper)
//	out, err := seq.Invoke(ctx, "  hi  ") // "HI"
type Sequence struct {
	first  Runnable
	middle []Runnable
	last   Runnable
}

var _ Runnable = (*Sequence)(nil)

// NewSequence creates a sequence from at least two steps, each coerced with Coerce.
// Steps that are sequences are kept as nested steps.
func NewSequence(steps ...any) (*Sequence, error) {
	if len(steps) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrSequenceTooShort, len(steps))
	}

	rs := make([]Runnable, len(steps))
	for i, step := range steps {
		r, err := Coerce(step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		rs[i] = r
	}

	return newSequence(rs[0], rs[1:len(rs)-1], rs[len(rs)-1]), nil
}

func newSequence(first Runnable, middle []Runnable, last Runnable) *Sequence {
	return &Sequence{
		first:  first,
		middle: append([]Runnable{}, middle...),
		last:   last,
	}
}

// Steps returns the steps in execution order.
func (s *Sequence) Steps() []Runnable {
	steps := make([]Runnable, 0, len(s.middle)+2)
	steps = append(steps, s.first)
	steps = append(steps, s.middle...)
	return append(steps, s.last)
}

// Invoke runs the steps in order on input. The first failing step ends the sequence,
// its error is returned and the later steps never run.
func (s *Sequence) Invoke(ctx context.Context, input any, opts ...Option) (any, error) {
	return callWithConfig(ctx, s, input, NewConfig(opts...),
		func(ctx context.Context, input any, cfg *Config, rm *callbacks.RunManager) (any, error) {
			cur := input
			for i, step := range s.Steps() {
				out, err := step.Invoke(ctx, cur, WithConfig(patchConfig(cfg, rm.Child(stepTag(i)))))
				if err != nil {
					return nil, err
				}
				cur = out
			}
			return cur, nil
		})
}

// Batch runs every step as a batch over the outputs of the previous step.
// Each input has its own sequence run. A failing step fails all of them.
func (s *Sequence) Batch(ctx context.Context, inputs []any, opts ...BatchOption) ([]any, error) {
	bo := newBatchOptions(opts)
	cfgs, err := bo.configs(len(inputs))
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		return []any{}, nil
	}

	ctxs := make([]context.Context, len(inputs))
	rms := make([]*callbacks.RunManager, len(inputs))
	for i, input := range inputs {
		ctxs[i], rms[i] = cfgs[i].CallbackManager().OnChainStart(ctx, s.Serialize(), chainInput(input),
			callbacks.WithRunName(cfgs[i].RunName))
	}

	cur := inputs
	for i, step := range s.Steps() {
		stepCfgs := make([]*Config, len(inputs))
		for j := range stepCfgs {
			stepCfgs[j] = patchConfig(cfgs[j], rms[j].Child(stepTag(i)))
		}

		out, err := step.Batch(ctx, cur, WithBatchConfigs(stepCfgs...), WithBatchConcurrency(bo.concurrency()))
		if err != nil {
			for j, rm := range rms {
				rm.OnChainError(ctxs[j], err)
			}
			return nil, err
		}
		cur = out
	}

	for j, rm := range rms {
		rm.OnChainEnd(ctxs[j], chainOutput(cur[j]))
	}
	return cur, nil
}

// Stream invokes every step but the last, then streams the last step.
// Errors of the invoked steps are returned by Stream, errors of the last step's stream
// are received from the returned reader.
func (s *Sequence) Stream(ctx context.Context, input any, opts ...Option) (*schema.StreamReader[any], error) {
	cfg := NewConfig(opts...)
	ctx, rm := cfg.CallbackManager().OnChainStart(ctx, s.Serialize(), chainInput(input),
		callbacks.WithRunName(cfg.RunName))

	steps := s.Steps()
	cur := input
	for i, step := range steps[:len(steps)-1] {
		out, err := step.Invoke(ctx, cur, WithConfig(patchConfig(cfg, rm.Child(stepTag(i)))))
		if err != nil {
			rm.OnChainError(ctx, err)
			return nil, err
		}
		cur = out
	}

	sr, err := s.last.Stream(ctx, cur, WithConfig(patchConfig(cfg, rm.Child(stepTag(len(steps)-1)))))
	if err != nil {
		rm.OnChainError(ctx, err)
		return nil, err
	}

	return forwardStream(ctx, rm, sr), nil
}

// Pipe returns a new sequence with next appended. A sequence passed as next is
// flattened into the result, so repeated pipes never nest sequences.
func (s *Sequence) Pipe(next any) (*Sequence, error) {
	n, err := Coerce(next)
	if err != nil {
		return nil, err
	}

	middle := append(append([]Runnable{}, s.middle...), s.last)
	if o, ok := n.(*Sequence); ok {
		middle = append(append(middle, o.first), o.middle...)
		return newSequence(s.first, middle, o.last), nil
	}
	return newSequence(s.first, middle, n), nil
}

// Serialize describes the sequence and its steps.
func (s *Sequence) Serialize() *callbacks.Serialized {
	middle := make([]*callbacks.Serialized, len(s.middle))
	for i, step := range s.middle {
		middle[i] = serialize(step)
	}

	return &callbacks.Serialized{
		LC:   1,
		Type: "constructor",
		ID:   append(append([]string{}, lcNamespace...), "RunnableSequence"),
		Kwargs: map[string]any{
			"first":  serialize(s.first),
			"middle": middle,
			"last":   serialize(s.last),
		},
	}
}

// stepTag is the tag of the run of the i-th step, counted from 1.
func stepTag(i int) string {
	return fmt.Sprintf("seq:step:%d", i+1)
}
