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

// Package collector records the run tree observed through callbacks in memory.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/lcel/callbacks"
)

// Run is one recorded run.
type Run struct {
	ID       string
	ParentID string
	Name     string
	Type     callbacks.RunType
	Tags     []string
	Metadata map[string]any

	Input  callbacks.CallbackInput
	Output callbacks.CallbackOutput
	Err    error

	StartTime time.Time
	EndTime   time.Time

	// Children are the runs started with this run as parent, in start order.
	Children []*Run
}

// Done reports whether the run has ended or failed.
func (r *Run) Done() bool {
	return !r.EndTime.IsZero()
}

// Collector is a callbacks.Handler recording every run it observes.
// Read the recorded runs once the observed runs are done.
type Collector struct {
	mu    sync.Mutex
	runs  map[string]*Run
	order []*Run
}

var _ callbacks.Handler = (*Collector)(nil)

// New creates an empty collector.
func New() *Collector {
	return &Collector{runs: map[string]*Run{}}
}

func (c *Collector) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	run := &Run{
		ID:        info.RunID,
		ParentID:  info.ParentRunID,
		Name:      info.Name,
		Type:      info.Type,
		Tags:      info.Tags,
		Metadata:  info.Metadata,
		Input:     input,
		StartTime: info.StartTime,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.runs[run.ID] = run
	c.order = append(c.order, run)
	if parent, ok := c.runs[run.ParentID]; ok {
		parent.Children = append(parent.Children, run)
	}
	return ctx
}

func (c *Collector) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	c.finish(info, output, nil)
	return ctx
}

func (c *Collector) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	c.finish(info, nil, err)
	return ctx
}

func (c *Collector) finish(info *callbacks.RunInfo, output callbacks.CallbackOutput, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	run, ok := c.runs[info.RunID]
	if !ok {
		return
	}
	run.Output = output
	run.Err = err
	run.EndTime = time.Now()
}

// Runs returns every recorded run in start order.
func (c *Collector) Runs() []*Run {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*Run{}, c.order...)
}

// Roots returns the recorded runs whose parent was not observed by this collector.
func (c *Collector) Roots() []*Run {
	c.mu.Lock()
	defer c.mu.Unlock()

	var roots []*Run
	for _, run := range c.order {
		if _, ok := c.runs[run.ParentID]; !ok {
			roots = append(roots, run)
		}
	}
	return roots
}

// Get returns the run with the given ID.
func (c *Collector) Get(id string) (*Run, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	run, ok := c.runs[id]
	return run, ok
}

// Finished reports whether the run with the given ID has ended or failed.
// Use it to wait for runs ended from another goroutine, such as streamed runs.
func (c *Collector) Finished(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	run, ok := c.runs[id]
	return ok && run.Done()
}

// Find returns the recorded runs with the given name, in start order.
func (c *Collector) Find(name string) []*Run {
	c.mu.Lock()
	defer c.mu.Unlock()

	var found []*Run
	for _, run := range c.order {
		if run.Name == name {
			found = append(found, run)
		}
	}
	return found
}

// Reset forgets every recorded run.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.runs = map[string]*Run{}
	c.order = nil
}
