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

//go:generate  mockgen -destination ../internal/mock/callbacks/handler_mock.go --package callbacks -source interface.go
package callbacks

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
)

// RunType distinguishes the kind of run a callback event belongs to.
type RunType string

// RunType values.
const (
	RunTypeChain     RunType = "chain"
	RunTypeLLM       RunType = "llm"
	RunTypeTool      RunType = "tool"
	RunTypeRetriever RunType = "retriever"
)

// Serialized is a JSON-serializable snapshot of the runnable that started a run.
type Serialized struct {
	LC     int            `json:"lc"`
	Type   string         `json:"type"`
	ID     []string       `json:"id"`
	Name   string         `json:"name,omitempty"`
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

// String renders the snapshot as JSON.
func (s *Serialized) String() string {
	if s == nil {
		return "null"
	}
	str, err := sonic.MarshalString(s)
	if err != nil {
		return "{}"
	}
	return str
}

// DisplayName returns Name, or the last element of ID when Name is empty.
func (s *Serialized) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.Name != "" {
		return s.Name
	}
	if len(s.ID) > 0 {
		return s.ID[len(s.ID)-1]
	}
	return ""
}

// RunInfo describes the run a callback event belongs to.
type RunInfo struct {
	RunID       string
	ParentRunID string
	// Name is the run name set with a config, or the display name of the serialized runnable.
	Name string
	Type RunType

	Serialized *Serialized
	Tags       []string
	Metadata   map[string]any

	StartTime time.Time
}

// CallbackInput is the input of a run.
// Chain runs receive a map[string]any; non-map inputs are wrapped as {"input": v}.
// LLM runs receive []string prompts, tool runs a string, retriever runs the query string.
// Use the Conv helpers of the components packages to read typed payloads.
type CallbackInput any

// CallbackOutput is the output of a run.
// Chain runs deliver a map[string]any; non-map outputs are wrapped as {"output": v}.
type CallbackOutput any

// Handler observes the lifecycle of runs.
// The returned context is passed to the following handlers and, for OnStart,
// to the run itself and to OnEnd / OnError of the same run.
type Handler interface {
	OnStart(ctx context.Context, info *RunInfo, input CallbackInput) context.Context
	OnEnd(ctx context.Context, info *RunInfo, output CallbackOutput) context.Context
	OnError(ctx context.Context, info *RunInfo, err error) context.Context
}

// CallbackTiming enumerates the lifecycle moments of a run.
type CallbackTiming uint8

// CallbackTiming values.
const (
	TimingOnStart CallbackTiming = iota
	TimingOnEnd
	TimingOnError
)

// TimingChecker checks if the handler is needed for the given timing.
// Handlers created by HandlerBuilder implement it automatically.
// Handlers not needed for a timing are skipped.
type TimingChecker interface {
	Needed(ctx context.Context, info *RunInfo, timing CallbackTiming) bool
}

// Callbacks is what a caller passes as the callbacks of a config:
// either a Handlers list or a *Manager derived from a parent run.
type Callbacks interface {
	isCallbacks()
}

// Handlers is a plain list of handlers.
type Handlers []Handler

func (Handlers) isCallbacks() {}
