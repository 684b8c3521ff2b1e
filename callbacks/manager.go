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

package callbacks

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloudwego/lcel/internal/generic"
	"github.com/cloudwego/lcel/logs"
	"github.com/cloudwego/lcel/schema"
)

// Manager is the callback manager of a (not yet started) run.
// It holds the handlers, tags and metadata that the run will report to,
// and the ID of the parent run when it was derived with RunManager.Child.
//
// A nil *Manager is valid: it starts nil run managers and reports nothing.
type Manager struct {
	handlers            []Handler
	inheritableHandlers []Handler

	tags            []string
	inheritableTags []string

	metadata            map[string]any
	inheritableMetadata map[string]any

	parentRunID string
}

func (*Manager) isCallbacks() {}

type configureOptions struct {
	local               []Handler
	inheritableTags     []string
	localTags           []string
	inheritableMetadata map[string]any
	localMetadata       map[string]any
	verbose             bool
}

// ConfigureOption customizes Configure.
type ConfigureOption func(o *configureOptions)

// WithLocalHandlers adds handlers that observe the configured run only, not its children.
func WithLocalHandlers(handlers ...Handler) ConfigureOption {
	return func(o *configureOptions) {
		o.local = append(o.local, handlers...)
	}
}

// WithInheritableTags adds tags that are reported by the run and all of its children.
func WithInheritableTags(tags ...string) ConfigureOption {
	return func(o *configureOptions) {
		o.inheritableTags = append(o.inheritableTags, tags...)
	}
}

// WithLocalTags adds tags reported by the configured run only.
func WithLocalTags(tags ...string) ConfigureOption {
	return func(o *configureOptions) {
		o.localTags = append(o.localTags, tags...)
	}
}

// WithInheritableMetadata adds metadata reported by the run and all of its children.
func WithInheritableMetadata(md map[string]any) ConfigureOption {
	return func(o *configureOptions) {
		o.inheritableMetadata = generic.MergeMaps(o.inheritableMetadata, md)
	}
}

// WithLocalMetadata adds metadata reported by the configured run only.
func WithLocalMetadata(md map[string]any) ConfigureOption {
	return func(o *configureOptions) {
		o.localMetadata = generic.MergeMaps(o.localMetadata, md)
	}
}

// WithVerbose adds the console handler to the run tree.
func WithVerbose(v bool) ConfigureOption {
	return func(o *configureOptions) {
		o.verbose = v
	}
}

// Configure builds the manager for a run.
//
// inheritable is either the Handlers a caller supplied, which become inheritable,
// or a *Manager derived from a parent run, which is copied.
// Global handlers and, when verbose, the console handler are added to root managers.
// Configure returns nil when the resulting manager has no handler.
func Configure(inheritable Callbacks, opts ...ConfigureOption) *Manager {
	o := &configureOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var m *Manager
	derived := false
	switch cb := inheritable.(type) {
	case *Manager:
		if cb != nil {
			m = cb.copy()
			derived = true
		}
	case Handlers:
		m = &Manager{
			handlers:            append([]Handler{}, cb...),
			inheritableHandlers: append([]Handler{}, cb...),
		}
	}

	if m == nil {
		m = &Manager{}
	}

	if !derived {
		if len(globalHandlers) > 0 {
			m.handlers = append(append([]Handler{}, globalHandlers...), m.handlers...)
			m.inheritableHandlers = append(append([]Handler{}, globalHandlers...), m.inheritableHandlers...)
		}
		if o.verbose || isVerbose() {
			m.addConsoleHandler()
		}
	} else if o.verbose {
		m.addConsoleHandler()
	}

	m.handlers = append(m.handlers, o.local...)

	m.tags = generic.AppendUnique(m.tags, o.inheritableTags...)
	m.inheritableTags = generic.AppendUnique(m.inheritableTags, o.inheritableTags...)
	m.tags = generic.AppendUnique(m.tags, o.localTags...)

	m.metadata = generic.MergeMaps(m.metadata, o.inheritableMetadata, o.localMetadata)
	m.inheritableMetadata = generic.MergeMaps(m.inheritableMetadata, o.inheritableMetadata)

	if len(m.handlers) == 0 {
		return nil
	}

	return m
}

func (m *Manager) copy() *Manager {
	return &Manager{
		handlers:            append([]Handler{}, m.handlers...),
		inheritableHandlers: append([]Handler{}, m.inheritableHandlers...),
		tags:                append([]string{}, m.tags...),
		inheritableTags:     append([]string{}, m.inheritableTags...),
		metadata:            generic.CopyMap(m.metadata),
		inheritableMetadata: generic.CopyMap(m.inheritableMetadata),
		parentRunID:         m.parentRunID,
	}
}

func (m *Manager) addConsoleHandler() {
	for _, h := range m.handlers {
		if _, ok := h.(*ConsoleHandler); ok {
			return
		}
	}
	h := NewConsoleHandler(nil)
	m.handlers = append(m.handlers, h)
	m.inheritableHandlers = append(m.inheritableHandlers, h)
}

// Handlers returns a copy of the handlers the run will report to.
func (m *Manager) Handlers() []Handler {
	if m == nil {
		return nil
	}
	return append([]Handler{}, m.handlers...)
}

// Tags returns a copy of the tags the run will report.
func (m *Manager) Tags() []string {
	if m == nil {
		return nil
	}
	return append([]string{}, m.tags...)
}

// Metadata returns a copy of the metadata the run will report.
func (m *Manager) Metadata() map[string]any {
	if m == nil {
		return nil
	}
	return generic.CopyMap(m.metadata)
}

// ParentRunID returns the ID of the run this manager was derived from, empty for root managers.
func (m *Manager) ParentRunID() string {
	if m == nil {
		return ""
	}
	return m.parentRunID
}

type runOptions struct {
	runID string
	name  string
}

// RunOption customizes a run started by a Manager.
type RunOption func(o *runOptions)

// WithRunID sets the ID of the run instead of a random UUID.
func WithRunID(id string) RunOption {
	return func(o *runOptions) {
		o.runID = id
	}
}

// WithRunName sets the name reported for the run.
func WithRunName(name string) RunOption {
	return func(o *runOptions) {
		o.name = name
	}
}

// OnChainStart starts a chain run. input is the input of the chain as a map.
func (m *Manager) OnChainStart(ctx context.Context, serialized *Serialized, input map[string]any,
	opts ...RunOption) (context.Context, *RunManager) {

	return m.start(ctx, RunTypeChain, serialized, input, opts...)
}

// OnLLMStart starts an LLM run with the rendered prompts.
func (m *Manager) OnLLMStart(ctx context.Context, serialized *Serialized, prompts []string,
	opts ...RunOption) (context.Context, *RunManager) {

	return m.start(ctx, RunTypeLLM, serialized, prompts, opts...)
}

// OnToolStart starts a tool run with the raw tool input.
func (m *Manager) OnToolStart(ctx context.Context, serialized *Serialized, input string,
	opts ...RunOption) (context.Context, *RunManager) {

	return m.start(ctx, RunTypeTool, serialized, input, opts...)
}

// OnRetrieverStart starts a retriever run for query.
func (m *Manager) OnRetrieverStart(ctx context.Context, serialized *Serialized, query string,
	opts ...RunOption) (context.Context, *RunManager) {

	return m.start(ctx, RunTypeRetriever, serialized, query, opts...)
}

func (m *Manager) start(ctx context.Context, typ RunType, serialized *Serialized, input CallbackInput,
	opts ...RunOption) (context.Context, *RunManager) {

	if m == nil {
		return ctx, nil
	}

	o := &runOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	if o.name == "" {
		o.name = serialized.DisplayName()
	}

	rm := &RunManager{
		info: &RunInfo{
			RunID:       o.runID,
			ParentRunID: m.parentRunID,
			Name:        o.name,
			Type:        typ,
			Serialized:  serialized,
			Tags:        append([]string{}, m.tags...),
			Metadata:    generic.CopyMap(m.metadata),
			StartTime:   time.Now(),
		},
		handlers:            m.handlers,
		inheritableHandlers: m.inheritableHandlers,
		inheritableTags:     m.inheritableTags,
		inheritableMetadata: m.inheritableMetadata,
	}

	hs := filterHandlers(ctx, rm.info, TimingOnStart, generic.Reverse(rm.handlers))
	for _, h := range hs {
		ctx = safeHandle(ctx, rm.info, "OnStart", func(ctx context.Context) context.Context {
			return h.OnStart(ctx, rm.info, input)
		})
	}

	return ctx, rm
}

// RunManager reports the end or error of a started run and derives managers for its children.
// Only the first OnEnd / OnError call is reported.
//
// A nil *RunManager is valid and reports nothing.
type RunManager struct {
	info *RunInfo

	handlers            []Handler
	inheritableHandlers []Handler
	inheritableTags     []string
	inheritableMetadata map[string]any

	done sync.Once
}

// RunID returns the ID of the run, empty for a nil run manager.
func (rm *RunManager) RunID() string {
	if rm == nil {
		return ""
	}
	return rm.info.RunID
}

// Info returns the run info.
func (rm *RunManager) Info() *RunInfo {
	if rm == nil {
		return nil
	}
	return rm.info
}

// Child derives the manager of a nested run. Children inherit the inheritable
// handlers, tags and metadata of this run; tags are added as inheritable tags.
func (rm *RunManager) Child(tags ...string) *Manager {
	if rm == nil {
		return nil
	}

	return &Manager{
		handlers:            append([]Handler{}, rm.inheritableHandlers...),
		inheritableHandlers: append([]Handler{}, rm.inheritableHandlers...),
		tags:                generic.AppendUnique(rm.inheritableTags, tags...),
		inheritableTags:     generic.AppendUnique(rm.inheritableTags, tags...),
		metadata:            generic.CopyMap(rm.inheritableMetadata),
		inheritableMetadata: generic.CopyMap(rm.inheritableMetadata),
		parentRunID:         rm.info.RunID,
	}
}

// OnEnd reports the successful end of the run.
func (rm *RunManager) OnEnd(ctx context.Context, output CallbackOutput) context.Context {
	if rm == nil {
		return ctx
	}

	rm.done.Do(func() {
		hs := filterHandlers(ctx, rm.info, TimingOnEnd, rm.handlers)
		for _, h := range hs {
			ctx = safeHandle(ctx, rm.info, "OnEnd", func(ctx context.Context) context.Context {
				return h.OnEnd(ctx, rm.info, output)
			})
		}
	})

	return ctx
}

// OnError reports the failure of the run.
func (rm *RunManager) OnError(ctx context.Context, err error) context.Context {
	if rm == nil {
		return ctx
	}

	rm.done.Do(func() {
		hs := filterHandlers(ctx, rm.info, TimingOnError, rm.handlers)
		for _, h := range hs {
			ctx = safeHandle(ctx, rm.info, "OnError", func(ctx context.Context) context.Context {
				return h.OnError(ctx, rm.info, err)
			})
		}
	})

	return ctx
}

// OnChainEnd reports the output of a chain run.
func (rm *RunManager) OnChainEnd(ctx context.Context, output map[string]any) context.Context {
	return rm.OnEnd(ctx, output)
}

// OnChainError reports the failure of a chain run.
func (rm *RunManager) OnChainError(ctx context.Context, err error) context.Context {
	return rm.OnError(ctx, err)
}

// OnLLMEnd reports the generations of an LLM run.
func (rm *RunManager) OnLLMEnd(ctx context.Context, generations []string) context.Context {
	return rm.OnEnd(ctx, generations)
}

// OnToolEnd reports the output of a tool run.
func (rm *RunManager) OnToolEnd(ctx context.Context, output string) context.Context {
	return rm.OnEnd(ctx, output)
}

// OnRetrieverEnd reports the documents found by a retriever run.
func (rm *RunManager) OnRetrieverEnd(ctx context.Context, docs []*schema.Document) context.Context {
	return rm.OnEnd(ctx, docs)
}

func filterHandlers(ctx context.Context, info *RunInfo, timing CallbackTiming, handlers []Handler) []Handler {
	hs := make([]Handler, 0, len(handlers))
	for _, h := range handlers {
		tc, ok := h.(TimingChecker)
		if !ok || tc.Needed(ctx, info, timing) {
			hs = append(hs, h)
		}
	}
	return hs
}

// safeHandle runs one handler. A panicking handler is logged and skipped, it never fails the run.
func safeHandle(ctx context.Context, info *RunInfo, timing string,
	fn func(ctx context.Context) context.Context) (ret context.Context) {

	defer func() {
		if p := recover(); p != nil {
			logs.Default().Warn("callback handler panicked", fmt.Errorf("%v", p), map[string]any{
				"timing": timing,
				"run_id": info.RunID,
				"stack":  string(debug.Stack()),
			})
			ret = ctx
		}
	}()

	ret = fn(ctx)
	if ret == nil {
		ret = ctx
	}
	return ret
}
