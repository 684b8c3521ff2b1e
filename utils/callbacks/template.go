/*
 * Copyright 2024 CloudWeGo Authors
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

// Package callbacks provides ready-to-use callback handler templates for the different run types.
package callbacks

import (
	"context"

	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/components/model"
	"github.com/cloudwego/lcel/components/retriever"
	"github.com/cloudwego/lcel/components/tool"
)

// NewHandlerHelper creates a new run type template handler builder.
// This builder can be used to configure and build a handler
// which handles callback events of different run types with their own struct definition,
// and a fallback handler can be used for run types none of the cases hit.
func NewHandlerHelper() *HandlerHelper {
	return &HandlerHelper{}
}

// HandlerHelper is a builder for creating a callbacks.Handler with specific handlers for different run types.
// eg.
//
//	handler := template.NewHandlerHelper().
//		LLM(&template.ModelCallbackHandler{...}).
//		Chain(chainHandler).
//		Handler()
//
// then use the handler with runnable.Invoke(ctx, input, compose.WithCallbacks(handler))
type HandlerHelper struct {
	chainHandler     callbacks.Handler
	llmHandler       *ModelCallbackHandler
	toolHandler      *ToolCallbackHandler
	retrieverHandler *RetrieverCallbackHandler
	fallbackHandler  callbacks.Handler
}

// Handler returns the callbacks.Handler created by HandlerHelper.
func (c *HandlerHelper) Handler() callbacks.Handler {
	return &handlerTemplate{c}
}

// Chain sets the handler for chain runs.
func (c *HandlerHelper) Chain(handler callbacks.Handler) *HandlerHelper {
	c.chainHandler = handler
	return c
}

// LLM sets the model handler for LLM runs.
func (c *HandlerHelper) LLM(handler *ModelCallbackHandler) *HandlerHelper {
	c.llmHandler = handler
	return c
}

// Tool sets the tool handler for tool runs.
func (c *HandlerHelper) Tool(handler *ToolCallbackHandler) *HandlerHelper {
	c.toolHandler = handler
	return c
}

// Retriever sets the retriever handler for retriever runs.
func (c *HandlerHelper) Retriever(handler *RetrieverCallbackHandler) *HandlerHelper {
	c.retrieverHandler = handler
	return c
}

// Fallback sets the handler for runs of a type without a dedicated handler.
func (c *HandlerHelper) Fallback(handler callbacks.Handler) *HandlerHelper {
	c.fallbackHandler = handler
	return c
}

type handlerTemplate struct {
	*HandlerHelper
}

// OnStart is the callback function for the start event of a run.
// implement the callbacks Handler interface.
func (c *handlerTemplate) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	switch {
	case info.Type == callbacks.RunTypeLLM && c.llmHandler != nil:
		return c.llmHandler.OnStart(ctx, info, model.ConvCallbackInput(input))
	case info.Type == callbacks.RunTypeTool && c.toolHandler != nil:
		return c.toolHandler.OnStart(ctx, info, tool.ConvCallbackInput(input))
	case info.Type == callbacks.RunTypeRetriever && c.retrieverHandler != nil:
		return c.retrieverHandler.OnStart(ctx, info, retriever.ConvCallbackInput(input))
	}
	if h := c.generic(info); h != nil {
		return h.OnStart(ctx, info, input)
	}
	return ctx
}

// OnEnd is the callback function for the end event of a run.
// implement the callbacks Handler interface.
func (c *handlerTemplate) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	switch {
	case info.Type == callbacks.RunTypeLLM && c.llmHandler != nil:
		return c.llmHandler.OnEnd(ctx, info, model.ConvCallbackOutput(output))
	case info.Type == callbacks.RunTypeTool && c.toolHandler != nil:
		return c.toolHandler.OnEnd(ctx, info, tool.ConvCallbackOutput(output))
	case info.Type == callbacks.RunTypeRetriever && c.retrieverHandler != nil:
		return c.retrieverHandler.OnEnd(ctx, info, retriever.ConvCallbackOutput(output))
	}
	if h := c.generic(info); h != nil {
		return h.OnEnd(ctx, info, output)
	}
	return ctx
}

// OnError is the callback function for the error event of a run.
// implement the callbacks Handler interface.
func (c *handlerTemplate) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	switch {
	case info.Type == callbacks.RunTypeLLM && c.llmHandler != nil:
		return c.llmHandler.OnError(ctx, info, err)
	case info.Type == callbacks.RunTypeTool && c.toolHandler != nil:
		return c.toolHandler.OnError(ctx, info, err)
	case info.Type == callbacks.RunTypeRetriever && c.retrieverHandler != nil:
		return c.retrieverHandler.OnError(ctx, info, err)
	}
	if h := c.generic(info); h != nil {
		return h.OnError(ctx, info, err)
	}
	return ctx
}

// generic returns the untyped handler of the run: the chain handler for chains, the fallback otherwise.
func (c *handlerTemplate) generic(info *callbacks.RunInfo) callbacks.Handler {
	if info.Type == callbacks.RunTypeChain && c.chainHandler != nil {
		return c.chainHandler
	}
	return c.fallbackHandler
}

// Needed checks if the callback handler is needed for the given timing.
func (c *handlerTemplate) Needed(ctx context.Context, info *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	if info == nil {
		return false
	}

	switch {
	case info.Type == callbacks.RunTypeLLM && c.llmHandler != nil:
		return c.llmHandler.Needed(ctx, info, timing)
	case info.Type == callbacks.RunTypeTool && c.toolHandler != nil:
		return c.toolHandler.Needed(ctx, info, timing)
	case info.Type == callbacks.RunTypeRetriever && c.retrieverHandler != nil:
		return c.retrieverHandler.Needed(ctx, info, timing)
	}

	handler := c.generic(info)
	if handler == nil {
		return false
	}
	checker, ok := handler.(callbacks.TimingChecker)
	return !ok || checker.Needed(ctx, info, timing)
}

// ModelCallbackHandler is the handler for the LLM callback.
type ModelCallbackHandler struct {
	OnStart func(ctx context.Context, runInfo *callbacks.RunInfo, input *model.CallbackInput) context.Context
	OnEnd   func(ctx context.Context, runInfo *callbacks.RunInfo, output *model.CallbackOutput) context.Context
	OnError func(ctx context.Context, runInfo *callbacks.RunInfo, err error) context.Context
}

// Needed checks if the callback handler is needed for the given timing.
func (ch *ModelCallbackHandler) Needed(ctx context.Context, runInfo *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	return needed(timing, ch.OnStart != nil, ch.OnEnd != nil, ch.OnError != nil)
}

// RetrieverCallbackHandler is the handler for the retriever callback.
type RetrieverCallbackHandler struct {
	// OnStart is the callback function for the start of the retriever.
	OnStart func(ctx context.Context, runInfo *callbacks.RunInfo, input *retriever.CallbackInput) context.Context
	// OnEnd is the callback function for the end of the retriever.
	OnEnd func(ctx context.Context, runInfo *callbacks.RunInfo, output *retriever.CallbackOutput) context.Context
	// OnError is the callback function for the error of the retriever.
	OnError func(ctx context.Context, runInfo *callbacks.RunInfo, err error) context.Context
}

// Needed checks if the callback handler is needed for the given timing.
func (ch *RetrieverCallbackHandler) Needed(ctx context.Context, runInfo *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	return needed(timing, ch.OnStart != nil, ch.OnEnd != nil, ch.OnError != nil)
}

// ToolCallbackHandler is the handler for the tool callback.
type ToolCallbackHandler struct {
	OnStart func(ctx context.Context, info *callbacks.RunInfo, input *tool.CallbackInput) context.Context
	OnEnd   func(ctx context.Context, info *callbacks.RunInfo, output *tool.CallbackOutput) context.Context
	OnError func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context
}

// Needed checks if the callback handler is needed for the given timing.
func (ch *ToolCallbackHandler) Needed(ctx context.Context, runInfo *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	return needed(timing, ch.OnStart != nil, ch.OnEnd != nil, ch.OnError != nil)
}

func needed(timing callbacks.CallbackTiming, start, end, err bool) bool {
	switch timing {
	case callbacks.TimingOnStart:
		return start
	case callbacks.TimingOnEnd:
		return end
	case callbacks.TimingOnError:
		return err
	default:
		return false
	}
}
