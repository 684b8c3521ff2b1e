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

// Package langchaingo forwards the run lifecycle observed through callbacks
// to a github.com/tmc/langchaingo callbacks handler.
package langchaingo

import (
	"context"
	"sync"

	lccallbacks "github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	lcschema "github.com/tmc/langchaingo/schema"

	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/components/model"
	"github.com/cloudwego/lcel/components/retriever"
	"github.com/cloudwego/lcel/components/tool"
)

// Handler adapts a langchaingo handler to callbacks.Handler.
// Retriever failures are reported with HandleChainError, langchaingo has no retriever error hook.
type Handler struct {
	target lccallbacks.Handler

	// queries keeps the query of running retriever runs, HandleRetrieverEnd needs it.
	queries sync.Map
}

var _ callbacks.Handler = (*Handler)(nil)

// NewHandler creates a bridge to target.
func NewHandler(target lccallbacks.Handler) *Handler {
	return &Handler{target: target}
}

func (h *Handler) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	switch info.Type {
	case callbacks.RunTypeLLM:
		if in := model.ConvCallbackInput(input); in != nil {
			h.target.HandleLLMStart(ctx, in.Prompts)
		}
	case callbacks.RunTypeTool:
		if in := tool.ConvCallbackInput(input); in != nil {
			h.target.HandleToolStart(ctx, in.Input)
		}
	case callbacks.RunTypeRetriever:
		if in := retriever.ConvCallbackInput(input); in != nil {
			h.queries.Store(info.RunID, in.Query)
			h.target.HandleRetrieverStart(ctx, in.Query)
		}
	default:
		h.target.HandleChainStart(ctx, asMap(input, "input"))
	}
	return ctx
}

func (h *Handler) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	switch info.Type {
	case callbacks.RunTypeLLM:
		if out := model.ConvCallbackOutput(output); out != nil {
			h.target.HandleLLMGenerateContentEnd(ctx, toContentResponse(out.Generations))
		}
	case callbacks.RunTypeTool:
		if out := tool.ConvCallbackOutput(output); out != nil {
			h.target.HandleToolEnd(ctx, out.Output)
		}
	case callbacks.RunTypeRetriever:
		query, _ := h.queries.LoadAndDelete(info.RunID)
		q, _ := query.(string)
		var docs []lcschema.Document
		if out := retriever.ConvCallbackOutput(output); out != nil {
			docs = make([]lcschema.Document, 0, len(out.Docs))
			for _, d := range out.Docs {
				if d == nil {
					continue
				}
				docs = append(docs, lcschema.Document{
					PageContent: d.Content,
					Metadata:    d.MetaData,
					Score:       float32(d.Score()),
				})
			}
		}
		h.target.HandleRetrieverEnd(ctx, q, docs)
	default:
		h.target.HandleChainEnd(ctx, asMap(output, "output"))
	}
	return ctx
}

func (h *Handler) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	switch info.Type {
	case callbacks.RunTypeLLM:
		h.target.HandleLLMError(ctx, err)
	case callbacks.RunTypeTool:
		h.target.HandleToolError(ctx, err)
	case callbacks.RunTypeRetriever:
		h.queries.Delete(info.RunID)
		h.target.HandleChainError(ctx, err)
	default:
		h.target.HandleChainError(ctx, err)
	}
	return ctx
}

func asMap(v any, key string) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{key: v}
}

func toContentResponse(generations []string) *llms.ContentResponse {
	choices := make([]*llms.ContentChoice, 0, len(generations))
	for _, g := range generations {
		choices = append(choices, &llms.ContentChoice{Content: g})
	}
	return &llms.ContentResponse{Choices: choices}
}
