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

package langchaingo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lccallbacks "github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	lcschema "github.com/tmc/langchaingo/schema"

	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/schema"
)

type recordingHandler struct {
	lccallbacks.SimpleHandler

	events    []string
	chainIn   map[string]any
	chainOut  map[string]any
	generated *llms.ContentResponse
	docs      []lcschema.Document
	query     string
}

func (r *recordingHandler) HandleChainStart(_ context.Context, inputs map[string]any) {
	r.events = append(r.events, "chain_start")
	r.chainIn = inputs
}

func (r *recordingHandler) HandleChainEnd(_ context.Context, outputs map[string]any) {
	r.events = append(r.events, "chain_end")
	r.chainOut = outputs
}

func (r *recordingHandler) HandleChainError(_ context.Context, err error) {
	r.events = append(r.events, "chain_error:"+err.Error())
}

func (r *recordingHandler) HandleLLMStart(_ context.Context, prompts []string) {
	r.events = append(r.events, "llm_start:"+prompts[0])
}

func (r *recordingHandler) HandleLLMGenerateContentEnd(_ context.Context, res *llms.ContentResponse) {
	r.events = append(r.events, "llm_end")
	r.generated = res
}

func (r *recordingHandler) HandleToolStart(_ context.Context, input string) {
	r.events = append(r.events, "tool_start:"+input)
}

func (r *recordingHandler) HandleToolError(_ context.Context, err error) {
	r.events = append(r.events, "tool_error:"+err.Error())
}

func (r *recordingHandler) HandleRetrieverStart(_ context.Context, query string) {
	r.events = append(r.events, "retriever_start:"+query)
}

func (r *recordingHandler) HandleRetrieverEnd(_ context.Context, query string, documents []lcschema.Document) {
	r.events = append(r.events, "retriever_end")
	r.query = query
	r.docs = documents
}

func TestHandler(t *testing.T) {
	ctx := context.Background()
	target := &recordingHandler{}
	m := callbacks.Configure(callbacks.Handlers{NewHandler(target)})

	ctx1, chain := m.OnChainStart(ctx, &callbacks.Serialized{Name: "seq"}, map[string]any{"input": "q"})
	child := chain.Child()

	_, llm := child.OnLLMStart(ctx1, &callbacks.Serialized{Name: "llm"}, []string{"hi"})
	llm.OnLLMEnd(ctx1, []string{"hello", "hey"})

	_, tl := child.OnToolStart(ctx1, &callbacks.Serialized{Name: "tool"}, "{}")
	tl.OnError(ctx1, errors.New("bad"))

	_, r := child.OnRetrieverStart(ctx1, &callbacks.Serialized{Name: "docs"}, "query")
	r.OnRetrieverEnd(ctx1, []*schema.Document{(&schema.Document{Content: "c"}).WithScore(0.5)})

	chain.OnChainEnd(ctx1, map[string]any{"output": "done"})

	assert.Equal(t, []string{
		"chain_start",
		"llm_start:hi",
		"llm_end",
		"tool_start:{}",
		"tool_error:bad",
		"retriever_start:query",
		"retriever_end",
		"chain_end",
	}, target.events)

	assert.Equal(t, map[string]any{"input": "q"}, target.chainIn)
	assert.Equal(t, map[string]any{"output": "done"}, target.chainOut)

	require.Len(t, target.generated.Choices, 2)
	assert.Equal(t, "hey", target.generated.Choices[1].Content)

	assert.Equal(t, "query", target.query)
	require.Len(t, target.docs, 1)
	assert.Equal(t, "c", target.docs[0].PageContent)
	assert.Equal(t, float32(0.5), target.docs[0].Score)
}

func TestAsMap(t *testing.T) {
	assert.Equal(t, map[string]any{"input": 1}, asMap(1, "input"))
	in := map[string]any{"a": 1}
	assert.Equal(t, in, asMap(in, "input"))
}

func TestHandlerSkipsNilDocuments(t *testing.T) {
	ctx := context.Background()
	target := &recordingHandler{}
	m := callbacks.Configure(callbacks.Handlers{NewHandler(target)})

	_, r := m.OnRetrieverStart(ctx, &callbacks.Serialized{Name: "docs"}, "query")
	r.OnRetrieverEnd(ctx, []*schema.Document{nil, {Content: "kept"}, nil})

	assert.Equal(t, []string{"retriever_start:query", "retriever_end"}, target.events)
	assert.Equal(t, "query", target.query)
	require.Len(t, target.docs, 1)
	assert.Equal(t, "kept", target.docs[0].PageContent)
}
