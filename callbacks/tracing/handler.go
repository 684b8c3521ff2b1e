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

// Package tracing exports the run tree observed through callbacks as OpenTelemetry spans.
package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloudwego/lcel/callbacks"
)

// InstrumentationName is the name of the tracer the handler creates spans with.
const InstrumentationName = "github.com/cloudwego/lcel/callbacks/tracing"

// Attribute keys set on every span.
const (
	AttrRunID       = attribute.Key("lcel.run_id")
	AttrParentRunID = attribute.Key("lcel.parent_run_id")
	AttrRunType     = attribute.Key("lcel.run_type")
	AttrTags        = attribute.Key("lcel.tags")
)

// Handler starts one span per run and ends it when the run ends or fails.
// A span is parented to the span of the parent run when that run was observed
// by the same handler, otherwise to the span carried by ctx.
type Handler struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

var _ callbacks.Handler = (*Handler)(nil)

// NewHandler creates a tracing handler using tp, or the global tracer provider when tp is nil.
func NewHandler(tp trace.TracerProvider) *Handler {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Handler{
		tracer: tp.Tracer(InstrumentationName),
		spans:  map[string]trace.Span{},
	}
}

func (h *Handler) OnStart(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
	h.mu.Lock()
	parent, ok := h.spans[info.ParentRunID]
	h.mu.Unlock()

	spanCtx := ctx
	if ok {
		spanCtx = trace.ContextWithSpan(ctx, parent)
	}

	attrs := []attribute.KeyValue{
		AttrRunID.String(info.RunID),
		AttrRunType.String(string(info.Type)),
	}
	if info.ParentRunID != "" {
		attrs = append(attrs, AttrParentRunID.String(info.ParentRunID))
	}
	if len(info.Tags) > 0 {
		attrs = append(attrs, AttrTags.StringSlice(info.Tags))
	}

	opts := []trace.SpanStartOption{trace.WithAttributes(attrs...)}
	if !info.StartTime.IsZero() {
		opts = append(opts, trace.WithTimestamp(info.StartTime))
	}
	_, span := h.tracer.Start(spanCtx, info.Name, opts...)

	h.mu.Lock()
	h.spans[info.RunID] = span
	h.mu.Unlock()

	return trace.ContextWithSpan(ctx, span)
}

func (h *Handler) OnEnd(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
	if span := h.pop(info.RunID); span != nil {
		span.SetStatus(codes.Ok, "")
		span.End()
	}
	return ctx
}

func (h *Handler) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if span := h.pop(info.RunID); span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
	}
	return ctx
}

// pop removes the span of a run. A run's span is kept until the run ends
// so children started while it runs can still find it.
func (h *Handler) pop(runID string) trace.Span {
	h.mu.Lock()
	defer h.mu.Unlock()

	span, ok := h.spans[runID]
	if !ok {
		return nil
	}
	delete(h.spans, runID)
	return span
}
