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
	"time"

	"github.com/bytedance/sonic"

	"github.com/cloudwego/lcel/logs"
)

// ConsoleHandler logs every lifecycle event of the run tree it is attached to.
// It is added automatically to root runs in verbose mode.
type ConsoleHandler struct {
	logger logs.Logger
}

var _ Handler = (*ConsoleHandler)(nil)

// NewConsoleHandler creates a console handler writing to logger, or to logs.Default() when logger is nil.
func NewConsoleHandler(logger logs.Logger) *ConsoleHandler {
	return &ConsoleHandler{logger: logger}
}

func (c *ConsoleHandler) log() logs.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logs.Default()
}

func (c *ConsoleHandler) OnStart(ctx context.Context, info *RunInfo, input CallbackInput) context.Context {
	c.log().Info(string(info.Type)+"/start", nil, runFields(info), map[string]any{
		"input": render(input),
	})
	return ctx
}

func (c *ConsoleHandler) OnEnd(ctx context.Context, info *RunInfo, output CallbackOutput) context.Context {
	c.log().Info(string(info.Type)+"/end", nil, runFields(info), map[string]any{
		"output":  render(output),
		"elapsed": time.Since(info.StartTime).String(),
	})
	return ctx
}

func (c *ConsoleHandler) OnError(ctx context.Context, info *RunInfo, err error) context.Context {
	c.log().Error(string(info.Type)+"/error", err, runFields(info), map[string]any{
		"elapsed": time.Since(info.StartTime).String(),
	})
	return ctx
}

func runFields(info *RunInfo) map[string]any {
	fields := map[string]any{
		"run_id": info.RunID,
		"name":   info.Name,
	}
	if info.ParentRunID != "" {
		fields["parent_run_id"] = info.ParentRunID
	}
	if len(info.Tags) > 0 {
		fields["tags"] = info.Tags
	}
	return fields
}

func render(v any) string {
	s, err := sonic.MarshalString(v)
	if err != nil {
		return "[unserializable]"
	}
	return s
}
