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

package logs

import (
	"github.com/kataras/golog"
)

// GologLogger is a Logger backed by kataras/golog.
type GologLogger struct {
	logger *golog.Logger
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger wraps an existing golog.Logger. The level is controlled by the golog logger itself.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	return &GologLogger{logger: logger}
}

func (l *GologLogger) args(msg string, err error, fields ...map[string]any) []any {
	fs := golog.Fields{}
	if err != nil {
		fs["error"] = err.Error()
	}
	for _, m := range fields {
		for k, v := range m {
			fs[k] = v
		}
	}
	if len(fs) == 0 {
		return []any{msg}
	}
	return []any{msg, fs}
}

func (l *GologLogger) Debug(msg string, err error, fields ...map[string]any) {
	l.logger.Debug(l.args(msg, err, fields...)...)
}

func (l *GologLogger) Info(msg string, err error, fields ...map[string]any) {
	l.logger.Info(l.args(msg, err, fields...)...)
}

func (l *GologLogger) Warn(msg string, err error, fields ...map[string]any) {
	l.logger.Warn(l.args(msg, err, fields...)...)
}

func (l *GologLogger) Error(msg string, err error, fields ...map[string]any) {
	l.logger.Error(l.args(msg, err, fields...)...)
}
