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

// Package logs provides the structured logger used across the module.
//
// The default logger writes JSON through zap at info level. Replace it with
// SetDefault, e.g. with a golog-backed logger:
//
//	logs.SetDefault(logs.NewGologLogger(golog.New()))
package logs

import (
	"sync/atomic"
)

// Levels accepted by Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config configures a zap logger.
type Config struct {
	Level       string `yaml:"level" envconfig:"LCEL_LOG_LEVEL"`
	ServiceName string `yaml:"service_name" envconfig:"LCEL_SERVICE_NAME"`
}

// Logger is a leveled structured logger. err may be nil.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]any)
	Info(msg string, err error, fields ...map[string]any)
	Warn(msg string, err error, fields ...map[string]any)
	Error(msg string, err error, fields ...map[string]any)
}

type holder struct {
	l Logger
}

var defaultLogger atomic.Pointer[holder]

// Default returns the process-wide logger.
func Default() Logger {
	if h := defaultLogger.Load(); h != nil {
		return h.l
	}

	l := NewZapLogger(Config{Level: Info})
	if defaultLogger.CompareAndSwap(nil, &holder{l: l}) {
		return l
	}
	return defaultLogger.Load().l
}

// SetDefault replaces the process-wide logger. A nil l installs Nop.
func SetDefault(l Logger) {
	if l == nil {
		l = Nop()
	}
	defaultLogger.Store(&holder{l: l})
}

type nopLogger struct{}

func (nopLogger) Debug(string, error, ...map[string]any) {}
func (nopLogger) Info(string, error, ...map[string]any)  {}
func (nopLogger) Warn(string, error, ...map[string]any)  {}
func (nopLogger) Error(string, error, ...map[string]any) {}

// Nop returns a logger discarding everything.
func Nop() Logger {
	return nopLogger{}
}
