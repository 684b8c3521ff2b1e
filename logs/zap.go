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
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is a Logger backed by zap.
type ZapLogger struct {
	Zap *zap.Logger
}

var _ Logger = (*ZapLogger)(nil)

// NewZapLogger builds a JSON zap logger writing to stderr.
// It falls back to zap.NewNop if the configuration cannot be built.
func NewZapLogger(cfg Config) *ZapLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	fields := map[string]any{
		"pid": os.Getpid(),
	}
	if cfg.ServiceName != "" {
		fields["service"] = cfg.ServiceName
	}

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(zapLevel(cfg.Level)),
		Development:       false,
		DisableCaller:     false,
		DisableStacktrace: true,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields:     fields,
	}

	logger, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}

	return &ZapLogger{Zap: logger}
}

// NewZapLoggerFrom wraps an existing zap logger.
func NewZapLoggerFrom(l *zap.Logger) *ZapLogger {
	return &ZapLogger{Zap: l}
}

func zapLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func (l *ZapLogger) toFields(err error, fields ...map[string]any) []zap.Field {
	var zapFields []zap.Field
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}

	for _, fieldMap := range fields {
		for key, value := range fieldMap {
			zapFields = append(zapFields, zap.Any(key, value))
		}
	}
	return zapFields
}

func (l *ZapLogger) Debug(msg string, err error, fields ...map[string]any) {
	l.Zap.Debug(msg, l.toFields(err, fields...)...)
}

func (l *ZapLogger) Info(msg string, err error, fields ...map[string]any) {
	l.Zap.Info(msg, l.toFields(err, fields...)...)
}

func (l *ZapLogger) Warn(msg string, err error, fields ...map[string]any) {
	l.Zap.Warn(msg, l.toFields(err, fields...)...)
}

func (l *ZapLogger) Error(msg string, err error, fields ...map[string]any) {
	l.Zap.Error(msg, l.toFields(err, fields...)...)
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.Zap.Sync()
}
