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

// Package observability assembles the logger and the tracing and metrics
// callback handlers from one Config, and registers them as global handlers
// so that every root run is observed.
//
//	app := fx.New(
//		fx.Supply(observability.Config{ServiceName: "qa", EnableTracing: true}),
//		observability.FXModule,
//	)
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/callbacks/metrics"
	"github.com/cloudwego/lcel/callbacks/tracing"
	"github.com/cloudwego/lcel/logs"
)

// Config selects what is observed.
type Config struct {
	ServiceName string `yaml:"service_name" envconfig:"LCEL_SERVICE_NAME"`
	LogLevel    string `yaml:"log_level" envconfig:"LCEL_LOG_LEVEL"`

	// Verbose prints every run with the console handler.
	Verbose bool `yaml:"verbose" envconfig:"LCEL_VERBOSE"`

	EnableTracing bool `yaml:"enable_tracing" envconfig:"LCEL_ENABLE_TRACING"`
	EnableMetrics bool `yaml:"enable_metrics" envconfig:"LCEL_ENABLE_METRICS"`
}

// Observers holds what a Config assembled. Disabled handlers are nil.
type Observers struct {
	Logger  *logs.ZapLogger
	Tracing *tracing.Handler
	Metrics *metrics.Handler

	verbose bool
}

// New assembles the observers of cfg. A nil tp uses the global tracer provider,
// a nil reg the default prometheus registerer.
func New(cfg Config, tp trace.TracerProvider, reg prometheus.Registerer) (*Observers, error) {
	o := &Observers{
		Logger: logs.NewZapLogger(logs.Config{
			Level:       cfg.LogLevel,
			ServiceName: cfg.ServiceName,
		}),
		verbose: cfg.Verbose,
	}

	if cfg.EnableTracing {
		o.Tracing = tracing.NewHandler(tp)
	}
	if cfg.EnableMetrics {
		m, err := metrics.NewHandler(reg)
		if err != nil {
			return nil, err
		}
		o.Metrics = m
	}
	return o, nil
}

// Handlers returns the enabled callback handlers.
func (o *Observers) Handlers() []callbacks.Handler {
	var hs []callbacks.Handler
	if o.Tracing != nil {
		hs = append(hs, o.Tracing)
	}
	if o.Metrics != nil {
		hs = append(hs, o.Metrics)
	}
	return hs
}

// Install makes the logger the default one and registers the handlers globally.
// It is not thread-safe, call it during process initialization.
func (o *Observers) Install() {
	logs.SetDefault(o.Logger)
	if o.verbose {
		callbacks.SetVerbose(true)
	}
	callbacks.AppendGlobalHandlers(o.Handlers()...)

	o.Logger.Info("observability installed", nil, map[string]any{
		"tracing": o.Tracing != nil,
		"metrics": o.Metrics != nil,
		"verbose": o.verbose,
	})
}

// Uninstall removes every global handler and flushes the logger.
func (o *Observers) Uninstall() {
	callbacks.ResetGlobalHandlers()
	// syncing stderr fails on some terminals, nothing is lost then
	_ = o.Logger.Sync()
}
