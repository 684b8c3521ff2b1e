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

package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// FXModule provides the Observers of the Config found in the container and installs
// them for the lifetime of the application.
//
// A trace.TracerProvider and a prometheus.Registerer are used when provided,
// the global ones otherwise.
var FXModule = fx.Module("lcel-observability",
	fx.Provide(newObservers),
	fx.Invoke(RegisterLifecycle),
)

type params struct {
	fx.In

	Config         Config
	TracerProvider trace.TracerProvider  `optional:"true"`
	Registerer     prometheus.Registerer `optional:"true"`
}

func newObservers(p params) (*Observers, error) {
	return New(p.Config, p.TracerProvider, p.Registerer)
}

// RegisterLifecycle installs o when the application starts and uninstalls it when it stops.
func RegisterLifecycle(lc fx.Lifecycle, o *Observers) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			o.Install()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			o.Logger.Info("uninstalling observability", nil)
			o.Uninstall()
			return nil
		},
	})
}
