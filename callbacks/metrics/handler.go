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

// Package metrics records Prometheus metrics for the runs observed through callbacks.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cloudwego/lcel/callbacks"
)

// Run statuses used as the status label of runs_total.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Handler counts runs, tracks the runs in flight and observes run durations,
// labelled by run type and run name.
type Handler struct {
	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	inFlight    *prometheus.GaugeVec
}

var _ callbacks.Handler = (*Handler)(nil)

// NewHandler creates the handler and registers its collectors with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewHandler(reg prometheus.Registerer) (*Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	h := &Handler{
		runsTotal:   createCounterVec("lcel_runs_total", "Total number of finished runs", []string{"run_type", "name", "status"}),
		runDuration: createHistogramVec("lcel_run_duration_seconds", "Duration of runs in seconds", []string{"run_type", "name"}, prometheus.DefBuckets),
		inFlight:    createGaugeVec("lcel_runs_in_flight", "Number of started runs that have not finished", []string{"run_type"}),
	}

	for _, c := range []prometheus.Collector{h.runsTotal, h.runDuration, h.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Handler) OnStart(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
	h.inFlight.WithLabelValues(string(info.Type)).Inc()
	return ctx
}

func (h *Handler) OnEnd(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
	h.finish(info, StatusSuccess)
	return ctx
}

func (h *Handler) OnError(ctx context.Context, info *callbacks.RunInfo, _ error) context.Context {
	h.finish(info, StatusError)
	return ctx
}

func (h *Handler) finish(info *callbacks.RunInfo, status string) {
	typ := string(info.Type)
	h.inFlight.WithLabelValues(typ).Dec()
	h.runsTotal.WithLabelValues(typ, info.Name, status).Inc()
	if !info.StartTime.IsZero() {
		h.runDuration.WithLabelValues(typ, info.Name).Observe(time.Since(info.StartTime).Seconds())
	}
}

func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

func createGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}
