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

package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/lcel/callbacks"
)

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := NewHandler(reg)
	require.NoError(t, err)

	ctx := context.Background()
	m := callbacks.Configure(callbacks.Handlers{h})

	ctx1, root := m.OnChainStart(ctx, &callbacks.Serialized{Name: "seq"}, nil)
	_, tool := root.Child().OnToolStart(ctx1, &callbacks.Serialized{Name: "search"}, "q")

	assert.Equal(t, float64(1), testutil.ToFloat64(h.inFlight.WithLabelValues("chain")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.inFlight.WithLabelValues("tool")))

	tool.OnToolEnd(ctx1, "r")
	root.OnChainError(ctx1, errors.New("boom"))

	assert.Equal(t, float64(0), testutil.ToFloat64(h.inFlight.WithLabelValues("chain")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.runsTotal.WithLabelValues("tool", "search", StatusSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.runsTotal.WithLabelValues("chain", "seq", StatusError)))
	assert.Equal(t, 2, testutil.CollectAndCount(h.runDuration))
}

func TestNewHandlerDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewHandler(reg)
	require.NoError(t, err)

	_, err = NewHandler(reg)
	var are prometheus.AlreadyRegisteredError
	assert.True(t, errors.As(err, &are))
}
