// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/touchstone"
	"github.com/xmidt-org/touchstone/touchhttp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

type providedMetricsIn struct {
	fx.In
	Primary touchhttp.ServerInstrumenter `name:"servers.primary.metrics"`
	Health  touchhttp.ServerInstrumenter `name:"servers.health.metrics"`
	Handler touchhttp.Handler
}

func TestProvideMetrics(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		in      providedMetricsIn
	)

	app := fxtest.New(t,
		fx.Supply(
			touchstone.Config{DefaultNamespace: "test"},
			zap.NewNop(),
		),
		touchstone.Provide(),
		provideMetrics(),
		fx.Populate(&in),
	)
	require.NoError(app.Err())

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	in.Primary.Then(ok).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	in.Health.Then(ok).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	in.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(http.StatusOK, rec.Code)
	assert.Contains(rec.Body.String(), `test_server_request_count{code="200",method="GET",server="primary"} 1`)
	assert.Contains(rec.Body.String(), `test_server_request_count{code="200",method="GET",server="health"} 1`)
}
