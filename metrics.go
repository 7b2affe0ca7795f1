// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/xmidt-org/touchstone/touchhttp"
	"go.uber.org/fx"
)

// Instrumenter names
const (
	primaryMetricsName = "servers.primary.metrics"
	healthMetricsName  = "servers.health.metrics"
)

// provideMetrics builds the server instrumentation and the metrics handler
// and makes them available to the container.
func provideMetrics() fx.Option {
	return fx.Options(
		touchhttp.Provide(),
		fx.Provide(
			fx.Annotated{
				Name: primaryMetricsName,
				Target: touchhttp.ServerBundle{}.NewInstrumenter(
					touchhttp.ServerLabel, primaryServer,
				),
			},
			fx.Annotated{
				Name: healthMetricsName,
				Target: touchhttp.ServerBundle{}.NewInstrumenter(
					touchhttp.ServerLabel, healthServer,
				),
			},
		),
	)
}
