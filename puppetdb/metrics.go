// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package puppetdb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	RequestCounter         = "puppetdb_requests_total"
	RequestDurationSeconds = "puppetdb_request_duration_seconds"
)

// Labels
const (
	EndpointLabel = "endpoint"
	OutcomeLabel  = "outcome"
)

// Label Values
const (
	SuccessOutcome = "success"
	FailureOutcome = "failure"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: RequestCounter,
				Help: "Counter for the number of PuppetDB query requests (and their success/failure outcomes).",
			},
			EndpointLabel,
			OutcomeLabel,
		),
		touchstone.HistogramVec(
			prometheus.HistogramOpts{
				Name:    RequestDurationSeconds,
				Help:    "A histogram of latencies for PuppetDB query requests, including all pages.",
				Buckets: []float64{0.0625, 0.125, .25, .5, 1, 5, 10, 20, 40},
			},
			EndpointLabel,
		),
	)
}

type Measures struct {
	fx.In
	Requests        *prometheus.CounterVec `name:"puppetdb_requests_total"`
	RequestDuration prometheus.ObserverVec `name:"puppetdb_request_duration_seconds"`
}
