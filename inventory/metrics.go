// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	CacheRequestCounter  = "inventory_cache_requests_total"
	FetchCounter         = "inventory_fetches_total"
	FetchDurationSeconds = "inventory_fetch_duration_seconds"
	NodesGauge           = "inventory_nodes"
	DroppedFactsCounter  = "inventory_dropped_facts_total"
)

// Labels
const (
	ResultLabel  = "result"
	OutcomeLabel = "outcome"
)

// Label Values
const (
	HitResult      = "hit"
	MissResult     = "miss"
	SuccessOutcome = "success"
	FailureOutcome = "failure"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: CacheRequestCounter,
				Help: "Counter for node-set requests served by the cache (hit) or by fetching from PuppetDB (miss).",
			},
			ResultLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: FetchCounter,
				Help: "Counter for the number of inventory fetches (and their success/failure outcomes).",
			},
			OutcomeLabel,
		),
		touchstone.Histogram(
			prometheus.HistogramOpts{
				Name:    FetchDurationSeconds,
				Help:    "A histogram of latencies for complete inventory fetches.",
				Buckets: []float64{0.125, .25, .5, 1, 5, 10, 20, 40, 80, 160},
			},
		),
		touchstone.Gauge(
			prometheus.GaugeOpts{
				Name: NodesGauge,
				Help: "The number of nodes in the cached inventory.",
			},
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: DroppedFactsCounter,
				Help: "The total number of facts dropped because their node was not active.",
			},
		),
	)
}

type Measures struct {
	fx.In
	CacheRequests *prometheus.CounterVec `name:"inventory_cache_requests_total"`
	Fetches       *prometheus.CounterVec `name:"inventory_fetches_total"`
	FetchDuration prometheus.Observer    `name:"inventory_fetch_duration_seconds"`
	Nodes         prometheus.Gauge       `name:"inventory_nodes"`
	DroppedFacts  prometheus.Counter     `name:"inventory_dropped_facts_total"`
}
