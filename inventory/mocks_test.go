// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/xmidt-org/marionette/model"
	"github.com/xmidt-org/marionette/puppetdb"
	"github.com/xmidt-org/marionette/puppetdb/query"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) ListActiveNodes(ctx context.Context, filter query.Expression) (puppetdb.Nodes, error) {
	args := m.Called(ctx, filter)
	nodes, _ := args.Get(0).(puppetdb.Nodes)
	return nodes, args.Error(1)
}

func (m *MockSource) ListFacts(ctx context.Context, q query.Expression) (puppetdb.Facts, error) {
	args := m.Called(ctx, q)
	facts, _ := args.Get(0).(puppetdb.Facts)
	return facts, args.Error(1)
}

type MockNodeGetter struct {
	mock.Mock
}

func (m *MockNodeGetter) GetNodes(ctx context.Context) (*model.NodeSet, error) {
	args := m.Called(ctx)
	nodes, _ := args.Get(0).(*model.NodeSet)
	return nodes, args.Error(1)
}

func newTestMeasures() *Measures {
	return &Measures{
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testCacheRequests", Help: "testCacheRequests"},
			[]string{ResultLabel},
		),
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testFetches", Help: "testFetches"},
			[]string{OutcomeLabel},
		),
		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{Name: "testFetchDuration", Help: "testFetchDuration"},
		),
		Nodes: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "testNodes", Help: "testNodes"},
		),
		DroppedFacts: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "testDroppedFacts", Help: "testDroppedFacts"},
		),
	}
}

func factNames(q query.Expression) ([]string, error) {
	operands, err := query.Operands(q)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(operands))
	for _, o := range operands {
		field, value, err := query.Predicate(o)
		if err != nil {
			return nil, err
		}
		if field != query.Name {
			return nil, query.ErrUnsupported
		}
		names = append(names, value)
	}
	return names, nil
}
