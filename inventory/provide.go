// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type gateIn struct {
	fx.In

	Config   Config
	Source   Source
	Cache    *Cache
	Measures Measures
	Logger   *zap.Logger
	LC       fx.Lifecycle
}

type handlerIn struct {
	fx.In

	Gate   *Gate
	Logger *zap.Logger
}

// Provide builds the cache gate and the node-set handler. The Config and
// Source components must be supplied by the application.
func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		fx.Provide(
			NewCache,
			newGate,
			fx.Annotated{
				Name: "get_nodes_handler",
				Target: func(in handlerIn) Handler {
					return newGetNodesHandler(in.Gate, in.Logger)
				},
			},
		),
	)
}

func newGate(in gateIn) (*Gate, error) {
	fetcher, err := NewFetcher(in.Config, in.Source, &in.Measures, in.Logger)
	if err != nil {
		return nil, err
	}

	g, err := NewGate(fetcher, in.Cache, &in.Measures, in.Logger)
	if err != nil {
		return nil, err
	}

	in.LC.Append(fx.Hook{
		OnStop: g.Stop,
	})
	return g, nil
}
