// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/httpaux"
	"github.com/xmidt-org/httpaux/recovery"
	"github.com/xmidt-org/marionette/inventory"
	"github.com/xmidt-org/touchstone/touchhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Server names
const (
	primaryServer = "primary"
	metricsServer = "metrics"
	healthServer  = "health"
)

type PrimaryRouterIn struct {
	fx.In
	Config   ServerConfig                 `name:"servers.primary"`
	GetNodes inventory.Handler            `name:"get_nodes_handler"`
	Metrics  touchhttp.ServerInstrumenter `name:"servers.primary.metrics"`
	Tracing  candlelight.Tracing
	Logger   *zap.Logger
	LC       fx.Lifecycle
}

type MetricsRouterIn struct {
	fx.In
	Config  ServerConfig `name:"servers.metrics"`
	Handler touchhttp.Handler
	Logger  *zap.Logger
	LC      fx.Lifecycle
}

type HealthRouterIn struct {
	fx.In
	Config  ServerConfig                 `name:"servers.health"`
	Metrics touchhttp.ServerInstrumenter `name:"servers.health.metrics"`
	Logger  *zap.Logger
	LC      fx.Lifecycle
}

func newPrimaryRouter(in PrimaryRouterIn) *mux.Router {
	router := mux.NewRouter()
	nodesPath := fmt.Sprintf("/%s/nodes", apiBase)
	router.Handle(nodesPath, in.GetNodes).Methods(http.MethodGet)

	options := []otelmux.Option{
		otelmux.WithTracerProvider(in.Tracing.TracerProvider()),
		otelmux.WithPropagators(in.Tracing.Propagator()),
	}
	router.Use(
		recovery.Middleware(recovery.WithStatusCode(555)),
		mux.MiddlewareFunc(in.Metrics.Then),
		otelmux.Middleware("server_primary", options...),
		candlelight.EchoFirstTraceNodeInfo(in.Tracing, false),
	)
	return router
}

func newHealthRouter(in HealthRouterIn) *mux.Router {
	router := mux.NewRouter()
	router.Handle(in.Config.Path, httpaux.ConstantHandler{
		StatusCode: http.StatusOK,
	}).Methods(http.MethodGet)
	router.Use(mux.MiddlewareFunc(in.Metrics.Then))
	return router
}

func newMetricsRouter(in MetricsRouterIn) *mux.Router {
	router := mux.NewRouter()
	router.Handle(in.Config.Path, in.Handler).Methods(http.MethodGet)
	return router
}

func BuildPrimaryRoutes(in PrimaryRouterIn) {
	bindServer(primaryServer, in.Config, newPrimaryRouter(in), in.Logger, in.LC)
}

func BuildMetricsRoutes(in MetricsRouterIn) {
	chain := alice.New(recovery.Middleware(recovery.WithStatusCode(555)))
	bindServer(metricsServer, in.Config, chain.Then(newMetricsRouter(in)), in.Logger, in.LC)
}

func BuildHealthRoutes(in HealthRouterIn) {
	bindServer(healthServer, in.Config, newHealthRouter(in), in.Logger, in.LC)
}

// bindServer starts the server with the application and shuts it down
// when the application stops.
func bindServer(name string, config ServerConfig, handler http.Handler, logger *zap.Logger, lc fx.Lifecycle) {
	logger = logger.With(zap.String("server", name), zap.String("address", config.Address))
	s := &http.Server{
		Addr:              config.Address,
		Handler:           handler,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		ReadTimeout:       config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
		ErrorLog:          zap.NewStdLog(logger),
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			l, err := net.Listen("tcp", s.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := s.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Server exited", zap.Error(err))
				}
			}()
			logger.Info("Server started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Server stopping")
			return s.Shutdown(ctx)
		},
	})
}
