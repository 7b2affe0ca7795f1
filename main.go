// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/xmidt-org/arrange"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/marionette/inventory"
	"github.com/xmidt-org/marionette/puppetdb"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

const (
	applicationName = "marionette"
	apiBase         = "api/v1"
)

var (
	GitCommit = "undefined"
	Version   = "undefined"
	BuildTime = "undefined"
)

func main() {
	v, logger, err := setup(os.Args[1:], os.Stdout)
	switch {
	case errors.Is(err, ErrVersionPrinted), errors.Is(err, pflag.ErrHelp):
		return
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := fx.New(
		arrange.LoggerFunc(logger.Sugar().Infof),
		arrange.ForViper(v),
		fx.Supply(logger, v),
		touchstone.Provide(),
		provideMetrics(),
		puppetdb.ProvideMetrics(),
		inventory.Provide(),
		fx.Provide(
			provideTouchstoneConfig,
			providePuppetDBConfig,
			provideInventoryConfig,
			provideServerConfigs,
			provideSource,
			provideTracingConfig,
			candlelight.New,
		),
		fx.Invoke(
			BuildPrimaryRoutes,
			BuildMetricsRoutes,
			BuildHealthRoutes,
		),
	)

	switch err := app.Err(); {
	case errors.Is(err, pflag.ErrHelp):
		return
	case err == nil:
		app.Run()
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
