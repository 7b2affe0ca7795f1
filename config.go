// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/marionette/inventory"
	"github.com/xmidt-org/marionette/puppetdb"
	"github.com/xmidt-org/sallust"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Configuration keys
const (
	prometheusConfigKey = "prometheus"
	puppetDBConfigKey   = "puppetdb"
	inventoryConfigKey  = "inventory"
	tracingConfigKey    = "tracing"
	primaryServerKey    = "servers.primary"
	metricsServerKey    = "servers.metrics"
	healthServerKey     = "servers.health"
)

// ServerConfig describes one of the HTTP servers.
type ServerConfig struct {
	Address           string        `validate:"required"`
	ReadHeaderTimeout time.Duration `validate:"gte=0"`
	ReadTimeout       time.Duration `validate:"gte=0"`
	WriteTimeout      time.Duration `validate:"gte=0"`
	IdleTimeout       time.Duration `validate:"gte=0"`

	// Path is the route served by the metrics and health servers.
	Path string
}

type ServerConfigsOut struct {
	fx.Out
	Primary ServerConfig `name:"servers.primary"`
	Metrics ServerConfig `name:"servers.metrics"`
	Health  ServerConfig `name:"servers.health"`
}

var defaultServerConfigs = map[string]ServerConfig{
	primaryServerKey: {Address: ":6600", ReadHeaderTimeout: 10 * time.Second},
	metricsServerKey: {Address: ":6601", ReadHeaderTimeout: 10 * time.Second, Path: "/metrics"},
	healthServerKey:  {Address: ":6602", ReadHeaderTimeout: 10 * time.Second, Path: "/health"},
}

var validate = validator.New()

func unmarshalValid(v *viper.Viper, key string, target interface{}) error {
	if err := v.UnmarshalKey(key, target); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("invalid %s configuration: %w", key, err)
	}
	return nil
}

func provideTouchstoneConfig(v *viper.Viper) (touchstone.Config, error) {
	var c touchstone.Config
	err := v.UnmarshalKey(prometheusConfigKey, &c)
	if c.DefaultNamespace == "" {
		c.DefaultNamespace = applicationName
	}
	return c, err
}

func provideTracingConfig(v *viper.Viper) (candlelight.Config, error) {
	var c candlelight.Config
	if err := v.UnmarshalKey(tracingConfigKey, &c); err != nil {
		return candlelight.Config{}, err
	}
	c.ApplicationName = applicationName
	return c, nil
}

func providePuppetDBConfig(v *viper.Viper) (puppetdb.ClientConfig, error) {
	var c puppetdb.ClientConfig
	err := unmarshalValid(v, puppetDBConfigKey, &c)
	return c, err
}

func provideInventoryConfig(v *viper.Viper) (inventory.Config, error) {
	var c inventory.Config
	err := unmarshalValid(v, inventoryConfigKey, &c)
	return c, err
}

func provideServerConfigs(v *viper.Viper) (ServerConfigsOut, error) {
	var out ServerConfigsOut
	for _, s := range []struct {
		key    string
		target *ServerConfig
	}{
		{key: primaryServerKey, target: &out.Primary},
		{key: metricsServerKey, target: &out.Metrics},
		{key: healthServerKey, target: &out.Health},
	} {
		*s.target = defaultServerConfigs[s.key]
		if !v.IsSet(s.key) {
			continue
		}
		if err := unmarshalValid(v, s.key, s.target); err != nil {
			return ServerConfigsOut{}, err
		}
	}
	return out, nil
}

// provideSource builds the PuppetDB client the inventory fetches from.
func provideSource(config puppetdb.ClientConfig, measures puppetdb.Measures, logger *zap.Logger) (inventory.Source, error) {
	config.Logger = logger
	client, err := puppetdb.NewClient(config, &measures, func(ctx context.Context) *zap.Logger {
		return sallust.GetDefault(ctx, logger)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
