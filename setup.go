// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/arrange"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

const (
	loggingConfigKey = "logging"
	logLevelKey      = "logging.level"
)

var (
	// ErrMissingSection is returned when the configuration lacks a section
	// that has no usable default.
	ErrMissingSection = errors.New("missing required configuration section")

	// ErrVersionPrinted is returned after -v has written the build information.
	ErrVersionPrinted = errors.New("version printed")
)

// requiredSections have no defaults: the PuppetDB address and the node
// username must come from the file.
var requiredSections = []string{puppetDBConfigKey, inventoryConfigKey}

func setupFlagSet(fs *pflag.FlagSet) {
	fs.StringP("file", "f", "", "the configuration file to use.  Overrides the search path.")
	fs.BoolP("debug", "d", false, "enables debug logging.  Overrides configuration.")
	fs.BoolP("version", "v", false, "print version and exit")
}

// setup parses the command line, loads the configuration and builds the
// application logger.  The returned logger is usable even when err is not nil.
func setup(args []string, out io.Writer) (*viper.Viper, *zap.Logger, error) {
	l, err := zap.NewDevelopment() // initial value
	if err != nil {
		return nil, l, fmt.Errorf("failed to create zap logger: %w", err)
	}

	fs := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	fs.SetOutput(out)
	setupFlagSet(fs)
	if err = fs.Parse(args); err != nil {
		return nil, l, fmt.Errorf("failed to parse args: %w", err)
	}
	if printVersion, _ := fs.GetBool("version"); printVersion {
		printVersionInfo(out)
		return nil, l, ErrVersionPrinted
	}

	v := viper.New()
	file, _ := fs.GetString("file")
	if err = readConfig(v, file); err != nil {
		return v, l, err
	}
	if err = checkSections(v); err != nil {
		return v, l, err
	}

	if debug, _ := fs.GetBool("debug"); debug {
		v.Set(logLevelKey, "DEBUG")
	}

	logger, err := buildLogger(v)
	if err != nil {
		return v, l, err
	}
	return v, logger, nil
}

// readConfig reads the given file, or searches the standard locations when
// file is empty.
func readConfig(v *viper.Viper, file string) error {
	if len(file) > 0 {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(applicationName)
		v.AddConfigPath(fmt.Sprintf("/etc/%s", applicationName))
		v.AddConfigPath(fmt.Sprintf("$HOME/.%s", applicationName))
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func checkSections(v *viper.Viper) error {
	for _, key := range requiredSections {
		if !v.IsSet(key) {
			return fmt.Errorf("%w: %s", ErrMissingSection, key)
		}
	}
	return nil
}

func buildLogger(v *viper.Viper) (*zap.Logger, error) {
	var c sallust.Config
	err := v.UnmarshalKey(loggingConfigKey, &c, arrange.ComposeDecodeHooks(sallust.DecodeHook))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", loggingConfigKey, err)
	}
	return c.Build()
}

func printVersionInfo(out io.Writer) {
	fmt.Fprintf(out, "%s:\n", applicationName)
	fmt.Fprintf(out, "  version: \t%s\n", Version)
	fmt.Fprintf(out, "  go version: \t%s\n", runtime.Version())
	fmt.Fprintf(out, "  built time: \t%s\n", BuildTime)
	fmt.Fprintf(out, "  git commit: \t%s\n", GitCommit)
	fmt.Fprintf(out, "  os/arch: \t%s/%s\n", runtime.GOOS, runtime.GOARCH)
}
