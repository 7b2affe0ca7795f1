// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/xmidt-org/marionette/model"
	"github.com/xmidt-org/marionette/puppetdb"
	"github.com/xmidt-org/marionette/puppetdb/query"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/sets"
)

var (
	ErrNilMeasures       = errors.New("measures cannot be nil")
	ErrNoSourceProvided  = errors.New("no puppetdb source provided")
	ErrNoFetcherProvided = errors.New("no fetcher provided")
)

// Source is the subset of the PuppetDB API the inventory is built from.
type Source interface {
	// ListActiveNodes returns the active nodes, optionally narrowed by filter.
	ListActiveNodes(ctx context.Context, filter query.Expression) (puppetdb.Nodes, error)

	// ListFacts returns the facts matching q.
	ListFacts(ctx context.Context, q query.Expression) (puppetdb.Facts, error)
}

// Config contains the inventory settings.
type Config struct {
	// Username is the remote user set on every node.
	Username string `validate:"required"`

	// CustomFacts are fact names requested in addition to the mandatory ones.
	// (Optional)
	CustomFacts []string
}

// Fetcher builds a complete NodeSet from PuppetDB. It holds no state
// between calls.
type Fetcher struct {
	source      Source
	username    string
	customFacts sets.Set[string]
	measures    *Measures
	logger      *zap.Logger
}

// NewFetcher creates a Fetcher. A nil logger falls back to a no op logger.
func NewFetcher(config Config, source Source, measures *Measures, logger *zap.Logger) (*Fetcher, error) {
	if source == nil {
		return nil, ErrNoSourceProvided
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if logger == nil {
		logger = sallust.Default()
	}
	return &Fetcher{
		source:      source,
		username:    config.Username,
		customFacts: sets.New(config.CustomFacts...),
		measures:    measures,
		logger:      logger,
	}, nil
}

// Fetch lists the active nodes and their facts and merges them. Either a
// complete NodeSet or an error is returned, never both.
func (f *Fetcher) Fetch(ctx context.Context) (ns *model.NodeSet, err error) {
	start := time.Now()
	defer func() {
		outcome := SuccessOutcome
		if err != nil {
			outcome = FailureOutcome
		}
		f.measures.Fetches.WithLabelValues(outcome).Inc()
		f.measures.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	l := f.loggerFor(ctx)

	l.Info("Requesting nodes from PuppetDB")
	nodes, err := f.source.ListActiveNodes(ctx, nil)
	if err != nil {
		return nil, &RemoteServiceError{Op: "list nodes", Err: err}
	}
	if len(nodes) == 0 {
		return nil, EmptyNodesError{}
	}
	l.Info("Received nodes from PuppetDB", zap.Int("count", len(nodes)))

	base := Convert(nodes, f.username)

	q, err := BuildFactQuery(f.customFacts)
	if err != nil {
		return nil, err
	}

	l.Info("Requesting facts from PuppetDB")
	facts, err := f.source.ListFacts(ctx, q)
	if err != nil {
		return nil, &RemoteServiceError{Op: "list facts", Err: err}
	}
	if len(facts) == 0 {
		return nil, EmptyFactsError{}
	}
	l.Info("Received facts from PuppetDB", zap.Int("count", len(facts)))

	ns, dropped := Enrich(base, facts)
	if dropped > 0 {
		l.Debug("Dropped facts of inactive or unknown nodes", zap.Int("count", dropped))
		f.measures.DroppedFacts.Add(float64(dropped))
	}
	return ns, nil
}

// loggerFor prefers the request scoped logger placed in ctx by the transport.
func (f *Fetcher) loggerFor(ctx context.Context) *zap.Logger {
	return sallust.GetDefault(ctx, f.logger)
}
