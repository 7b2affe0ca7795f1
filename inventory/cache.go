// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"
	"sync"

	"github.com/xmidt-org/marionette/model"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// cacheKey is the only key the cache is ever filled under.
const cacheKey = "nodes"

// Cache is a single slot holding the published NodeSet.
//
// The slot has no expiry and is never refreshed in the background: once
// filled it serves the same NodeSet until the cache is closed. Anyone adding
// a TTL must also decide how readers holding the old set are affected.
type Cache struct {
	lock   sync.RWMutex
	nodes  *model.NodeSet
	closed bool
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached NodeSet, if any.
func (c *Cache) Get() (*model.NodeSet, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.nodes, c.nodes != nil
}

// Set fills the slot. It reports false, leaving the slot empty, once the
// cache has been closed.
func (c *Cache) Set(ns *model.NodeSet) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return false
	}
	c.nodes = ns
	return true
}

// Close empties the slot for good.
func (c *Cache) Close() {
	c.lock.Lock()
	c.nodes = nil
	c.closed = true
	c.lock.Unlock()
}

// NodeFetcher builds a fresh NodeSet.
type NodeFetcher interface {
	Fetch(ctx context.Context) (*model.NodeSet, error)
}

// NodeFetcherFunc is an adapter to allow the use of ordinary functions as NodeFetchers.
type NodeFetcherFunc func(ctx context.Context) (*model.NodeSet, error)

func (f NodeFetcherFunc) Fetch(ctx context.Context) (*model.NodeSet, error) {
	return f(ctx)
}

// Gate serves the NodeSet from its Cache and fills the cache on a miss.
// Concurrent misses share a single fetch. Failed fetches are never cached,
// so the next call fetches again.
type Gate struct {
	fetcher  NodeFetcher
	cache    *Cache
	group    singleflight.Group
	measures *Measures
	logger   *zap.Logger
}

// NewGate creates a Gate over the given cache.
func NewGate(fetcher NodeFetcher, cache *Cache, measures *Measures, logger *zap.Logger) (*Gate, error) {
	if fetcher == nil {
		return nil, ErrNoFetcherProvided
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = sallust.Default()
	}
	return &Gate{
		fetcher:  fetcher,
		cache:    cache,
		measures: measures,
		logger:   logger,
	}, nil
}

// GetNodes returns the current NodeSet. The returned set is shared with
// every other caller and must not be modified.
func (g *Gate) GetNodes(ctx context.Context) (*model.NodeSet, error) {
	if ns, ok := g.cache.Get(); ok {
		g.measures.CacheRequests.WithLabelValues(HitResult).Inc()
		g.logger.Debug("Using cached puppet nodes")
		return ns, nil
	}

	g.measures.CacheRequests.WithLabelValues(MissResult).Inc()
	g.logger.Info("Cache is empty")

	// the flight ignores caller cancellation; each caller only stops waiting
	fetchCtx := context.WithoutCancel(ctx)
	results := g.group.DoChan(cacheKey, func() (interface{}, error) {
		// another flight may have filled the slot after our check
		if ns, ok := g.cache.Get(); ok {
			return ns, nil
		}
		ns, err := g.fetcher.Fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if g.cache.Set(ns) {
			g.measures.Nodes.Set(float64(ns.Len()))
			g.logger.Info("Cache refreshed", zap.Int("nodes", ns.Len()))
		}
		return ns, nil
	})

	select {
	case <-ctx.Done():
		g.logger.Debug("Gave up waiting for nodes", zap.Error(ctx.Err()))
		return nil, ctx.Err()
	case r := <-results:
		if r.Err != nil {
			g.logger.Error("Failed to fetch nodes from PuppetDB", zap.Error(r.Err))
			return nil, r.Err
		}
		return r.Val.(*model.NodeSet), nil
	}
}

// Stop releases the cached NodeSet. A fetch still in flight completes for
// its callers but is no longer cached.
func (g *Gate) Stop(_ context.Context) error {
	g.cache.Close()
	g.measures.Nodes.Set(0)
	return nil
}
