// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/marionette/model"
	"github.com/xmidt-org/marionette/puppetdb"
)

func TestCache(t *testing.T) {
	assert := assert.New(t)
	c := NewCache()

	_, ok := c.Get()
	assert.False(ok)

	ns := newBase("a")
	assert.True(c.Set(ns))
	got, ok := c.Get()
	assert.True(ok)
	assert.Same(ns, got)

	c.Close()
	_, ok = c.Get()
	assert.False(ok)

	assert.False(c.Set(ns))
	_, ok = c.Get()
	assert.False(ok)
}

func TestNewGate(t *testing.T) {
	fetcher := NodeFetcherFunc(func(context.Context) (*model.NodeSet, error) { return newBase("a"), nil })

	_, err := NewGate(nil, NewCache(), newTestMeasures(), nil)
	assert.ErrorIs(t, err, ErrNoFetcherProvided)

	_, err = NewGate(fetcher, NewCache(), nil, nil)
	assert.ErrorIs(t, err, ErrNilMeasures)

	g, err := NewGate(fetcher, nil, newTestMeasures(), nil)
	assert.NoError(t, err)
	assert.NotNil(t, g.cache)
}

func TestGetNodesCachesSuccess(t *testing.T) {
	var (
		assert   = assert.New(t)
		require  = require.New(t)
		source   = new(MockSource)
		measures = newTestMeasures()
	)

	source.On("ListActiveNodes", mock.Anything, nil).Return(puppetdb.Nodes{{Certname: "a"}}, nil).Once()
	source.On("ListFacts", mock.Anything, mock.Anything).Return(puppetdb.Facts{
		{Certname: "a", Name: "osfamily", Value: "Debian"},
	}, nil).Once()

	f, err := NewFetcher(Config{Username: "svc"}, source, measures, nil)
	require.NoError(err)
	g, err := NewGate(f, NewCache(), measures, nil)
	require.NoError(err)

	first, err := g.GetNodes(context.Background())
	require.NoError(err)
	second, err := g.GetNodes(context.Background())
	require.NoError(err)

	assert.Same(first, second)
	source.AssertNumberOfCalls(t, "ListActiveNodes", 1)
	source.AssertNumberOfCalls(t, "ListFacts", 1)
	assert.Equal(1.0, testutil.ToFloat64(measures.CacheRequests.WithLabelValues(MissResult)))
	assert.Equal(1.0, testutil.ToFloat64(measures.CacheRequests.WithLabelValues(HitResult)))
	assert.Equal(1.0, testutil.ToFloat64(measures.Nodes))
}

func TestGetNodesDoesNotCacheFailure(t *testing.T) {
	tcs := []struct {
		desc        string
		firstErr    error
		expectedErr interface{}
	}{
		{
			desc:        "Remote service failure",
			firstErr:    &RemoteServiceError{Op: "list nodes", Err: errTransport},
			expectedErr: new(*RemoteServiceError),
		},
		{
			desc:        "Zero nodes",
			firstErr:    EmptyNodesError{},
			expectedErr: new(EmptyNodesError),
		},
		{
			desc:        "Zero facts",
			firstErr:    EmptyFactsError{},
			expectedErr: new(EmptyFactsError),
		},
		{
			desc:        "Query build failure",
			firstErr:    &QueryBuildError{Err: errors.New("bad predicate")},
			expectedErr: new(*QueryBuildError),
		},
	}

	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			var (
				assert   = assert.New(t)
				require  = require.New(t)
				calls    int
				expected = newBase("a")
			)

			fetcher := NodeFetcherFunc(func(context.Context) (*model.NodeSet, error) {
				calls++
				if calls == 1 {
					return nil, tc.firstErr
				}
				return expected, nil
			})
			g, err := NewGate(fetcher, NewCache(), newTestMeasures(), nil)
			require.NoError(err)

			ns, err := g.GetNodes(context.Background())
			assert.Nil(ns)
			assert.ErrorAs(err, tc.expectedErr)
			_, cached := g.cache.Get()
			assert.False(cached)

			ns, err = g.GetNodes(context.Background())
			require.NoError(err)
			assert.Same(expected, ns)
			assert.Equal(2, calls)
		})
	}
}

func TestGetNodesSingleFlight(t *testing.T) {
	var (
		assert   = assert.New(t)
		require  = require.New(t)
		calls    int32
		release  = make(chan struct{})
		expected = newBase("a", "b")
	)

	fetcher := NodeFetcherFunc(func(context.Context) (*model.NodeSet, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return expected, nil
	})
	g, err := NewGate(fetcher, NewCache(), newTestMeasures(), nil)
	require.NoError(err)

	const callers = 20
	var (
		wg      sync.WaitGroup
		results = make([]*model.NodeSet, callers)
		errs    = make([]error, callers)
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = g.GetNodes(context.Background())
		}(i)
	}

	// give the callers time to pile up behind the first fetch
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < callers; i++ {
		assert.NoError(errs[i])
		assert.Same(expected, results[i])
	}
}

func TestGateStop(t *testing.T) {
	var (
		assert   = assert.New(t)
		require  = require.New(t)
		calls    int
		measures = newTestMeasures()
	)

	fetcher := NodeFetcherFunc(func(context.Context) (*model.NodeSet, error) {
		calls++
		return newBase("a"), nil
	})
	g, err := NewGate(fetcher, NewCache(), measures, nil)
	require.NoError(err)

	_, err = g.GetNodes(context.Background())
	require.NoError(err)
	assert.Equal(1.0, testutil.ToFloat64(measures.Nodes))

	assert.NoError(g.Stop(context.Background()))
	assert.Equal(0.0, testutil.ToFloat64(measures.Nodes))
	_, cached := g.cache.Get()
	assert.False(cached)

	_, err = g.GetNodes(context.Background())
	require.NoError(err)
	assert.Equal(2, calls)
}

func TestGetNodesWaiterSurvivesCancelledCaller(t *testing.T) {
	var (
		assert   = assert.New(t)
		require  = require.New(t)
		calls    int32
		entered  = make(chan struct{})
		release  = make(chan struct{})
		expected = newBase("a")
	)

	fetcher := NodeFetcherFunc(func(ctx context.Context) (*model.NodeSet, error) {
		atomic.AddInt32(&calls, 1)
		close(entered)
		select {
		case <-release:
			return expected, nil
		case <-ctx.Done():
			return nil, &RemoteServiceError{Op: "list nodes", Err: ctx.Err()}
		}
	})
	g, err := NewGate(fetcher, NewCache(), newTestMeasures(), nil)
	require.NoError(err)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := g.GetNodes(firstCtx)
		firstErr <- err
	}()
	<-entered

	type result struct {
		nodes *model.NodeSet
		err   error
	}
	second := make(chan result, 1)
	go func() {
		ns, err := g.GetNodes(context.Background())
		second <- result{nodes: ns, err: err}
	}()

	// let the second caller join the flight before the first one leaves
	time.Sleep(50 * time.Millisecond)
	cancel()
	assert.ErrorIs(<-firstErr, context.Canceled)

	close(release)
	r := <-second
	require.NoError(r.err)
	assert.Same(expected, r.nodes)
	assert.Equal(int32(1), atomic.LoadInt32(&calls))

	ns, ok := g.cache.Get()
	assert.True(ok)
	assert.Same(expected, ns)
}

func TestGateStopDuringFetch(t *testing.T) {
	var (
		assert   = assert.New(t)
		require  = require.New(t)
		entered  = make(chan struct{})
		release  = make(chan struct{})
		measures = newTestMeasures()
		expected = newBase("a")
	)

	fetcher := NodeFetcherFunc(func(context.Context) (*model.NodeSet, error) {
		close(entered)
		<-release
		return expected, nil
	})
	g, err := NewGate(fetcher, NewCache(), measures, nil)
	require.NoError(err)

	done := make(chan *model.NodeSet, 1)
	go func() {
		ns, err := g.GetNodes(context.Background())
		assert.NoError(err)
		done <- ns
	}()
	<-entered

	require.NoError(g.Stop(context.Background()))
	close(release)

	assert.Same(expected, <-done)
	_, cached := g.cache.Get()
	assert.False(cached)
	assert.Equal(0.0, testutil.ToFloat64(measures.Nodes))
}
