// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package search implements the coordinator between a presentation layer and a weather
// provider. It owns the observable search state and sequences the provider lookups.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wneessen/city-weather/internal/logger"
	"github.com/wneessen/city-weather/internal/weather"
)

// State is the observable state of a Coordinator. An empty ErrorMessage and a nil Result
// mean absent.
type State struct {
	// Query is the city name of the most recent search
	Query        string
	Result       *weather.Result
	ErrorMessage string
	IsSearching  bool
	// LastFailed is set if the most recently completed search failed. With a Result present it
	// means the Result is older than the ErrorMessage.
	LastFailed bool
}

// Coordinator runs weather lookups for submitted city names and publishes the resulting
// state transitions.
//
// A search that is submitted while another one is still in flight supersedes it: the
// previous lookup is cancelled and its outcome is discarded.
type Coordinator struct {
	provider weather.Provider
	logger   *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	generation  uint64
	cancelFetch context.CancelFunc
	closed      bool
	subscribers map[chan State]struct{}
	wg          sync.WaitGroup
}

// New returns a Coordinator that looks up the weather with the given provider.
func New(provider weather.Provider, log *logger.Logger) (*Coordinator, error) {
	if provider == nil {
		return nil, fmt.Errorf("weather provider is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		provider:    provider,
		logger:      log,
		ctx:         ctx,
		cancel:      cancel,
		subscribers: make(map[chan State]struct{}),
	}, nil
}

// Submit starts a lookup for the given city name. It returns immediately, after IsSearching
// has been set. The outcome is published once the lookup completes.
func (c *Coordinator) Submit(city string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.submit(city)
}

// Refresh submits the most recent query again, unless there is none or a search is in
// flight. It reports whether a search was started. The current result stays in place until
// the new outcome arrives.
func (c *Coordinator) Refresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.IsSearching || c.state.Query == "" {
		return false
	}
	c.logger.Debug("refreshing search", slog.String("query", c.state.Query))
	c.submit(c.state.Query)
	return true
}

// submit starts the lookup for city. c.mu must be held.
func (c *Coordinator) submit(city string) {
	if c.cancelFetch != nil {
		c.logger.Debug("superseding in-flight search", slog.String("query", c.state.Query),
			slog.String("new_query", city))
		c.cancelFetch()
	}
	c.generation++
	gen := c.generation
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelFetch = cancel

	c.state.Query = city
	c.state.IsSearching = true
	c.broadcast()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		result, err := c.provider.Fetch(ctx, city)
		c.complete(gen, city, result, err)
	}()
}

// complete applies the outcome of the lookup with the given generation. Outcomes of
// superseded lookups and lookups that finish after Close are dropped.
func (c *Coordinator) complete(gen uint64, city string, result *weather.Result, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		c.logger.Debug("discarding outcome of stale search", slog.String("query", city))
		return
	}
	c.cancelFetch = nil

	switch {
	case err != nil:
		c.logger.Warn("weather lookup failed", slog.String("query", city), logger.Err(err))
		c.state.ErrorMessage = Message(err)
		c.state.LastFailed = true
	case result == nil:
		c.logger.Warn("weather provider returned neither a result nor an error", slog.String("query", city))
		c.state.ErrorMessage = Message(weather.NewNoDataError())
		c.state.LastFailed = true
	default:
		c.logger.Debug("weather lookup succeeded", slog.String("query", city),
			slog.String("location", result.Location))
		c.state.Result = result
		c.state.LastFailed = false
	}
	c.state.IsSearching = false
	c.broadcast()
}

// ClearResult drops the current result, e.g. before the presentation layer starts a new
// search.
func (c *Coordinator) ClearResult() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Result == nil {
		return
	}
	c.state.Result = nil
	c.broadcast()
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel that receives every state transition, starting with the
// current state, and an unsubscribe function. A subscriber that does not keep up loses
// intermediate states but always receives the newest one. The channel is closed on
// unsubscribe or Close.
func (c *Coordinator) Subscribe(size int) (<-chan State, func()) {
	if size < 1 {
		size = 1
	}
	ch := make(chan State, size)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	ch <- c.state
	c.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subscribers[ch]; ok {
				delete(c.subscribers, ch)
				close(ch)
			}
		})
	}
	return ch, unsub
}

// Close cancels an in-flight lookup, closes all subscriptions and waits for the lookup
// goroutines to return. Outcomes arriving after Close are discarded.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
	c.mu.Unlock()

	c.wg.Wait()
}

// broadcast sends the current state to all subscribers. c.mu must be held.
func (c *Coordinator) broadcast() {
	for ch := range c.subscribers {
		select {
		case ch <- c.state:
			continue
		default:
		}
		// Drop the oldest pending state to make room for the newest
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- c.state:
		default:
		}
	}
}
