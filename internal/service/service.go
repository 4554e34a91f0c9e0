// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires the weather provider, the search coordinator and the presenter into
// the city-weather command line service.
package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/wneessen/city-weather/internal/config"
	"github.com/wneessen/city-weather/internal/http"
	"github.com/wneessen/city-weather/internal/logger"
	"github.com/wneessen/city-weather/internal/presenter"
	"github.com/wneessen/city-weather/internal/search"
	"github.com/wneessen/city-weather/internal/weather/provider/openweathermap"
)

const (
	refreshJobName = "weather_refresh_job"
	subscriberSize = 16
)

var (
	// ErrSearchFailed is returned if a search settled without a result
	ErrSearchFailed = errors.New("weather search failed")

	// ErrSearchSuperseded is returned if a search for another city took over while waiting
	ErrSearchSuperseded = errors.New("weather search superseded")

	// ErrCoordinatorClosed is returned if the coordinator was closed while waiting for a search
	ErrCoordinatorClosed = errors.New("search coordinator closed")
)

// Service reads city names, runs the searches and prints the rendered state. A Service is
// meant to be run once.
type Service struct {
	config      *config.Config
	logger      *logger.Logger
	http        *http.Client
	coordinator *search.Coordinator
	presenter   *presenter.Presenter
	scheduler   gocron.Scheduler
}

func New(conf *config.Config, log *logger.Logger) (*Service, error) {
	if conf == nil {
		return nil, fmt.Errorf("config is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	client := http.NewWithTimeout(log, conf.Weather.Timeout)
	provider, err := openweathermap.New(client, log, conf.Units, conf.Weather.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather provider: %w", err)
	}
	coordinator, err := search.New(provider, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create search coordinator: %w", err)
	}
	pres, err := presenter.New(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Service{
		config:      conf,
		logger:      log,
		http:        client,
		coordinator: coordinator,
		presenter:   pres,
		scheduler:   scheduler,
	}, nil
}

// Run searches the given cities one after another. Without cities, city names are read line
// by line from in. Every state change is rendered to out. If a refresh interval is configured,
// the last city is searched again on that interval until ctx is cancelled.
//
// With cities given, the error of the last search is returned.
func (s *Service) Run(ctx context.Context, cities []string, in io.Reader, out io.Writer) error {
	defer s.shutdown()

	interactive := len(cities) == 0
	sub, unsub := s.coordinator.Subscribe(subscriberSize)
	wg := sync.WaitGroup{}
	wg.Go(func() {
		s.render(out, sub, interactive)
	})
	defer func() {
		unsub()
		wg.Wait()
	}()

	if s.config.Intervals.Refresh > 0 {
		if err := s.scheduleRefresh(ctx, s.config.Intervals.Refresh); err != nil {
			return err
		}
		s.scheduler.Start()
	}

	var err error
	if interactive {
		err = s.readQueries(ctx, in)
	} else {
		err = s.searchAll(ctx, cities)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil || s.config.Intervals.Refresh <= 0 {
		return err
	}

	// Keep refreshing the last search until we get interrupted
	<-ctx.Done()
	return nil
}

// shutdown stops the scheduler and closes the coordinator. It is safe to call more than once.
func (s *Service) shutdown() {
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Error("failed to shut down scheduler", logger.Err(err))
	}
	s.coordinator.Close()
}

// Search clears the current result, submits the city and waits until the search settled. If a
// search for another city is submitted in the meantime, ErrSearchSuperseded is returned.
func (s *Service) Search(ctx context.Context, city string) (search.State, error) {
	if err := ctx.Err(); err != nil {
		return s.coordinator.Snapshot(), err
	}
	sub, unsub := s.coordinator.Subscribe(subscriberSize)
	defer unsub()

	s.coordinator.ClearResult()
	s.coordinator.Submit(city)

	searching := false
	for {
		select {
		case <-ctx.Done():
			return s.coordinator.Snapshot(), ctx.Err()
		case state, ok := <-sub:
			if !ok {
				return s.coordinator.Snapshot(), ErrCoordinatorClosed
			}
			if !searching {
				// Skip the states published before our own submit
				searching = state.IsSearching && state.Query == city
				continue
			}
			if state.Query != city {
				return state, fmt.Errorf("%w: %q by %q", ErrSearchSuperseded, city, state.Query)
			}
			if state.IsSearching {
				continue
			}
			if state.Result == nil {
				return state, fmt.Errorf("%w for %q: %s", ErrSearchFailed, city, state.ErrorMessage)
			}
			return state, nil
		}
	}
}

func (s *Service) searchAll(ctx context.Context, cities []string) error {
	var err error
	for _, city := range cities {
		if _, err = s.Search(ctx, city); err != nil {
			if !errors.Is(err, ErrSearchFailed) && !errors.Is(err, ErrSearchSuperseded) {
				return err
			}
			s.logger.Debug("search failed", slog.String("query", city), logger.Err(err))
		}
	}
	return err
}

// readQueries searches every non-empty line read from in until in is exhausted or ctx is
// cancelled. Failed searches are not fatal.
func (s *Service) readQueries(ctx context.Context, in io.Reader) error {
	if in == nil {
		return fmt.Errorf("no cities given and no input to read from")
	}

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-errs; err != nil {
					return fmt.Errorf("failed to read city names: %w", err)
				}
				return nil
			}
			city := strings.TrimSpace(line)
			if city == "" {
				continue
			}
			_, err := s.Search(ctx, city)
			switch {
			case errors.Is(err, ErrSearchFailed), errors.Is(err, ErrSearchSuperseded):
				s.logger.Debug("search failed", slog.String("query", city), logger.Err(err))
			case err != nil:
				return err
			}
		}
	}
}

// render prints every state that renders differently from the previous one. Idle states are
// only printed in interactive mode.
func (s *Service) render(out io.Writer, sub <-chan search.State, interactive bool) {
	last := ""
	for state := range sub {
		if !interactive && isIdle(state) {
			continue
		}
		text, err := s.presenter.Render(state)
		if err != nil {
			s.logger.Error("failed to render state", logger.Err(err), slog.String("query", state.Query))
			continue
		}
		if text == last {
			continue
		}
		last = text
		if _, err = fmt.Fprintln(out, text); err != nil {
			s.logger.Error("failed to write output", logger.Err(err))
		}
	}
}

func isIdle(state search.State) bool {
	return state.Result == nil && !state.IsSearching && state.ErrorMessage == ""
}

func (s *Service) scheduleRefresh(ctx context.Context, interval time.Duration) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.refresh),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(refreshJobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", refreshJobName, err)
	}
	return nil
}

// refresh submits the most recent query again if no search is in flight.
func (s *Service) refresh(context.Context) {
	if !s.coordinator.Refresh() {
		s.logger.Debug("skipping weather refresh")
	}
}
