// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package openweathermap implements a weather.Provider for the OpenWeatherMap current
// weather API.
package openweathermap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/wneessen/city-weather/internal/http"
	"github.com/wneessen/city-weather/internal/logger"
	"github.com/wneessen/city-weather/internal/weather"
)

const (
	APIEndpoint = "https://api.openweathermap.org/data/2.5/weather"
	name        = "openweathermap"
)

type OpenWeatherMap struct {
	apikey string
	units  string
	unit   weather.TemperatureUnit
	log    *logger.Logger
	http   *http.Client
	now    func() time.Time
}

func New(client *http.Client, log *logger.Logger, units, apikey string) (*OpenWeatherMap, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if apikey == "" {
		return nil, fmt.Errorf("openweathermap provider requires an API key")
	}
	unit, err := weather.UnitForSystem(units)
	if err != nil {
		return nil, err
	}

	return &OpenWeatherMap{
		apikey: apikey,
		units:  strings.ToLower(units),
		unit:   unit,
		log:    log,
		http:   client,
		now:    time.Now,
	}, nil
}

func (o *OpenWeatherMap) Name() string {
	return name
}

// Fetch looks up the current weather for the given city name. It performs exactly one HTTP
// request and never retries. Every returned error is a *weather.FetchError.
func (o *OpenWeatherMap) Fetch(ctx context.Context, city string) (*weather.Result, error) {
	query, ferr := o.query(city)
	if ferr != nil {
		return nil, ferr
	}

	timeout := o.http.Timeout
	if timeout <= 0 {
		timeout = http.DefaultTimeout
	}

	o.log.Debug("requesting current weather", slog.String("provider", name), slog.String("city", city))
	response, err := o.http.GetWithTimeout(ctx, APIEndpoint, query, nil, timeout)

	// The status decides before anything the body could tell us
	if response != nil && !response.IsSuccess() {
		o.log.Debug("weather service rejected the request", slog.String("provider", name),
			slog.String("city", city), slog.Int("status", response.StatusCode))
		return nil, weather.NewInvalidResponseError(response.StatusCode)
	}
	if err != nil {
		switch {
		case errors.Is(err, http.ErrInvalidURL):
			return nil, weather.NewInvalidURLError("failed to build request URL", err)
		case errors.Is(err, http.ErrBodyTooLarge):
			return nil, weather.NewDecodeError(weather.ReasonDataCorrupted,
				fmt.Sprintf("Data found to be corrupted in JSON: the response exceeds the limit of %d bytes",
					http.MaxBodySize), err)
		}
		return nil, weather.NewTransportError(err)
	}
	o.log.Debug("received weather response", slog.String("provider", name), slog.String("city", city),
		slog.Int("status", response.StatusCode), slog.Int("size", len(response.Body)))

	if len(bytes.TrimSpace(response.Body)) == 0 {
		return nil, weather.NewNoDataError()
	}

	result, ferr := decode(response.Body, o.unit)
	if ferr != nil {
		return nil, ferr
	}
	result.FetchedAt = o.now()

	return result, nil
}

// query builds the query parameters for the given city name. City names that can not be
// represented as a query component are rejected before any request is made.
func (o *OpenWeatherMap) query(city string) (url.Values, *weather.FetchError) {
	if strings.TrimSpace(city) == "" {
		return nil, weather.NewInvalidURLError("city name must not be empty", nil)
	}
	if !utf8.ValidString(city) {
		return nil, weather.NewInvalidURLError("city name is not valid UTF-8", nil)
	}
	if idx := strings.IndexFunc(city, unicode.IsControl); idx != -1 {
		return nil, weather.NewInvalidURLError(fmt.Sprintf("city name contains a control character at "+
			"position %d", idx), nil)
	}

	query := url.Values{}
	query.Set("q", strings.TrimSpace(city))
	query.Set("units", o.units)
	query.Set("appid", o.apikey)
	return query, nil
}
