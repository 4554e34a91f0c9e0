// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openweathermap

import (
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/wneessen/city-weather/internal/http"
	"github.com/wneessen/city-weather/internal/logger"
	"github.com/wneessen/city-weather/internal/testhelper"
	"github.com/wneessen/city-weather/internal/weather"
)

const (
	londonFile   = "../../../../testdata/owm_london.json"
	parisFile    = "../../../../testdata/owm_paris.json"
	notFoundFile = "../../../../testdata/owm_city_not_found.json"
	testAPIKey   = "abc123"
)

var fixedTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	t.Run("creating a new provider succeeds", func(t *testing.T) {
		var provider weather.Provider
		provider, err := New(http.New(logger.New(slog.LevelInfo)), logger.New(slog.LevelInfo), "imperial", testAPIKey)
		if err != nil {
			t.Fatalf("failed to create provider: %s", err)
		}
		if provider.Name() != name {
			t.Errorf("expected provider name to be %q, got %q", name, provider.Name())
		}
	})
	t.Run("creating a provider fails", func(t *testing.T) {
		tests := []struct {
			name    string
			client  *http.Client
			log     *logger.Logger
			units   string
			apikey  string
			wantErr string
		}{
			{"nil http client", nil, logger.New(slog.LevelInfo), "imperial", testAPIKey, "http client is required"},
			{"nil logger", http.New(logger.New(slog.LevelInfo)), nil, "imperial", testAPIKey, "logger is required"},
			{"empty api key", http.New(logger.New(slog.LevelInfo)), logger.New(slog.LevelInfo), "imperial", "",
				"requires an API key"},
			{"invalid units", http.New(logger.New(slog.LevelInfo)), logger.New(slog.LevelInfo), "invalid", testAPIKey,
				"unsupported unit system"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := New(tc.client, tc.log, tc.units, tc.apikey)
				if err == nil {
					t.Fatal("expected provider creation to fail")
				}
				if !strings.Contains(err.Error(), tc.wantErr) {
					t.Errorf("expected error to contain %q, got %q", tc.wantErr, err)
				}
			})
		}
	})
}

func TestOpenWeatherMap_Fetch(t *testing.T) {
	t.Run("fetching the weather for London succeeds", func(t *testing.T) {
		var gotReq *stdhttp.Request
		provider := testProvider(t, "imperial", func(req *stdhttp.Request) (*stdhttp.Response, error) {
			gotReq = req
			return fileResponse(t, 200, londonFile), nil
		})

		result, err := provider.Fetch(t.Context(), "London")
		if err != nil {
			t.Fatalf("failed to fetch weather: %s", err)
		}
		if result.Location != "London" {
			t.Errorf("expected location to be %q, got %q", "London", result.Location)
		}
		if len(result.Conditions) != 1 {
			t.Fatalf("expected 1 condition, got %d", len(result.Conditions))
		}
		want := weather.Condition{ID: 800, Description: "clear sky", Icon: "01d"}
		if result.Conditions[0] != want {
			t.Errorf("expected condition to be %+v, got %+v", want, result.Conditions[0])
		}
		wantTemp := weather.Temperature{
			Current: weather.TemperatureReading{Value: 60.0, Unit: weather.Fahrenheit},
			High:    weather.TemperatureReading{Value: 65.0, Unit: weather.Fahrenheit},
			Low:     weather.TemperatureReading{Value: 55.0, Unit: weather.Fahrenheit},
		}
		if result.Temperature != wantTemp {
			t.Errorf("expected temperature to be %+v, got %+v", wantTemp, result.Temperature)
		}
		if result.Coordinates.Lat != 51.5085 || result.Coordinates.Lon != -0.1257 {
			t.Errorf("unexpected coordinates: %+v", result.Coordinates)
		}
		if !result.FetchedAt.Equal(fixedTime) {
			t.Errorf("expected fetch time to be %s, got %s", fixedTime, result.FetchedAt)
		}

		query := gotReq.URL.Query()
		if query.Get("q") != "London" {
			t.Errorf("expected query parameter q to be %q, got %q", "London", query.Get("q"))
		}
		if query.Get("units") != "imperial" {
			t.Errorf("expected query parameter units to be %q, got %q", "imperial", query.Get("units"))
		}
		if query.Get("appid") != testAPIKey {
			t.Errorf("expected query parameter appid to be %q, got %q", testAPIKey, query.Get("appid"))
		}
		if !strings.HasPrefix(gotReq.URL.String(), APIEndpoint+"?") {
			t.Errorf("expected request to go to %s, got %s", APIEndpoint, gotReq.URL)
		}
	})
	t.Run("multiple conditions keep their order", func(t *testing.T) {
		provider := testProvider(t, "imperial", func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return fileResponse(t, 200, parisFile), nil
		})
		result, err := provider.Fetch(t.Context(), "Paris")
		if err != nil {
			t.Fatalf("failed to fetch weather: %s", err)
		}
		if len(result.Conditions) != 2 {
			t.Fatalf("expected 2 conditions, got %d", len(result.Conditions))
		}
		if result.Primary().Description != "moderate rain" {
			t.Errorf("expected primary condition to be %q, got %q", "moderate rain", result.Primary().Description)
		}
	})
	t.Run("city names are query encoded", func(t *testing.T) {
		var rawQuery string
		provider := testProvider(t, "metric", func(req *stdhttp.Request) (*stdhttp.Response, error) {
			rawQuery = req.URL.RawQuery
			return fileResponse(t, 200, londonFile), nil
		})
		result, err := provider.Fetch(t.Context(), " São Paulo&units=standard ")
		if err != nil {
			t.Fatalf("failed to fetch weather: %s", err)
		}
		if !strings.Contains(rawQuery, "q=S%C3%A3o+Paulo%26units%3Dstandard") {
			t.Errorf("expected city name to be query encoded, got %q", rawQuery)
		}
		if !strings.Contains(rawQuery, "units=metric") {
			t.Errorf("expected units to be metric, got %q", rawQuery)
		}
		if result.Temperature.Current.Unit != weather.Celsius {
			t.Errorf("expected temperature unit to be celsius, got %s", result.Temperature.Current.Unit)
		}
	})
	t.Run("invalid city names fail without a network call", func(t *testing.T) {
		tests := []struct {
			name string
			city string
		}{
			{"NUL byte", "\x00"},
			{"newline", "bad\ncity"},
			{"tab", "New\tYork"},
			{"invalid UTF-8", "Z\xffrich"},
			{"empty", ""},
			{"whitespace only", "   "},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				calls := 0
				provider := testProvider(t, "imperial", func(req *stdhttp.Request) (*stdhttp.Response, error) {
					calls++
					return fileResponse(t, 200, londonFile), nil
				})
				result, err := provider.Fetch(t.Context(), tc.city)
				if err == nil {
					t.Fatal("expected fetch to fail")
				}
				if !errors.Is(err, weather.ErrInvalidURL) {
					t.Errorf("expected error to be %s, got %s", weather.ErrInvalidURL, err)
				}
				if result != nil {
					t.Error("expected result to be nil")
				}
				if calls != 0 {
					t.Errorf("expected no network call, got %d", calls)
				}
			})
		}
	})
	t.Run("transport errors are classified", func(t *testing.T) {
		cause := errors.New("connection refused")
		provider := testProvider(t, "imperial", func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return nil, cause
		})
		_, err := provider.Fetch(t.Context(), "London")
		if !errors.Is(err, weather.ErrTransport) {
			t.Fatalf("expected error to be %s, got %s", weather.ErrTransport, err)
		}
		if !errors.Is(err, cause) {
			t.Errorf("expected transport error to carry its cause, got %s", err)
		}
	})
	t.Run("non-2xx status codes are invalid responses regardless of the body", func(t *testing.T) {
		tests := []struct {
			status int
			file   string
		}{
			{300, londonFile},
			{400, londonFile},
			{401, londonFile},
			{404, notFoundFile},
			{404, londonFile},
			{429, londonFile},
			{500, londonFile},
			{503, ""},
		}
		for _, tc := range tests {
			t.Run(stdhttp.StatusText(tc.status), func(t *testing.T) {
				provider := testProvider(t, "imperial", func(req *stdhttp.Request) (*stdhttp.Response, error) {
					if tc.file == "" {
						return bodyResponse(tc.status, ""), nil
					}
					return fileResponse(t, tc.status, tc.file), nil
				})
				_, err := provider.Fetch(t.Context(), "London")
				if !errors.Is(err, weather.ErrInvalidResponse) {
					t.Fatalf("expected error to be %s, got %s", weather.ErrInvalidResponse, err)
				}
				var fetchErr *weather.FetchError
				if errors.As(err, &fetchErr) && fetchErr.StatusCode != tc.status {
					t.Errorf("expected status code %d, got %d", tc.status, fetchErr.StatusCode)
				}
			})
		}
	})
	t.Run("non-2xx status codes win over unreadable bodies", func(t *testing.T) {
		provider := testProvider(t, "imperial", func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: stdhttp.StatusNotFound,
				Body:       io.NopCloser(resetReader{}),
				Header:     make(stdhttp.Header),
			}, nil
		})
		_, err := provider.Fetch(t.Context(), "Atlantis")
		if !errors.Is(err, weather.ErrInvalidResponse) {
			t.Fatalf("expected error to be %s, got %s", weather.ErrInvalidResponse, err)
		}
		var fetchErr *weather.FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode != stdhttp.StatusNotFound {
			t.Errorf("expected status code %d, got %d", stdhttp.StatusNotFound, fetchErr.StatusCode)
		}
	})
	t.Run("unreadable bodies of successful responses are transport errors", func(t *testing.T) {
		provider := testProvider(t, "imperial", func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: stdhttp.StatusOK,
				Body:       io.NopCloser(resetReader{}),
				Header:     make(stdhttp.Header),
			}, nil
		})
		_, err := provider.Fetch(t.Context(), "London")
		if !errors.Is(err, weather.ErrTransport) {
			t.Fatalf("expected error to be %s, got %s", weather.ErrTransport, err)
		}
	})
	t.Run("oversized bodies are reported as corrupted data", func(t *testing.T) {
		provider := testProvider(t, "imperial", func(req *stdhttp.Request) (*stdhttp.Response, error) {
			body := `{"name":"` + strings.Repeat("x", http.MaxBodySize) + `"}`
			return bodyResponse(stdhttp.StatusOK, body), nil
		})
		_, err := provider.Fetch(t.Context(), "London")
		if !errors.Is(err, weather.ErrDecode) {
			t.Fatalf("expected error to be %s, got %s", weather.ErrDecode, err)
		}
		var fetchErr *weather.FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected a fetch error, got %T", err)
		}
		if fetchErr.Reason != weather.ReasonDataCorrupted {
			t.Errorf("expected reason %s, got %s", weather.ReasonDataCorrupted, fetchErr.Reason)
		}
		if !strings.Contains(fetchErr.Message, "exceeds the limit") {
			t.Errorf("expected message to name the size limit, got %q", fetchErr.Message)
		}
	})
	t.Run("empty bodies return no data", func(t *testing.T) {
		for _, body := range []string{"", "  \n\t"} {
			provider := testProvider(t, "imperial", func(req *stdhttp.Request) (*stdhttp.Response, error) {
				return bodyResponse(200, body), nil
			})
			_, err := provider.Fetch(t.Context(), "London")
			if !errors.Is(err, weather.ErrNoData) {
				t.Errorf("expected error to be %s, got %s", weather.ErrNoData, err)
			}
		}
	})
	t.Run("two fetches for the same city are identical", func(t *testing.T) {
		provider := testProvider(t, "imperial", func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return fileResponse(t, 200, londonFile), nil
		})
		first, err := provider.Fetch(t.Context(), "London")
		if err != nil {
			t.Fatalf("failed to fetch weather: %s", err)
		}
		second, err := provider.Fetch(t.Context(), "London")
		if err != nil {
			t.Fatalf("failed to fetch weather: %s", err)
		}
		if first == second {
			t.Error("expected every fetch to construct a new result")
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("expected results to be identical, got %+v and %+v", first, second)
		}
	})
}

func TestOpenWeatherMap_Fetch_decodeErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantReason weather.DecodeReason
		wantMsg    []string
	}{
		{
			"missing weather array",
			`{"name":"London","main":{"temp":60,"temp_max":65,"temp_min":55}}`,
			weather.ReasonKeyNotFound,
			[]string{`Could not find key "weather"`, "non-empty array of weather conditions"},
		},
		{
			"null weather array",
			`{"name":"London","weather":null,"main":{"temp":60,"temp_max":65,"temp_min":55}}`,
			weather.ReasonKeyNotFound,
			[]string{`"weather"`},
		},
		{
			"empty weather array",
			`{"name":"London","weather":[],"main":{"temp":60,"temp_max":65,"temp_min":55}}`,
			weather.ReasonDataCorrupted,
			[]string{`"weather"`, "is empty"},
		},
		{
			"missing name",
			`{"weather":[{"id":800,"description":"clear sky","icon":"01d"}],"main":{"temp":60,"temp_max":65,"temp_min":55}}`,
			weather.ReasonKeyNotFound,
			[]string{`"name"`, "location name"},
		},
		{
			"missing main object",
			`{"name":"London","weather":[{"id":800,"description":"clear sky","icon":"01d"}]}`,
			weather.ReasonKeyNotFound,
			[]string{`"main"`, "temperature data"},
		},
		{
			"missing high temperature",
			`{"name":"London","weather":[{"id":800,"description":"clear sky","icon":"01d"}],"main":{"temp":60,"temp_min":55}}`,
			weather.ReasonKeyNotFound,
			[]string{`"main.temp_max"`, "high temperature"},
		},
		{
			"missing condition icon",
			`{"name":"London","weather":[{"id":800,"description":"clear sky"}],"main":{"temp":60,"temp_max":65,"temp_min":55}}`,
			weather.ReasonKeyNotFound,
			[]string{`"weather[0].icon"`, "icon code"},
		},
		{
			"temperature of wrong type",
			`{"name":"London","weather":[{"id":800,"description":"clear sky","icon":"01d"}],"main":{"temp":"warm","temp_max":65,"temp_min":55}}`,
			weather.ReasonTypeMismatch,
			[]string{"Type mismatch for type number", `"main.temp"`, "current temperature"},
		},
		{
			"weather is an object",
			`{"name":"London","weather":{"id":800},"main":{"temp":60,"temp_max":65,"temp_min":55}}`,
			weather.ReasonTypeMismatch,
			[]string{"Type mismatch for type array", `"weather"`},
		},
		{
			"condition id of wrong type",
			`{"name":"London","weather":[{"id":"800","description":"clear sky","icon":"01d"}],"main":{"temp":60,"temp_max":65,"temp_min":55}}`,
			weather.ReasonTypeMismatch,
			[]string{"Type mismatch for type integer", "weather", "id"},
		},
		{
			"top-level array",
			`[{"name":"London"}]`,
			weather.ReasonTypeMismatch,
			[]string{"Type mismatch for type object", "top-level value is an array"},
		},
		{
			"truncated payload",
			`{"name":"London","weather":[{"id":800,`,
			weather.ReasonDataCorrupted,
			[]string{"Data found to be corrupted in JSON"},
		},
		{
			"not JSON at all",
			`<html>Bad Gateway</html>`,
			weather.ReasonDataCorrupted,
			[]string{"Data found to be corrupted in JSON", "offset"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			provider := testProvider(t, "imperial", func(req *stdhttp.Request) (*stdhttp.Response, error) {
				return bodyResponse(200, tc.body), nil
			})
			result, err := provider.Fetch(t.Context(), "London")
			if err == nil {
				t.Fatal("expected fetch to fail")
			}
			if result != nil {
				t.Error("expected result to be nil")
			}
			var fetchErr *weather.FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected error to be a FetchError, got %T", err)
			}
			if fetchErr.Kind != weather.KindDecode {
				t.Fatalf("expected kind to be %s, got %s", weather.KindDecode, fetchErr.Kind)
			}
			if fetchErr.Reason != tc.wantReason {
				t.Errorf("expected reason to be %s, got %s", tc.wantReason, fetchErr.Reason)
			}
			for _, want := range tc.wantMsg {
				if !strings.Contains(fetchErr.Message, want) {
					t.Errorf("expected message to contain %q, got %q", want, fetchErr.Message)
				}
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Run("unknown errors are generic decode errors", func(t *testing.T) {
		cause := errors.New("intentionally failing")
		err := classify(cause)
		if err.Reason != weather.ReasonGeneric {
			t.Errorf("expected reason to be %s, got %s", weather.ReasonGeneric, err.Reason)
		}
		if err.Message != "Generic Decoding Error" {
			t.Errorf("expected generic message, got %q", err.Message)
		}
		if !errors.Is(err, cause) {
			t.Error("expected generic decode error to wrap its cause")
		}
	})
}

func TestStripIndices(t *testing.T) {
	tests := map[string]string{
		"weather[0].id":  "weather.id",
		"weather[12]":    "weather",
		"main.temp":      "main.temp",
		"a[1].b[2].c[3]": "a.b.c",
	}
	for in, want := range tests {
		if got := stripIndices(in); got != want {
			t.Errorf("stripIndices(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestOpenWeatherMap_Fetch_online(t *testing.T) {
	testhelper.PerformIntegrationTests(t)
	apikey := os.Getenv("OPENWEATHERMAP_APIKEY")
	if apikey == "" {
		t.Skip("OPENWEATHERMAP_APIKEY not set")
	}
	provider, err := New(http.New(logger.New(slog.LevelInfo)), logger.New(slog.LevelDebug), "metric", apikey)
	if err != nil {
		t.Fatalf("failed to create provider: %s", err)
	}
	result, err := provider.Fetch(t.Context(), "Cologne")
	if err != nil {
		t.Fatalf("failed to fetch weather: %s", err)
	}
	t.Logf("weather in %s: %s, %s", result.Location, result.Temperature.Current, result.Primary().Description)
}

func testProvider(t *testing.T, units string, fn func(*stdhttp.Request) (*stdhttp.Response, error)) *OpenWeatherMap {
	t.Helper()
	client := http.New(logger.NewLogger(slog.LevelInfo, io.Discard))
	client.Transport = testhelper.MockRoundTripper{Fn: fn}
	provider, err := New(client, logger.NewLogger(slog.LevelDebug, io.Discard), units, testAPIKey)
	if err != nil {
		t.Fatalf("failed to create provider: %s", err)
	}
	provider.now = func() time.Time { return fixedTime }
	return provider
}

func fileResponse(t *testing.T, status int, file string) *stdhttp.Response {
	t.Helper()
	data, err := os.Open(file)
	if err != nil {
		t.Fatalf("failed to open JSON response file: %s", err)
	}
	return &stdhttp.Response{
		StatusCode: status,
		Body:       data,
		Header:     make(stdhttp.Header),
	}
}

func bodyResponse(status int, body string) *stdhttp.Response {
	return &stdhttp.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(stdhttp.Header),
	}
}

type resetReader struct{}

func (resetReader) Read([]byte) (int, error) { return 0, errors.New("connection reset by peer") }
