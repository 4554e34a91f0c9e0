// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/wneessen/city-weather/internal/logger"
)

const (
	// DefaultTimeout is the default timeout value for the HTTPClient
	DefaultTimeout = time.Second * 10

	// MaxBodySize limits how much of a response body is read into memory
	MaxBodySize = 4 << 20
)

var (
	// version is the version of the application (will be set at build time)
	version = "dev"
	// UserAgent is the User-Agent that the HTTP client sends with API requests
	UserAgent = fmt.Sprintf("Mozilla/5.0 (%s; %s) city-weather/%s (+https://github.com/wneessen/city-weather/)",
		runtime.GOOS,
		runtime.GOARCH,
		version,
	)

	// ErrInvalidURL is returned if the endpoint cannot be parsed into a request URL
	ErrInvalidURL = errors.New("invalid request URL")

	// ErrBodyTooLarge is returned if the response body exceeds MaxBodySize
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrNilResponse is returned if the transport returned neither a response nor an error
	ErrNilResponse = errors.New("nil response received")
)

// Response holds the status code and the raw body of an HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// IsSuccess reports whether the status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client is a type wrapper for the Go stdlib http.Client and the Config
type Client struct {
	*http.Client
	logger *logger.Logger
}

// New returns a new HTTP client
func New(logger *logger.Logger) *Client {
	return NewWithTimeout(logger, DefaultTimeout)
}

// NewWithTimeout returns a new HTTP client with the given overall request timeout
func NewWithTimeout(logger *logger.Logger, timeout time.Duration) *Client {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	httpTransport := &http.Transport{TLSClientConfig: tlsConfig}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: httpTransport,
	}
	return &Client{httpClient, logger}
}

// Get performs a HTTP GET request for the given URL and returns the status code and the raw
// response body
func (h *Client) Get(ctx context.Context, endpoint string, query url.Values, headers map[string]string) (*Response, error) {
	return h.GetWithTimeout(ctx, endpoint, query, headers, DefaultTimeout)
}

// GetWithTimeout performs a HTTP GET request for the given URL and timeout and returns the status
// code and the raw response body. The body is returned regardless of the status code, it is up to
// the caller to decide whether to look at it. If reading the body fails, the response is returned
// together with the error so the caller can still inspect the status code.
func (h *Client) GetWithTimeout(ctx context.Context, endpoint string, query url.Values, headers map[string]string,
	timeout time.Duration,
) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Prepare URL and query parameters
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	// Prepare HTTP request
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed create new HTTP request with context: %w", ErrInvalidURL, err)
	}
	request.Header.Set("User-Agent", UserAgent)
	request.Header.Set("Accept", "application/json")
	for k, v := range headers {
		request.Header.Set(k, v)
	}

	// Execute HTTP request
	response, err := h.Do(request)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	if response == nil {
		return nil, ErrNilResponse
	}
	defer func(body io.ReadCloser) {
		if body == nil {
			return
		}
		if err := body.Close(); err != nil {
			h.logger.Error("failed to close HTTP request body", logger.Err(err))
		}
	}(response.Body)

	result := &Response{StatusCode: response.StatusCode}
	if response.Body == nil {
		return result, nil
	}
	result.Body, err = io.ReadAll(io.LimitReader(response.Body, MaxBodySize+1))
	if err != nil {
		return result, fmt.Errorf("failed to read HTTP response body: %w", err)
	}
	if len(result.Body) > MaxBodySize {
		result.Body = result.Body[:MaxBodySize]
		return result, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, MaxBodySize)
	}

	return result, nil
}
