// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper holds shared helpers for the package tests.
package testhelper

import (
	"net/http"
	"os"
	"testing"
)

const (
	// TestOnlineAPIURL is a public endpoint used by tests that require network access
	TestOnlineAPIURL = "https://api.openweathermap.org/data/2.5/weather"

	integrationEnv = "PERFORM_INTEGRATION_TESTS"
)

// MockRoundTripper implements http.RoundTripper by calling Fn
type MockRoundTripper struct {
	Fn func(*http.Request) (*http.Response, error)
}

// RoundTrip calls the mocked function
func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// PerformIntegrationTests skips the calling test unless the integration test environment
// variable is set to "true"
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if val := os.Getenv(integrationEnv); val != "true" {
		t.Skipf("skipping integration test. Set %s=true to enable", integrationEnv)
	}
}
