// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package weather holds the domain model of a city weather lookup and the error taxonomy
// every weather provider reports its failures with.
package weather

import (
	"context"
	"time"
)

// Provider is implemented by each weather API backend.
//
// Fetch performs exactly one lookup for the given city name. Every non-nil error returned
// is a *FetchError.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) (*Result, error)
}

// Condition describes one weather category entry of a lookup, such as "clear sky".
type Condition struct {
	// ID is the provider assigned category code
	ID int
	// Description is a human-readable description of the category
	Description string
	// Icon is the provider's icon token, e.g. "01d"
	Icon string
}

// Temperature holds the current, high and low readings of a lookup.
type Temperature struct {
	Current TemperatureReading
	High    TemperatureReading
	Low     TemperatureReading
}

// Coordinates of the location the provider resolved the city name to.
type Coordinates struct {
	Lat float64
	Lon float64
}

// IsZero reports whether no coordinates were provided
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lon == 0
}

// Result is the decoded representation of one successful lookup. A Result always holds at
// least one Condition. It is never modified after it has been returned by a Provider.
type Result struct {
	Location    string
	Conditions  []Condition
	Temperature Temperature
	Coordinates Coordinates
	FetchedAt   time.Time
}

// Primary returns the first and most significant condition of the result.
func (r *Result) Primary() Condition {
	if r == nil || len(r.Conditions) == 0 {
		return Condition{}
	}
	return r.Conditions[0]
}
