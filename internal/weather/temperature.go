// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"fmt"
	"strconv"
	"strings"
)

// TemperatureUnit is the unit a TemperatureReading is expressed in.
type TemperatureUnit int

const (
	Fahrenheit TemperatureUnit = iota
	Celsius
	Kelvin
)

// UnitForSystem returns the temperature unit the provider uses for the given unit system.
// Allowed values: imperial, metric, standard
func UnitForSystem(system string) (TemperatureUnit, error) {
	switch strings.ToLower(system) {
	case "imperial":
		return Fahrenheit, nil
	case "metric":
		return Celsius, nil
	case "standard":
		return Kelvin, nil
	default:
		return Fahrenheit, fmt.Errorf("unsupported unit system: %s", system)
	}
}

// Symbol returns the unit symbol, e.g. "°F"
func (u TemperatureUnit) Symbol() string {
	switch u {
	case Fahrenheit:
		return "°F"
	case Celsius:
		return "°C"
	case Kelvin:
		return "K"
	default:
		return ""
	}
}

func (u TemperatureUnit) String() string {
	switch u {
	case Fahrenheit:
		return "fahrenheit"
	case Celsius:
		return "celsius"
	case Kelvin:
		return "kelvin"
	default:
		return "unknown"
	}
}

// TemperatureReading is a temperature value in a specific unit.
type TemperatureReading struct {
	Value float64
	Unit  TemperatureUnit
}

// Convert returns the reading expressed in the target unit.
func (t TemperatureReading) Convert(target TemperatureUnit) TemperatureReading {
	if t.Unit == target {
		return t
	}

	// Normalize to celsius first
	celsius := t.Value
	switch t.Unit {
	case Fahrenheit:
		celsius = (t.Value - 32) * 5 / 9
	case Kelvin:
		celsius = t.Value - 273.15
	}

	out := TemperatureReading{Unit: target}
	switch target {
	case Fahrenheit:
		out.Value = celsius*9/5 + 32
	case Kelvin:
		out.Value = celsius + 273.15
	default:
		out.Value = celsius
	}
	return out
}

// Format returns the value rounded to precision decimals followed by the unit symbol.
func (t TemperatureReading) Format(precision int) string {
	if precision < 0 {
		precision = 0
	}
	value := strconv.FormatFloat(t.Value, 'f', precision, 64)
	// Avoid printing "-0"
	if strings.Trim(value, "-0.") == "" {
		value = strings.TrimPrefix(value, "-")
	}
	return value + t.Unit.Symbol()
}

// String returns the reading rounded to whole degrees, e.g. "60°F".
func (t TemperatureReading) String() string {
	return t.Format(0)
}
