// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wneessen/city-weather/internal/weather"
)

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":  timeFormat,
		"floatFormat": floatFormat,
		"temp":        tempFormat,
		"convert":     convert,
		"title":       p.title,
		"lc":          strings.ToLower,
		"uc":          strings.ToUpper,
	}
}

func (p *Presenter) title(val string) string {
	return p.caser.String(val)
}

func timeFormat(val time.Time, fmt string) string {
	if val.IsZero() {
		return ""
	}
	return val.Format(fmt)
}

func floatFormat(val float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, val)
}

func tempFormat(val weather.TemperatureReading, precision int) string {
	return val.Format(precision)
}

// convert returns the reading in the given unit. Allowed values: fahrenheit, celsius, kelvin
func convert(val weather.TemperatureReading, unit string) (weather.TemperatureReading, error) {
	switch strings.ToLower(unit) {
	case "fahrenheit", "f":
		return val.Convert(weather.Fahrenheit), nil
	case "celsius", "c":
		return val.Convert(weather.Celsius), nil
	case "kelvin", "k":
		return val.Convert(weather.Kelvin), nil
	default:
		return val, fmt.Errorf("unsupported temperature unit: %s", unit)
	}
}

func newCaser() cases.Caser {
	return cases.Title(language.English)
}

// EmojiWithSpace returns the emoji followed by enough spaces to align text in terminals that
// render emojis with different widths.
func EmojiWithSpace(emoji string) string {
	if emoji == "" {
		return ""
	}
	width := runewidth.StringWidth(emoji)
	return fmt.Sprintf("%s%s", emoji, strings.Repeat(" ", 3-min(width, 2)))
}
