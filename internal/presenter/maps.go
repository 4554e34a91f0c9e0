// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

// MoonPhaseIcon is a map where moon phase names are keys and their corresponding emoji representations are values.
var MoonPhaseIcon = map[string]string{
	"New Moon":        "🌑",
	"Waxing Crescent": "🌒",
	"First Quarter":   "🌓",
	"Waxing Gibbous":  "🌔",
	"Full Moon":       "🌕",
	"Waning Gibbous":  "🌖",
	"Third Quarter":   "🌗",
	"Waning Crescent": "🌘",
}

// ConditionIcons maps the two-digit OpenWeatherMap icon group to an emoji for day (true) and
// night (false)
var ConditionIcons = map[string]map[bool]string{
	"01": {true: "☀️", false: "🌙"}, // clear sky
	"02": {true: "🌤️", false: "☁️"}, // few clouds
	"03": {true: "☁️", false: "☁️"}, // scattered clouds
	"04": {true: "☁️", false: "☁️"}, // broken clouds
	"09": {true: "🌧️", false: "🌧️"}, // shower rain
	"10": {true: "🌦️", false: "🌧️"}, // rain
	"11": {true: "⛈️", false: "⛈️"}, // thunderstorm
	"13": {true: "🌨️", false: "🌨️"}, // snow
	"50": {true: "🌫️", false: "🌫️"}, // mist
}

// UnknownConditionIcon is used for icon codes not found in ConditionIcons
const UnknownConditionIcon = "❔"

// conditionIcon returns the emoji for an OpenWeatherMap icon code such as "10n" and whether
// the code refers to daytime.
func conditionIcon(code string) (string, bool) {
	if len(code) < 3 {
		return UnknownConditionIcon, true
	}
	isDay := code[len(code)-1] != 'n'
	icons, ok := ConditionIcons[code[:len(code)-1]]
	if !ok {
		return UnknownConditionIcon, isDay
	}
	return icons[isDay], isDay
}
