// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openweathermap

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/wneessen/city-weather/internal/weather"
)

// Pointer fields let us tell a missing (or null) field apart from a zero value.
type response struct {
	Name    *string      `json:"name"`
	Weather *[]condition `json:"weather"`
	Main    *mainData    `json:"main"`
	Coord   *coord       `json:"coord"`
}

type condition struct {
	ID          *int    `json:"id"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

type mainData struct {
	Temp    *float64 `json:"temp"`
	TempMax *float64 `json:"temp_max"`
	TempMin *float64 `json:"temp_min"`
}

type coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// fieldExpectations describes the required fields in human-readable form. Array indices are
// stripped from the path before the lookup.
var fieldExpectations = map[string]string{
	"name":                "a string with the location name",
	"weather":             "a non-empty array of weather conditions",
	"weather.id":          "an integer weather condition code",
	"weather.description": "a string describing the weather condition",
	"weather.icon":        "a string with the weather icon code",
	"main":                "an object holding the temperature data",
	"main.temp":           "a number with the current temperature",
	"main.temp_max":       "a number with the high temperature",
	"main.temp_min":       "a number with the low temperature",
	"coord":               "an object with the location coordinates",
	"coord.lat":           "a number with the latitude",
	"coord.lon":           "a number with the longitude",
}

// decode parses body into a weather.Result and classifies every failure.
func decode(body []byte, unit weather.TemperatureUnit) (*weather.Result, *weather.FetchError) {
	var res response
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, classify(err)
	}

	if res.Name == nil {
		return nil, keyNotFound("name")
	}
	if res.Weather == nil {
		return nil, keyNotFound("weather")
	}
	if len(*res.Weather) == 0 {
		return nil, weather.NewDecodeError(weather.ReasonDataCorrupted,
			fmt.Sprintf("Data found to be corrupted in JSON: field %q is empty, expected %s", "weather",
				fieldExpectations["weather"]), nil)
	}
	if res.Main == nil {
		return nil, keyNotFound("main")
	}

	result := &weather.Result{
		Location:   *res.Name,
		Conditions: make([]weather.Condition, 0, len(*res.Weather)),
	}
	for i, cond := range *res.Weather {
		switch {
		case cond.ID == nil:
			return nil, keyNotFound(fmt.Sprintf("weather[%d].id", i))
		case cond.Description == nil:
			return nil, keyNotFound(fmt.Sprintf("weather[%d].description", i))
		case cond.Icon == nil:
			return nil, keyNotFound(fmt.Sprintf("weather[%d].icon", i))
		}
		result.Conditions = append(result.Conditions, weather.Condition{
			ID:          *cond.ID,
			Description: *cond.Description,
			Icon:        *cond.Icon,
		})
	}

	switch {
	case res.Main.Temp == nil:
		return nil, keyNotFound("main.temp")
	case res.Main.TempMax == nil:
		return nil, keyNotFound("main.temp_max")
	case res.Main.TempMin == nil:
		return nil, keyNotFound("main.temp_min")
	}
	result.Temperature = weather.Temperature{
		Current: weather.TemperatureReading{Value: *res.Main.Temp, Unit: unit},
		High:    weather.TemperatureReading{Value: *res.Main.TempMax, Unit: unit},
		Low:     weather.TemperatureReading{Value: *res.Main.TempMin, Unit: unit},
	}
	if res.Coord != nil {
		result.Coordinates = weather.Coordinates{Lat: res.Coord.Lat, Lon: res.Coord.Lon}
	}

	return result, nil
}

// classify turns an encoding/json error into a decode FetchError.
func classify(err error) *weather.FetchError {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		expected := jsonTypeName(typeErr.Type)
		if typeErr.Field == "" {
			return weather.NewDecodeError(weather.ReasonTypeMismatch,
				fmt.Sprintf("Type mismatch for type %s in JSON: the top-level value is %s %s", expected,
					article(typeErr.Value), typeErr.Value), err)
		}
		msg := fmt.Sprintf("Type mismatch for type %s in JSON: field %q holds %s %s value", expected,
			typeErr.Field, article(typeErr.Value), typeErr.Value)
		if want, ok := fieldExpectations[stripIndices(typeErr.Field)]; ok {
			msg += ", expected " + want
		}
		return weather.NewDecodeError(weather.ReasonTypeMismatch, msg, err)
	case errors.As(err, &syntaxErr):
		return weather.NewDecodeError(weather.ReasonDataCorrupted,
			fmt.Sprintf("Data found to be corrupted in JSON: %s (at offset %d)", syntaxErr.Error(),
				syntaxErr.Offset), err)
	default:
		return weather.NewDecodeError(weather.ReasonGeneric, "Generic Decoding Error", err)
	}
}

func keyNotFound(path string) *weather.FetchError {
	msg := fmt.Sprintf("Could not find key %q in JSON", path)
	if want, ok := fieldExpectations[stripIndices(path)]; ok {
		msg += ": expected " + want
	}
	return weather.NewDecodeError(weather.ReasonKeyNotFound, msg, nil)
}

// stripIndices turns "weather[0].id" into "weather.id"
func stripIndices(path string) string {
	var sb strings.Builder
	skip := false
	for _, r := range path {
		switch {
		case r == '[':
			skip = true
		case r == ']':
			skip = false
		case !skip:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// jsonTypeName returns the JSON name of the type a Go value is decoded into
func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "unknown"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	default:
		return t.String()
	}
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}
