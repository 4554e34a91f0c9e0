// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package search

import (
	"errors"

	"github.com/wneessen/city-weather/internal/weather"
)

// User-facing messages for failed searches
const (
	MsgInvalidResponse = "Invalid City Name"
	MsgInvalidURL      = "Invalid URL"
	MsgNoData          = "No data"
	MsgTransport       = "Unable to reach the weather service"
	MsgUnknown         = "Unknown error"

	// MsgDecode is only used for decode errors that carry no message of their own
	MsgDecode = "Generic Decoding Error"
)

// Message maps an error returned by a weather.Provider to a short user-facing message.
// Decode errors carry their own message, which is returned verbatim.
//
// Every weather.Kind must have a case here. TestMessage fails for kinds that fall through
// to MsgUnknown.
func Message(err error) string {
	var fetchErr *weather.FetchError
	if !errors.As(err, &fetchErr) {
		return MsgUnknown
	}

	switch fetchErr.Kind {
	case weather.KindDecode:
		if fetchErr.Message == "" {
			return MsgDecode
		}
		return fetchErr.Message
	case weather.KindInvalidResponse:
		return MsgInvalidResponse
	case weather.KindInvalidURL:
		return MsgInvalidURL
	case weather.KindNoData:
		return MsgNoData
	case weather.KindTransport:
		return MsgTransport
	default:
		return MsgUnknown
	}
}
