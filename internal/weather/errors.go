// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"fmt"
	"strings"
)

// Kind classifies why a lookup failed.
type Kind int

const (
	// KindInvalidURL is reported if no request URL could be built for the city name. No request
	// is sent in this case.
	KindInvalidURL Kind = iota + 1
	// KindTransport is reported for DNS, connection and timeout failures.
	KindTransport
	// KindInvalidResponse is reported for any HTTP status outside of 2xx.
	KindInvalidResponse
	// KindNoData is reported if the response body is empty.
	KindNoData
	// KindDecode is reported if the response body does not match the expected payload.
	KindDecode
)

// Kinds lists every failure kind a Provider may report.
var Kinds = []Kind{KindInvalidURL, KindTransport, KindInvalidResponse, KindNoData, KindDecode}

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid URL"
	case KindTransport:
		return "transport error"
	case KindInvalidResponse:
		return "invalid response"
	case KindNoData:
		return "no data"
	case KindDecode:
		return "decode error"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// DecodeReason further classifies a KindDecode failure.
type DecodeReason int

const (
	ReasonNone DecodeReason = iota
	ReasonKeyNotFound
	ReasonTypeMismatch
	ReasonDataCorrupted
	ReasonGeneric
)

func (r DecodeReason) String() string {
	switch r {
	case ReasonKeyNotFound:
		return "key not found"
	case ReasonTypeMismatch:
		return "type mismatch"
	case ReasonDataCorrupted:
		return "data corrupted"
	case ReasonGeneric:
		return "generic"
	default:
		return "none"
	}
}

// Sentinel values to match a FetchError by kind with errors.Is.
var (
	ErrInvalidURL      = &FetchError{Kind: KindInvalidURL}
	ErrTransport       = &FetchError{Kind: KindTransport}
	ErrInvalidResponse = &FetchError{Kind: KindInvalidResponse}
	ErrNoData          = &FetchError{Kind: KindNoData}
	ErrDecode          = &FetchError{Kind: KindDecode}
)

// FetchError is the error every Provider returns. Kind is meant for branching, Cause only
// for diagnostics.
type FetchError struct {
	Kind Kind
	// Message is a human-readable description. For KindDecode it names the offending field
	// and what was expected.
	Message string
	// Reason is only set for KindDecode.
	Reason DecodeReason
	// StatusCode is only set for KindInvalidResponse.
	StatusCode int
	Cause      error
}

// NewInvalidURLError returns a KindInvalidURL error.
func NewInvalidURLError(message string, cause error) *FetchError {
	return &FetchError{Kind: KindInvalidURL, Message: message, Cause: cause}
}

// NewTransportError returns a KindTransport error wrapping cause.
func NewTransportError(cause error) *FetchError {
	return &FetchError{Kind: KindTransport, Cause: cause}
}

// NewInvalidResponseError returns a KindInvalidResponse error for the given HTTP status.
func NewInvalidResponseError(status int) *FetchError {
	return &FetchError{
		Kind:       KindInvalidResponse,
		Message:    fmt.Sprintf("unexpected HTTP status code %d", status),
		StatusCode: status,
	}
}

// NewNoDataError returns a KindNoData error.
func NewNoDataError() *FetchError {
	return &FetchError{Kind: KindNoData}
}

// NewDecodeError returns a KindDecode error.
func NewDecodeError(reason DecodeReason, message string, cause error) *FetchError {
	return &FetchError{Kind: KindDecode, Reason: reason, Message: message, Cause: cause}
}

func (e *FetchError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a FetchError of the same kind. Targets carrying a message
// or a cause only match if they are the same value.
func (e *FetchError) Is(target error) bool {
	t, ok := target.(*FetchError)
	if !ok {
		return false
	}
	if t.Message != "" || t.Cause != nil {
		return e == t
	}
	return e.Kind == t.Kind
}
