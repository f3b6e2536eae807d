// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// Package result defines the closed outcome taxonomy a beacon send settles
// into. It replaces promise-rejection control flow with an explicit,
// always-populated value: callers branch on Type and Drop, never on error.
package result

import "fmt"

// Type identifies which branch of the outcome taxonomy a Result carries.
type Type int

const (
	// Success means the request was delivered and the server answered 2xx.
	Success Type = iota
	// Unknown means a fire-and-forget dispatch was accepted for queueing;
	// the delivery outcome is not observable.
	Unknown
	// Response means the server answered with a non-2xx status.
	Response
	// Network means the request failed before any response was received.
	Network
	// Persisted means the payload was handed to the persistence queue
	// instead of being retried in memory or dropped.
	Persisted
)

// String renders the Type for logs and test failure messages.
func (t Type) String() string {
	switch t {
	case Success:
		return "success"
	case Unknown:
		return "unknown"
	case Response:
		return "response"
	case Network:
		return "network"
	case Persisted:
		return "persisted"
	default:
		return fmt.Sprintf("result.Type(%d)", int(t))
	}
}

// Result is the value every beacon send settles into. It is always fully
// populated; a Result is never wrapped in a Go error across a public
// boundary.
type Result struct {
	Type Type

	// StatusCode is set for Success, Response, and (when known) Persisted.
	StatusCode int
	// HasStatusCode distinguishes "no status observed" from status 0.
	HasStatusCode bool

	// RawError carries the transport-observed error text for Response
	// (the response status text) and Network (the error message, or
	// "UNKNOWN_ERROR" when the underlying error carries no message).
	RawError string

	// Drop becomes true only once the core has committed to abandoning
	// this payload — it will not be retried in memory, persisted, or
	// replayed again.
	Drop bool
}

// WithStatusCode returns a copy of r with StatusCode populated.
func (r Result) WithStatusCode(code int) Result {
	r.StatusCode = code
	r.HasStatusCode = true
	return r
}

// Dropped returns a copy of r with Drop set to true.
func (r Result) Dropped() Result {
	r.Drop = true
	return r
}

// OK builds a Success result.
func OK(statusCode int) Result {
	return Result{Type: Success}.WithStatusCode(statusCode)
}

// Unobserved builds an Unknown result (sendBeacon-shaped fire-and-forget).
func Unobserved() Result {
	return Result{Type: Unknown}
}

// HTTPError builds a Response result for a non-2xx status.
func HTTPError(statusCode int, rawError string) Result {
	return Result{Type: Response, RawError: rawError}.WithStatusCode(statusCode)
}

// TransportError builds a Network result for a pre-response failure.
func TransportError(rawError string) Result {
	if rawError == "" {
		rawError = "UNKNOWN_ERROR"
	}
	return Result{Type: Network, RawError: rawError}
}

// PersistedResult builds a Persisted result, optionally carrying the status
// code that caused the persistence decision.
func PersistedResult(statusCode *int) Result {
	r := Result{Type: Persisted}
	if statusCode != nil {
		r = r.WithStatusCode(*statusCode)
	}
	return r
}
