// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// Package header builds the per-attempt HTTP headers a beacon send carries,
// including the optional retry-context header that correlates retries on
// the server side.
package header

import (
	"encoding/json"
	"maps"
)

// HTTP header and content-type constants shared by transport and queue.
const (
	ContentType     = "Content-Type"
	ContentEncoding = "Content-Encoding"

	DefaultContentType = "text/plain;charset=UTF-8"
	GzipEncoding       = "gzip"
)

// retryContext is the JSON body of the configured retry-context header.
// ErrorCode is omitted from the JSON object when nil, matching standard
// JSON behavior for an absent optional field.
type retryContext struct {
	Attempt   int  `json:"attempt"`
	ErrorCode *int `json:"errorCode,omitempty"`
}

// Build returns the header map for the next request attempt. If name is
// empty or attempt is 0 (the first attempt), callerHeaders is returned
// unchanged. Otherwise a copy of callerHeaders is returned with name set to
// the JSON-encoded {attempt, errorCode} retry context.
//
// attempt is 0-based: the first retry is attempt 1. errorCode reflects the
// status code that caused the previous attempt to be retried; it is nil on
// the first attempt or when the previous failure was a network error.
func Build(callerHeaders map[string]string, name string, attempt int, errorCode *int) map[string]string {
	if name == "" || attempt < 1 {
		return callerHeaders
	}

	out := make(map[string]string, len(callerHeaders)+1)
	maps.Copy(out, callerHeaders)

	payload, err := json.Marshal(retryContext{Attempt: attempt, ErrorCode: errorCode})
	if err != nil {
		// retryContext always marshals; this is unreachable in practice.
		return out
	}
	out[name] = string(payload)
	return out
}
