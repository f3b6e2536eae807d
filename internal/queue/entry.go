// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// Package queue implements the durable, capped persistence queue: the
// shared contract described in spec §4.4, one controller that drives
// throttled notify/replay against either storage engine, and two
// interchangeable engines (ordered-log, key/value).
package queue

import "github.com/google/uuid"

// RetryEntry is the unit of persistence. Timestamp is the ordering key and
// never changes once an entry is created, even across re-enqueues by the
// replay loop — only AttemptCount advances.
type RetryEntry struct {
	URL          string            `json:"url"`
	Body         string            `json:"body"`
	Headers      map[string]string `json:"headers,omitempty"`
	StatusCode   *int              `json:"statusCode,omitempty"`
	Timestamp    int64             `json:"timestamp"`
	AttemptCount int               `json:"attemptCount"`

	// traceID correlates the log lines of one push, or of one replay step
	// (replay, drop or re-enqueue). It is never persisted or sent on the
	// wire, so an entry read back from storage is given a new one.
	traceID uuid.UUID `json:"-"`
}

// NewRetryEntry builds a RetryEntry with a fresh trace ID. attemptCount
// must already include every in-memory attempt made before persisting.
func NewRetryEntry(url, body string, headers map[string]string, statusCode *int, timestamp int64, attemptCount int) RetryEntry {
	return RetryEntry{
		URL:          url,
		Body:         body,
		Headers:      headers,
		StatusCode:   statusCode,
		Timestamp:    timestamp,
		AttemptCount: attemptCount,
		traceID:      uuid.New(),
	}
}

// TraceID returns the entry's log-correlation identifier, generating one
// on first use if the entry was decoded from storage (a replayed entry's
// trace ID is new — spec.md §3 only requires Timestamp to be stable).
func (e *RetryEntry) TraceID() uuid.UUID {
	if e.traceID == uuid.Nil {
		e.traceID = uuid.New()
	}
	return e.traceID
}

// withAttempt returns a copy of e with AttemptCount replaced, used when
// re-enqueuing after a failed replay.
func (e RetryEntry) withAttempt(n int) RetryEntry {
	e.AttemptCount = n
	e.traceID = uuid.New()
	return e
}
