// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// Package resilience provides availability-layer helpers that sit around
// the core delivery state machine without changing its control flow: a
// circuit breaker around outbound sends and a deadline-aware idle
// scheduler standing in for the browser's requestIdleCallback.
package resilience

import (
	"time"

	"github.com/sony/gobreaker"
)

// StateListener is notified when the breaker's state changes. It mirrors
// the teacher client's OnStateChange callback so the same logging/metrics
// wiring pattern carries over.
type StateListener func(name string, from, to string)

// Breaker wraps a single outbound send attempt. When open, Execute returns
// ErrOpenState immediately instead of making the call — the caller (the
// transport package) maps that straight onto a Network result so it flows
// through the existing retry/persist decision unmodified.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// ErrOpenState is returned by Execute while the breaker is open.
var ErrOpenState = gobreaker.ErrOpenState

// NewBreaker builds a breaker named for the target host. It trips once at
// least 3 requests have been seen and 60% or more failed within the
// rolling window, then waits timeout before allowing a half-open probe.
func NewBreaker(name string, window, timeout time.Duration, onChange StateListener) *Breaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    window,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
	}
	if onChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			onChange(name, from.String(), to.String())
		}
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker. The returned error is ErrOpenState
// when the breaker is open, or fn's own error otherwise.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// State reports the breaker's current state as a string for metrics.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
