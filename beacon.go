// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// Package beacon delivers opaque POST payloads despite transient failures:
// a bounded in-memory retry loop backed by a durable, capped persistence
// queue that replays on a later success.
package beacon

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/beaconkit/beacon-transporter/internal/header"
	"github.com/beaconkit/beacon-transporter/internal/logging"
	"github.com/beaconkit/beacon-transporter/internal/queue"
	"github.com/beaconkit/beacon-transporter/internal/transport"
	"github.com/beaconkit/beacon-transporter/result"
)

// persistenceFacade is the narrow view of persistence state a Beacon needs:
// whether it's disabled and which status codes warrant persisting.
type persistenceFacade struct {
	db         queue.Queue
	disabled   bool
	statusCodes []int
}

// Beacon is born on every send call, runs its attempt loop, and ends when
// the loop settles on a final result.
type Beacon struct {
	url       string
	body      string
	headers   map[string]string
	timestamp int64

	inMemory    InMemoryRetry
	persistence persistenceFacade
	compress    bool

	transport  *transport.Transport
	probe      transport.ConnectivityProbe
	logger     logging.Logger
	metrics    queue.Metrics

	isClearQueuePending atomic.Bool
	listenerHandle      queue.ListenerHandle
}

func newBeacon(url, body string, headers map[string]string, now int64, cfg Config, t *transport.Transport, q queue.Queue) *Beacon {
	probe := cfg.ConnectivityProbe
	if probe == nil {
		probe = transport.AlwaysOnline{}
	}
	return &Beacon{
		url:       url,
		body:      body,
		headers:   headers,
		timestamp: now,
		inMemory:  cfg.InMemoryRetry,
		persistence: persistenceFacade{
			db:          q,
			disabled:    cfg.PersistenceRetry.Disabled,
			statusCodes: cfg.PersistenceRetry.StatusCodes,
		},
		compress:  cfg.Compress,
		transport: t,
		probe:     probe,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// send runs the full attempt loop and returns the final, fully-populated
// result. It never panics and never leaves the result channel unfilled.
func (b *Beacon) send(ctx context.Context) result.Result {
	if b.persistence.db != nil {
		b.listenerHandle = b.persistence.db.OnClear(func() { b.isClearQueuePending.Store(true) })
		defer b.persistence.db.RemoveOnClear(b.listenerHandle)
	}

	retryCountLeft := b.inMemory.AttemptLimit
	var lastErrorCode *int

	for {
		attempt := b.inMemory.AttemptLimit - retryCountLeft + 1

		headers := header.Build(b.headers, b.inMemory.HeaderName, attempt-1, lastErrorCode)
		res := b.transport.Send(ctx, transport.Request{
			URL:      b.url,
			Body:     b.body,
			Headers:  headers,
			Compress: b.compress,
		})

		switch res.Type {
		case result.Success, result.Unknown:
			if !b.isClearQueuePending.Load() && !b.persistence.disabled && b.persistence.db != nil {
				b.persistence.db.NotifyQueue(ctx, queue.NotifyConfig{AllowedPersistRetryStatusCodes: b.persistence.statusCodes})
			}
			return res

		case result.Response, result.Network:
			if b.shouldPersist(res, retryCountLeft) {
				entry := queue.NewRetryEntry(b.url, b.body, b.headers, statusCodePtr(res), b.timestamp, attempt)
				if err := b.persistence.db.PushToQueue(ctx, entry); err != nil {
					b.logger.Debug(ctx, "push to queue failed", map[string]interface{}{"error": err.Error()})
				}
				return result.PersistedResult(statusCodePtr(res))
			}

			if b.shouldRetryInMemory(res, retryCountLeft) {
				delay := b.inMemory.CalculateRetryDelay(attempt, retryCountLeft)
				if !sleepOrDone(ctx, delay) {
					res.Drop = true
					return res
				}
				retryCountLeft--
				lastErrorCode = statusCodePtr(res)
				continue
			}

			res.Drop = true
			return res

		default:
			res.Drop = true
			return res
		}
	}
}

// shouldPersist implements spec §4.3's persist decision exactly.
func (b *Beacon) shouldPersist(res result.Result, retryCountLeft int) bool {
	if b.isClearQueuePending.Load() || b.persistence.disabled || b.persistence.db == nil {
		return false
	}
	if !b.probe.Online() {
		return true
	}
	if retryCountLeft == 0 && res.Type == result.Network {
		return true
	}
	if res.Type == result.Response && containsInt(b.persistence.statusCodes, res.StatusCode) {
		return true
	}
	return false
}

// shouldRetryInMemory implements spec §4.3's cheap-retry decision.
func (b *Beacon) shouldRetryInMemory(res result.Result, retryCountLeft int) bool {
	if retryCountLeft <= 0 {
		return false
	}
	if res.Type == result.Network {
		return true
	}
	return containsInt(b.inMemory.StatusCodes, res.StatusCode)
}

func statusCodePtr(res result.Result) *int {
	if !res.HasStatusCode {
		return nil
	}
	code := res.StatusCode
	return &code
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// sleepOrDone waits for delay, returning false if ctx is cancelled first.
func sleepOrDone(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
