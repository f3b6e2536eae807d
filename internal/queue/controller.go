// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package queue

import (
	"context"
	"sync"
	"time"

	"github.com/beaconkit/beacon-transporter/internal/header"
	"github.com/beaconkit/beacon-transporter/internal/logging"
	"github.com/beaconkit/beacon-transporter/internal/resilience"
)

// Controller implements Queue against any Engine, driving the shared
// throttled-notify / replay-loop / listener-set behavior from spec §4.4 so
// neither backend reimplements it. A store-level failure latches Disabled
// permanently for the Controller's lifetime (spec §5: "fail-closed").
type Controller struct {
	engine Engine
	sender Sender

	headerName   string
	compress     bool
	attemptLimit int
	throttleWait time.Duration
	scheduler    resilience.Scheduler

	logger  logging.Logger
	metrics Metrics

	mu              sync.Mutex
	clearing        bool
	disabled        bool
	nextAllowed     time.Time
	listeners       map[ListenerHandle]ClearListener
	nextHandle      ListenerHandle
}

// Options configures a Controller.
type Options struct {
	Engine       Engine
	Sender       Sender
	HeaderName   string
	Compress     bool
	AttemptLimit int
	ThrottleWait time.Duration
	Scheduler    resilience.Scheduler
	Logger       logging.Logger
	Metrics      Metrics
}

// New builds a Controller. Scheduler defaults to resilience.TickScheduler{}
// when nil; Logger/Metrics default to their no-op implementations.
func New(opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = resilience.TickScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOp
	}
	if opts.Metrics == nil {
		opts.Metrics = NoOpMetrics
	}
	if opts.ThrottleWait <= 0 {
		opts.ThrottleWait = 5 * time.Minute
	}
	return &Controller{
		engine:       opts.Engine,
		sender:       opts.Sender,
		headerName:   opts.HeaderName,
		compress:     opts.Compress,
		attemptLimit: opts.AttemptLimit,
		throttleWait: opts.ThrottleWait,
		scheduler:    opts.Scheduler,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		listeners:    make(map[ListenerHandle]ClearListener),
	}
}

// PushToQueue enqueues entry. A successful push resets the notify throttle
// so the very next NotifyQueue call (typically from the next beacon's
// success) drains immediately, per spec §4.4 and invariant 7.
func (c *Controller) PushToQueue(ctx context.Context, entry RetryEntry) error {
	if c.isDisabled() {
		return nil
	}
	if err := c.engine.PushEntry(ctx, entry); err != nil {
		c.latch()
		c.metrics.RecordPush(false)
		return nil
	}
	c.metrics.RecordPush(true)
	c.logger.Debug(ctx, "persistence queue: entry pushed", map[string]interface{}{
		"traceId": entry.TraceID().String(),
		"url":     entry.URL,
	})

	c.mu.Lock()
	c.nextAllowed = time.Time{}
	c.mu.Unlock()

	return nil
}

// NotifyQueue signals that a replay burst may proceed. At most one burst
// runs per ThrottleWait window; throttled calls are silently dropped.
func (c *Controller) NotifyQueue(ctx context.Context, cfg NotifyConfig) {
	if c.isDisabled() {
		return
	}

	now := time.Now()
	c.mu.Lock()
	if now.Before(c.nextAllowed) {
		c.mu.Unlock()
		c.metrics.RecordNotifyThrottled()
		return
	}
	c.nextAllowed = now.Add(c.throttleWait)
	c.mu.Unlock()

	c.scheduler.Schedule(ctx, func() {
		c.drain(ctx, cfg)
	})
}

// drain runs the replay algorithm from spec §4.4 until it pops nothing,
// re-enqueues, or drops.
func (c *Controller) drain(ctx context.Context, cfg NotifyConfig) {
	for {
		if c.isDisabled() {
			return
		}
		entry, ok, err := c.engine.ShiftEntry(ctx)
		if err != nil {
			c.latch()
			return
		}
		if !ok {
			return
		}

		headers := header.Build(entry.Headers, c.headerName, entry.AttemptCount, entry.StatusCode)
		res := c.sender.Send(ctx, SendRequest{
			URL:      entry.URL,
			Body:     entry.Body,
			Headers:  headers,
			Compress: c.compress,
		})

		traceFields := map[string]interface{}{"traceId": entry.TraceID().String(), "url": entry.URL}

		if res.Succeeded {
			c.metrics.RecordReplay("success")
			c.logger.Debug(ctx, "persistence queue: entry replayed", traceFields)
			continue
		}

		nextAttempt := entry.AttemptCount + 1
		if nextAttempt > c.attemptLimit {
			c.metrics.RecordReplay("drop")
			c.logger.Debug(ctx, "persistence queue: entry dropped, attempt limit reached", traceFields)
			return
		}

		retryable := res.IsNetwork || (res.HasStatus && containsStatus(cfg.AllowedPersistRetryStatusCodes, res.StatusCode))
		if !retryable {
			c.metrics.RecordReplay("drop")
			c.logger.Debug(ctx, "persistence queue: entry dropped, non-retryable response", traceFields)
			return
		}

		next := entry.withAttempt(nextAttempt)
		if res.HasStatus {
			code := res.StatusCode
			next.StatusCode = &code
		}
		if err := c.engine.PushEntryIfNotClearing(ctx, next, c.isClearing); err != nil {
			c.latch()
			return
		}
		c.metrics.RecordReplay("reenqueue")
		c.logger.Debug(ctx, "persistence queue: entry re-enqueued after failed replay", traceFields)
		return
	}
}

// ClearQueue invokes every registered listener synchronously, then deletes
// all entries. An entry enqueued by a beacon that started before the clear
// (and checks isClearQueuePending itself) will not resurrect; an entry
// enqueued by a brand new beacon call after ClearQueue returns is
// unaffected and survives.
func (c *Controller) ClearQueue(ctx context.Context) error {
	c.mu.Lock()
	c.clearing = true
	listeners := make([]ClearListener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l()
	}

	err := c.engine.ClearEntries(ctx)

	c.mu.Lock()
	c.clearing = false
	c.mu.Unlock()

	if err != nil {
		c.latch()
		return nil
	}
	return nil
}

func (c *Controller) PeekQueue(ctx context.Context, n int) ([]RetryEntry, error) {
	if c.isDisabled() {
		return nil, nil
	}
	entries, err := c.engine.PeekEntries(ctx, n)
	if err != nil {
		c.latch()
		return nil, nil
	}
	return entries, nil
}

func (c *Controller) PeekBackQueue(ctx context.Context, n int) ([]RetryEntry, error) {
	if c.isDisabled() {
		return nil, nil
	}
	entries, err := c.engine.PeekBackEntries(ctx, n)
	if err != nil {
		c.latch()
		return nil, nil
	}
	return entries, nil
}

func (c *Controller) OnClear(fn ClearListener) ListenerHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextHandle++
	h := c.nextHandle
	c.listeners[h] = fn
	return h
}

func (c *Controller) RemoveOnClear(h ListenerHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.listeners, h)
}

// Close releases the underlying engine's resources.
func (c *Controller) Close() error {
	return c.engine.Close()
}

func (c *Controller) isClearing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearing
}

func (c *Controller) isDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disabled
}

func (c *Controller) latch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.disabled {
		c.logger.Debug(context.Background(), "persistence queue disabled after store failure", nil)
	}
	c.disabled = true
}

func containsStatus(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
