// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package beacon

import (
	"context"
	"fmt"
	"time"

	"github.com/beaconkit/beacon-transporter/internal/queue"
	"github.com/beaconkit/beacon-transporter/internal/queue/kvstore"
	"github.com/beaconkit/beacon-transporter/internal/queue/orderedlog"
	"github.com/beaconkit/beacon-transporter/internal/resilience"
	"github.com/beaconkit/beacon-transporter/internal/transport"
	"github.com/beaconkit/beacon-transporter/result"
)

// Factory wires one shared persistence Queue to every Beacon it produces,
// matching spec §4.5's "process-wide queue, created once, passed by
// reference into each Beacon".
type Factory struct {
	cfg       Config
	transport *transport.Transport
	queue     queue.Queue
}

// New merges cfg with defaults, opens (or adopts) the persistence queue,
// and returns a ready-to-use Factory. The returned error is non-nil only
// when the durable store cannot be opened at all — a later store failure
// during normal operation instead fail-closes that Queue per spec §7, it
// does not surface as a Go error from Send.
func New(cfg Config) (*Factory, error) {
	cfg = cfg.withDefaults()

	opts := []transport.Option{transport.WithLogger(cfg.Logger)}
	if cfg.FireAndForgetSender != nil {
		opts = append(opts, transport.WithFireAndForgetSender(cfg.FireAndForgetSender))
	}
	if cfg.Breaker != nil {
		opts = append(opts, transport.WithBreaker(cfg.Breaker))
	}
	t := transport.New(opts...)

	q := cfg.Queue
	if q == nil {
		opened, err := openDefaultQueue(cfg, t)
		if err != nil {
			return nil, fmt.Errorf("beacon: open persistence queue: %w", err)
		}
		q = opened
	}

	return &Factory{cfg: cfg, transport: t, queue: q}, nil
}

// replayScheduler honors PersistenceRetry.UseIdle per spec §4.4's replay
// scheduling rule, unless the caller supplied their own Scheduler.
func replayScheduler(cfg Config) resilience.Scheduler {
	if cfg.Scheduler != nil {
		return cfg.Scheduler
	}
	if cfg.PersistenceRetry.UseIdle {
		return resilience.NewIdleScheduler()
	}
	return resilience.TickScheduler{}
}

func openDefaultQueue(cfg Config, t *transport.Transport) (queue.Queue, error) {
	start := time.Now()

	opts := queue.Options{
		Sender:       transportSender{t: t},
		HeaderName:   cfg.PersistenceRetry.HeaderName,
		Compress:     cfg.Compress,
		AttemptLimit: cfg.PersistenceRetry.AttemptLimit,
		ThrottleWait: cfg.PersistenceRetry.ThrottleWait,
		Scheduler:    replayScheduler(cfg),
		Logger:       cfg.Logger,
		Metrics:      cfg.Metrics,
	}

	var q queue.Queue
	var err error
	switch cfg.Backend {
	case BackendKVFile:
		q = kvstore.NewFile(cfg.StorePath, cfg.PersistenceRetry.MaxNumber, opts)
	case BackendKVRedis:
		if cfg.RedisClient == nil {
			return nil, fmt.Errorf("beacon: Backend is BackendKVRedis but RedisClient is nil")
		}
		store := kvstore.NewRedisStore(cfg.RedisClient)
		q = kvstore.NewRedis(store, cfg.PersistenceRetry.StoreName, cfg.PersistenceRetry.MaxNumber, opts)
	default:
		q, err = orderedlog.New(cfg.StorePath, cfg.PersistenceRetry.MaxNumber, cfg.PersistenceRetry.BatchEvictionNumber, opts)
	}
	if err != nil {
		return nil, err
	}

	cfg.Metrics.RecordQueueOpen(time.Since(start).Milliseconds())
	return q, nil
}

// Send constructs a Beacon for this call and runs it to completion,
// returning a buffered channel that always receives exactly one result.
func (f *Factory) Send(ctx context.Context, url, body string, headers map[string]string) <-chan result.Result {
	ch := make(chan result.Result, 1)

	b := newBeacon(url, body, headers, time.Now().UnixMilli(), f.cfg, f.transport, f.queue)
	go func() {
		ch <- b.send(ctx)
	}()

	return ch
}

// Queue returns the shared persistence queue this Factory's beacons use.
func (f *Factory) Queue() queue.Queue {
	return f.queue
}

// Close releases the underlying queue's resources (e.g. the bbolt file
// handle). Safe to call once the Factory is no longer in use.
func (f *Factory) Close() error {
	if closer, ok := f.queue.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
