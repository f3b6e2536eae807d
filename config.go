// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package beacon

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beaconkit/beacon-transporter/internal/logging"
	"github.com/beaconkit/beacon-transporter/internal/queue"
	"github.com/beaconkit/beacon-transporter/internal/resilience"
	"github.com/beaconkit/beacon-transporter/internal/transport"
)

// Backend selects which queue.Engine a Factory opens by default when no
// explicit Config.Queue is supplied. Spec §4.4 describes the ordered-log
// backend as the default and the synchronous-kv backend (Redis or a local
// file) as the alternative.
type Backend int

const (
	// BackendOrderedLog stores entries in a bbolt file at StorePath.
	BackendOrderedLog Backend = iota
	// BackendKVFile stores entries as one JSON array in a local file at
	// StorePath, guarded by an in-process mutex.
	BackendKVFile
	// BackendKVRedis stores entries as one JSON array under a Redis key
	// named by PersistenceRetry.StoreName, guarded by an advisory lock.
	// Requires RedisClient.
	BackendKVRedis
)

// RetryDelayFunc computes how long to sleep before the next in-memory
// attempt. attempt is 1-based; retryCountLeft is the number of attempts
// still available after this one.
type RetryDelayFunc func(attempt, retryCountLeft int) time.Duration

// DefaultRetryDelay backs off linearly: attempt*2s.
func DefaultRetryDelay(attempt, _ int) time.Duration {
	return time.Duration(attempt) * 2 * time.Second
}

// InMemoryRetry configures the cheap, unpersisted retry loop a Beacon runs
// before ever touching the durable queue.
type InMemoryRetry struct {
	AttemptLimit        int
	StatusCodes         []int
	HeaderName          string
	CalculateRetryDelay RetryDelayFunc
}

func (c InMemoryRetry) withDefaults() InMemoryRetry {
	if c.StatusCodes == nil {
		c.StatusCodes = []int{502, 504}
	}
	if c.CalculateRetryDelay == nil {
		c.CalculateRetryDelay = DefaultRetryDelay
	}
	return c
}

// PersistenceRetry configures the durable queue a Beacon falls back to
// once in-memory retries are exhausted or the failure warrants persisting
// immediately.
type PersistenceRetry struct {
	StoreName           string
	AttemptLimit        int
	StatusCodes         []int
	MaxNumber           int
	BatchEvictionNumber int
	ThrottleWait        time.Duration
	HeaderName          string
	UseIdle             bool
	Disabled            bool
}

func (c PersistenceRetry) withDefaults(inMemoryHeaderName string) PersistenceRetry {
	if c.StoreName == "" {
		c.StoreName = "beacon-transporter"
	}
	if c.AttemptLimit == 0 {
		c.AttemptLimit = 3
	}
	if c.StatusCodes == nil {
		c.StatusCodes = []int{429, 503}
	}
	if c.MaxNumber == 0 {
		c.MaxNumber = 1000
	}
	if c.BatchEvictionNumber == 0 {
		c.BatchEvictionNumber = 300
	}
	if c.ThrottleWait == 0 {
		c.ThrottleWait = 5 * time.Minute
	}
	if c.HeaderName == "" {
		c.HeaderName = inMemoryHeaderName
	}
	return c
}

// Config is the merged option set a Factory is built from, mirroring the
// two grouped option sets plus top-level flags.
type Config struct {
	InMemoryRetry       InMemoryRetry
	PersistenceRetry    PersistenceRetry
	Compress            bool
	Queue               queue.Queue // caller-supplied queue overrides the Backend-selected default
	Backend             Backend     // which built-in engine to open when Queue is nil
	StorePath           string      // bbolt/file path when Backend is ordered-log or kv-file (defaults to StoreName+".db")
	RedisClient         *redis.Client
	FireAndForgetSender transport.FireAndForgetSender
	ConnectivityProbe   transport.ConnectivityProbe
	Scheduler           resilience.Scheduler
	Breaker             *resilience.Breaker
	Logger              logging.Logger
	Metrics             queue.Metrics
}

func (c Config) withDefaults() Config {
	c.InMemoryRetry = c.InMemoryRetry.withDefaults()
	c.PersistenceRetry = c.PersistenceRetry.withDefaults(c.InMemoryRetry.HeaderName)
	if c.StorePath == "" {
		c.StorePath = c.PersistenceRetry.StoreName + ".db"
	}
	if c.Logger == nil {
		c.Logger = logging.NoOp
	}
	if c.Metrics == nil {
		c.Metrics = queue.NoOpMetrics
	}
	return c
}
