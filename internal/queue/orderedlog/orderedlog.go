// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package orderedlog

import (
	"fmt"

	"github.com/beaconkit/beacon-transporter/internal/queue"
)

// New opens a bbolt-backed persistence queue at path and wraps it in a
// queue.Controller, ready to use as a queue.Queue. batchEvictionNumber is
// the number of oldest entries evicted in one batch once maxEntries is
// exceeded (spec §3/§6.3's PersistenceRetry.BatchEvictionNumber).
func New(path string, maxEntries, batchEvictionNumber int, opts queue.Options) (*queue.Controller, error) {
	engine, err := Open(path, maxEntries, batchEvictionNumber)
	if err != nil {
		return nil, fmt.Errorf("orderedlog: %w", err)
	}
	opts.Engine = engine
	return queue.New(opts), nil
}
