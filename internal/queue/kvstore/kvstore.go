// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package kvstore

import "github.com/beaconkit/beacon-transporter/internal/queue"

// NewRedis wraps a StringStore (normally a RedisStore) as a queue.Queue
// over the given key.
func NewRedis(store StringStore, key string, maxEntries int, opts queue.Options) *queue.Controller {
	opts.Engine = New(store, key, maxEntries)
	return queue.New(opts)
}

// NewFile wraps a local file as a queue.Queue, durable without Redis. The
// file holds exactly one array, so the StringStore key is an arbitrary
// constant rather than an addressable namespace.
func NewFile(path string, maxEntries int, opts queue.Options) *queue.Controller {
	opts.Engine = New(NewFileStore(path), "entries", maxEntries)
	return queue.New(opts)
}
