// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// Package kvstore implements queue.Engine as spec §4.4's "alternative
// backend": the full entry list round-trips as a single JSON array under
// one key, guarded by an advisory lock so concurrent callers don't race a
// read-modify-write. StringStore abstracts the lock+get/set primitive so
// Redis and a local file can share one Engine implementation.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/beaconkit/beacon-transporter/internal/queue"
)

// StringStore is the minimal locked key/value primitive this engine needs.
// Lock must block until acquired or ctx is done, and must be safe to call
// re-entrantly from the same process across goroutines (the file engine
// uses an in-process mutex; the Redis engine uses SETNX/PX).
type StringStore interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Engine adapts a StringStore into a queue.Engine by storing the whole
// entry list as one JSON-encoded array value.
type Engine struct {
	store      StringStore
	key        string
	lockTTL    time.Duration
	maxEntries int
}

// New builds an Engine storing its array under key, with maxEntries <= 0
// meaning unbounded.
func New(store StringStore, key string, maxEntries int) *Engine {
	return &Engine{store: store, key: key, lockTTL: 10 * time.Second, maxEntries: maxEntries}
}

func (e *Engine) withLock(ctx context.Context, fn func([]queue.RetryEntry) ([]queue.RetryEntry, error)) error {
	unlock, err := e.store.Lock(ctx, e.key, e.lockTTL)
	if err != nil {
		return fmt.Errorf("kvstore: acquire lock: %w", err)
	}
	defer unlock()

	entries, err := e.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(entries)
	if err != nil {
		return err
	}
	return e.save(ctx, next)
}

func (e *Engine) load(ctx context.Context) ([]queue.RetryEntry, error) {
	raw, found, err := e.store.Get(ctx, e.key)
	if err != nil {
		return nil, fmt.Errorf("kvstore: get: %w", err)
	}
	if !found || raw == "" {
		return nil, nil
	}
	var entries []queue.RetryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("kvstore: unmarshal: %w", err)
	}
	return entries, nil
}

func (e *Engine) save(ctx context.Context, entries []queue.RetryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("kvstore: marshal: %w", err)
	}
	if err := e.store.Set(ctx, e.key, string(data)); err != nil {
		return fmt.Errorf("kvstore: set: %w", err)
	}
	return nil
}

func (e *Engine) PushEntry(ctx context.Context, entry queue.RetryEntry) error {
	return e.withLock(ctx, func(entries []queue.RetryEntry) ([]queue.RetryEntry, error) {
		entries = insertSorted(entries, entry)
		return e.wipeIfOverCapacity(entries), nil
	})
}

// PushEntryIfNotClearing re-checks clearing() while holding the lock,
// which is naturally race-free here since ClearEntries takes the same
// lock to wipe the array.
func (e *Engine) PushEntryIfNotClearing(ctx context.Context, entry queue.RetryEntry, clearing func() bool) error {
	return e.withLock(ctx, func(entries []queue.RetryEntry) ([]queue.RetryEntry, error) {
		if clearing != nil && clearing() {
			return entries, nil
		}
		entries = insertSorted(entries, entry)
		return e.wipeIfOverCapacity(entries), nil
	})
}

// wipeIfOverCapacity implements this backend's overflow policy, which
// deliberately differs from the ordered-log engine's oldest-batch trim:
// exceeding maxEntries here clears the whole slot rather than evicting
// a batch, since a single JSON array under one key has no cheap partial
// trim the way a sorted log does.
func (e *Engine) wipeIfOverCapacity(entries []queue.RetryEntry) []queue.RetryEntry {
	if e.maxEntries > 0 && len(entries) > e.maxEntries {
		return nil
	}
	return entries
}

func insertSorted(entries []queue.RetryEntry, entry queue.RetryEntry) []queue.RetryEntry {
	idx := len(entries)
	for i, existing := range entries {
		if entry.Timestamp < existing.Timestamp {
			idx = i
			break
		}
	}
	entries = append(entries, queue.RetryEntry{})
	copy(entries[idx+1:], entries[idx:])
	entries[idx] = entry
	return entries
}

func (e *Engine) ShiftEntry(ctx context.Context) (queue.RetryEntry, bool, error) {
	var shifted queue.RetryEntry
	found := false
	err := e.withLock(ctx, func(entries []queue.RetryEntry) ([]queue.RetryEntry, error) {
		if len(entries) == 0 {
			return entries, nil
		}
		shifted = entries[0]
		found = true
		return entries[1:], nil
	})
	return shifted, found, err
}

func (e *Engine) PeekEntries(ctx context.Context, n int) ([]queue.RetryEntry, error) {
	entries, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

func (e *Engine) PeekBackEntries(ctx context.Context, n int) ([]queue.RetryEntry, error) {
	entries, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]queue.RetryEntry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (e *Engine) ClearEntries(ctx context.Context) error {
	return e.withLock(ctx, func([]queue.RetryEntry) ([]queue.RetryEntry, error) {
		return nil, nil
	})
}

func (e *Engine) Close() error {
	return nil
}
