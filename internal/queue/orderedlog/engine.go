// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// Package orderedlog implements queue.Engine on top of a bbolt B+tree: keys
// are byte-sorted, so a timestamp-prefixed key gives FIFO iteration for
// free via cursor walks instead of an explicit index structure.
package orderedlog

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/beaconkit/beacon-transporter/internal/queue"
)

var bucketName = []byte("retry_entries")

// Engine is a bbolt-backed queue.Engine. Capacity is enforced on every push
// by evicting the oldest batchEvictionNumber entries once maxEntries is
// exceeded, matching spec §4.4's "bounded, oldest-batch-evicted" persistence
// cap.
type Engine struct {
	db                  *bbolt.DB
	maxEntries          int
	batchEvictionNumber int
}

// Open creates or reopens a bbolt database at path. maxEntries <= 0 means
// unbounded, in which case batchEvictionNumber is unused. batchEvictionNumber
// <= 0 falls back to trimming down to exactly maxEntries.
func Open(path string, maxEntries, batchEvictionNumber int) (*Engine, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("orderedlog: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("orderedlog: create bucket: %w", err)
	}
	return &Engine{db: db, maxEntries: maxEntries, batchEvictionNumber: batchEvictionNumber}, nil
}

// key is an 8-byte big-endian timestamp followed by a 4-byte big-endian
// bucket sequence number, so entries sharing a millisecond still sort in
// monotone insertion order (spec §3: "duplicate timestamps must be
// disambiguated by the underlying store").
func makeKey(timestamp int64, seq uint64) []byte {
	k := make([]byte, 12)
	binary.BigEndian.PutUint64(k[:8], uint64(timestamp))
	binary.BigEndian.PutUint32(k[8:], uint32(seq))
	return k
}

func (e *Engine) PushEntry(ctx context.Context, entry queue.RetryEntry) error {
	return e.push(entry, nil)
}

func (e *Engine) PushEntryIfNotClearing(ctx context.Context, entry queue.RetryEntry, clearing func() bool) error {
	return e.push(entry, clearing)
}

func (e *Engine) push(entry queue.RetryEntry, clearing func() bool) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("orderedlog: marshal entry: %w", err)
	}

	return e.db.Update(func(tx *bbolt.Tx) error {
		if clearing != nil && clearing() {
			return nil
		}
		b := tx.Bucket(bucketName)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(makeKey(entry.Timestamp, seq), data); err != nil {
			return err
		}
		return trimOldest(b, e.maxEntries, e.batchEvictionNumber)
	})
}

// trimOldest implements spec §4.4's ordered-log eviction policy: once the
// bucket exceeds max entries, it deletes the oldest batch (batchEviction
// entries) from the front of the cursor, rather than trimming down to
// exactly max. batchEviction <= 0 falls back to trimming down to exactly
// max, for callers that never set a batch size.
func trimOldest(b *bbolt.Bucket, max, batchEviction int) error {
	if max <= 0 {
		return nil
	}
	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	n := len(keys)
	if n <= max {
		return nil
	}
	toEvict := batchEviction
	if toEvict <= 0 {
		toEvict = n - max
	}
	if toEvict > n {
		toEvict = n
	}
	for _, k := range keys[:toEvict] {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) ShiftEntry(ctx context.Context) (queue.RetryEntry, bool, error) {
	var entry queue.RetryEntry
	found := false
	err := e.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		c := b.Cursor()
		k, v := c.First()
		if k == nil {
			return nil
		}
		if err := json.Unmarshal(v, &entry); err != nil {
			return fmt.Errorf("orderedlog: unmarshal entry: %w", err)
		}
		found = true
		return c.Delete()
	})
	return entry, found, err
}

func (e *Engine) PeekEntries(ctx context.Context, n int) ([]queue.RetryEntry, error) {
	var out []queue.RetryEntry
	err := e.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.First(); k != nil && len(out) < n; k, v = c.Next() {
			var entry queue.RetryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("orderedlog: unmarshal entry: %w", err)
			}
			out = append(out, entry)
		}
		return nil
	})
	return out, err
}

func (e *Engine) PeekBackEntries(ctx context.Context, n int) ([]queue.RetryEntry, error) {
	var out []queue.RetryEntry
	err := e.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.Last(); k != nil && len(out) < n; k, v = c.Prev() {
			var entry queue.RetryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("orderedlog: unmarshal entry: %w", err)
			}
			out = append(out, entry)
		}
		return nil
	})
	return out, err
}

func (e *Engine) ClearEntries(ctx context.Context) error {
	return e.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketName)
		return err
	})
}

func (e *Engine) Close() error {
	return e.db.Close()
}
