// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package queue

import "context"

// Engine is the minimal durable-storage primitive spec §4.4 asks both
// backends to share: "a second queue implementation over a simpler
// key/value store exists as an alternative backend; the queue contract is
// shared." Eviction policy (batch-trim vs wipe-on-overflow) is each
// engine's own concern, not the Controller's.
type Engine interface {
	// PushEntry appends entry, applying this engine's eviction policy.
	PushEntry(ctx context.Context, entry RetryEntry) error
	// PushEntryIfNotClearing appends entry unless clearing() reports true
	// at the moment of insert. Used by the replay loop's re-enqueue step
	// so a clear that starts mid-replay is not resurrected.
	PushEntryIfNotClearing(ctx context.Context, entry RetryEntry, clearing func() bool) error
	// ShiftEntry pops the oldest entry by Timestamp. ok is false when the
	// queue is empty.
	ShiftEntry(ctx context.Context) (entry RetryEntry, ok bool, err error)
	// PeekEntries returns up to n oldest entries without removing them.
	PeekEntries(ctx context.Context, n int) ([]RetryEntry, error)
	// PeekBackEntries returns up to n newest entries, most recent first,
	// without removing them.
	PeekBackEntries(ctx context.Context, n int) ([]RetryEntry, error)
	// ClearEntries deletes everything.
	ClearEntries(ctx context.Context) error
	// Close releases any resources the engine holds open.
	Close() error
}

// ClearListener is invoked synchronously, once per clearQueue call, before
// the durable store is emptied.
type ClearListener func()

// ListenerHandle identifies a registered ClearListener for removal.
type ListenerHandle uint64

// NotifyConfig carries the status-code allow-list a notify burst's replay
// should honor when deciding whether a failed entry is re-enqueueable.
type NotifyConfig struct {
	AllowedPersistRetryStatusCodes []int
}

// Queue is the shared PersistenceQueue contract from spec §4.4.
type Queue interface {
	PushToQueue(ctx context.Context, entry RetryEntry) error
	NotifyQueue(ctx context.Context, cfg NotifyConfig)
	ClearQueue(ctx context.Context) error
	PeekQueue(ctx context.Context, n int) ([]RetryEntry, error)
	PeekBackQueue(ctx context.Context, n int) ([]RetryEntry, error)
	OnClear(fn ClearListener) ListenerHandle
	RemoveOnClear(h ListenerHandle)
}

// Sender is the narrow transport capability the replay loop needs. The
// beacon package adapts internal/transport.Transport to this interface so
// this package never imports transport directly.
type Sender interface {
	Send(ctx context.Context, req SendRequest) SendResult
}

// SendRequest mirrors transport.Request without importing that package.
type SendRequest struct {
	URL      string
	Body     string
	Headers  map[string]string
	Compress bool
}

// SendResult mirrors the fields of result.Result the replay loop needs to
// make its re-enqueue/drop decision, again without an import cycle.
type SendResult struct {
	Succeeded  bool // Success or Unknown
	IsNetwork  bool
	StatusCode int
	HasStatus  bool
}
