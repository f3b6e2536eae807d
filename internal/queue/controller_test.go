// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package queue

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memEngine is an in-memory Engine double for exercising Controller without
// a real storage backend.
type memEngine struct {
	mu       sync.Mutex
	entries  []RetryEntry
	pushErr  error
	shiftErr error
}

func (m *memEngine) PushEntry(ctx context.Context, e RetryEntry) error {
	return m.PushEntryIfNotClearing(ctx, e, func() bool { return false })
}

func (m *memEngine) PushEntryIfNotClearing(ctx context.Context, e RetryEntry, clearing func() bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pushErr != nil {
		return m.pushErr
	}
	if clearing() {
		return nil
	}
	m.entries = append(m.entries, e)
	sort.SliceStable(m.entries, func(i, j int) bool { return m.entries[i].Timestamp < m.entries[j].Timestamp })
	return nil
}

func (m *memEngine) ShiftEntry(ctx context.Context) (RetryEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shiftErr != nil {
		return RetryEntry{}, false, m.shiftErr
	}
	if len(m.entries) == 0 {
		return RetryEntry{}, false, nil
	}
	e := m.entries[0]
	m.entries = m.entries[1:]
	return e, true, nil
}

func (m *memEngine) PeekEntries(ctx context.Context, n int) ([]RetryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.entries) {
		n = len(m.entries)
	}
	out := make([]RetryEntry, n)
	copy(out, m.entries[:n])
	return out, nil
}

func (m *memEngine) PeekBackEntries(ctx context.Context, n int) ([]RetryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RetryEntry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *memEngine) ClearEntries(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *memEngine) Close() error { return nil }

func (m *memEngine) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// fakeSender records every send and returns a scripted sequence of results.
type fakeSender struct {
	mu      sync.Mutex
	results []SendResult
	calls   int
}

func (f *fakeSender) Send(ctx context.Context, req SendRequest) SendResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := SendResult{Succeeded: true}
	if f.calls < len(f.results) {
		r = f.results[f.calls]
	}
	f.calls++
	return r
}

// syncScheduler runs fn inline so tests don't need to wait for a goroutine.
type syncScheduler struct{}

func (syncScheduler) Schedule(ctx context.Context, fn func()) { fn() }

func TestController_PushThenNotifyDrains(t *testing.T) {
	engine := &memEngine{}
	sender := &fakeSender{results: []SendResult{{Succeeded: true}}}
	c := New(Options{Engine: engine, Sender: sender, Scheduler: syncScheduler{}, AttemptLimit: 3})

	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "body", nil, nil, 1, 0)))
	c.NotifyQueue(context.Background(), NotifyConfig{})

	assert.Equal(t, 0, engine.len())
	assert.Equal(t, 1, sender.calls)
}

func TestController_NotifyThrottlesBursts(t *testing.T) {
	engine := &memEngine{}
	sender := &fakeSender{results: []SendResult{{IsNetwork: true}, {IsNetwork: true}, {IsNetwork: true}}}
	c := New(Options{Engine: engine, Sender: sender, Scheduler: syncScheduler{}, AttemptLimit: 5, ThrottleWait: time.Hour})

	// Each burst replays the entry, fails and re-enqueues it, so every
	// notify that is not throttled issues one more send.
	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "body", nil, nil, 1, 0)))
	c.NotifyQueue(context.Background(), NotifyConfig{})
	c.NotifyQueue(context.Background(), NotifyConfig{})
	c.NotifyQueue(context.Background(), NotifyConfig{})

	assert.Equal(t, 1, sender.calls)
}

func TestController_PushResetsThrottle(t *testing.T) {
	engine := &memEngine{}
	sender := &fakeSender{results: []SendResult{{Succeeded: true}, {Succeeded: true}}}
	c := New(Options{Engine: engine, Sender: sender, Scheduler: syncScheduler{}, ThrottleWait: time.Hour})

	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "1", nil, nil, 1, 0)))
	c.NotifyQueue(context.Background(), NotifyConfig{})
	assert.Equal(t, 1, sender.calls)

	// A fresh push resets the throttle so the next notify is not dropped.
	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "2", nil, nil, 2, 0)))
	c.NotifyQueue(context.Background(), NotifyConfig{})
	assert.Equal(t, 2, sender.calls)
}

func TestController_FailedReplayReenqueuesWhenRetryable(t *testing.T) {
	engine := &memEngine{}
	sender := &fakeSender{results: []SendResult{{IsNetwork: true}}}
	c := New(Options{Engine: engine, Sender: sender, Scheduler: syncScheduler{}, AttemptLimit: 3})

	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "body", nil, nil, 1, 0)))
	c.NotifyQueue(context.Background(), NotifyConfig{})

	require.Equal(t, 1, engine.len())
	assert.Equal(t, 1, engine.entries[0].AttemptCount)
}

func TestController_FailedReplayDropsPastAttemptLimit(t *testing.T) {
	engine := &memEngine{}
	sender := &fakeSender{results: []SendResult{{IsNetwork: true}}}
	c := New(Options{Engine: engine, Sender: sender, Scheduler: syncScheduler{}, AttemptLimit: 0})

	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "body", nil, nil, 1, 0)))
	c.NotifyQueue(context.Background(), NotifyConfig{})

	assert.Equal(t, 0, engine.len())
}

func TestController_FailedReplayDropsNonRetryableStatus(t *testing.T) {
	engine := &memEngine{}
	sender := &fakeSender{results: []SendResult{{HasStatus: true, StatusCode: 400}}}
	c := New(Options{Engine: engine, Sender: sender, Scheduler: syncScheduler{}, AttemptLimit: 5})

	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "body", nil, nil, 1, 0)))
	c.NotifyQueue(context.Background(), NotifyConfig{AllowedPersistRetryStatusCodes: []int{500, 503}})

	assert.Equal(t, 0, engine.len())
}

func TestController_FailedReplayReenqueuesAllowedStatus(t *testing.T) {
	engine := &memEngine{}
	sender := &fakeSender{results: []SendResult{{HasStatus: true, StatusCode: 503}}}
	c := New(Options{Engine: engine, Sender: sender, Scheduler: syncScheduler{}, AttemptLimit: 5})

	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "body", nil, nil, 1, 0)))
	c.NotifyQueue(context.Background(), NotifyConfig{AllowedPersistRetryStatusCodes: []int{503}})

	require.Equal(t, 1, engine.len())
}

func TestController_ClearQueueInvokesListenersThenWipes(t *testing.T) {
	engine := &memEngine{}
	c := New(Options{Engine: engine, Sender: &fakeSender{}, Scheduler: syncScheduler{}})

	var called bool
	c.OnClear(func() { called = true })

	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "1", nil, nil, 1, 0)))
	require.NoError(t, c.ClearQueue(context.Background()))

	assert.True(t, called)
	assert.Equal(t, 0, engine.len())
}

func TestController_RemoveOnClearStopsNotifying(t *testing.T) {
	engine := &memEngine{}
	c := New(Options{Engine: engine, Sender: &fakeSender{}, Scheduler: syncScheduler{}})

	var called bool
	h := c.OnClear(func() { called = true })
	c.RemoveOnClear(h)

	require.NoError(t, c.ClearQueue(context.Background()))
	assert.False(t, called)
}

func TestController_DisablesAfterStoreFailure(t *testing.T) {
	engine := &memEngine{pushErr: errors.New("disk full")}
	c := New(Options{Engine: engine, Sender: &fakeSender{}, Scheduler: syncScheduler{}})

	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "1", nil, nil, 1, 0)))

	// Once latched, further operations become no-ops instead of erroring.
	engine.pushErr = nil
	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "2", nil, nil, 2, 0)))
	assert.Equal(t, 0, engine.len())
}

func TestController_PeekQueueReturnsEntries(t *testing.T) {
	engine := &memEngine{}
	c := New(Options{Engine: engine, Sender: &fakeSender{}, Scheduler: syncScheduler{}})

	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "1", nil, nil, 1, 0)))
	require.NoError(t, c.PushToQueue(context.Background(), NewRetryEntry("https://a", "2", nil, nil, 2, 0)))

	peeked, err := c.PeekQueue(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, peeked, 2)
	assert.Equal(t, "1", peeked[0].Body)

	back, err := c.PeekBackQueue(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "2", back[0].Body)
}
