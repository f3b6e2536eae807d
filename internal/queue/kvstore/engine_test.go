// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaconkit/beacon-transporter/internal/queue"
)

func newFileTestEngine(t *testing.T, maxEntries int) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.json")
	return New(NewFileStore(path), "entries", maxEntries)
}

func newRedisTestEngine(t *testing.T, maxEntries int) *Engine {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(NewRedisStore(client), "entries", maxEntries)
}

func runEngineContract(t *testing.T, newEngine func(t *testing.T, maxEntries int) *Engine) {
	ctx := context.Background()

	t.Run("FIFO order by timestamp", func(t *testing.T) {
		e := newEngine(t, 0)
		require.NoError(t, e.PushEntry(ctx, queue.NewRetryEntry("https://a", "1", nil, nil, 200, 0)))
		require.NoError(t, e.PushEntry(ctx, queue.NewRetryEntry("https://a", "2", nil, nil, 100, 0)))

		first, ok, err := e.ShiftEntry(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "2", first.Body)
	})

	t.Run("shift on empty returns not ok", func(t *testing.T) {
		e := newEngine(t, 0)
		_, ok, err := e.ShiftEntry(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("push wipes the whole slot beyond capacity", func(t *testing.T) {
		e := newEngine(t, 2)
		require.NoError(t, e.PushEntry(ctx, queue.NewRetryEntry("https://a", "1", nil, nil, 1, 0)))
		require.NoError(t, e.PushEntry(ctx, queue.NewRetryEntry("https://a", "2", nil, nil, 2, 0)))
		require.NoError(t, e.PushEntry(ctx, queue.NewRetryEntry("https://a", "3", nil, nil, 3, 0)))

		entries, err := e.PeekEntries(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)

		require.NoError(t, e.PushEntry(ctx, queue.NewRetryEntry("https://a", "4", nil, nil, 4, 0)))
		entries, err = e.PeekEntries(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "4", entries[0].Body)
	})

	t.Run("push if not clearing is skipped while clearing", func(t *testing.T) {
		e := newEngine(t, 0)
		err := e.PushEntryIfNotClearing(ctx, queue.NewRetryEntry("https://a", "1", nil, nil, 1, 0), func() bool { return true })
		require.NoError(t, err)

		entries, err := e.PeekEntries(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("clear removes everything and survives further pushes", func(t *testing.T) {
		e := newEngine(t, 0)
		require.NoError(t, e.PushEntry(ctx, queue.NewRetryEntry("https://a", "1", nil, nil, 1, 0)))
		require.NoError(t, e.ClearEntries(ctx))

		entries, err := e.PeekEntries(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)

		require.NoError(t, e.PushEntry(ctx, queue.NewRetryEntry("https://a", "2", nil, nil, 2, 0)))
	})

	t.Run("peek back returns newest first", func(t *testing.T) {
		e := newEngine(t, 0)
		require.NoError(t, e.PushEntry(ctx, queue.NewRetryEntry("https://a", "1", nil, nil, 1, 0)))
		require.NoError(t, e.PushEntry(ctx, queue.NewRetryEntry("https://a", "2", nil, nil, 2, 0)))

		entries, err := e.PeekBackEntries(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "2", entries[0].Body)
	})
}

func TestFileEngine_Contract(t *testing.T) {
	runEngineContract(t, newFileTestEngine)
}

func TestRedisEngine_Contract(t *testing.T) {
	runEngineContract(t, newRedisTestEngine)
}
