// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/beaconkit/beacon-transporter/internal/cliui"
	"github.com/beaconkit/beacon-transporter/internal/logging"
	"github.com/beaconkit/beacon-transporter/internal/queue"
	"github.com/beaconkit/beacon-transporter/internal/queue/orderedlog"
)

func runClear(ctx context.Context) int {
	if !*force && cliui.Interactive() {
		ok, err := cliui.NewPrompter(nil).Confirm(fmt.Sprintf("Delete all entries in %s?", *storePath), false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			return 1
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "ℹ️  aborted")
			return 0
		}
	}

	logger := logging.NoOp
	if *debug {
		logger = logging.NewStderr(true)
	}

	q, err := orderedlog.New(*storePath, 0, 0, queue.Options{
		Sender: noopSender{},
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ failed to open store: %v\n", err)
		return 1
	}
	defer q.Close()

	if err := q.ClearQueue(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ failed to clear: %v\n", err)
		return 1
	}

	fmt.Fprintln(os.Stderr, "✅ queue cleared")
	return 0
}

// noopSender satisfies queue.Sender for commands that never drive a replay.
type noopSender struct{}

func (noopSender) Send(context.Context, queue.SendRequest) queue.SendResult {
	return queue.SendResult{Succeeded: true}
}
