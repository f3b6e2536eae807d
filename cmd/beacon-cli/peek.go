// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/beaconkit/beacon-transporter/internal/cliui"
	"github.com/beaconkit/beacon-transporter/internal/queue/orderedlog"
)

func runPeek(ctx context.Context) int {
	sp := cliui.NewSpinner(fmt.Sprintf("opening %s", *storePath), os.Stderr)
	sp.Start()
	engine, err := orderedlog.Open(*storePath, 0, 0)
	if err != nil {
		sp.Stop()
		fmt.Fprintf(os.Stderr, "❌ failed to open store: %v\n", err)
		return 1
	}
	defer engine.Close()
	sp.Done("store opened")

	entries, err := engine.PeekEntries(ctx, *count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ failed to read entries: %v\n", err)
		return 1
	}

	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "ℹ️  queue is empty")
		return 0
	}

	bar := cliui.NewProgressBar(int64(len(entries)), "rendering entries", os.Stderr)
	for _, e := range entries {
		status := "-"
		if e.StatusCode != nil {
			status = fmt.Sprintf("%d", *e.StatusCode)
		}
		fmt.Printf("%d\tattempts=%d\tstatus=%s\t%s\n", e.Timestamp, e.AttemptCount, status, e.URL)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return 0
}
