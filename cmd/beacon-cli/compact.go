// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/beaconkit/beacon-transporter/internal/logging"
	"github.com/beaconkit/beacon-transporter/internal/queue/orderedlog/sweep"
)

// runCompact reclaims free pages in the ordered-log store left behind by
// replay/evict churn. With --once it compacts a single time and returns;
// otherwise it runs sweep's cron schedule until the process is signaled to
// stop, the way an operator would run it as a standalone sidecar rather
// than inside the same process that holds the store open for writes.
func runCompact(ctx context.Context) int {
	logger := logging.NoOp
	if *debug {
		logger = logging.NewStderr(true)
	}

	job, err := sweep.New(*storePath, *schedule, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	if *once {
		job.RunOnce()
		fmt.Fprintln(os.Stderr, "✅ compaction complete")
		return 0
	}

	job.Start()
	fmt.Fprintf(os.Stderr, "ℹ️  compacting %s on schedule %q, press Ctrl+C to stop\n", *storePath, *schedule)
	<-ctx.Done()
	job.Stop()
	fmt.Fprintln(os.Stderr, "✅ stopped")
	return 0
}
