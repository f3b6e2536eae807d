// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// beacon-cli inspects and drains a local beacon-transporter persistence
// queue.
//
// Usage:
//
//	go run ./cmd/beacon-cli --store=beacon-transporter.db peek
//	go run ./cmd/beacon-cli --store=beacon-transporter.db clear
//	go run ./cmd/beacon-cli --store=beacon-transporter.db compact --once
//	go run ./cmd/beacon-cli --store=beacon-transporter.db compact --schedule="0 3 * * *"
//
// Or with flags:
//
//	go run ./cmd/beacon-cli \
//	  --store="beacon-transporter.db" \
//	  --count=20 \
//	  peek
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var (
	storePath = flag.String("store", "beacon-transporter.db", "path to the ordered-log persistence store")
	count     = flag.Int("count", 20, "number of entries to show (peek)")
	force     = flag.Bool("force", false, "skip the confirmation prompt (clear)")
	debug     = flag.Bool("debug", false, "enable debug logging")
	schedule  = flag.String("schedule", "0 3 * * *", "cron schedule for periodic compaction")
	once      = flag.Bool("once", false, "run compaction a single time instead of scheduling it")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: beacon-cli [options] <peek|clear|compact>\n\n")
		fmt.Fprintf(os.Stderr, "Inspects, drains, or compacts a local beacon-transporter persistence store.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  beacon-cli --store=beacon-transporter.db peek\n")
		fmt.Fprintf(os.Stderr, "  beacon-cli --store=beacon-transporter.db --count=50 peek\n")
		fmt.Fprintf(os.Stderr, "  beacon-cli --store=beacon-transporter.db clear\n")
		fmt.Fprintf(os.Stderr, "  beacon-cli --store=beacon-transporter.db compact --once\n")
		fmt.Fprintf(os.Stderr, "  beacon-cli --store=beacon-transporter.db compact --schedule=\"0 3 * * *\"\n")
	}
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	os.Exit(run(ctx, flag.Args()))
}

func run(ctx context.Context, args []string) int {
	if len(args) != 1 {
		flag.Usage()
		return 2
	}

	switch args[0] {
	case "peek":
		return runPeek(ctx)
	case "clear":
		return runClear(ctx)
	case "compact":
		return runCompact(ctx)
	default:
		flag.Usage()
		return 2
	}
}
